// Package config loads the one-shot, start-of-run router configuration
// described in SPEC_FULL.md §4.8: a YAML document is read once at
// start-up and applied to an already-constructed core.Router via its
// control-thread setter methods. The teacher repo reads a line-oriented
// keyword config file at start-up for the same purpose (src/config.go);
// this module carries the same "load once, apply via typed setters"
// shape but backs it with a real marshaling library instead of a
// hand-rolled keyword scanner, since §6 already specifies a typed
// configuration surface for the loader to call into.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/embedwave/midicore/core"
)

// ChannelRemap is one FilterTable or SwapTable entry.
type ChannelRemap struct {
	FromClass   string `yaml:"from_class"`
	FromChannel uint8  `yaml:"from_channel"`
	FromNumber  uint8  `yaml:"from_number"`
	ToClass     string `yaml:"to_class"`
	ToChannel   uint8  `yaml:"to_channel"`
	ToNumber    uint8  `yaml:"to_number"`
}

// FilterIgnore marks a single filter-table cell as Ignore.
type FilterIgnore struct {
	Class   string `yaml:"class"`
	Channel uint8  `yaml:"channel"`
	Number  uint8  `yaml:"number"`
}

// InputConfig configures one already-constructed input port by index.
type InputConfig struct {
	Index       int  `yaml:"index"`
	UI          bool `yaml:"ui"`
	Filter      bool `yaml:"filter"`
	ActiveChain bool `yaml:"active_chain"`
	CCAutoMode  bool `yaml:"cc_auto_mode"`
	CCSwap      bool `yaml:"cc_swap"`
	// RoutedToAllChains applies set_routed_to_all_chains(true) (spec.md
	// §6) once at start-up, connecting this input to every chain output.
	RoutedToAllChains bool `yaml:"routed_to_all_chains"`
}

// OutputConfig configures one already-constructed output port by index.
type OutputConfig struct {
	Index              int    `yaml:"index"`
	Tuning             bool   `yaml:"tuning"`
	NoteRange          bool   `yaml:"note_range"`
	ChanTransfilter    bool   `yaml:"chan_transfilter"`
	DropProgramChange  bool   `yaml:"drop_program_change"`
	DropControlChange  bool   `yaml:"drop_control_change"`
	DropSystem         bool   `yaml:"drop_system"`
	DropSysEx          bool   `yaml:"drop_sysex"`
	DropNotes          bool   `yaml:"drop_notes"`
	DirectOut          bool   `yaml:"direct_out"`
	MIDIChannel        int    `yaml:"midi_channel"` // -1 == unset / multi mode
	NoteLow            uint8  `yaml:"note_low"`
	NoteHigh           uint8  `yaml:"note_high"`
	Octave             int8   `yaml:"octave"`
	Semitone           int8   `yaml:"semitone"`
	ChannelTranslation []Pair `yaml:"channel_translation"`
}

// Pair is a from->to channel-translation entry; to == -1 means drop.
type Pair struct {
	From int `yaml:"from"`
	To   int `yaml:"to"`
}

// RouterConfig is the top-level document shape loaded from YAML.
type RouterConfig struct {
	MasterChannel   int     `yaml:"master_channel"` // -1 disables
	SystemEvents    bool    `yaml:"system_events"`
	TuningFrequency float64 `yaml:"tuning_frequency"` // Hz; 440 disables
	ActiveChain     int     `yaml:"active_chain"`

	Filter []ChannelRemap `yaml:"filter"`
	Ignore []FilterIgnore `yaml:"ignore"`
	Swap   []ChannelRemap `yaml:"swap"`

	Inputs  []InputConfig  `yaml:"inputs"`
	Outputs []OutputConfig `yaml:"outputs"`
}

var classNames = map[string]core.Class{
	"note_off":       core.ClassNoteOff,
	"note_on":        core.ClassNoteOn,
	"key_pressure":   core.ClassKeyPressure,
	"control_change": core.ClassControlChange,
	"program_change": core.ClassProgramChange,
	"channel_press":  core.ClassChannelPress,
	"pitch_bend":     core.ClassPitchBend,
}

// Load reads and parses a YAML configuration file from path.
func Load(path string) (*RouterConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg := &RouterConfig{MasterChannel: -1, SystemEvents: true, TuningFrequency: 440, ActiveChain: -1}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

func parseClass(name string) (core.Class, error) {
	c, ok := classNames[name]
	if !ok {
		return 0, fmt.Errorf("config: unknown class %q", name)
	}
	return c, nil
}

// Apply pushes every setting in cfg onto an already-constructed router,
// in the order: global router settings, filter table, swap table, per-
// input flags, per-output policy flags and channel translation. A
// malformed entry is reported with its position but does not stop
// applying the rest of the document — matching this system's "never
// fatal, log and continue" error-handling model (spec.md §7).
func (cfg *RouterConfig) Apply(r *core.Router) []error {
	var errs []error
	note := func(err error) { errs = append(errs, err) }

	if !r.SetMasterChannel(cfg.MasterChannel) {
		note(fmt.Errorf("config: invalid master_channel %d", cfg.MasterChannel))
	}
	r.SetSystemEventsEnabled(cfg.SystemEvents)
	if !r.SetTuningFrequency(cfg.TuningFrequency) {
		note(fmt.Errorf("config: invalid tuning_frequency %v", cfg.TuningFrequency))
	}
	if cfg.ActiveChain >= 0 && !r.SetActiveChain(cfg.ActiveChain) {
		note(fmt.Errorf("config: invalid active_chain %d", cfg.ActiveChain))
	}

	for i, f := range cfg.Filter {
		fromClass, err := parseClass(f.FromClass)
		if err != nil {
			note(fmt.Errorf("config: filter[%d]: %w", i, err))
			continue
		}
		toClass, err := parseClass(f.ToClass)
		if err != nil {
			note(fmt.Errorf("config: filter[%d]: %w", i, err))
			continue
		}
		from := core.From{Class: fromClass, Channel: f.FromChannel, Number: f.FromNumber}
		to := core.From{Class: toClass, Channel: f.ToChannel, Number: f.ToNumber}
		if !r.Filter().Set(from, to) {
			note(fmt.Errorf("config: filter[%d]: invalid entry", i))
		}
	}
	for i, ig := range cfg.Ignore {
		class, err := parseClass(ig.Class)
		if err != nil {
			note(fmt.Errorf("config: ignore[%d]: %w", i, err))
			continue
		}
		if !r.Filter().Ignore(core.From{Class: class, Channel: ig.Channel, Number: ig.Number}) {
			note(fmt.Errorf("config: ignore[%d]: invalid entry", i))
		}
	}
	for i, s := range cfg.Swap {
		if !r.Swap().Set(s.FromChannel, s.FromNumber, s.ToChannel, s.ToNumber) {
			note(fmt.Errorf("config: swap[%d]: invalid entry", i))
		}
	}

	for _, ic := range cfg.Inputs {
		in := r.Input(ic.Index)
		if in == nil {
			note(fmt.Errorf("config: inputs: no input at index %d", ic.Index))
			continue
		}
		var flags core.InputFlags
		if ic.UI {
			flags |= core.FlagUI
		}
		if ic.Filter {
			flags |= core.FlagFilter
		}
		if ic.ActiveChain {
			flags |= core.FlagActiveChain
		}
		if ic.CCAutoMode {
			flags |= core.FlagCCAutoMode
		}
		if ic.CCSwap {
			flags |= core.FlagCCSwap
		}
		in.SetFlags(flags)

		if ic.RoutedToAllChains && !r.SetRoutedToAllChains(ic.Index, true) {
			note(fmt.Errorf("config: inputs[%d]: routed_to_all_chains failed", ic.Index))
		}
	}

	for _, oc := range cfg.Outputs {
		out := r.Output(oc.Index)
		if out == nil {
			note(fmt.Errorf("config: outputs: no output at index %d", oc.Index))
			continue
		}
		for _, flag := range []struct {
			enabled bool
			bit     core.OutputFlags
		}{
			{oc.Tuning, core.FlagTuning},
			{oc.NoteRange, core.FlagNoteRange},
			{oc.ChanTransfilter, core.FlagChanTransfilter},
			{oc.DropProgramChange, core.FlagDropProgramChange},
			{oc.DropControlChange, core.FlagDropControlChange},
			{oc.DropSystem, core.FlagDropSystem},
			{oc.DropSysEx, core.FlagDropSysEx},
			{oc.DropNotes, core.FlagDropNotes},
			{oc.DirectOut, core.FlagDirectOut},
		} {
			out.SetFlag(flag.bit, flag.enabled)
		}
		if !out.SetMIDIChannel(oc.MIDIChannel) {
			note(fmt.Errorf("config: outputs[%d]: invalid midi_channel %d", oc.Index, oc.MIDIChannel))
		}
		if !out.SetNoteRange(oc.NoteLow, oc.NoteHigh, oc.Octave, oc.Semitone) {
			note(fmt.Errorf("config: outputs[%d]: invalid note range", oc.Index))
		}
		for _, p := range oc.ChannelTranslation {
			if !out.SetChannelTranslation(p.From, p.To) {
				note(fmt.Errorf("config: outputs[%d]: invalid channel_translation %+v", oc.Index, p))
			}
		}
	}

	return errs
}
