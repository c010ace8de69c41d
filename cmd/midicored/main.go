// Command midicored wires up a core.Router from a YAML configuration
// file and drives it from a PortAudio period clock, for the default
// stack this module ships. It is a demonstration host, not the only
// possible one: anything satisfying core.InputBufferSource/
// core.OutputBufferSink can stand in for the device-input/chain-output
// plumbing built here. Grounded on the teacher's cmd/kissutil/main.go and
// cmd/direwolf/main.go: pflag for flags, charmbracelet/log for startup
// diagnostics, a single blocking run loop.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/embedwave/midicore/config"
	"github.com/embedwave/midicore/core"
	"github.com/embedwave/midicore/hostio"
)

const (
	numDeviceInputs = 4
	numChainOutputs = 16
	numDeviceEchoes = 4

	uiRingCapacity     = 256
	directEventQueueSz = 256
)

func main() {
	configPath := pflag.StringP("config", "c", "/etc/midicored.yaml", "Router configuration file")
	logLevel := pflag.StringP("log-level", "l", "info", "Log level: debug, info, warn, error")
	sampleRate := pflag.Float64P("sample-rate", "r", 48000, "Audio clock sample rate, Hz")
	framesPerPeriod := pflag.IntP("frames-per-period", "f", 256, "Audio clock period size, frames")
	help := pflag.BoolP("help", "h", false, "Display help text")
	pflag.Parse()

	if *help {
		pflag.Usage()
		os.Exit(0)
	}

	if lvl, err := parseLogLevel(*logLevel); err != nil {
		core.Logger().Warn("invalid log level, keeping default", "value", *logLevel, "error", err)
	} else {
		core.Logger().SetLevel(lvl)
	}

	router := buildRouter()

	cfg, err := config.Load(*configPath)
	if err != nil {
		core.Logger().Error("failed to load configuration, running with defaults", "path", *configPath, "error", err)
	} else {
		for _, applyErr := range cfg.Apply(router) {
			core.Logger().Warn("configuration entry rejected", "error", applyErr)
		}
	}

	clock, err := hostio.NewPortAudioClock(*sampleRate, *framesPerPeriod)
	if err != nil {
		core.Logger().Error("failed to start audio clock", "error", err)
		os.Exit(1)
	}

	if err := clock.Start(func(nframes int) {
		router.Process(nframes, nil, nil)
	}); err != nil {
		core.Logger().Error("failed to start period callback", "error", err)
		os.Exit(1)
	}
	core.Logger().Info("midicored running", "sample_rate", *sampleRate, "frames_per_period", *framesPerPeriod)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	if err := clock.Stop(); err != nil {
		core.Logger().Warn("error stopping audio clock", "error", err)
	}
}

// buildRouter constructs the compile-time port topology named in
// spec.md §6: device inputs plus sequencer/step-sequencer/control-
// feedback/synthetic inputs, and chain outputs plus mod/step/control-
// feedback/device-echo outputs.
func buildRouter() *core.Router {
	var inputs []*core.InputPort
	for i := 0; i < numDeviceInputs; i++ {
		inputs = append(inputs, core.NewDeviceInput(len(inputs), core.InputDevice,
			core.FlagUI|core.FlagFilter|core.FlagActiveChain|core.FlagCCAutoMode))
	}
	inputs = append(inputs, core.NewDeviceInput(len(inputs), core.InputSequencer, core.FlagUI))
	inputs = append(inputs, core.NewDeviceInput(len(inputs), core.InputStepSequencer, core.FlagUI|core.FlagFilter))
	controlFeedbackIndex := len(inputs)
	inputs = append(inputs, core.NewDeviceInput(len(inputs), core.InputControlFeedback, core.FlagUI))
	inputs = append(inputs, core.NewDirectInput(len(inputs), core.InputSyntheticInternal, 0, core.NewEventQueue(directEventQueueSz)))
	inputs = append(inputs, core.NewDirectInput(len(inputs), core.InputSyntheticUI, 0, core.NewEventQueue(directEventQueueSz)))

	numInputs := len(inputs)

	var outputs []*core.OutputPort
	for i := 0; i < numChainOutputs; i++ {
		outputs = append(outputs, core.NewOutputPort(len(outputs), core.OutputChain,
			core.FlagTuning|core.FlagNoteRange|core.FlagDropControlChange|core.FlagDropSystem|core.FlagChanTransfilter,
			numInputs))
	}
	outputs = append(outputs, core.NewOutputPort(len(outputs), core.OutputMod, 0, numInputs))
	outputs = append(outputs, core.NewOutputPort(len(outputs), core.OutputStep, core.FlagDropSysEx, numInputs))
	outputs = append(outputs, core.NewDirectOutput(len(outputs), core.OutputControlFeedback, core.FlagDirectOut,
		numInputs, core.NewEventQueue(directEventQueueSz)))
	for i := 0; i < numDeviceEchoes; i++ {
		outputs = append(outputs, core.NewDirectOutput(len(outputs), core.OutputDeviceEcho, core.FlagDirectOut,
			numInputs, core.NewEventQueue(directEventQueueSz)))
	}

	return core.NewRouter(inputs, outputs, controlFeedbackIndex, uiRingCapacity)
}

func parseLogLevel(name string) (charmlog.Level, error) {
	switch name {
	case "debug":
		return charmlog.DebugLevel, nil
	case "info":
		return charmlog.InfoLevel, nil
	case "warn":
		return charmlog.WarnLevel, nil
	case "error":
		return charmlog.ErrorLevel, nil
	default:
		return charmlog.InfoLevel, fmt.Errorf("unknown level %q", name)
	}
}
