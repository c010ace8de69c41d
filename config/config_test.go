package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/embedwave/midicore/core"
)

const sampleYAML = `
master_channel: 3
system_events: true
tuning_frequency: 440
active_chain: 1

filter:
  - from_class: control_change
    from_channel: 0
    from_number: 7
    to_class: control_change
    to_channel: 2
    to_number: 11

ignore:
  - class: note_on
    channel: 5
    number: 60

inputs:
  - index: 0
    ui: true
    filter: true
    routed_to_all_chains: true

outputs:
  - index: 0
    midi_channel: -1
    note_low: 0
    note_high: 127
  - index: 1
    midi_channel: 4
    note_low: 60
    note_high: 72
    chan_transfilter: true
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "midicored.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadParsesDocument(t *testing.T) {
	path := writeConfig(t, sampleYAML)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.MasterChannel)
	assert.Equal(t, 1, cfg.ActiveChain)
	require.Len(t, cfg.Filter, 1)
	assert.Equal(t, "control_change", cfg.Filter[0].FromClass)
	require.Len(t, cfg.Ignore, 1)
	require.Len(t, cfg.Inputs, 1)
	require.Len(t, cfg.Outputs, 2)
}

func TestLoadMissingFileReturnsError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	assert.Error(t, err)
}

type fakeInputSource struct{ events [][]byte }

func (f *fakeInputSource) Len() int { return len(f.events) }
func (f *fakeInputSource) Event(i int) (uint32, []byte) {
	return 0, f.events[i]
}

type fakeOutputSink struct{ written [][]byte }

func (f *fakeOutputSink) Write(_ uint32, data []byte) error {
	f.written = append(f.written, append([]byte(nil), data...))
	return nil
}

func newApplyRouter() *core.Router {
	in0 := core.NewDeviceInput(0, core.InputDevice, 0)
	out0 := core.NewOutputPort(0, core.OutputChain, 0, 1)
	out1 := core.NewOutputPort(1, core.OutputChain, 0, 1)
	return core.NewRouter([]*core.InputPort{in0}, []*core.OutputPort{out0, out1}, 0, 16)
}

func TestApplyPushesEveryConfiguredSetting(t *testing.T) {
	path := writeConfig(t, sampleYAML)
	cfg, err := Load(path)
	require.NoError(t, err)

	r := newApplyRouter()
	errs := cfg.Apply(r)
	assert.Empty(t, errs)

	assert.Equal(t, 3, r.MasterChannel())
	assert.Equal(t, 1, r.ActiveChain())

	act := r.Filter().Get(core.From{Class: core.ClassControlChange, Channel: 0, Number: 7})
	require.Equal(t, core.ActionRemap, act.Kind)
	assert.Equal(t, uint8(2), act.Channel)
	assert.Equal(t, uint8(11), act.Number)

	ignored := r.Filter().Get(core.From{Class: core.ClassNoteOn, Channel: 5, Number: 60})
	assert.Equal(t, core.ActionIgnore, ignored.Kind)

	in0 := r.Input(0)
	require.NotNil(t, in0)
	assert.True(t, in0.Flags&core.FlagUI != 0)
	assert.True(t, in0.Flags&core.FlagFilter != 0)

	// routed_to_all_chains: true on input 0 must connect it to both
	// registered chain outputs, so an event from input 0 reaches both.
	out0 := r.Output(0)
	out1 := r.Output(1)
	out0.SetConnections(1)
	out1.SetConnections(1)

	fin := &fakeInputSource{events: [][]byte{{0x90, 64, 100}}}
	fout0 := &fakeOutputSink{}
	fout1 := &fakeOutputSink{}
	r.Process(8, []core.InputBufferSource{fin}, []core.OutputBufferSink{fout0, fout1})

	assert.NotEmpty(t, fout0.written)
	assert.NotEmpty(t, fout1.written)

	require.NotNil(t, out1)
	assert.True(t, out1.Flags&core.FlagChanTransfilter != 0)
}

func TestApplyReportsUnknownClassWithoutStopping(t *testing.T) {
	path := writeConfig(t, `
master_channel: -1
ignore:
  - class: not_a_real_class
    channel: 0
    number: 0
outputs:
  - index: 0
    midi_channel: -1
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	r := newApplyRouter()
	errs := cfg.Apply(r)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "unknown class")

	// The rest of the document (the output entry) must still be applied.
	out0 := r.Output(0)
	require.NotNil(t, out0)
}

func TestApplyReportsInvalidIndexWithoutStopping(t *testing.T) {
	path := writeConfig(t, `
master_channel: -1
outputs:
  - index: 99
    midi_channel: 0
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	r := newApplyRouter()
	errs := cfg.Apply(r)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "no output at index 99")
}
