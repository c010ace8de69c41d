package rotary

import (
	"testing"

	"github.com/embedwave/midicore/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lastEvent(t *testing.T, eq *core.EventQueue) []byte {
	t.Helper()
	_, data, ok := eq.ReadEvent()
	require.True(t, ok)
	return data
}

func TestActionControlChangePressAndRelease(t *testing.T) {
	a := &Action{Kind: ActionControlChange, Channel: 2, Number: 7, Value: 100}
	eq := core.NewEventQueue(64)

	require.NoError(t, a.Fire(eq, true))
	assert.Equal(t, []byte{0xB2, 7, 100}, lastEvent(t, eq))

	require.NoError(t, a.Fire(eq, false))
	assert.Equal(t, []byte{0xB2, 7, 0}, lastEvent(t, eq))
}

func TestActionNotePressAndRelease(t *testing.T) {
	a := &Action{Kind: ActionNote, Channel: 0, Number: 60, Value: 90}
	eq := core.NewEventQueue(64)

	require.NoError(t, a.Fire(eq, true))
	assert.Equal(t, []byte{0x90, 60, 90}, lastEvent(t, eq))

	require.NoError(t, a.Fire(eq, false))
	assert.Equal(t, []byte{0x80, 60, 0}, lastEvent(t, eq))
}

func TestActionProgramChangeOnlyFiresOnPress(t *testing.T) {
	a := &Action{Kind: ActionProgramChange, Channel: 1, Number: 5}
	eq := core.NewEventQueue(64)

	require.NoError(t, a.Fire(eq, true))
	assert.Equal(t, []byte{0xC1, 5}, lastEvent(t, eq))

	require.NoError(t, a.Fire(eq, false))
	_, _, ok := eq.ReadEvent()
	assert.False(t, ok, "program change has no release event")
}

// TestActionLatchedControlTogglesOnSuccessivePresses exercises the
// latched-control toggle: each press flips between 127 and 0, and release
// emits nothing.
func TestActionLatchedControlTogglesOnSuccessivePresses(t *testing.T) {
	a := &Action{Kind: ActionControlChange, Channel: 0, Number: 64, Latched: true}
	eq := core.NewEventQueue(64)

	require.NoError(t, a.Fire(eq, true))
	assert.Equal(t, []byte{0xB0, 64, 127}, lastEvent(t, eq))

	require.NoError(t, a.Fire(eq, false))
	_, _, ok := eq.ReadEvent()
	assert.False(t, ok, "latched control must not emit on release")

	require.NoError(t, a.Fire(eq, true))
	assert.Equal(t, []byte{0xB0, 64, 0}, lastEvent(t, eq))

	require.NoError(t, a.Fire(eq, true))
	assert.Equal(t, []byte{0xB0, 64, 127}, lastEvent(t, eq))
}
