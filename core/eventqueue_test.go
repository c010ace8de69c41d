package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventQueueWriteReadRoundTrip(t *testing.T) {
	eq := NewEventQueue(8)
	require.NoError(t, eq.Write([]byte{0x90, 60, 100}))

	_, data, ok := eq.ReadEvent()
	require.True(t, ok)
	assert.Equal(t, []byte{0x90, 60, 100}, data)

	_, _, ok = eq.ReadEvent()
	assert.False(t, ok)
}

func TestEventQueueAlwaysTimestampsZero(t *testing.T) {
	eq := NewEventQueue(8)
	require.NoError(t, eq.Write([]byte{0x90, 60, 100}))
	tm, _, ok := eq.ReadEvent()
	require.True(t, ok)
	assert.Equal(t, uint32(0), tm)
}

func TestEventQueueFullReturnsErrQueueFull(t *testing.T) {
	eq := NewEventQueue(4) // rounds up to 4 bytes
	err := eq.Write([]byte{0x90, 60, 100, 0, 0})
	assert.ErrorIs(t, err, ErrQueueFull)
}

func TestEventQueueIncompleteSysExDoesNotConsume(t *testing.T) {
	eq := NewEventQueue(16)
	require.NoError(t, eq.Write([]byte{0xF0, 0x01, 0x02}))

	_, _, ok := eq.ReadEvent()
	assert.False(t, ok, "sysex without trailing 0xF7 should read as drained")

	require.NoError(t, eq.Write([]byte{0xF7}))
	_, data, ok := eq.ReadEvent()
	require.True(t, ok)
	assert.Equal(t, []byte{0xF0, 0x01, 0x02, 0xF7}, data)
}
