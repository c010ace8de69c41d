package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestFilterTableDefaultIsPass(t *testing.T) {
	ft := NewFilterTable()
	act := ft.Get(From{Class: ClassControlChange, Channel: 0, Number: 7})
	assert.Equal(t, ActionPass, act.Kind)
}

func TestFilterTableSetAndGet(t *testing.T) {
	ft := NewFilterTable()
	from := From{Class: ClassControlChange, Channel: 0, Number: 7}
	to := From{Class: ClassControlChange, Channel: 2, Number: 11}
	require.True(t, ft.Set(from, to))

	act := ft.Get(from)
	require.Equal(t, ActionRemap, act.Kind)
	assert.Equal(t, ClassControlChange, act.Class)
	assert.Equal(t, uint8(2), act.Channel)
	assert.Equal(t, uint8(11), act.Number)
}

func TestFilterTableIgnoreAndClear(t *testing.T) {
	ft := NewFilterTable()
	from := From{Class: ClassNoteOn, Channel: 3, Number: 60}
	require.True(t, ft.Ignore(from))
	assert.Equal(t, ActionIgnore, ft.Get(from).Kind)

	require.True(t, ft.Clear(from))
	assert.Equal(t, ActionPass, ft.Get(from).Kind)
}

func TestFilterTablePitchBendAndChannelPressureCollapseNumberToZero(t *testing.T) {
	ft := NewFilterTable()
	from := From{Class: ClassPitchBend, Channel: 0, Number: 99}
	to := From{Class: ClassPitchBend, Channel: 1}
	require.True(t, ft.Set(from, to))

	// Any number addresses the same (class, channel) cell for pitch-bend.
	assert.Equal(t, ActionRemap, ft.Get(From{Class: ClassPitchBend, Channel: 0, Number: 0}).Kind)

	// The same holds for channel-pressure.
	require.True(t, ft.Set(From{Class: ClassChannelPress, Channel: 0, Number: 99}, From{Class: ClassChannelPress, Channel: 1}))
	assert.Equal(t, ActionRemap, ft.Get(From{Class: ClassChannelPress, Channel: 0, Number: 0}).Kind)
}

func TestApplyRemapProgramChangeTruncatesToTwoBytes(t *testing.T) {
	buf := []byte{0xC0, 5, 0}
	n := applyRemap(buf, 2, Action{Kind: ActionRemap, Class: ClassProgramChange, Channel: 3, Number: 9})
	assert.Equal(t, 2, n)
	assert.Equal(t, byte(0xC3), buf[0])
	assert.Equal(t, byte(9), buf[1])
}

func TestApplyRemapPitchBendZeroesFirstDataByte(t *testing.T) {
	buf := []byte{0xE0, 0, 0x50}
	n := applyRemap(buf, 3, Action{Kind: ActionRemap, Class: ClassPitchBend, Channel: 4})
	assert.Equal(t, 3, n)
	assert.Equal(t, byte(0xE4), buf[0])
	assert.Equal(t, byte(0), buf[1])
	assert.Equal(t, byte(0x50), buf[2])
}

func TestApplyRemapOverwritesBothDataBytes(t *testing.T) {
	buf := []byte{0xB0, 7, 42}
	n := applyRemap(buf, 3, Action{Kind: ActionRemap, Class: ClassControlChange, Channel: 2, Number: 11})
	assert.Equal(t, 3, n)
	assert.Equal(t, byte(0xB2), buf[0])
	assert.Equal(t, byte(11), buf[1])
	assert.Equal(t, byte(42), buf[2])
}

// TestFilterTableIdempotence is invariant 4 from spec.md §8:
// reset_all() -> arbitrary set/ignore/clear -> reset_all() restores the
// table bit-exactly.
func TestFilterTableIdempotence(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ft := NewFilterTable()
		var blank FilterTable
		assert.Equal(t, blank, *ft)

		ops := rapid.SliceOfN(rapid.IntRange(0, 2), 0, 20).Draw(t, "ops")
		for _, op := range ops {
			from := From{
				Class:   Class(rapid.IntRange(int(ClassNoteOff), int(ClassPitchBend)).Draw(t, "class")),
				Channel: uint8(rapid.IntRange(0, 15).Draw(t, "channel")),
				Number:  uint8(rapid.IntRange(0, 127).Draw(t, "number")),
			}
			switch op {
			case 0:
				to := From{
					Class:   Class(rapid.IntRange(int(ClassNoteOff), int(ClassPitchBend)).Draw(t, "toClass")),
					Channel: uint8(rapid.IntRange(0, 15).Draw(t, "toChannel")),
					Number:  uint8(rapid.IntRange(0, 127).Draw(t, "toNumber")),
				}
				ft.Set(from, to)
			case 1:
				ft.Ignore(from)
			case 2:
				ft.Clear(from)
			}
		}

		ft.ResetAll()
		assert.Equal(t, blank, *ft)
	})
}
