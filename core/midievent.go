// Package core implements the MIDI router: the per-period event-merging,
// filtering, translation and fan-out engine described by the system this
// module carries forward, together with its lock-free direct-injection
// ring buffers.
package core

import (
	"fmt"

	"gitlab.com/gomidi/midi/v2"
)

// Class identifies a MIDI event's message type, taken from the high
// nibble of byte 0 for channel messages and from the whole of byte 0 for
// system messages.
type Class uint8

const (
	ClassNoteOff       Class = 0x8
	ClassNoteOn        Class = 0x9
	ClassKeyPressure   Class = 0xA
	ClassControlChange Class = 0xB
	ClassProgramChange Class = 0xC
	ClassChannelPress  Class = 0xD
	ClassPitchBend     Class = 0xE

	ClassSystemExclusive Class = 0xF0
	ClassEndSysEx        Class = 0xF7
	ClassActiveSense     Class = 0xFE
)

// classCount is the number of channel-message classes the filter table
// addresses (note-off .. pitch-bend, 0x8..0xE).
const classCount = 7

// filterIndex returns the filter-table row for a channel-message class,
// or -1 if c is not a 3-or-2-byte-addressable channel message.
func filterIndex(c Class) int {
	if c < ClassNoteOff || c > ClassPitchBend {
		return -1
	}
	return int(c - ClassNoteOff)
}

// IsChannelMessage reports whether c is addressed by a channel (i.e. its
// numeric value is below the system-message threshold).
func IsChannelMessage(c Class) bool {
	return c < ClassSystemExclusive
}

// EventClass extracts the class from the first byte of a MIDI message.
func EventClass(b0 byte) Class {
	if b0 < 0xF0 {
		return Class(b0 >> 4)
	}
	return Class(b0)
}

// EventChannel extracts the channel (0..15) from the first byte. Only
// valid when EventClass(b0) < ClassSystemExclusive.
func EventChannel(b0 byte) uint8 {
	return b0 & 0x0F
}

// Controller returns the "number" field used to address the filter table:
// the first data byte for 3-byte channel messages, and 0 for pitch-bend
// and channel-pressure (per spec.md §3: "for pitch-bend and
// channel-pressure the table entry at number=0 applies").
func Controller(class Class, data []byte) uint8 {
	switch class {
	case ClassPitchBend, ClassChannelPress:
		return 0
	default:
		if len(data) > 0 {
			return data[0]
		}
		return 0
	}
}

// PitchBendValue decodes the 14-bit LSB-first pitch-bend value from a
// 3-byte pitch-bend event's two data bytes.
func PitchBendValue(b1, b2 byte) int {
	return (int(b2) << 7) | int(b1)
}

// EncodePitchBend writes a 14-bit pitch-bend value into the two data
// bytes of a 3-byte pitch-bend event.
func EncodePitchBend(value int) (b1, b2 byte) {
	return byte(value & 0x7F), byte((value >> 7) & 0x7F)
}

// frameLength returns the total byte count (status + data) of the message
// starting with b0, for every message shape the event rings carry except
// SysEx (variable-length, framed by its own 0xF0..0xF7 scan). Program
// change and channel pressure carry one data byte; every other channel
// message carries two; system real-time and tune-request bytes stand
// alone; MTC quarter-frame and song-select carry one data byte; song
// position carries two.
func frameLength(b0 byte) int {
	switch {
	case b0 >= 0xF8, b0 == 0xF6:
		return 1
	case b0 == 0xF1, b0 == 0xF3:
		return 2
	case b0 == 0xF2:
		return 3
	case b0 < 0xF0:
		switch Class(b0 >> 4) {
		case ClassProgramChange, ClassChannelPress:
			return 2
		default:
			return 3
		}
	default:
		return 3
	}
}

// FormatEvent renders a raw MIDI byte sequence for diagnostics only. It is
// never consulted by routing logic; it exists so log lines are readable.
func FormatEvent(data []byte) string {
	if len(data) == 0 {
		return "<empty>"
	}
	msg := midi.Message(append([]byte(nil), data...))
	return msg.String()
}
