package rotary

import "github.com/embedwave/midicore/core"

// ActionKind is the MIDI event family a switch can be bound to, per
// spec.md §4.5 "MIDI action".
type ActionKind uint8

const (
	ActionControlChange ActionKind = iota
	ActionNote
	ActionProgramChange
	ActionSystemRealTime
)

// Action binds a switch to a MIDI event pair emitted on press/release. A
// latched control-change toggles between 0 and 127 on successive presses
// instead of emitting the configured Value, tracking the last value it
// itself emitted (spec.md: "based on the last value observed for that
// (channel, cc) on the internal input" — the binding is the only writer
// of that value, so it is authoritative for its own toggle state).
type Action struct {
	Kind    ActionKind
	Channel uint8
	Number  uint8 // controller, note, or program number
	Value   uint8 // velocity / CC value; ignored for program-change
	Latched bool

	lastLatch uint8
}

// Fire emits the press or release half of the bound action into dst (the
// synthetic-internal input's EventQueue). A full ring drops the event and
// Fire returns the queue's ErrQueueFull to the caller; nothing is logged.
func (a *Action) Fire(dst *core.EventQueue, pressed bool) error {
	switch a.Kind {
	case ActionControlChange:
		value := a.Value
		if a.Latched {
			if pressed {
				if a.lastLatch == 0 {
					value = 127
				} else {
					value = 0
				}
				a.lastLatch = value
			} else {
				return nil // latched controls emit only on press
			}
		} else if !pressed {
			value = 0
		}
		b0 := (byte(core.ClassControlChange) << 4) | (a.Channel & 0x0F)
		return dst.Write([]byte{b0, a.Number, value})

	case ActionNote:
		class := core.ClassNoteOn
		velocity := a.Value
		if !pressed {
			class = core.ClassNoteOff
			velocity = 0
		}
		b0 := (byte(class) << 4) | (a.Channel & 0x0F)
		return dst.Write([]byte{b0, a.Number, velocity})

	case ActionProgramChange:
		if !pressed {
			return nil // no complementary release event
		}
		b0 := (byte(core.ClassProgramChange) << 4) | (a.Channel & 0x0F)
		return dst.Write([]byte{b0, a.Number})

	case ActionSystemRealTime:
		if !pressed {
			return nil
		}
		return dst.Write([]byte{a.Number})

	default:
		return nil
	}
}
