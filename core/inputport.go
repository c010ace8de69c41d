package core

import "math"

// InputCategory classifies where an input port's events originate.
type InputCategory uint8

const (
	InputDevice InputCategory = iota
	InputSequencer
	InputStepSequencer
	InputControlFeedback
	InputSyntheticInternal
	InputSyntheticUI
)

// InputFlags are the per-input behaviour switches named in spec.md §6.
type InputFlags uint16

const (
	FlagUI InputFlags = 1 << iota
	FlagFilter
	FlagActiveChain
	FlagCCAutoMode
	FlagCCSwap // additional filter-table-like swap layer, §9 Open Question
)

// ControlMode is the relative-CC auto-detector state machine's mode, per
// spec.md §4.3 step 7.
type ControlMode uint8

const (
	ControlAbsolute ControlMode = iota
	ControlRelativeTrial
	ControlRelativeConfirmed
)

// ccState is the per-(channel, controller) relative-CC bookkeeping cell.
type ccState struct {
	mode      ControlMode
	trial     int
	lastValue uint8
}

const drainedTime = uint32(math.MaxUint32)

// lookahead holds the one-event lookahead a router merge step consults.
type lookahead struct {
	time uint32
	data []byte
	n    int
}

func (la *lookahead) drained() bool { return la == nil || la.time == drainedTime }

// InputPort wraps either a host-provided MIDI input buffer or an owned
// direct-injection EventQueue, per spec.md §3 "Input port".
type InputPort struct {
	Index    int
	Category InputCategory
	Flags    InputFlags

	hostBuf InputBufferSource
	direct  *EventQueue

	cc [16][128]ccState

	cur  lookahead
	buf  [3]byte
	pos  int
	size int
}

// InputBufferSource is the minimal host-buffer contract the router needs
// to acquire one period's worth of events from a device input. A concrete
// implementation lives in package hostio.
type InputBufferSource interface {
	Len() int
	Event(i int) (time uint32, data []byte)
}

// NewDeviceInput builds an input port backed by a host buffer.
func NewDeviceInput(index int, category InputCategory, flags InputFlags) *InputPort {
	return &InputPort{Index: index, Category: category, Flags: flags}
}

// NewDirectInput builds a synthetic input port backed by an owned
// direct-injection ring (used for the synthetic-internal and
// synthetic-UI sources).
func NewDirectInput(index int, category InputCategory, flags InputFlags, eq *EventQueue) *InputPort {
	return &InputPort{Index: index, Category: category, Flags: flags, direct: eq}
}

// acquire resets the port's cursor for a new period and attaches the
// host buffer (if any), then populates the first lookahead event.
func (ip *InputPort) acquire(host InputBufferSource) {
	ip.hostBuf = host
	ip.pos = 0
	ip.populate()
}

// populate advances to the next event, or marks the lookahead drained.
func (ip *InputPort) populate() {
	if ip.direct != nil {
		t, data, ok := ip.direct.ReadEvent()
		if !ok {
			ip.cur = lookahead{time: drainedTime}
			return
		}
		ip.cur = lookahead{time: t, data: data, n: len(data)}
		return
	}
	if ip.hostBuf == nil || ip.pos >= ip.hostBuf.Len() {
		ip.cur = lookahead{time: drainedTime}
		return
	}
	t, data := ip.hostBuf.Event(ip.pos)
	ip.pos++
	ip.cur = lookahead{time: t, data: data, n: len(data)}
}

// controlCell returns the relative-CC state for (channel, controller).
func (ip *InputPort) controlCell(channel, number uint8) *ccState {
	return &ip.cc[channel&0x0F][number&0x7F]
}

// SetFlags replaces this input's behaviour flags (control-thread API).
func (ip *InputPort) SetFlags(flags InputFlags) { ip.Flags = flags }

// SetCCAutoMode toggles the relative-CC auto-detector for this input.
func (ip *InputPort) SetCCAutoMode(enabled bool) {
	if enabled {
		ip.Flags |= FlagCCAutoMode
	} else {
		ip.Flags &^= FlagCCAutoMode
	}
}
