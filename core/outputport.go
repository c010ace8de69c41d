package core

import "sync/atomic"

// OutputCategory classifies what an output port feeds.
type OutputCategory uint8

const (
	OutputChain OutputCategory = iota
	OutputMod
	OutputStep
	OutputControlFeedback
	OutputDeviceEcho
)

// OutputFlags are the per-output policy switches named in spec.md §6.
type OutputFlags uint16

const (
	FlagTuning OutputFlags = 1 << iota
	FlagNoteRange
	FlagChanTransfilter
	FlagDropProgramChange
	FlagDropControlChange
	FlagDropSystem
	FlagDropSysEx
	FlagDropNotes
	FlagDirectOut
)

// channelMap is the immutable 16-entry channel-translation vector. -1
// means "drop" (None).
type channelMap [16]int8

// OutputBufferSink is the minimal host-buffer contract the router needs
// to deposit one period's events into a device output. A concrete
// implementation lives in package hostio.
type OutputBufferSink interface {
	Write(time uint32, data []byte) error
}

// OutputPort wraps either a host-provided MIDI output buffer or an owned
// direct-output EventQueue, per spec.md §3 "Output port".
type OutputPort struct {
	Index    int
	Category OutputCategory
	Flags    OutputFlags

	hostBuf OutputBufferSink
	direct  *EventQueue

	routingMask  []bool // indexed by input index
	chanMap      atomic.Pointer[channelMap]
	primaryChan  int32 // -1 == unset / multi-channel mode

	noteLow, noteHigh uint8
	transpose         int16

	lastPB     [16]int

	noteState [128]uint8

	connections atomic.Int32
}

// NewDirectOutput builds an output port backed by an owned direct-output
// EventQueue (FlagDirectOut should be set by the caller); the router
// writes into the queue and a later drainDirectOutputs call forwards its
// contents to the host buffer attach'd for this period.
func NewDirectOutput(index int, category OutputCategory, flags OutputFlags, numInputs int, eq *EventQueue) *OutputPort {
	op := NewOutputPort(index, category, flags, numInputs)
	op.direct = eq
	return op
}

// NewOutputPort builds an output port with an identity channel map, full
// note range, and zero connections (so it is skipped until the host
// reports a connection).
func NewOutputPort(index int, category OutputCategory, flags OutputFlags, numInputs int) *OutputPort {
	op := &OutputPort{
		Index:       index,
		Category:    category,
		Flags:       flags,
		routingMask: make([]bool, numInputs),
		primaryChan: -1,
		noteLow:     0,
		noteHigh:    127,
	}
	var m channelMap
	for i := range m {
		m[i] = int8(i) // identity by default
	}
	op.chanMap.Store(&m)
	for ch := range op.lastPB {
		op.lastPB[ch] = 0x2000
	}
	return op
}

func (op *OutputPort) attach(host OutputBufferSink) { op.hostBuf = host }

// Connections reports the last-known connection count (§3 invariant: an
// event is never written to an output whose connections==0).
func (op *OutputPort) Connections() int32 { return op.connections.Load() }

// SetConnections is called from the connection-change callback (§6).
func (op *OutputPort) SetConnections(n int32) { op.connections.Store(n) }

// routeFrom reports whether events from input idx are eligible for this
// output.
func (op *OutputPort) routeFrom(idx int) bool {
	if idx < 0 || idx >= len(op.routingMask) {
		return false
	}
	return op.routingMask[idx]
}

// SetRouteFrom toggles whether this output accepts events from input idx.
func (op *OutputPort) SetRouteFrom(idx int, enabled bool) bool {
	if idx < 0 || idx >= len(op.routingMask) {
		return false
	}
	op.routingMask[idx] = enabled
	return true
}

// SetMIDIChannel sets the primary channel used for active-chain
// translation (-1 disables translation / selects multi-channel mode).
// It also collapses the MULTI-mode channel-translation vector to send
// every source channel to primary, the common "single output channel"
// configuration; call SetChannelTranslation afterwards to customise
// individual source channels.
func (op *OutputPort) SetMIDIChannel(primary int) bool {
	if primary < -1 || primary > 15 {
		return false
	}
	op.primaryChan = int32(primary)
	if primary >= 0 {
		var m channelMap
		for i := range m {
			m[i] = int8(primary)
		}
		op.chanMap.Store(&m)
	}
	return true
}

// SetChannelTranslation maps channel `from` to channel `to`, or to "drop"
// when to is negative. Published atomically so the router never observes
// a half-written vector (spec.md §5).
func (op *OutputPort) SetChannelTranslation(from int, to int) bool {
	if from < 0 || from > 15 || to < -1 || to > 15 {
		return false
	}
	cur := *op.chanMap.Load()
	cur[from] = int8(to)
	op.chanMap.Store(&cur)
	return true
}

func (op *OutputPort) translate(channel uint8) (uint8, bool) {
	m := op.chanMap.Load()
	to := m[channel&0x0F]
	if to < 0 {
		return 0, false
	}
	return uint8(to), true
}

// SetNoteRange configures the note window and transpose (octave*12 +
// semitone), per spec.md §3/§6.
func (op *OutputPort) SetNoteRange(low, high uint8, octave, semitone int8) bool {
	if low > high || high > 127 {
		return false
	}
	op.noteLow = low
	op.noteHigh = high
	op.transpose = int16(octave)*12 + int16(semitone)
	return true
}

// SetFlag sets or clears a single policy flag.
func (op *OutputPort) SetFlag(flag OutputFlags, enabled bool) {
	if enabled {
		op.Flags |= flag
	} else {
		op.Flags &^= flag
	}
}

// NoteState reports the last-known on-velocity for note n (0 == off).
func (op *OutputPort) NoteState(note uint8) uint8 { return op.noteState[note&0x7F] }

// pushEvent deposits a routed event into this output's destination: its
// direct-injection ring when FlagDirectOut is set, otherwise the host
// buffer attached for the current period. A full ring or a host write
// error is logged and the event is dropped; it never blocks or panics.
func (op *OutputPort) pushEvent(time uint32, data []byte) {
	if op.Flags&FlagDirectOut != 0 {
		if op.direct == nil {
			return
		}
		if err := op.direct.Write(data); err != nil {
			Logger().Warn("outputport: direct queue full, dropping event", "output", op.Index, "error", err)
		}
		return
	}
	if op.hostBuf == nil {
		return
	}
	if err := op.hostBuf.Write(time, data); err != nil {
		Logger().Warn("outputport: host write failed, dropping event", "output", op.Index, "error", err)
	}
}
