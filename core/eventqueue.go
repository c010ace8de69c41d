package core

import (
	"errors"
	"sync/atomic"

	"golang.org/x/sys/unix"
)

// ErrQueueFull is returned by EventQueue.Write when there is not enough
// room for the event; the caller drops the event (spec.md §7 "Capacity").
var ErrQueueFull = errors.New("eventqueue: full")

// EventQueue is a single-producer/single-consumer power-of-two byte ring
// carrying length-framed MIDI events, per spec.md §4.1. Reads and writes
// use only atomic cursor arithmetic — no channel, no mutex — so neither
// side ever blocks.
type EventQueue struct {
	buf     []byte
	mask    uint32
	head    atomic.Uint32 // next byte the writer will write
	tail    atomic.Uint32 // next byte the reader will read
	locked  bool
}

// NewEventQueue allocates a ring of the given capacity, rounded up to the
// next power of two, and attempts to mlock its backing array. A failed
// mlock is logged and otherwise non-fatal — the ring still functions,
// just without the paging guarantee.
func NewEventQueue(capacity int) *EventQueue {
	size := nextPow2(capacity)
	eq := &EventQueue{
		buf:  make([]byte, size),
		mask: uint32(size - 1),
	}
	if err := unix.Mlock(eq.buf); err != nil {
		Logger().Warn("eventqueue: mlock failed, ring remains pageable", "error", err)
	} else {
		eq.locked = true
	}
	return eq
}

func nextPow2(n int) int {
	if n < 1 {
		n = 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func (eq *EventQueue) writeSpace() uint32 {
	return uint32(len(eq.buf)) - (eq.head.Load() - eq.tail.Load())
}

func (eq *EventQueue) readSpace() uint32 {
	return eq.head.Load() - eq.tail.Load()
}

func (eq *EventQueue) writeBytes(off uint32, p []byte) {
	for i, b := range p {
		eq.buf[(off+uint32(i))&eq.mask] = b
	}
}

func (eq *EventQueue) readBytes(off uint32, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = eq.buf[(off+uint32(i))&eq.mask]
	}
	return out
}

// Write deposits a well-formed MIDI event (1-3 bytes, or a complete SysEx
// starting 0xF0 and ending 0xF7). It is all-or-nothing: on insufficient
// space it reports ErrQueueFull and writes nothing.
func (eq *EventQueue) Write(data []byte) error {
	if len(data) == 0 {
		return errors.New("eventqueue: empty event")
	}
	if eq.writeSpace() < uint32(len(data)) {
		return ErrQueueFull
	}
	head := eq.head.Load()
	eq.writeBytes(head, data)
	eq.head.Store(head + uint32(len(data)))
	return nil
}

// ReadEvent consumes the next framed event. The first byte determines how
// many bytes the message occupies (frameLength); if it is 0xF0 (SysEx
// start) it instead reads one byte at a time until 0xF7 is seen. An
// incomplete event left in the ring yields (0, nil, false) — "drained" —
// without consuming those bytes, so the next period's drain can try again
// once the rest arrives.
//
// Every event read from this ring is assigned time=0, so synthetic events
// always sort before host-buffer events in the router's merge (spec.md
// §4.1).
func (eq *EventQueue) ReadEvent() (time uint32, data []byte, ok bool) {
	avail := eq.readSpace()
	if avail < 1 {
		return 0, nil, false
	}
	tail := eq.tail.Load()
	b0 := eq.buf[tail&eq.mask]

	if b0 != byte(ClassSystemExclusive) {
		n := uint32(frameLength(b0))
		if avail < n {
			return 0, nil, false
		}
		ev := eq.readBytes(tail, int(n))
		eq.tail.Store(tail + n)
		return 0, ev, true
	}

	// SysEx: scan forward one byte at a time for 0xF7, without consuming
	// anything until we know the whole message is present.
	for n := uint32(1); n <= avail; n++ {
		b := eq.buf[(tail+n-1)&eq.mask]
		if b == byte(ClassEndSysEx) {
			ev := eq.readBytes(tail, int(n))
			eq.tail.Store(tail + n)
			return 0, ev, true
		}
	}
	return 0, nil, false
}

// Locked reports whether the ring's backing memory was successfully
// mlock'd.
func (eq *EventQueue) Locked() bool { return eq.locked }
