// Package rotary implements the front-panel input chain described in
// spec.md §4.4-§4.6: quadrature rotary-encoder decoding, switch
// debouncing, and the port-expander demultiplexer that feeds both from a
// shared interrupt. None of these run on the router's audio thread; they
// are producer-side workers that inject events through an
// core.EventQueue, matching this system's zyncoder worker-thread split.
package rotary

// StepMode selects whether a Decoder applies velocity-sensitive
// acceleration to its reported deltas.
type StepMode uint8

const (
	Accelerated StepMode = iota
	Fixed
)

// validTransition is the set of 4-bit short-history values that
// correspond to a legal single-step Gray-code transition of a 2-bit
// quadrature signal (spec.md §4.4), taken verbatim from
// zyncoder.c's valid_quadrant_states lookup table (indices 1, 2, 4, 7, 8,
// 11, 13, 14 hold a 1; every other index, including 0 and 9, holds a 0).
var validTransition = map[uint8]bool{
	1: true, 2: true, 4: true, 7: true,
	8: true, 11: true, 13: true, 14: true,
}

const (
	detentCW  = 0xD4
	detentCCW = 0xE8
)

// DecoderCallback receives a decoded detent tick: the encoder's index and
// the signed delta (already accelerated).
type DecoderCallback func(index int, delta int)

// Decoder is the per-encoder state machine of spec.md §4.4: a 4-bit short
// history of the last two (A,B) readings, an 8-bit long history of the
// last two valid transitions (the nibble shift naturally truncates older
// ones on overflow, as in zyncoder.c's uint8_t long_history), the
// last-tick timestamp, an accumulated delta and a step mode.
type Decoder struct {
	Index int
	Mode  StepMode

	shortHistory uint8
	longHistory  uint8
	lastTickMS   uint32
	haveLastTick bool
	accum        int

	onTick DecoderCallback
}

// NewDecoder builds a decoder for the given encoder index in the given
// step mode.
func NewDecoder(index int, mode StepMode, onTick DecoderCallback) *Decoder {
	return &Decoder{Index: index, Mode: mode, onTick: onTick}
}

// SetMode changes whether acceleration is applied to future ticks.
func (d *Decoder) SetMode(mode StepMode) { d.Mode = mode }

// Update feeds a new (A, B) pin reading and the monotonic time (in
// milliseconds) it was taken at. It extends the short history, checks for
// a valid Gray-code transition, updates the long history, and on a
// completed detent invokes the registered callback with the accelerated
// delta before resetting the accumulator.
func (d *Decoder) Update(a, b bool, nowMS uint32) {
	bit0 := uint8(0)
	if !a {
		bit0 = 1
	}
	bit1 := uint8(0)
	if !b {
		bit1 = 1
	}
	next := ((d.shortHistory << 2) | (bit1 << 1) | bit0) & 0x0F
	d.shortHistory = next

	if !validTransition[next] {
		return
	}
	d.longHistory = (d.longHistory << 4) | next

	var delta int
	switch d.longHistory {
	case detentCW:
		delta = 1
	case detentCCW:
		delta = -1
	default:
		return
	}

	if d.Mode == Accelerated && d.haveLastTick {
		dt := int32(nowMS - d.lastTickMS)
		if dt >= 0 && dt < 40 {
			delta *= int((40-dt)/10 + 1)
		}
	}
	d.lastTickMS = nowMS
	d.haveLastTick = true

	d.accum += delta
	if d.accum != 0 {
		if d.onTick != nil {
			d.onTick(d.Index, d.accum)
		}
		d.accum = 0
	}
}
