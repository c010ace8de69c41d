package rotary

// PinAction tags what a single expander pin is wired to, per spec.md
// §4.6's pin-action table.
type PinAction uint8

const (
	PinNone PinAction = iota
	PinSwitch
	PinEncoder
)

// PinBinding is one entry of the expander's pin-action table: either
// unused, bound to a Switch index, or bound to an Encoder index (in
// which case OtherPin names the encoder's second pin within the same
// bank read).
type PinBinding struct {
	Action   PinAction
	Index    int
	OtherPin int // only meaningful when Action == PinEncoder
}

// Expander implements spec.md §4.6: one interrupt-driven 8-pin bank read
// is XORed against the previous bank value to find changed pins; each
// changed bit is dispatched through the pin-action table into the
// Debouncer or Decoder set it owns. Encoder pins are consumed in pairs —
// processing one clears its partner from the changed mask so a single
// quadrature transition is never decoded twice.
type Expander struct {
	Bindings [8]PinBinding

	decoders   map[int]*Decoder
	debouncer  *Debouncer
	lastBank   uint8
	haveBank   bool
}

// NewExpander builds a demultiplexer over the given decoders (keyed by
// encoder index) and debouncer (indexed by switch index).
func NewExpander(decoders map[int]*Decoder, debouncer *Debouncer) *Expander {
	return &Expander{decoders: decoders, debouncer: debouncer}
}

// Bind installs a pin-action table entry for pin (0..7).
func (e *Expander) Bind(pin int, binding PinBinding) {
	if pin < 0 || pin > 7 {
		return
	}
	e.Bindings[pin] = binding
}

// Process handles one bank read: 8 pin levels packed LSB-first into bank,
// at monotonic time nowMS (nowUS for the switch debounce path). On the
// first call there is no baseline to diff against, so the whole bank is
// adopted without dispatching any edges.
func (e *Expander) Process(bank uint8, nowMS uint32, nowUS uint32) {
	if !e.haveBank {
		e.lastBank = bank
		e.haveBank = true
		return
	}
	changed := bank ^ e.lastBank
	e.lastBank = bank

	for pin := 0; pin < 8 && changed != 0; pin++ {
		mask := uint8(1) << uint(pin)
		if changed&mask == 0 {
			continue
		}
		changed &^= mask

		b := e.Bindings[pin]
		switch b.Action {
		case PinSwitch:
			if sw := e.debouncer.Switch(b.Index); sw != nil {
				level := bank&mask != 0
				sw.Update(level, nowUS)
			}
		case PinEncoder:
			other := uint8(1) << uint(b.OtherPin)
			changed &^= other // the pair is consumed together

			// A/B must be assigned by a fixed pin-number convention
			// (lower pin is always A), not by which of the pair
			// happened to change first, or the decoded direction
			// would flip depending on which bit toggled.
			aPin, bPin := pin, b.OtherPin
			if aPin > bPin {
				aPin, bPin = bPin, aPin
			}
			a := bank&(1<<uint(aPin)) != 0
			bb := bank&(1<<uint(bPin)) != 0
			if dec := e.decoders[b.Index]; dec != nil {
				dec.Update(a, bb, nowMS)
			}
		}
	}
}
