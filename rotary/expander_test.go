package rotary

import "testing"

func TestExpanderFirstReadAdoptsBaselineWithoutDispatch(t *testing.T) {
	deb := NewDebouncer(1)
	deb.Switch(0).Enabled = true
	e := NewExpander(nil, deb)
	e.Bind(0, PinBinding{Action: PinSwitch, Index: 0})

	e.Process(0x01, 0, 0)
	if deb.Switch(0).WasPressed() {
		t.Fatal("first bank read must not dispatch any edges")
	}
}

func TestExpanderDispatchesSwitchPin(t *testing.T) {
	deb := NewDebouncer(1)
	deb.Switch(0).Enabled = true
	e := NewExpander(nil, deb)
	e.Bind(0, PinBinding{Action: PinSwitch, Index: 0})

	e.Process(0x00, 0, 0) // baseline: pin 0 low
	e.Process(0x01, 1, 1000) // pin 0 rises

	if !deb.Switch(0).WasPressed() {
		t.Fatal("want pin 0 rising edge to register as a press")
	}
}

func TestExpanderEncoderPairConsumedTogether(t *testing.T) {
	var ticks []int
	decoders := map[int]*Decoder{
		0: NewDecoder(0, Fixed, func(index int, delta int) { ticks = append(ticks, delta) }),
	}
	e := NewExpander(decoders, NewDebouncer(0))
	e.Bind(0, PinBinding{Action: PinEncoder, Index: 0, OtherPin: 1})
	e.Bind(1, PinBinding{Action: PinEncoder, Index: 0, OtherPin: 0})

	// Baseline: both pins high (at rest).
	e.Process(0b11, 0, 0)
	// CW step 1: both pins low. Both bits 0 and 1 change in the same
	// bank read; processing pin 0 must also consume pin 1's bit so the
	// transition is decoded exactly once.
	e.Process(0b00, 1, 0)
	// CW step 2: pin 1 high, pin 0 low.
	e.Process(0b10, 2, 0)
	// CW step 3: both high again -> completes the detent.
	e.Process(0b11, 3, 0)

	if len(ticks) != 1 || ticks[0] != 1 {
		t.Fatalf("want single +1 tick from the paired encoder pins, got %v", ticks)
	}
}

func TestExpanderUnboundPinIsIgnored(t *testing.T) {
	e := NewExpander(nil, NewDebouncer(0))
	// No bindings installed at all; must not panic on a changed pin.
	e.Process(0x00, 0, 0)
	e.Process(0xFF, 1, 0)
}
