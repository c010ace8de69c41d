package rotary

import "testing"

func TestSwitchPressAndRelease(t *testing.T) {
	s := NewSwitch()
	s.Enabled = true

	s.Update(true, 0)
	if !s.WasPressed() {
		t.Fatal("want press reported")
	}
	if s.WasPressed() {
		t.Fatal("want press flag cleared after first read")
	}

	s.Update(false, 5000)
	if d := s.DwellTime(1_000_000, 5001); d != 5000 {
		t.Fatalf("want release duration 5000, got %d", d)
	}
	if d := s.DwellTime(1_000_000, 5002); d != dwellNone {
		t.Fatalf("want dwellNone after consuming release, got %d", d)
	}
}

// TestSwitchDisabledIgnoresEdges confirms a disabled switch never reports
// anything, matching spec.md's per-switch enable flag.
func TestSwitchDisabledIgnoresEdges(t *testing.T) {
	s := NewSwitch()
	s.Update(true, 0)
	if s.WasPressed() {
		t.Fatal("disabled switch must not report a press")
	}
}

// TestSwitchDebounceWindow is invariant 7: edges closer than 1000us apart
// collapse into a single accepted transition.
func TestSwitchDebounceWindow(t *testing.T) {
	s := NewSwitch()
	s.Enabled = true

	s.Update(true, 0)
	if !s.WasPressed() {
		t.Fatal("want initial press")
	}

	// Bounce back to released and to pressed again, both within the
	// debounce window: neither edge should be accepted.
	s.Update(false, 200)
	s.Update(true, 900)
	if s.WasPressed() {
		t.Fatal("bounced edges within debounce window must not register")
	}

	// An edge at or past the window is accepted.
	s.Update(false, 1001)
	if d := s.DwellTime(1_000_000, 1002); d != 1001 {
		t.Fatalf("want release duration 1001 (press at 0, release at 1001), got %d", d)
	}
}

func TestSwitchDwellTimeLongPress(t *testing.T) {
	s := NewSwitch()
	s.Enabled = true
	s.Update(true, 0)
	s.WasPressed()

	if d := s.DwellTime(500, 100); d != dwellNone {
		t.Fatalf("short hold must report dwellNone, got %d", d)
	}
	if d := s.DwellTime(500, 600); d != 600 {
		t.Fatalf("want long-press dwell of 600, got %d", d)
	}
	// Once reported, the same press must not be reported again.
	if d := s.DwellTime(500, 700); d != dwellNone {
		t.Fatalf("long press must only report once, got %d", d)
	}
}

func TestDebouncerNextPending(t *testing.T) {
	d := NewDebouncer(4)
	for _, sw := range []int{0, 1, 2, 3} {
		d.Switch(sw).Enabled = true
	}

	if d.NextPending(0) != -1 {
		t.Fatal("want no pending switches initially")
	}

	d.Switch(2).Update(true, 1)
	if got := d.NextPending(0); got != 2 {
		t.Fatalf("want pending index 2, got %d", got)
	}
	if got := d.NextPending(3); got != -1 {
		t.Fatalf("want no pending at or past index 3, got %d", got)
	}
}
