package rotary

// debounceWindowUS is the minimum interval between accepted edges, per
// spec.md §4.5.
const debounceWindowUS = 1000

// dwellNone is the "no result" sentinel DwellTime returns.
const dwellNone = -1

// Switch is the per-switch debouncer of spec.md §4.5: it tracks a level,
// a press timestamp (0 when released) and a release-duration (0 when not
// reporting), and rejects any edge within 1000us of the last one.
type Switch struct {
	Enabled bool

	level      bool
	lastEdgeUS uint32
	haveEdge   bool

	pressUS   uint32
	pressing  bool
	justPress bool

	releaseDurUS uint32
	haveRelease  bool
}

// NewSwitch returns a disabled switch with level=false (released).
func NewSwitch() *Switch { return &Switch{} }

// Update reports a new raw level reading at nowUS. Edges closer than the
// debounce window to the last accepted edge are ignored entirely (level
// is not even updated), matching spec.md's "ignore a state change" rule.
func (s *Switch) Update(level bool, nowUS uint32) {
	if !s.Enabled {
		return
	}
	if level == s.level {
		return
	}
	if s.haveEdge && nowUS-s.lastEdgeUS < debounceWindowUS {
		return
	}
	s.lastEdgeUS = nowUS
	s.haveEdge = true
	s.level = level

	if level {
		s.pressUS = nowUS
		s.pressing = true
		s.justPress = true
	} else if s.pressing {
		s.releaseDurUS = nowUS - s.pressUS
		s.haveRelease = true
		s.pressing = false
		s.pressUS = 0
	}
}

// WasPressed returns true exactly once per clean press edge, clearing the
// flag as it reports it.
func (s *Switch) WasPressed() bool {
	if !s.justPress {
		return false
	}
	s.justPress = false
	return true
}

// DwellTime implements spec.md §4.5's three-way query: a completed press
// duration (reported once then cleared), an in-progress long press past
// longThresholdUS (reported once, cancelling further reporting of that
// press), or "none" (-1) otherwise.
func (s *Switch) DwellTime(longThresholdUS uint32, nowUS uint32) int {
	if s.haveRelease {
		d := int(s.releaseDurUS)
		s.haveRelease = false
		s.releaseDurUS = 0
		return d
	}
	if s.pressing && nowUS-s.pressUS > longThresholdUS {
		d := int(nowUS - s.pressUS)
		s.pressing = false
		s.pressUS = 0
		return d
	}
	return dwellNone
}

// PressUS reports the current press timestamp (0 if released).
func (s *Switch) PressUS() uint32 { return s.pressUS }

// ReleaseDurationUS reports the pending release duration (0 if none).
func (s *Switch) ReleaseDurationUS() uint32 { return s.releaseDurUS }

// Debouncer owns a fixed set of switches and implements next_pending, the
// scan helper a polling worker uses to find switches with state to
// report without walking the whole array on every tick.
type Debouncer struct {
	switches []*Switch
}

// NewDebouncer allocates n disabled switches.
func NewDebouncer(n int) *Debouncer {
	d := &Debouncer{switches: make([]*Switch, n)}
	for i := range d.switches {
		d.switches[i] = NewSwitch()
	}
	return d
}

// Switch returns the switch at index i, or nil if out of range.
func (d *Debouncer) Switch(i int) *Switch {
	if i < 0 || i >= len(d.switches) {
		return nil
	}
	return d.switches[i]
}

// NextPending returns the smallest index >= start whose switch has a
// non-zero press timestamp or release duration, or -1 if none do.
func (d *Debouncer) NextPending(start int) int {
	if start < 0 {
		start = 0
	}
	for i := start; i < len(d.switches); i++ {
		sw := d.switches[i]
		if sw.PressUS() != 0 || sw.ReleaseDurationUS() != 0 {
			return i
		}
	}
	return -1
}
