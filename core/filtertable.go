package core

// ActionKind tags the effect a FilterTable entry has on a matched event.
type ActionKind uint8

const (
	ActionPass ActionKind = iota
	ActionIgnore
	ActionRemap
)

// Action is the tagged value a FilterTable lookup returns: Pass, Ignore,
// or Remap to a different (class, channel, number).
type Action struct {
	Kind    ActionKind
	Class   Class
	Channel uint8
	Number  uint8
}

// From identifies a filter-table cell: a channel-message class in
// note-off..pitch-bend, a channel 0..15, and a controller/note number
// 0..127 (ignored — forced to 0 — for pitch-bend and channel-pressure).
type From struct {
	Class   Class
	Channel uint8
	Number  uint8
}

// FilterTable is the 3-dimensional (class, channel, number) -> Action
// mapping described by spec.md §4.2. Every default entry is Pass.
// Lookup is O(1) array indexing: never allocates, safe on the router's
// per-period hot path.
type FilterTable struct {
	rows [classCount][16][128]Action
}

// NewFilterTable returns a table whose every entry is Pass.
func NewFilterTable() *FilterTable {
	return &FilterTable{}
}

func (ft *FilterTable) cell(from From) (*Action, bool) {
	idx := filterIndex(from.Class)
	if idx < 0 || from.Channel >= 16 {
		return nil, false
	}
	num := from.Number
	if from.Class == ClassPitchBend || from.Class == ClassChannelPress {
		num = 0
	}
	if num >= 128 {
		return nil, false
	}
	return &ft.rows[idx][from.Channel][num], true
}

// Get returns the action configured for from. Unaddressable cells
// (bad class/channel/number) report ActionPass, matching the invariant
// that the table's default value is always Pass.
func (ft *FilterTable) Get(from From) Action {
	cell, ok := ft.cell(from)
	if !ok {
		return Action{Kind: ActionPass}
	}
	return *cell
}

// Set installs a remap from -> to. Returns false (and leaves the table
// unmodified) if from addresses an invalid cell, per the validation
// error-handling model in spec.md §7.
func (ft *FilterTable) Set(from From, to From) bool {
	cell, ok := ft.cell(from)
	if !ok {
		return false
	}
	if to.Channel >= 16 {
		return false
	}
	cell.Kind = ActionRemap
	cell.Class = to.Class
	cell.Channel = to.Channel
	cell.Number = to.Number
	return true
}

// Ignore marks from as dropped unconditionally.
func (ft *FilterTable) Ignore(from From) bool {
	cell, ok := ft.cell(from)
	if !ok {
		return false
	}
	cell.Kind = ActionIgnore
	cell.Class = 0
	cell.Channel = 0
	cell.Number = 0
	return true
}

// Clear restores from to Pass.
func (ft *FilterTable) Clear(from From) bool {
	cell, ok := ft.cell(from)
	if !ok {
		return false
	}
	*cell = Action{Kind: ActionPass}
	return true
}

// ResetCC clears the control-change entry for a single (channel,
// controller) pair back to Pass.
func (ft *FilterTable) ResetCC(channel, cc uint8) bool {
	return ft.Clear(From{Class: ClassControlChange, Channel: channel, Number: cc})
}

// ResetAll restores every entry in the table to Pass.
func (ft *FilterTable) ResetAll() {
	ft.rows = [classCount][16][128]Action{}
}

// applyRemap runs the remap rewrite rules from spec.md §4.2 against a raw
// event buffer, given the action to apply. buf must have capacity for at
// least 3 bytes; n is the input event's original size (2 or 3). It
// returns the (possibly shortened) event length after rewriting.
func applyRemap(buf []byte, n int, act Action) int {
	buf[0] = (byte(act.Class) << 4) | (act.Channel & 0x0F)

	switch act.Class {
	case ClassProgramChange, ClassChannelPress:
		buf[1] = act.Number
		return 2
	case ClassPitchBend:
		value := byte(0)
		if n >= 3 {
			value = buf[2]
		} else if n >= 2 {
			value = buf[1]
		}
		buf[1] = 0
		buf[2] = value
		return 3
	default:
		var value byte
		if n >= 3 {
			value = buf[2]
		}
		buf[1] = act.Number
		buf[2] = value
		return 3
	}
}
