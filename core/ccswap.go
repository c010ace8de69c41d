package core

// SwapTable is the second (channel, controller) -> (channel, controller)
// remap applied immediately after the main FilterTable, to class ==
// ControlChange only. It answers spec.md §9's first Open Question: the
// source has a graph-theoretic CC-swap module (original_source's
// zynmidiswap.c) that is never wired into the per-period loop. Here it is
// first-class and independently testable, but disabled per-input by
// default (InputFlags FlagCCSwap must be set).
type SwapTable struct {
	entries [16][128]swapEntry
}

type swapEntry struct {
	active  bool
	channel uint8
	number  uint8
}

// NewSwapTable returns a table with no swaps configured (identity).
func NewSwapTable() *SwapTable { return &SwapTable{} }

// Set installs a swap from (channel, cc) to (toChannel, toCC).
func (st *SwapTable) Set(channel, cc, toChannel, toCC uint8) bool {
	if channel >= 16 || cc >= 128 || toChannel >= 16 || toCC >= 128 {
		return false
	}
	st.entries[channel][cc] = swapEntry{active: true, channel: toChannel, number: toCC}
	return true
}

// Clear removes any swap configured for (channel, cc).
func (st *SwapTable) Clear(channel, cc uint8) bool {
	if channel >= 16 || cc >= 128 {
		return false
	}
	st.entries[channel][cc] = swapEntry{}
	return true
}

// Apply rewrites a 3-byte control-change event in place if a swap is
// configured for its (channel, controller); it returns whether a swap
// fired.
func (st *SwapTable) Apply(buf []byte, channel, cc uint8) bool {
	if channel >= 16 || cc >= 128 {
		return false
	}
	e := st.entries[channel][cc]
	if !e.active {
		return false
	}
	buf[0] = (byte(ClassControlChange) << 4) | (e.channel & 0x0F)
	buf[1] = e.number
	return true
}
