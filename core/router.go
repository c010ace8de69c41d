package core

// Router is the per-period merge-sort, filter, and fan-out engine
// described in spec.md §4.3. Ports are owned records inside the struct;
// the control API (configuration surface, §6) is exposed as methods on
// Router rather than mutating package-level globals.
type Router struct {
	inputs  []*InputPort
	outputs []*OutputPort

	filter *FilterTable
	swap   *SwapTable
	uiRing *UIRing

	masterChannel int32 // -1 disables master-channel capture
	systemEvents  bool

	// tuningPitchbend is the precomputed "center" pitch-bend value
	// encoding the global tuning offset (spec.md §6 "Tuning frequency");
	// -1 means tuning injection is disabled.
	tuningPitchbend int32

	activeChain int // index into outputs of the currently selected chain output

	// controlFeedbackIndex is the input index boundary used by the
	// drop-CC policy's "inputs <= control-feedback input" rule (spec.md
	// §9, replicated as written). It is fixed at construction time from
	// the compile-time input list order (spec.md §6).
	controlFeedbackIndex int

	chainOutputs  []int // output indices that are OutputChain, in round-robin order
	outputByIndex map[int]*OutputPort
}

// NewRouter builds a router with the given inputs and outputs already
// constructed (per spec.md §6's compile-time port identity lists) and an
// empty filter table. controlFeedbackIndex is the input index of the
// control-feedback input (spec.md §9).
func NewRouter(inputs []*InputPort, outputs []*OutputPort, controlFeedbackIndex int, uiRingCapacity int) *Router {
	r := &Router{
		inputs:                inputs,
		outputs:               outputs,
		filter:                NewFilterTable(),
		swap:                  NewSwapTable(),
		uiRing:                NewUIRing(uiRingCapacity),
		masterChannel:         -1,
		systemEvents:          true,
		tuningPitchbend:       -1,
		activeChain:           -1,
		controlFeedbackIndex:  controlFeedbackIndex,
		outputByIndex:         make(map[int]*OutputPort, len(outputs)),
	}
	for _, op := range outputs {
		r.outputByIndex[op.Index] = op
		if op.Category == OutputChain {
			r.chainOutputs = append(r.chainOutputs, op.Index)
		}
	}
	if len(r.chainOutputs) > 0 {
		r.activeChain = r.chainOutputs[0]
	}
	return r
}

// UIRing exposes the ring the UI thread drains.
func (r *Router) UIRing() *UIRing { return r.uiRing }

// Input returns the input port at idx, or nil if out of range.
func (r *Router) Input(idx int) *InputPort {
	if idx < 0 || idx >= len(r.inputs) {
		return nil
	}
	return r.inputs[idx]
}

// Output returns the output port at idx, or nil if out of range.
func (r *Router) Output(idx int) *OutputPort {
	if idx < 0 || idx >= len(r.outputs) {
		return nil
	}
	return r.outputs[idx]
}

// Process runs one audio period: for each of the router's input ports it
// acquires a host buffer (hostIns[i], nil for direct-injection ports) and
// for each output port a host buffer (hostOuts[j]), merges every pending
// event across inputs in timestamp order (ties broken by input index),
// applies the per-input and per-output transformations of spec.md §4.3,
// and finally drains direct-output rings. It never blocks and never locks.
// It is not allocation-free: each event read from a direct-injection ring
// and each synthesised tuning pitch-bend is a newly allocated byte slice.
func (r *Router) Process(nframes int, hostIns []InputBufferSource, hostOuts []OutputBufferSink) {
	for i, ip := range r.inputs {
		var host InputBufferSource
		if i < len(hostIns) {
			host = hostIns[i]
		}
		ip.acquire(host)
	}
	for j, op := range r.outputs {
		var host OutputBufferSink
		if j < len(hostOuts) {
			host = hostOuts[j]
		}
		op.attach(host)
	}

	var work [3]byte

	for {
		srcIdx := -1
		var best uint32
		for i, ip := range r.inputs {
			if ip.cur.time == drainedTime {
				continue
			}
			if srcIdx == -1 || ip.cur.time < best {
				srcIdx = i
				best = ip.cur.time
			}
		}
		if srcIdx == -1 {
			break
		}

		src := r.inputs[srcIdx]
		ev := src.cur
		r.processEvent(srcIdx, src, ev, &work)
		src.populate()
	}

	r.drainDirectOutputs()
}

// processEvent implements spec.md §4.3 steps 3-9 for a single merged
// event. work is per-call scratch owned by the caller; it is not retained
// past this call.
func (r *Router) processEvent(srcIdx int, src *InputPort, ev lookahead, work *[3]byte) {
	if ev.n < 1 || ev.n > len(ev.data) {
		return
	}
	data := ev.data
	n := ev.n
	b0 := data[0]
	class := EventClass(b0)

	// Step 4: suppress.
	if class == ClassActiveSense {
		return
	}
	if !r.systemEvents && class >= ClassSystemExclusive {
		return
	}

	// SysEx and other system messages bypass filtering/CC/master-channel
	// entirely; only suppression, UI capture (skipped for SysEx) and
	// fan-out drop-policies apply.
	if !IsChannelMessage(class) {
		if class != ClassSystemExclusive && src.Flags&FlagUI != 0 {
			r.pushSnapshot(srcIdx, data, n)
		}
		r.fanOutSystem(srcIdx, src, ev.time, class, data, n)
		return
	}

	channel := EventChannel(b0)
	var buf [3]byte
	copy(buf[:], data[:min(n, 3)])

	// Step 5: map.
	if src.Flags&FlagFilter != 0 {
		num := Controller(class, buf[1:n])
		action := r.filter.Get(From{Class: class, Channel: channel, Number: num})
		switch action.Kind {
		case ActionIgnore:
			return
		case ActionRemap:
			n = applyRemap(buf[:], n, action)
			class = action.Class
			channel = action.Channel
		}
	}

	// Open-Question CC-swap layer, disabled unless the input opts in.
	if class == ClassControlChange && src.Flags&FlagCCSwap != 0 {
		if r.swap.Apply(buf[:], channel, buf[1]) {
			channel = EventChannel(buf[0])
		}
	}

	// Step 6: master-channel capture.
	if int32(channel) == r.masterChannel && r.masterChannel >= 0 {
		if src.Flags&FlagUI != 0 {
			r.pushSnapshot(srcIdx, buf[:], n)
		}
		return
	}

	// Step 7: relative-CC auto-detect.
	if class == ClassControlChange && src.Flags&FlagCCAutoMode != 0 {
		if !r.relativeCCDetect(src, channel, &buf) {
			return
		}
	}

	// Step 8: UI capture.
	if src.Flags&FlagUI != 0 {
		r.pushSnapshot(srcIdx, buf[:], n)
	}

	// Step 9: fan-out.
	r.fanOutChannel(srcIdx, src, ev.time, class, channel, buf, n)
}

func (r *Router) pushSnapshot(srcIdx int, data []byte, n int) {
	var b0, b1, b2 byte
	if n > 0 {
		b0 = data[0]
	}
	if n > 1 {
		b1 = data[1]
	}
	if n > 2 {
		b2 = data[2]
	}
	r.uiRing.Push(EncodeSnapshot(srcIdx, b0, b1, b2))
}

// relativeCCDetect implements spec.md §4.3 step 7. The two modes are
// evaluated mutually exclusively within a single event — a mode
// transition made while handling an event (e.g. RelativeTrial reverting
// to Absolute) is not re-evaluated against the same event, only against
// the next one. last_value is saved only when the event is kept; a
// dropped event leaves last_value untouched, matching scenario S4.
func (r *Router) relativeCCDetect(src *InputPort, channel uint8, buf *[3]byte) bool {
	number := buf[1]
	value := buf[2]
	cell := src.controlCell(channel, number)
	keep := true

	switch cell.mode {
	case ControlRelativeTrial:
		switch {
		case cell.trial > 1:
			cell.mode = ControlAbsolute
		case value == 64:
			if cell.trial == 1 {
				cell.trial = 0
				keep = false
			} else {
				cell.mode = ControlAbsolute
			}
		default:
			last := int(cell.lastValue)
			offset := int(value) - 64
			newVal := clampInt(last+offset, 0, 127)
			buf[2] = byte(newVal)
			value = byte(newVal)
			cell.trial++
		}
	default: // ControlAbsolute
		if value == 64 {
			cell.mode = ControlRelativeTrial
			cell.trial = 1
			if abs16(int16(cell.lastValue)-64) > 4 {
				keep = false
			}
		}
	}

	if keep {
		cell.lastValue = value
	}
	return keep
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs16(v int16) int16 {
	if v < 0 {
		return -v
	}
	return v
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
