package core

import "math"

// router_config.go is the control-thread configuration surface of
// spec.md §6. None of these methods run on the per-period hot path; they
// mutate Router fields and port state that Process only ever reads,
// matching this system's control/audio-thread split (original_source's
// zynmidirouter.c exposes the same calls from its CLI/OSC control layer).

// SetMasterChannel selects the channel whose events are captured for UI
// feedback and otherwise dropped entirely (spec.md §4.3 step 6). -1
// disables master-channel capture.
func (r *Router) SetMasterChannel(channel int) bool {
	if channel < -1 || channel > 15 {
		return false
	}
	r.masterChannel = int32(channel)
	return true
}

// MasterChannel reports the current master-channel setting.
func (r *Router) MasterChannel() int { return int(r.masterChannel) }

// SetSystemEventsEnabled toggles whether system-exclusive and other
// system messages (class >= 0xF0) are let through at all (spec.md §4.3
// step 4).
func (r *Router) SetSystemEventsEnabled(enabled bool) { r.systemEvents = enabled }

// SystemEventsEnabled reports the current setting.
func (r *Router) SystemEventsEnabled() bool { return r.systemEvents }

// SetTuningFrequency sets the reference pitch for A4 in Hz. 440.0
// disables tuning injection. Values one semitone or more away from 440Hz
// are rejected, and the previous setting is left unchanged. pb is the
// offset in units of the ±2-semitone pitch-bend range, so one semitone is
// pb == ±0.5; the stored value is rounded to the nearest pitch-bend step.
func (r *Router) SetTuningFrequency(freqHz float64) bool {
	if freqHz == 440.0 {
		r.tuningPitchbend = -1
		return true
	}
	if freqHz <= 0 {
		return false
	}
	pb := 6 * math.Log2(freqHz/440.0)
	if pb <= -0.5 || pb >= 0.5 {
		return false
	}
	r.tuningPitchbend = int32(math.Round(8192*(1+pb))) & 0x3FFF
	return true
}

// TuningActive reports whether a non-default tuning frequency is in
// effect.
func (r *Router) TuningActive() bool { return r.tuningPitchbend >= 0 }

// SetActiveChain selects which chain output FlagActiveChain inputs are
// currently routed to. It must name an output already registered as
// OutputChain.
func (r *Router) SetActiveChain(outputIndex int) bool {
	op, ok := r.outputByIndex[outputIndex]
	if !ok || op.Category != OutputChain {
		return false
	}
	r.activeChain = outputIndex
	return true
}

// ActiveChain reports the currently selected chain output's index, or -1
// if no chain outputs are registered.
func (r *Router) ActiveChain() int { return r.activeChain }

// SetRoutedToAllChains routes (or unroutes) input inputIndex to every
// registered chain output in one call, matching spec.md §6's
// set_routed_to_all_chains(bool). It is a one-shot bulk action over the
// existing per-output routing mask, not a stored per-input flag. Reports
// false without touching anything if inputIndex isn't a valid input;
// stops and reports false on the first chain output that rejects the
// index, leaving outputs visited so far already updated (mirroring
// zmip_set_route_chains, which aborts its loop the same way).
func (r *Router) SetRoutedToAllChains(inputIndex int, routed bool) bool {
	if r.Input(inputIndex) == nil {
		return false
	}
	for _, outIdx := range r.chainOutputs {
		op := r.outputByIndex[outIdx]
		if op == nil || !op.SetRouteFrom(inputIndex, routed) {
			return false
		}
	}
	return true
}

// Filter exposes the router's FilterTable for direct mutation (set_remap,
// set_ignore, clear, reset_all), per spec.md §6.
func (r *Router) Filter() *FilterTable { return r.filter }

// Swap exposes the router's CC-swap table (§9 Open Question layer).
func (r *Router) Swap() *SwapTable { return r.swap }
