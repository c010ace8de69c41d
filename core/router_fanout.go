package core

// fanOutChannel implements spec.md §4.3 step 9 for a single channel
// message already mapped, swapped, master-channel-filtered and CC-trialed
// by processEvent. It is grounded on the per-output push loop of this
// system's original C router: channel handling, drop policies, note-range
// and transpose, tuning injection and note-state bookkeeping run in that
// order for every output subscribed to srcIdx.
func (r *Router) fanOutChannel(srcIdx int, src *InputPort, time uint32, class Class, channel uint8, buf [3]byte, n int) {
	for _, op := range r.outputs {
		if !op.routeFrom(srcIdx) || op.Connections() <= 0 {
			continue
		}

		work := buf
		outClass := class
		outChannel := channel

		// Channel handling.
		if op.Flags&FlagChanTransfilter != 0 {
			if src.Flags&FlagActiveChain != 0 && op.primaryChan >= 0 {
				if op.Index != r.activeChain {
					continue
				}
				outChannel = uint8(op.primaryChan)

				if outClass == ClassNoteOff && op.NoteState(work[1]) == 0 {
					if alt := r.findHangingNote(op.Index, srcIdx, work[1]); alt != nil {
						op = alt
						outChannel = uint8(op.primaryChan)
					}
				}
			} else {
				to, ok := op.translate(channel)
				if !ok {
					continue
				}
				outChannel = to
			}
		}

		// Drop policies.
		switch outClass {
		case ClassProgramChange:
			if op.Flags&FlagDropProgramChange != 0 && src.Category != InputSyntheticUI {
				continue
			}
		case ClassControlChange:
			if op.Flags&FlagDropControlChange != 0 && srcIdx <= r.controlFeedbackIndex {
				continue
			}
		case ClassNoteOn, ClassNoteOff:
			if op.Flags&FlagDropNotes != 0 && src.Category != InputSyntheticUI {
				continue
			}
		}

		// Note-range and transpose.
		if outClass == ClassNoteOn || outClass == ClassNoteOff {
			if op.Flags&FlagNoteRange != 0 && (work[1] < op.noteLow || work[1] > op.noteHigh) {
				continue
			}
			t := int16(work[1]) + op.transpose
			if t < 0 {
				t = 0
			} else if t > 127 {
				t = 127
			}
			work[1] = byte(t)
		}

		work[0] = (byte(outClass) << 4) | (outChannel & 0x0F)

		// Tuning injection: a synthesized pitch-bend immediately before a
		// note-on, or a rewrite of a real pitch-bend event, both relative
		// to this output channel's last-known bend (spec.md §6 "Tuning
		// frequency").
		if op.Flags&FlagTuning != 0 && r.tuningPitchbend >= 0 {
			switch outClass {
			case ClassNoteOn:
				tuned := r.tunedPitchbend(op.lastPB[outChannel&0x0F])
				b1, b2 := EncodePitchBend(tuned)
				op.pushEvent(time, []byte{(byte(ClassPitchBend) << 4) | (outChannel & 0x0F), b1, b2})
			case ClassPitchBend:
				raw := PitchBendValue(work[1], work[2])
				op.lastPB[outChannel&0x0F] = raw
				tuned := r.tunedPitchbend(raw)
				work[1], work[2] = EncodePitchBend(tuned)
			}
		}

		out := min(n, 3)
		op.pushEvent(time, work[:out])

		switch outClass {
		case ClassNoteOn:
			var vel byte
			if out > 2 {
				vel = work[2]
			}
			op.noteState[work[1]] = vel
		case ClassNoteOff:
			op.noteState[work[1]] = 0
		}
	}
}

// fanOutSystem implements spec.md §4.3 step 9 for non-channel messages:
// only the drop-sysex and drop-system policies apply, and (unlike
// drop-program-change/drop-notes) spec.md states no synthetic-UI
// exemption for either, so none is applied here.
func (r *Router) fanOutSystem(srcIdx int, src *InputPort, time uint32, class Class, data []byte, n int) {
	for _, op := range r.outputs {
		if !op.routeFrom(srcIdx) || op.Connections() <= 0 {
			continue
		}
		if class == ClassSystemExclusive {
			if op.Flags&FlagDropSysEx != 0 {
				continue
			}
		} else if op.Flags&FlagDropSystem != 0 {
			continue
		}
		op.pushEvent(time, data[:n])
	}
}

// findHangingNote implements the hanging-note recovery search: starting
// just after fromIndex in round-robin chain order, it returns the first
// other chain output that still holds the note AND remains a legal
// delivery target for srcIdx — connected, routed from srcIdx, and
// channel-mapped (midi_chan set) — or nil if none qualifies. Grounded on
// zynmidirouter.c's zmop_push_event hanging-note loop, which guards the
// same four conditions (note_state>0, midi_chan>=0, n_connections>0,
// route_from_zmips[izmip]) before redirecting a note-off.
func (r *Router) findHangingNote(fromIndex, srcIdx int, note uint8) *OutputPort {
	n := len(r.chainOutputs)
	if n < 2 {
		return nil
	}
	pos := -1
	for i, idx := range r.chainOutputs {
		if idx == fromIndex {
			pos = i
			break
		}
	}
	if pos < 0 {
		return nil
	}
	for j := 1; j < n; j++ {
		idx := r.chainOutputs[(pos+j)%n]
		op := r.outputByIndex[idx]
		if op == nil || op.NoteState(note) == 0 || op.primaryChan < 0 {
			continue
		}
		if op.Connections() <= 0 || !op.routeFrom(srcIdx) {
			continue
		}
		return op
	}
	return nil
}

// tunedPitchbend applies the global tuning offset to a received
// pitch-bend value, clamped to the 14-bit range (spec.md §6).
func (r *Router) tunedPitchbend(pb int) int {
	return clampInt(int(r.tuningPitchbend)+pb-0x2000, 0, 0x3FFF)
}

// drainDirectOutputs implements spec.md §4.3 step 11: every DIRECTOUT
// output's owned ring is forwarded to its host buffer once per period,
// after all host-buffer writes for the period are already in place.
func (r *Router) drainDirectOutputs() {
	for _, op := range r.outputs {
		if op.Flags&FlagDirectOut == 0 || op.direct == nil || op.hostBuf == nil {
			continue
		}
		if op.Connections() <= 0 {
			continue
		}
		for {
			_, data, ok := op.direct.ReadEvent()
			if !ok {
				break
			}
			if err := op.hostBuf.Write(0, data); err != nil {
				Logger().Warn("outputport: drain write failed, dropping event", "output", op.Index, "error", err)
				break
			}
		}
	}
}
