package hostio

import (
	"fmt"
	"os"
	"time"

	"github.com/creack/pty"

	"github.com/embedwave/midicore/core"
)

// VirtualSerial bridges a DIN-MIDI-over-UART style byte stream to a
// pseudo-terminal, the same mechanism the teacher repo uses for its
// virtual TNC port (src/kiss.go's pty.Open), repurposed here to carry
// raw MIDI bytes instead of KISS frames. It implements both
// core.InputBufferSource and core.OutputBufferSink so it can sit on
// either side of the router directly.
type VirtualSerial struct {
	master *os.File
	slave  *os.File

	pending  []byte
	events   [][]byte
}

// NewVirtualSerial opens a pty pair and reports the slave's path, which
// a client (e.g. a software synth or sequencer) opens as its MIDI
// device.
func NewVirtualSerial() (*VirtualSerial, error) {
	master, slave, err := pty.Open()
	if err != nil {
		return nil, fmt.Errorf("hostio: open pty: %w", err)
	}
	return &VirtualSerial{master: master, slave: slave}, nil
}

// SlavePath is the path the far end should open (e.g. "/dev/pts/4").
func (v *VirtualSerial) SlavePath() string { return v.slave.Name() }

// Close releases both ends of the pty.
func (v *VirtualSerial) Close() error {
	v.slave.Close()
	return v.master.Close()
}

// Poll drains whatever bytes are currently available on the pty master
// without blocking, framing complete MIDI events (3-byte channel
// messages, 2-byte program-change/channel-pressure, or a full SysEx
// run) into the buffer Len/Event will serve for this period. It must be
// called once per period before the router reads this port.
func (v *VirtualSerial) Poll() error {
	v.events = v.events[:0]

	if err := v.master.SetReadDeadline(time.Now()); err != nil {
		return fmt.Errorf("hostio: set read deadline: %w", err)
	}
	buf := make([]byte, 256)
	for {
		n, err := v.master.Read(buf)
		if n > 0 {
			v.pending = append(v.pending, buf[:n]...)
		}
		if err != nil {
			break // deadline exceeded or EOF: nothing more waiting right now
		}
	}

	for len(v.pending) > 0 {
		b0 := v.pending[0]
		class := core.EventClass(b0)

		if class == core.ClassSystemExclusive {
			end := -1
			for i, b := range v.pending {
				if b == byte(core.ClassEndSysEx) {
					end = i
					break
				}
			}
			if end < 0 {
				break // incomplete SysEx, wait for more bytes next period
			}
			ev := append([]byte(nil), v.pending[:end+1]...)
			v.events = append(v.events, ev)
			v.pending = v.pending[end+1:]
			continue
		}

		size := 3
		if class == core.ClassProgramChange || class == core.ClassChannelPress {
			size = 2
		}
		if !core.IsChannelMessage(class) {
			size = 1
		}
		if len(v.pending) < size {
			break
		}
		ev := append([]byte(nil), v.pending[:size]...)
		v.events = append(v.events, ev)
		v.pending = v.pending[size:]
	}
	return nil
}

// Len implements core.InputBufferSource.
func (v *VirtualSerial) Len() int { return len(v.events) }

// Event implements core.InputBufferSource. Every event carries time=0:
// the virtual serial link has no sub-period timestamp resolution.
func (v *VirtualSerial) Event(i int) (uint32, []byte) { return 0, v.events[i] }

// Write implements core.OutputBufferSink by writing the raw MIDI bytes
// straight to the pty master.
func (v *VirtualSerial) Write(_ uint32, data []byte) error {
	_, err := v.master.Write(data)
	if err != nil {
		return fmt.Errorf("hostio: serial write: %w", err)
	}
	return nil
}
