package hostio

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// PeriodClock drives the router's per-period callback at a fixed audio
// rate, matching spec.md §5's "a single real-time audio thread runs the
// router once per period". The clock itself carries no audio; it only
// provides the timing grid the host's actual MIDI buffers are read
// against.
type PeriodClock interface {
	Start(onPeriod func(nframes int)) error
	Stop() error
}

// PortAudioClock uses a muted PortAudio output stream purely as a
// hardware-accurate period timer: its callback carries no useful audio,
// only the guarantee that it fires once per framesPerBuffer samples at
// sampleRate, which is the same period boundary a JACK process callback
// would supply.
type PortAudioClock struct {
	sampleRate      float64
	framesPerBuffer int

	stream *portaudio.Stream
}

// NewPortAudioClock initializes PortAudio and prepares a clock at the
// given sample rate and period size. Call Start to begin firing.
func NewPortAudioClock(sampleRate float64, framesPerBuffer int) (*PortAudioClock, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("hostio: portaudio init: %w", err)
	}
	return &PortAudioClock{sampleRate: sampleRate, framesPerBuffer: framesPerBuffer}, nil
}

// Start opens a silent default output stream and invokes onPeriod once
// per buffer until Stop is called.
func (c *PortAudioClock) Start(onPeriod func(nframes int)) error {
	callback := func(out []float32) {
		for i := range out {
			out[i] = 0
		}
		onPeriod(len(out))
	}
	stream, err := portaudio.OpenDefaultStream(0, 1, c.sampleRate, c.framesPerBuffer, callback)
	if err != nil {
		return fmt.Errorf("hostio: open stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("hostio: start stream: %w", err)
	}
	c.stream = stream
	return nil
}

// Stop halts and releases the underlying stream and terminates
// PortAudio.
func (c *PortAudioClock) Stop() error {
	if c.stream == nil {
		return nil
	}
	if err := c.stream.Stop(); err != nil {
		return fmt.Errorf("hostio: stop stream: %w", err)
	}
	if err := c.stream.Close(); err != nil {
		return fmt.Errorf("hostio: close stream: %w", err)
	}
	c.stream = nil
	return portaudio.Terminate()
}
