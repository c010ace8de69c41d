package hostio

import (
	"fmt"
	"sync"

	"github.com/warthog618/go-gpiocdev"
)

// GPIOPins adapts a single Linux gpiochip (via go-gpiocdev) to
// PinReader/PinWriter/InterruptWatcher. Pin numbers are gpiochip line
// offsets; lines are requested lazily and cached so a mixed
// read/write/watch workload against the same chip shares one request
// per line.
type GPIOPins struct {
	chip *gpiocdev.Chip

	mu    sync.Mutex
	lines map[int]*gpiocdev.Line
}

// NewGPIOPins opens chipName (e.g. "gpiochip0") for this module's line
// requests.
func NewGPIOPins(chipName string) (*GPIOPins, error) {
	chip, err := gpiocdev.NewChip(chipName, gpiocdev.WithConsumer("midicore"))
	if err != nil {
		return nil, fmt.Errorf("hostio: open %s: %w", chipName, err)
	}
	return &GPIOPins{chip: chip, lines: make(map[int]*gpiocdev.Line)}, nil
}

// Close releases every requested line and the chip handle.
func (g *GPIOPins) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, l := range g.lines {
		l.Close()
	}
	g.lines = nil
	return g.chip.Close()
}

func (g *GPIOPins) inputLine(pin int) (*gpiocdev.Line, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if l, ok := g.lines[pin]; ok {
		return l, nil
	}
	l, err := g.chip.RequestLine(pin, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		return nil, fmt.Errorf("hostio: request input line %d: %w", pin, err)
	}
	g.lines[pin] = l
	return l, nil
}

// ReadLevel reads the current level of pin.
func (g *GPIOPins) ReadLevel(pin int) (bool, error) {
	l, err := g.inputLine(pin)
	if err != nil {
		return false, err
	}
	v, err := l.Value()
	if err != nil {
		return false, fmt.Errorf("hostio: read line %d: %w", pin, err)
	}
	return v != 0, nil
}

// WriteLevel drives pin as an output. The first write on a pin requests
// it as an output line; a later ReadLevel on the same pin would fail,
// matching go-gpiocdev's own one-direction-per-request model.
func (g *GPIOPins) WriteLevel(pin int, level bool) error {
	g.mu.Lock()
	l, ok := g.lines[pin]
	g.mu.Unlock()
	if !ok {
		value := 0
		if level {
			value = 1
		}
		newLine, err := g.chip.RequestLine(pin, gpiocdev.AsOutput(value))
		if err != nil {
			return fmt.Errorf("hostio: request output line %d: %w", pin, err)
		}
		g.mu.Lock()
		g.lines[pin] = newLine
		g.mu.Unlock()
		return nil
	}
	v := 0
	if level {
		v = 1
	}
	if err := l.SetValue(v); err != nil {
		return fmt.Errorf("hostio: write line %d: %w", pin, err)
	}
	return nil
}

// WatchInterrupt requests pin for both-edge event detection and invokes
// onEdge on every transition, driving the Port-Expander's interrupt
// worker (spec.md §4.6) without a polling loop. The returned stop func
// closes the line's event request.
func (g *GPIOPins) WatchInterrupt(pin int, onEdge func()) (func(), error) {
	handler := func(gpiocdev.LineEvent) { onEdge() }
	l, err := g.chip.RequestLine(pin, gpiocdev.AsInput, gpiocdev.WithBothEdges, gpiocdev.WithEventHandler(handler))
	if err != nil {
		return nil, fmt.Errorf("hostio: request interrupt line %d: %w", pin, err)
	}
	g.mu.Lock()
	g.lines[pin] = l
	g.mu.Unlock()
	return func() {
		g.mu.Lock()
		delete(g.lines, pin)
		g.mu.Unlock()
		l.Close()
	}, nil
}
