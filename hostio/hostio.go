// Package hostio provides the concrete adapters that satisfy core's
// host-facing interfaces (InputBufferSource, OutputBufferSink) and the
// rotary package's pin-level producers, wiring this module's routing
// engine to real hardware and audio-host APIs. None of these adapters
// are imported by core or rotary themselves — they depend inward on the
// interfaces those packages define, so a cmd binary can mix and match
// whichever of them its target hardware actually has.
package hostio

// PinReader is the minimal contract a GPIO or I2C-expander backend
// exposes for reading digital levels, whose readings a host feeds to the
// rotary package's Switch/Decoder and Port-Expander demultiplexer.
type PinReader interface {
	ReadLevel(pin int) (bool, error)
}

// PinWriter is the minimal contract for driving a digital output, e.g. a
// panic/all-notes-off indicator LED wired through the same expander or a
// native GPIO line.
type PinWriter interface {
	WriteLevel(pin int, level bool) error
}

// AnalogReader reads a single analogue channel (an expression pedal or
// unweighted velocity pot), normalised to 0..1.
type AnalogReader interface {
	ReadAnalog(channel int) (float64, error)
}

// InterruptWatcher delivers edge notifications on a single digital pin,
// used to drive the Port-Expander's "one read per interrupt" model
// (spec.md §4.6) without polling.
type InterruptWatcher interface {
	WatchInterrupt(pin int, onEdge func()) (stop func(), err error)
}

// ConnectionWatcher reports changes in a named output's external
// connection count, matching spec.md §6's "connection-change callback".
type ConnectionWatcher interface {
	WatchConnections(onChange func(portName string, connections int32)) (stop func(), err error)
}
