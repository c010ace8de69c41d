package hostio

import (
	"fmt"
	"sync"
)

// I2CTransport is the minimal contract a concrete I2C driver exposes:
// one register-block read/write per transaction. hostio does not depend
// on any particular I2C library here; a caller supplies whatever driver
// it has (golang.org/x/exp/io/i2c, periph.io, or a vendor SDK) through
// this narrow seam.
type I2CTransport interface {
	ReadReg(addr uint8, reg uint8, n int) ([]byte, error)
	WriteReg(addr uint8, reg uint8, data []byte) error
}

// PortExpanderBus serialises access to a shared I2C bus between the
// interrupt-driven expander-read worker and any polling analogue-read
// thread, per spec.md §5's "access is serialised by a mutex held only
// around the bus transaction (never across an audio-period boundary)".
// It is grounded on zyncoder_i2c.c's bus-arbitration lock, reimplemented
// as a plain sync.Mutex since no bus-arbitration library appears
// anywhere in the example pack (DESIGN.md).
type PortExpanderBus struct {
	mu        sync.Mutex
	transport I2CTransport
	addr      uint8
}

// NewPortExpanderBus wraps transport for a single expander at I2C
// address addr.
func NewPortExpanderBus(transport I2CTransport, addr uint8) *PortExpanderBus {
	return &PortExpanderBus{transport: transport, addr: addr}
}

// ReadBank reads the expander's input-port register (one byte, 8 pin
// levels) for use as the changed-pins bank spec.md §4.6 consumes.
func (b *PortExpanderBus) ReadBank(reg uint8) (uint8, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, err := b.transport.ReadReg(b.addr, reg, 1)
	if err != nil {
		return 0, fmt.Errorf("hostio: expander read: %w", err)
	}
	if len(data) < 1 {
		return 0, fmt.Errorf("hostio: expander read: short response")
	}
	return data[0], nil
}

// WriteBank writes the expander's output-port register.
func (b *PortExpanderBus) WriteBank(reg uint8, value uint8) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.transport.WriteReg(b.addr, reg, []byte{value}); err != nil {
		return fmt.Errorf("hostio: expander write: %w", err)
	}
	return nil
}
