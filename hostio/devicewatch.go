package hostio

import (
	"context"
	"fmt"

	"github.com/jochenvg/go-udev"
)

// DeviceWatch watches the "sound" subsystem for USB-MIDI device
// hotplug, translating udev add/remove events into the connection-change
// notifications spec.md §6 describes ("a named output port's connections
// value has changed"). It does not itself track per-port counts; that
// bookkeeping belongs to the cmd binary wiring ports to device names —
// this just turns udev churn into callbacks made from a background
// goroutine.
type DeviceWatch struct {
	cancel context.CancelFunc
}

// WatchConnections implements hostio.ConnectionWatcher: every udev "add"
// is reported as connections=1, every "remove" as connections=0, keyed
// by the device's ID_MIDI_SERIAL property, or its sysname when that is
// empty.
func (DeviceWatch) WatchConnections(onChange func(portName string, connections int32)) (func(), error) {
	u := udev.Udev{}
	mon := u.NewMonitorFromNetlink("udev")
	if err := mon.FilterAddMatchSubsystem("sound"); err != nil {
		return nil, fmt.Errorf("hostio: udev filter: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	deviceCh, errCh, err := mon.DeviceChan(ctx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("hostio: udev monitor: %w", err)
	}

	go func() {
		for {
			select {
			case d, ok := <-deviceCh:
				if !ok {
					return
				}
				name := d.PropertyValue("ID_MIDI_SERIAL")
				if name == "" {
					name = d.Sysname()
				}
				switch d.Action() {
				case "add":
					onChange(name, 1)
				case "remove":
					onChange(name, 0)
				}
			case <-errCh:
				// Monitor channel closed on error; the ctx cancellation
				// below already tears the goroutine down on Stop.
			case <-ctx.Done():
				return
			}
		}
	}()

	w := &DeviceWatch{cancel: cancel}
	return w.stop, nil
}

func (w *DeviceWatch) stop() {
	if w.cancel != nil {
		w.cancel()
	}
}
