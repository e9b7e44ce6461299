// Package gpio drives single GPIO lines used by nodes: the RS-485 driver
// enable pin and the status LED.
package gpio

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

var (
	initOnce sync.Once
	initErr  error
)

func hostInit() error {
	initOnce.Do(func() {
		_, initErr = host.Init()
	})
	return initErr
}

// Pin is an output line.
type Pin struct {
	pin       gpio.PinOut
	activeLow bool
}

// Open resolves a pin by name (e.g. "GPIO17") and drives it inactive.
func Open(name string, activeLow bool) (*Pin, error) {
	if err := hostInit(); err != nil {
		return nil, fmt.Errorf("gpio init: %w", err)
	}
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("gpio %q not found", name)
	}
	pin := &Pin{pin: p, activeLow: activeLow}
	if err := pin.Set(false); err != nil {
		return nil, err
	}
	return pin, nil
}

// NewPin wraps an existing output.
func NewPin(p gpio.PinOut, activeLow bool) *Pin {
	return &Pin{pin: p, activeLow: activeLow}
}

// Set drives the line active or inactive.
func (p *Pin) Set(active bool) error {
	level := gpio.Level(active != p.activeLow)
	if err := p.pin.Out(level); err != nil {
		return fmt.Errorf("gpio %s: %w", p.pin.Name(), err)
	}
	return nil
}

// EnableTransmit implements link.Direction.
func (p *Pin) EnableTransmit() error { return p.Set(true) }

// EnableReceive implements link.Direction.
func (p *Pin) EnableReceive() error { return p.Set(false) }
