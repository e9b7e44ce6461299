package config

import (
	"fmt"

	"go.bug.st/serial"

	"github.com/robotalks/tmon/pkg/link"
	"github.com/robotalks/tmon/pkg/link/gpio"
	"github.com/robotalks/tmon/pkg/link/serialport"
)

// Open opens the serial port and the direction control it's configured
// with.
func (c *SerialConfig) Open() (serial.Port, link.Direction, error) {
	port, err := serialport.Open(serialport.Config{Name: c.Port, BaudRate: c.BaudRate})
	if err != nil {
		return nil, nil, err
	}
	var dir link.Direction
	switch c.Direction {
	case DirectionRTS:
		dir = &serialport.RTS{Port: port, Invert: c.Invert}
	case DirectionGPIO:
		pin, err := gpio.Open(c.DEPin, c.Invert)
		if err != nil {
			port.Close()
			return nil, nil, err
		}
		dir = pin
	case "", DirectionNone:
		dir = link.NoDirection{}
	default:
		port.Close()
		return nil, nil, fmt.Errorf("unknown direction %q", c.Direction)
	}
	if err := dir.EnableReceive(); err != nil {
		port.Close()
		return nil, nil, err
	}
	return port, dir, nil
}
