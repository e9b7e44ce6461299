// Package serialport opens RS-485 adapters through go.bug.st/serial.
package serialport

import (
	"fmt"

	"go.bug.st/serial"
)

// DefaultBaudRate is the bus speed used by the nodes.
const DefaultBaudRate = 9600

// Config describes the port to open.
type Config struct {
	Name     string
	BaudRate int
}

// Open opens the port in 8N1 mode.
func Open(conf Config) (serial.Port, error) {
	baud := conf.BaudRate
	if baud == 0 {
		baud = DefaultBaudRate
	}
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(conf.Name, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", conf.Name, err)
	}
	if err = port.ResetInputBuffer(); err != nil {
		port.Close()
		return nil, fmt.Errorf("reset %s: %w", conf.Name, err)
	}
	return port, nil
}

// Ports lists the serial ports present on the system.
func Ports() ([]string, error) {
	return serial.GetPortsList()
}

// RTS drives the transceiver DE/RE pins through the RTS line, as wired on
// most USB RS-485 dongles without automatic direction control.
type RTS struct {
	Port   serial.Port
	Invert bool
}

// EnableTransmit implements link.Direction.
func (r *RTS) EnableTransmit() error {
	return r.Port.SetRTS(!r.Invert)
}

// EnableReceive implements link.Direction.
func (r *RTS) EnableReceive() error {
	return r.Port.SetRTS(r.Invert)
}
