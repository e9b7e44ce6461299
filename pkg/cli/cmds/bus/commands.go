// Package bus adds commands talking to nodes on the serial bus.
package bus

import (
	"context"
	"fmt"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/tmon/pkg/cli/cmds/codec"
	"github.com/robotalks/tmon/pkg/cli/sh"
	"github.com/robotalks/tmon/pkg/link/serialport"
	"github.com/robotalks/tmon/pkg/msgs"
	"github.com/robotalks/tmon/pkg/reading"
)

func parseAddresses(args []string) ([]byte, error) {
	addrs := make([]byte, 0, len(args))
	for _, arg := range args {
		addr, err := codec.ParseAddress(arg)
		if err != nil {
			return nil, err
		}
		addrs = append(addrs, addr)
	}
	return addrs, nil
}

func telemetry(readings []reading.Reading) []*msgs.Telemetry {
	out := make([]*msgs.Telemetry, len(readings))
	for i, r := range readings {
		out[i] = msgs.NewTelemetry(r)
	}
	return out
}

var (
	// PortsCmd lists serial ports.
	PortsCmd = ishell.Cmd{
		Name: "ports",
		Help: "",
		Func: func(c *ishell.Context) {
			ports, err := serialport.Ports()
			if err != nil {
				c.Err(err)
				return
			}
			if ports == nil {
				ports = []string{}
			}
			sh.Output(c, ports, ports...)
		},
	}

	// PollCmd polls one node.
	PollCmd = ishell.Cmd{
		Name:    "poll",
		Aliases: []string{"p"},
		Help:    "ADDR",
		Func: sh.MustBeOpen(func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Err(fmt.Errorf("ADDR required"))
				return
			}
			addrs, err := parseAddresses(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			s := sh.ShellFrom(c)
			r, err := s.Poller().Poll(context.Background(), addrs[0])
			if err != nil {
				c.Err(err)
				return
			}
			sh.Output(c, msgs.NewTelemetry(r), r.String())
		}),
	}

	// SweepCmd polls nodes in order, as the daemon does every interval.
	SweepCmd = ishell.Cmd{
		Name: "sweep",
		Help: "[ADDR...]",
		Func: sh.MustBeOpen(func(c *ishell.Context) {
			s := sh.ShellFrom(c)
			addrs := s.Config.Addresses()
			if len(c.Args) > 0 {
				var err error
				if addrs, err = parseAddresses(c.Args); err != nil {
					c.Err(err)
					return
				}
			}
			if len(addrs) == 0 {
				c.Err(fmt.Errorf("ADDR required"))
				return
			}
			var readings []reading.Reading
			p := s.Poller(addrs...)
			p.Sink = reading.SinkFunc(func(_ context.Context, r reading.Reading) error {
				readings = append(readings, r)
				return nil
			})
			cycle := p.Sweep(context.Background())
			lines := make([]string, 0, len(readings)+1)
			for _, r := range readings {
				lines = append(lines, r.String())
			}
			lines = append(lines, fmt.Sprintf("%d/%d nodes responded, missed %v",
				len(cycle.Polled), len(addrs), cycle.Missed))
			sh.Output(c, telemetry(readings), lines...)
		}),
	}
)

func init() {
	sh.AddCmds(&PortsCmd, &PollCmd, &SweepCmd)
}
