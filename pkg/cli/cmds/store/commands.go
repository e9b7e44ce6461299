// Package store adds commands reading the database.
package store

import (
	"context"
	"fmt"
	"strconv"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/tmon/pkg/cli/sh"
	"github.com/robotalks/tmon/pkg/msgs"
)

// DefaultRecent is the number of readings shown by recent.
const DefaultRecent = 10

var (
	// RecentCmd shows the latest stored readings.
	RecentCmd = ishell.Cmd{
		Name: "recent",
		Help: "[N]",
		Func: func(c *ishell.Context) {
			n := DefaultRecent
			if len(c.Args) > 0 {
				val, err := strconv.Atoi(c.Args[0])
				if err != nil || val <= 0 {
					c.Err(fmt.Errorf("invalid N %q", c.Args[0]))
					return
				}
				n = val
			}
			s, err := sh.ShellFrom(c).Store()
			if err != nil {
				c.Err(err)
				return
			}
			readings, err := s.Recent(context.Background(), n)
			if err != nil {
				c.Err(err)
				return
			}
			out := make([]*msgs.Telemetry, len(readings))
			lines := make([]string, len(readings))
			for i, r := range readings {
				out[i] = msgs.NewTelemetry(r)
				lines[i] = r.Time.Format("2006-01-02 15:04:05") + " " + r.String()
			}
			sh.Output(c, out, lines...)
		},
	}
)

func init() {
	sh.AddCmds(&RecentCmd)
}
