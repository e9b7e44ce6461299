// Package reading defines the record produced for every successful poll
// or push, and the sink it's handed to.
package reading

import (
	"fmt"
	"strings"
	"time"

	"github.com/robotalks/tmon/pkg/proto"
)

// Channel is one temperature channel in tenths of a degree Celsius.
type Channel struct {
	Tenths int16
	Valid  bool
}

// Celsius converts the value to degrees.
func (c Channel) Celsius() float64 {
	return float64(c.Tenths) / 10
}

// String formats the channel the way log lines show it.
func (c Channel) String() string {
	if !c.Valid {
		return "--.-"
	}
	return fmt.Sprintf("%.1f", c.Celsius())
}

// Reading is the record of one node's channels at a point in time.
type Reading struct {
	Time     time.Time
	Address  byte
	Channels [proto.Channels]Channel
}

// FromTemps builds a Reading from raw reply values. Invalid channels are
// the zero Channel.
func FromTemps(t time.Time, addr byte, temps proto.Temps) Reading {
	r := Reading{Time: t, Address: addr}
	for i, v := range temps {
		if v != proto.Invalid {
			r.Channels[i] = Channel{Tenths: v, Valid: true}
		}
	}
	return r
}

// Temps converts back to raw reply values.
func (r Reading) Temps() (t proto.Temps) {
	for i, ch := range r.Channels {
		if ch.Valid {
			t[i] = ch.Tenths
		} else {
			t[i] = proto.Invalid
		}
	}
	return
}

// String implements fmt.Stringer.
func (r Reading) String() string {
	vals := make([]string, len(r.Channels))
	for i, ch := range r.Channels {
		vals[i] = ch.String()
	}
	return fmt.Sprintf("addr %d: temps=[%s]", r.Address, strings.Join(vals, ", "))
}
