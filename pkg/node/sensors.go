package node

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	fx "github.com/robotalks/tmon/pkg/framework"
	"github.com/robotalks/tmon/pkg/proto"
)

// ErrChannelUnavailable is reported for disconnected or unreadable channels.
var ErrChannelUnavailable = errors.New("channel unavailable")

// SensorProvider returns the raw value of a channel in tenths of a degree.
type SensorProvider interface {
	ReadChannel(ch int) (int16, error)
}

// SensorFunc is func form of SensorProvider.
type SensorFunc func(ch int) (int16, error)

// ReadChannel implements SensorProvider.
func (f SensorFunc) ReadChannel(ch int) (int16, error) {
	return f(ch)
}

// Sample reads all channels. Any failing channel becomes proto.Invalid.
func Sample(p SensorProvider) (t proto.Temps) {
	for ch := range t {
		val, err := p.ReadChannel(ch)
		if err != nil || val == proto.Invalid {
			t[ch] = proto.Invalid
			continue
		}
		t[ch] = val
	}
	return
}

// SimSensors produces random readings between 5.0 and 90.0 degrees,
// roughly one in ten channel reads is unavailable.
type SimSensors struct {
	Rand *rand.Rand
}

// NewSimSensors creates SimSensors with a time seeded source.
func NewSimSensors() *SimSensors {
	return &SimSensors{Rand: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// ReadChannel implements SensorProvider.
func (s *SimSensors) ReadChannel(int) (int16, error) {
	if s.Rand.Intn(10) == 0 {
		return proto.Invalid, ErrChannelUnavailable
	}
	return int16(50 + s.Rand.Intn(851)), nil
}

// HwmonSensors reads Linux sysfs temperature files (hwmon temp*_input,
// w1_slave temperature) which report millidegrees Celsius.
type HwmonSensors struct {
	Paths [proto.Channels]string
}

// ReadChannel implements SensorProvider.
func (s *HwmonSensors) ReadChannel(ch int) (int16, error) {
	if ch < 0 || ch >= len(s.Paths) || s.Paths[ch] == "" {
		return proto.Invalid, ErrChannelUnavailable
	}
	data, err := os.ReadFile(s.Paths[ch])
	if err != nil {
		return proto.Invalid, fmt.Errorf("channel %d: %w", ch, err)
	}
	return ParseMillidegrees(strings.TrimSpace(string(data)))
}

// ParseMillidegrees converts a millidegree string to tenths of a degree,
// rounding half away from zero.
func ParseMillidegrees(s string) (int16, error) {
	milli, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return proto.Invalid, fmt.Errorf("%w: %v", ErrChannelUnavailable, err)
	}
	if milli >= 0 {
		milli += 50
	} else {
		milli -= 50
	}
	tenths := milli / 100
	if tenths >= int64(proto.Invalid) || tenths < -32768 {
		return proto.Invalid, ErrChannelUnavailable
	}
	return int16(tenths), nil
}

// CachedSensors samples Source on the loop and serves the last sample, so
// a reply never waits on a slow sensor read.
type CachedSensors struct {
	Source   SensorProvider
	Interval time.Duration

	temps proto.Temps
	next  time.Time
}

// NewCachedSensors creates CachedSensors with all channels invalid until
// the first sample.
func NewCachedSensors(src SensorProvider, interval time.Duration) *CachedSensors {
	return &CachedSensors{Source: src, Interval: interval, temps: proto.AllInvalid()}
}

// ReadChannel implements SensorProvider.
func (c *CachedSensors) ReadChannel(ch int) (int16, error) {
	if ch < 0 || ch >= len(c.temps) || c.temps[ch] == proto.Invalid {
		return proto.Invalid, ErrChannelUnavailable
	}
	return c.temps[ch], nil
}

// Control implements framework.Controller.
func (c *CachedSensors) Control(cc fx.ControlContext) error {
	now := cc.Time()
	if now.Before(c.next) {
		return nil
	}
	c.next = now.Add(c.Interval)
	c.temps = Sample(c.Source)
	return nil
}

// AddToLoop implements framework.LoopAdder.
func (c *CachedSensors) AddToLoop(l *fx.Loop) {
	l.AddController(fx.PrLvSense, c)
}
