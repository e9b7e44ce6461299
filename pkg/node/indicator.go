package node

import (
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/tmon/pkg/framework"
)

// DefaultBlinkInterval is the on and off time of an identify blink.
const DefaultBlinkInterval = 300 * time.Millisecond

// Color of the status LED.
type Color int

// Colors
const (
	ColorOff Color = iota
	ColorRed
	ColorYellow
)

// String implements fmt.Stringer.
func (c Color) String() string {
	switch c {
	case ColorRed:
		return "red"
	case ColorYellow:
		return "yellow"
	}
	return "off"
}

// LED is the status light.
type LED interface {
	Set(Color) error
}

// Switch is a single on/off output, e.g. a gpio.Pin.
type Switch interface {
	Set(active bool) error
}

// MonoLED drives a single color LED: on for any color but ColorOff.
type MonoLED struct {
	Switch Switch
}

// Set implements LED.
func (l *MonoLED) Set(c Color) error {
	return l.Switch.Set(c != ColorOff)
}

// LogLED logs color changes, used when the node has no LED.
type LogLED struct{}

// Set implements LED.
func (LogLED) Set(c Color) error {
	glog.V(2).Infof("led: %s", c)
	return nil
}

// IndicatorState is the state of an Indicator.
type IndicatorState int

// Indicator states
const (
	IndicatorOff IndicatorState = iota
	IndicatorError
	IndicatorIdentify
)

// String implements fmt.Stringer.
func (s IndicatorState) String() string {
	switch s {
	case IndicatorError:
		return "error"
	case IndicatorIdentify:
		return "identify"
	}
	return "off"
}

// IdentifyMsg asks the Indicator to blink Count times.
type IdentifyMsg struct {
	Count int
}

// Indicator drives the LED from the loop. Identify blinks yellow and then
// returns to the base state, steady red on error or off.
type Indicator struct {
	LED      LED
	Interval time.Duration

	base      IndicatorState
	state     IndicatorState
	remaining int
	on        bool
	next      time.Time
	color     Color
	applied   bool
}

// NewIndicator creates an Indicator.
func NewIndicator(led LED) *Indicator {
	if led == nil {
		led = LogLED{}
	}
	return &Indicator{LED: led, Interval: DefaultBlinkInterval}
}

// State returns the current state.
func (i *Indicator) State() IndicatorState {
	return i.state
}

// Remaining returns the blinks left in identify.
func (i *Indicator) Remaining() int {
	return i.remaining
}

// Identify starts n blinks, restarting any identify in progress.
func (i *Indicator) Identify(n int) {
	if n <= 0 {
		return
	}
	i.state = IndicatorIdentify
	i.remaining = n
	i.on = false
	i.next = time.Time{}
}

// SetError sets the base state. It shows once identify completes.
func (i *Indicator) SetError(failed bool) {
	i.base = IndicatorOff
	if failed {
		i.base = IndicatorError
	}
	if i.state != IndicatorIdentify {
		i.state = i.base
	}
}

// Update advances the blink state machine to now and drives the LED.
func (i *Indicator) Update(now time.Time) error {
	if i.state == IndicatorIdentify && !now.Before(i.next) {
		i.next = now.Add(i.Interval)
		if i.on {
			i.on = false
			i.remaining--
			if i.remaining <= 0 {
				i.state = i.base
			}
		} else {
			i.on = true
		}
	}
	return i.show(i.currentColor())
}

func (i *Indicator) currentColor() Color {
	switch i.state {
	case IndicatorIdentify:
		if i.on {
			return ColorYellow
		}
		return ColorOff
	case IndicatorError:
		return ColorRed
	}
	return ColorOff
}

func (i *Indicator) show(c Color) error {
	if i.applied && c == i.color {
		return nil
	}
	if err := i.LED.Set(c); err != nil {
		return err
	}
	i.color, i.applied = c, true
	return nil
}

// Control implements framework.Controller.
func (i *Indicator) Control(cc fx.ControlContext) error {
	cc.Messages().ProcessMessages(func(msg fx.Message) bool {
		if m, ok := msg.(IdentifyMsg); ok {
			glog.Infof("identify: %d blinks", m.Count)
			i.Identify(m.Count)
			return true
		}
		return false
	})
	return i.Update(cc.Time())
}

// AddToLoop implements framework.LoopAdder.
func (i *Indicator) AddToLoop(l *fx.Loop) {
	l.AddController(fx.PrLvActuate, i)
}
