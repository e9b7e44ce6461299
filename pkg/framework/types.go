package framework

import (
	"context"
	"time"
)

// Named is an abstraction for things with a name.
type Named interface {
	Name() string
}

// Runnable defines a generic interface for background runners.
type Runnable interface {
	Run(context.Context) error
}

// RunFunc is the func form of Runnable.
type RunFunc func(context.Context) error

// Run implements Runnable.
func (f RunFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// Message is anything posted to a Loop for controllers to pick up.
type Message interface{}

// Controller is invoked once per loop iteration. It must not block.
type Controller interface {
	Control(ControlContext) error
}

// ControlFunc defines the func form of Controller.
type ControlFunc func(ControlContext) error

// Control implements Controller.
func (f ControlFunc) Control(ctx ControlContext) error {
	return f(ctx)
}

// ControlContext provides the context of current control iteration.
type ControlContext interface {
	// Context retrieves context.Context.
	Context() context.Context
	// Time is the monotonic time this iteration started.
	Time() time.Time
	// PriorityLevel gets the current priority level.
	PriorityLevel() int
	// Messages gives access to messages posted before this iteration.
	Messages() MessageStore

	LoopControl
}

// LoopControl exposes access to the controlling loop.
type LoopControl interface {
	// PostMessage enqueues the message for the next iteration.
	PostMessage(Message)
	// TriggerNext schedules the next iteration immediately.
	TriggerNext()
}

// MessageStore holds messages of the current iteration.
type MessageStore interface {
	// ProcessMessages calls fn on each message; messages for which fn
	// returns true are taken and hidden from later controllers.
	ProcessMessages(fn func(Message) bool)
}

// PriorityLevels is the total levels of priorities.
const PriorityLevels int = 16

// Predefined priority levels
const (
	PrLvTop    int = 0
	PrLvHigh   int = 4
	PrLvNormal int = 8
	PrLvLow    int = 12
	PrLvIdle   int = PriorityLevels - 1

	// PrLvSense is for controllers collecting input.
	PrLvSense = PrLvHigh
	// PrLvControl is for controllers making decisions.
	PrLvControl = PrLvNormal
	// PrLvActuate is for controllers driving outputs.
	PrLvActuate = PrLvLow
)
