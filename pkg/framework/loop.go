package framework

import (
	"context"
	"sync"
	"time"

	"github.com/golang/glog"
)

// DefaultLoopInterval is the tick of a Loop without Interval.
const DefaultLoopInterval = 10 * time.Millisecond

// Loop is a single cooperative loop. Each iteration runs all controllers
// in priority order with the same timestamp; nothing inside an iteration
// may block.
type Loop struct {
	Interval time.Duration
	Now      func() time.Time

	controllers [PriorityLevels][]Controller
	runners     []Runnable

	messages []Message
	lock     sync.Mutex

	wakeUpCh chan struct{}
}

// LoopAdder provides specific logic to add components to loop.
type LoopAdder interface {
	AddToLoop(*Loop)
}

// NewLoop creates a Loop.
func NewLoop(interval time.Duration) *Loop {
	return &Loop{
		Interval: interval,
		Now:      time.Now,
		wakeUpCh: make(chan struct{}, 1),
	}
}

// Add adds LoopAdders.
func (l *Loop) Add(adders ...LoopAdder) *Loop {
	for _, adder := range adders {
		adder.AddToLoop(l)
	}
	return l
}

// AddController registers controllers at a priority level.
func (l *Loop) AddController(priorityLevel int, ctls ...Controller) *Loop {
	l.controllers[priorityLevel] = append(l.controllers[priorityLevel], ctls...)
	return l
}

// AddRunnable adds background Runnables started with the loop.
func (l *Loop) AddRunnable(runnables ...Runnable) *Loop {
	l.runners = append(l.runners, runnables...)
	return l
}

// PostMessage implements LoopControl.
func (l *Loop) PostMessage(msg Message) {
	l.lock.Lock()
	l.messages = append(l.messages, msg)
	l.lock.Unlock()
}

// TriggerNext implements LoopControl.
func (l *Loop) TriggerNext() {
	select {
	case l.wakeUpCh <- struct{}{}:
	default:
	}
}

// Run implements Runnable.
func (l *Loop) Run(ctx context.Context) error {
	runner := NewRunnerWith(ctx).Go(l.runners...)
	defer runner.Cancel()

	interval := l.Interval
	if interval <= 0 {
		interval = DefaultLoopInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-runner.Context.Done():
			runner.Cancel()
			if err := runner.Wait(); err != nil {
				return err
			}
			return ctx.Err()
		case <-ticker.C:
			l.Step(ctx)
		case <-l.wakeUpCh:
			l.Step(ctx)
		}
	}
}

// Step runs a single iteration.
func (l *Loop) Step(ctx context.Context) {
	now := time.Now
	if l.Now != nil {
		now = l.Now
	}
	iter := &iteration{loop: l, ctx: ctx, time: now()}
	l.lock.Lock()
	iter.messages, l.messages = l.messages, nil
	l.lock.Unlock()
	for lv := 0; lv < PriorityLevels; lv++ {
		iter.level = lv
		for _, ctl := range l.controllers[lv] {
			if err := ctl.Control(iter); err != nil {
				glog.Errorf("controller error: %v", err)
			}
		}
	}
}

type iteration struct {
	loop     *Loop
	ctx      context.Context
	time     time.Time
	level    int
	messages []Message
}

func (t *iteration) Context() context.Context { return t.ctx }
func (t *iteration) Time() time.Time          { return t.time }
func (t *iteration) PriorityLevel() int       { return t.level }
func (t *iteration) Messages() MessageStore   { return t }
func (t *iteration) PostMessage(msg Message)  { t.loop.PostMessage(msg) }
func (t *iteration) TriggerNext()             { t.loop.TriggerNext() }

func (t *iteration) ProcessMessages(fn func(Message) bool) {
	remains := t.messages[:0]
	for _, msg := range t.messages {
		if !fn(msg) {
			remains = append(remains, msg)
		}
	}
	t.messages = remains
}
