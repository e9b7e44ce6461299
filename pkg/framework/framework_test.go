package framework

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAggregatedError(t *testing.T) {
	var errs AggregatedError
	require.NoError(t, errs.Add(nil, nil).Aggregate())

	first := errors.New("first")
	errs.Add(first)
	require.Equal(t, "first", errs.Aggregate().Error())

	errs.Add(io.EOF)
	err := errs.Aggregate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "multiple errors:")
	require.True(t, errors.Is(err, io.EOF))
	require.True(t, errors.Is(err, first))
}

func TestLoopStepOrder(t *testing.T) {
	now := time.Unix(100, 0)
	l := NewLoop(time.Millisecond)
	l.Now = func() time.Time { return now }

	var order []int
	record := func(lv int) Controller {
		return ControlFunc(func(cc ControlContext) error {
			require.Equal(t, lv, cc.PriorityLevel())
			require.Equal(t, now, cc.Time())
			order = append(order, lv)
			return nil
		})
	}
	l.AddController(PrLvActuate, record(PrLvActuate))
	l.AddController(PrLvSense, record(PrLvSense))
	l.AddController(PrLvControl, record(PrLvControl), ControlFunc(func(ControlContext) error {
		return errors.New("logged and ignored")
	}))
	l.Step(context.Background())
	require.Equal(t, []int{PrLvSense, PrLvControl, PrLvActuate}, order)
}

func TestLoopMessages(t *testing.T) {
	l := NewLoop(time.Millisecond)
	var seen, taken []Message
	l.AddController(PrLvSense, ControlFunc(func(cc ControlContext) error {
		cc.Messages().ProcessMessages(func(msg Message) bool {
			if n, ok := msg.(int); ok {
				taken = append(taken, n)
				return true
			}
			return false
		})
		return nil
	}))
	l.AddController(PrLvControl, ControlFunc(func(cc ControlContext) error {
		cc.Messages().ProcessMessages(func(msg Message) bool {
			seen = append(seen, msg)
			return false
		})
		return nil
	}))

	l.PostMessage(1)
	l.PostMessage("x")
	l.PostMessage(2)
	l.Step(context.Background())
	require.Equal(t, []Message{1, 2}, taken)
	require.Equal(t, []Message{"x"}, seen)

	// messages are consumed by the iteration they were delivered to
	seen = nil
	l.Step(context.Background())
	require.Empty(t, seen)
}

func TestLoopRunStopsWithContext(t *testing.T) {
	l := NewLoop(time.Millisecond)
	ticks := make(chan struct{}, 1)
	l.AddController(PrLvNormal, ControlFunc(func(ControlContext) error {
		select {
		case ticks <- struct{}{}:
		default:
		}
		return nil
	}))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()
	<-ticks
	cancel()
	select {
	case err := <-done:
		require.Equal(t, context.Canceled, err)
	case <-time.After(time.Second):
		t.Fatal("loop did not stop")
	}
}

func TestLoopRunnableFailureStopsLoop(t *testing.T) {
	failure := errors.New("broken")
	l := NewLoop(time.Millisecond).AddRunnable(RunFunc(func(context.Context) error {
		return failure
	}))
	err := l.Run(context.Background())
	require.True(t, errors.Is(err, failure))
}

func TestRunnerWaitAggregates(t *testing.T) {
	failure := errors.New("broken")
	r := NewRunner().Go(
		NamedRun("waiter", RunFunc(func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		})),
		RunFunc(func(context.Context) error { return failure }),
	)
	err := r.Wait()
	require.Error(t, err)
	require.True(t, errors.Is(err, failure))
}

type closeRecorder struct {
	closed chan struct{}
}

func (c *closeRecorder) Close() error {
	close(c.closed)
	return nil
}

func TestRunWithContextCloser(t *testing.T) {
	t.Run("cancel closes", func(t *testing.T) {
		c := &closeRecorder{closed: make(chan struct{})}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := RunWithContextCloser(ctx, c, func() error {
			<-c.closed
			return io.EOF
		})
		require.Equal(t, context.Canceled, err)
	})
	t.Run("return closes", func(t *testing.T) {
		c := &closeRecorder{closed: make(chan struct{})}
		err := RunWithContextCloser(context.Background(), c, func() error {
			return io.EOF
		})
		require.Equal(t, io.EOF, err)
		<-c.closed
	})
}
