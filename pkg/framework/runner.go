package framework

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/golang/glog"
)

type namedRunnable struct {
	Runnable
	name string
}

func (r *namedRunnable) Name() string {
	return r.name
}

// NamedRun wraps a Runnable with a name.
func NamedRun(name string, runnable Runnable) Runnable {
	return &namedRunnable{name: name, Runnable: runnable}
}

// Runner runs multiple Runnables and collect errors.
type Runner struct {
	Context context.Context

	cancel  context.CancelFunc
	started int
	errCh   chan error
	exitCh  chan struct{}
}

// NewRunner creates a runner with a default background context.
func NewRunner() *Runner {
	return NewRunnerWith(context.Background())
}

// NewRunnerWith creates a runner with a specified context.
func NewRunnerWith(ctx context.Context) *Runner {
	ctx, cancel := context.WithCancel(ctx)
	return &Runner{
		Context: ctx,
		cancel:  cancel,
		errCh:   make(chan error, 4),
		exitCh:  make(chan struct{}),
	}
}

// HandleSignals cancels the runner on SIGINT or SIGTERM. A second signal
// forces Wait to return.
func (r *Runner) HandleSignals() *Runner {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		glog.Info("stop requested")
		r.cancel()
		<-sigCh
		glog.Error("stop requested again, force exit")
		close(r.exitCh)
	}()
	return r
}

// OnSignal calls fn every time sig is received until the runner stops.
func (r *Runner) OnSignal(sig os.Signal, fn func()) *Runner {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, sig)
	go func() {
		defer signal.Stop(sigCh)
		for {
			select {
			case <-sigCh:
				fn()
			case <-r.Context.Done():
				return
			}
		}
	}()
	return r
}

// Go spawns Runnables. When any of them stops, the rest are cancelled.
func (r *Runner) Go(runners ...Runnable) *Runner {
	for _, runner := range runners {
		name := strconv.Itoa(r.started)
		if named, ok := runner.(Named); ok {
			name = named.Name()
		}
		r.started++
		glog.V(4).Infof("start Runner[%s]", name)
		go func(runner Runnable, name string) {
			err := runner.Run(r.Context)
			if err != nil && err != context.Canceled {
				glog.Errorf("Runner[%s] stopped: %v", name, err)
			} else {
				glog.V(4).Infof("Runner[%s] stopped", name)
			}
			r.cancel()
			r.errCh <- err
		}(runner, name)
	}
	return r
}

// Cancel stops all Runnables.
func (r *Runner) Cancel() {
	r.cancel()
}

// Wait waits until all Runnables stop and aggregates their errors.
func (r *Runner) Wait() error {
	var errs AggregatedError
	for ; r.started > 0; r.started-- {
		select {
		case <-r.exitCh:
			return errors.New("forced exit")
		case err := <-r.errCh:
			if err != context.Canceled {
				errs.Add(err)
			}
		}
	}
	return errs.Aggregate()
}

// RunWithContextCancel runs a func which doesn't accept a context.
// onCancel is called only when the context is canceled.
func RunWithContextCancel(ctx context.Context, onCancel func(), fn func() error) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- fn()
	}()
	select {
	case <-ctx.Done():
		if onCancel != nil {
			onCancel()
		}
		<-errCh
		return context.Canceled
	case err := <-errCh:
		return err
	}
}

// RunWithContext is simplified form with no cancel callback.
func RunWithContext(ctx context.Context, fn func() error) error {
	return RunWithContextCancel(ctx, nil, fn)
}

// RunWithContextCloser ensures closer.Close is called either on cancel or
// when fn returns. Blocking reads on sockets and serial ports are
// unblocked this way.
func RunWithContextCloser(ctx context.Context, closer io.Closer, fn func() error) error {
	var closed bool
	err := RunWithContextCancel(ctx, func() {
		closer.Close()
		closed = true
	}, fn)
	if !closed {
		closer.Close()
	}
	return err
}
