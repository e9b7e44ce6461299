package link

import (
	"context"
	"time"
)

// FrameReader delimits runs arriving on a ByteStream in real time.
type FrameReader struct {
	Stream *ByteStream

	asm *Assembler
	run []byte
}

// NewFrameReader creates a FrameReader.
func NewFrameReader(stream *ByteStream, interByte time.Duration) *FrameReader {
	r := &FrameReader{Stream: stream}
	r.asm = NewAssembler(DefaultCapacity, interByte, func(run []byte) {
		r.run = append(r.run[:0], run...)
	})
	return r
}

// Discard drops partial and queued bytes left from a previous exchange.
func (r *FrameReader) Discard() {
	r.asm.Reset()
	r.run = r.run[:0]
	r.Stream.Drain()
}

// ReadFrame waits up to timeout for a complete run. The returned slice is
// a copy owned by the caller. On timeout partial bytes are discarded and
// ErrTimeout is returned.
func (r *FrameReader) ReadFrame(ctx context.Context, timeout time.Duration) ([]byte, error) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	var interByte <-chan time.Time
	if len(r.run) > 0 {
		return r.take(), nil
	}
	if r.asm.State() == StateAccumulating {
		r.apply(TimerRestart, &interByte)
	}
	for {
		select {
		case <-ctx.Done():
			r.asm.Reset()
			return nil, ctx.Err()
		case <-deadline.C:
			r.asm.Reset()
			return nil, ErrTimeout
		case chunk := <-r.Stream.C():
			if r.apply(r.asm.Feed(chunk.At, chunk.Data...), &interByte) {
				return r.take(), nil
			}
		case <-interByte:
			if r.apply(r.asm.Tick(r.Stream.Now()), &interByte) {
				return r.take(), nil
			}
		}
	}
}

func (r *FrameReader) apply(action TimerAction, timer *<-chan time.Time) bool {
	switch action {
	case TimerRestart:
		if d := r.asm.Deadline().Sub(r.Stream.Now()); d > 0 {
			*timer = time.After(d)
		} else {
			*timer = time.After(0)
		}
	case TimerStop:
		*timer = nil
	}
	return len(r.run) > 0
}

func (r *FrameReader) take() []byte {
	run := append([]byte(nil), r.run...)
	r.run = r.run[:0]
	return run
}
