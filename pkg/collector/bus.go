package collector

import (
	"context"
	"io"
	"time"

	"github.com/robotalks/tmon/pkg/link"
)

// Bus carries one exchange at a time.
type Bus interface {
	// Send transmits a complete frame.
	Send(ctx context.Context, frame []byte) error
	// Receive waits up to timeout for the next frame attempt.
	Receive(ctx context.Context, timeout time.Duration) ([]byte, error)
}

// SerialBus is a Bus on a half-duplex serial line.
type SerialBus struct {
	Line   *link.HalfDuplex
	Reader *link.FrameReader
}

// NewSerialBus creates a SerialBus over port. The returned bus must be
// started with Run before use.
func NewSerialBus(port io.ReadWriter, dir link.Direction, interByte time.Duration) *SerialBus {
	if interByte <= 0 {
		interByte = link.DefaultInterByteTimeout
	}
	return &SerialBus{
		Line:   link.NewHalfDuplex(port, dir),
		Reader: link.NewFrameReader(link.NewByteStream(port), interByte),
	}
}

// Run implements Runnable. It pumps the receive side of the line.
func (b *SerialBus) Run(ctx context.Context) error {
	return b.Reader.Stream.Run(ctx)
}

// Send implements Bus. Stale input from a previous exchange is dropped
// before the request goes out.
func (b *SerialBus) Send(ctx context.Context, frame []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.Reader.Discard()
	return b.Line.Send(frame)
}

// Receive implements Bus.
func (b *SerialBus) Receive(ctx context.Context, timeout time.Duration) ([]byte, error) {
	return b.Reader.ReadFrame(ctx, timeout)
}
