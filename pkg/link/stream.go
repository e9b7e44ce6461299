package link

import (
	"context"
	"io"
	"time"
)

// Chunk is a piece of input with the time it was read.
type Chunk struct {
	Data []byte
	At   time.Time
}

// ByteStream pumps an io.Reader into a channel of Chunks.
type ByteStream struct {
	Reader io.Reader
	Now    func() time.Time

	ch chan Chunk
}

// NewByteStream creates a ByteStream.
func NewByteStream(r io.Reader) *ByteStream {
	return &ByteStream{Reader: r, Now: time.Now, ch: make(chan Chunk, 64)}
}

// C returns the chunk channel.
func (s *ByteStream) C() <-chan Chunk {
	return s.ch
}

// Drain drops every chunk already queued.
func (s *ByteStream) Drain() (n int) {
	for {
		select {
		case c := <-s.ch:
			n += len(c.Data)
		default:
			return
		}
	}
}

// Run implements Runnable. It returns the first read error, or the
// context error once cancelled.
func (s *ByteStream) Run(ctx context.Context) error {
	buf := make([]byte, DefaultCapacity)
	for {
		n, err := s.Reader.Read(buf)
		if n > 0 {
			chunk := Chunk{Data: append([]byte(nil), buf[:n]...), At: s.Now()}
			select {
			case s.ch <- chunk:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
}
