package link

import (
	"io"
	"sync"
)

// Direction switches the bus driver between transmit and receive.
type Direction interface {
	EnableTransmit() error
	EnableReceive() error
}

// Drainer is implemented by ports which can block until queued output
// has left the wire.
type Drainer interface {
	Drain() error
}

// NoDirection is used with transceivers switching direction by themselves.
type NoDirection struct{}

// EnableTransmit implements Direction.
func (NoDirection) EnableTransmit() error { return nil }

// EnableReceive implements Direction.
func (NoDirection) EnableReceive() error { return nil }

// HalfDuplex is the only path to write on a half-duplex bus.
type HalfDuplex struct {
	w   io.Writer
	dir Direction
	mu  sync.Mutex
}

// NewHalfDuplex wraps w. A nil dir means NoDirection.
func NewHalfDuplex(w io.Writer, dir Direction) *HalfDuplex {
	if dir == nil {
		dir = NoDirection{}
	}
	return &HalfDuplex{w: w, dir: dir}
}

// Transmit enables transmit, runs fn with a writer valid only during the
// call, drains the output and enables receive again. Receive is restored
// on every path out, including errors and panics in fn.
func (h *HalfDuplex) Transmit(fn func(w io.Writer) error) (err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	tx := &txWriter{w: h.w}
	defer func() {
		tx.done = true
		if rxErr := h.dir.EnableReceive(); err == nil {
			err = rxErr
		}
	}()
	if err = h.dir.EnableTransmit(); err != nil {
		return err
	}
	if err = fn(tx); err != nil {
		return err
	}
	if d, ok := h.w.(Drainer); ok && tx.written > 0 {
		err = d.Drain()
	}
	return err
}

// Send writes p inside a transmit bracket.
func (h *HalfDuplex) Send(p []byte) error {
	return h.Transmit(func(w io.Writer) error {
		_, err := w.Write(p)
		return err
	})
}

type txWriter struct {
	w       io.Writer
	done    bool
	written int
}

func (t *txWriter) Write(p []byte) (int, error) {
	if t.done {
		return 0, ErrOutsideBracket
	}
	n, err := t.w.Write(p)
	t.written += n
	return n, err
}
