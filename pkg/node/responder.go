package node

import (
	"io"
	"sync/atomic"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/tmon/pkg/framework"
	"github.com/robotalks/tmon/pkg/link"
	"github.com/robotalks/tmon/pkg/proto"
)

// Stats counts frame attempts seen by a Responder.
type Stats struct {
	Frames   uint64
	Rejected uint64
	Ignored  uint64
	Replies  uint64
	TxErrors uint64
}

// Responder is the RS-485 node. Silence on the bus delimits frames,
// frames accepted by the Dispatcher are answered inside a transmit
// bracket.
type Responder struct {
	Dispatcher *Dispatcher
	Bus        *link.HalfDuplex
	Stream     *link.ByteStream
	Input      <-chan link.Chunk

	asm   *link.Assembler
	txBuf [ReplyLen]byte

	frames, rejected, ignored, replies, txErrors atomic.Uint64
}

// NewResponder creates a Responder reading frames from r and answering on
// bus. interByte <= 0 uses the default timeout.
func NewResponder(d *Dispatcher, r io.Reader, bus *link.HalfDuplex, interByte time.Duration, capacity int) *Responder {
	if interByte <= 0 {
		interByte = link.DefaultInterByteTimeout
	}
	resp := &Responder{Dispatcher: d, Bus: bus}
	if r != nil {
		resp.Stream = link.NewByteStream(r)
		resp.Input = resp.Stream.C()
	}
	resp.asm = link.NewAssembler(capacity, interByte, resp.handle)
	return resp
}

// Stats returns a snapshot of the counters.
func (r *Responder) Stats() Stats {
	return Stats{
		Frames:   r.frames.Load(),
		Rejected: r.rejected.Load(),
		Ignored:  r.ignored.Load(),
		Replies:  r.replies.Load(),
		TxErrors: r.txErrors.Load(),
	}
}

// AddToLoop implements framework.LoopAdder.
func (r *Responder) AddToLoop(l *fx.Loop) {
	if r.Stream != nil {
		l.AddRunnable(fx.NamedRun("bus-reader", r.Stream))
	}
	l.AddController(fx.PrLvSense, fx.ControlFunc(r.receive))
	l.AddController(fx.PrLvControl, fx.ControlFunc(r.expire))
}

func (r *Responder) receive(fx.ControlContext) error {
	for {
		select {
		case chunk, ok := <-r.Input:
			if !ok {
				return nil
			}
			r.asm.Feed(chunk.At, chunk.Data...)
		default:
			return nil
		}
	}
}

func (r *Responder) expire(cc fx.ControlContext) error {
	r.asm.Tick(cc.Time())
	return nil
}

func (r *Responder) handle(run []byte) {
	r.frames.Add(1)
	f, err := proto.Decode(run)
	if err != nil {
		r.rejected.Add(1)
		return
	}
	if !r.Dispatcher.Accepts(f) {
		r.ignored.Add(1)
		return
	}
	err = r.Bus.Transmit(func(w io.Writer) error {
		reply, err := r.Dispatcher.Dispatch(f, r.txBuf[:])
		if err != nil {
			return err
		}
		_, err = w.Write(reply)
		return err
	})
	if err != nil {
		r.txErrors.Add(1)
		glog.Warningf("reply to %s failed: %v", f, err)
		return
	}
	r.replies.Add(1)
	glog.V(4).Infof("replied to %s", f)
}
