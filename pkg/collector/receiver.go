package collector

import (
	"context"
	"net"
	"sort"
	"sync"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/tmon/pkg/framework"
	"github.com/robotalks/tmon/pkg/proto"
	"github.com/robotalks/tmon/pkg/reading"
)

// MaxDatagram is the largest datagram read from pushing nodes.
const MaxDatagram = 64

// Receiver accepts REPLY frames pushed over UDP at any time.
type Receiver struct {
	Conn    net.PacketConn
	Sink    reading.Sink
	Metrics *Metrics
	Now     func() time.Time

	lock     sync.Mutex
	lastSeen map[byte]time.Time
}

// NewReceiver creates a Receiver on an existing connection.
func NewReceiver(conn net.PacketConn, sink reading.Sink) *Receiver {
	return &Receiver{
		Conn:     conn,
		Sink:     sink,
		Now:      time.Now,
		lastSeen: make(map[byte]time.Time),
	}
}

// Listen opens a UDP socket on addr, e.g. ":5005".
func Listen(addr string, sink reading.Sink) (*Receiver, error) {
	conn, err := net.ListenPacket("udp", addr)
	if err != nil {
		return nil, err
	}
	return NewReceiver(conn, sink), nil
}

// Run implements Runnable. The connection is closed when ctx is cancelled.
func (r *Receiver) Run(ctx context.Context) error {
	return fx.RunWithContextCloser(ctx, r.Conn, func() error {
		var buf [MaxDatagram]byte
		for {
			n, from, err := r.Conn.ReadFrom(buf[:])
			if err != nil {
				return err
			}
			if _, err := r.Handle(ctx, buf[:n]); err != nil {
				glog.V(2).Infof("datagram from %v: %v", from, err)
			}
		}
	})
}

// Handle validates one datagram and stores the reading it carries.
func (r *Receiver) Handle(ctx context.Context, data []byte) (reading.Reading, error) {
	f, err := proto.Decode(data)
	if err != nil {
		r.Metrics.push(ResultInvalid)
		return reading.Reading{}, err
	}
	if f.Command != proto.CmdReply {
		r.Metrics.push(ResultInvalid)
		return reading.Reading{}, ErrNotReply
	}
	temps, err := proto.ParseReply(f.Payload)
	if err != nil {
		r.Metrics.push(ResultInvalid)
		return reading.Reading{}, err
	}
	rd := reading.FromTemps(r.now(), f.Address, temps)
	r.lock.Lock()
	if r.lastSeen == nil {
		r.lastSeen = make(map[byte]time.Time)
	}
	r.lastSeen[f.Address] = rd.Time
	r.lock.Unlock()

	r.Metrics.push(ResultOK)
	r.Metrics.observe(rd)
	glog.Info(rd)
	return rd, r.Sink.Insert(ctx, rd)
}

func (r *Receiver) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// LastSeen returns when addr last pushed a valid reading.
func (r *Receiver) LastSeen(addr byte) (time.Time, bool) {
	r.lock.Lock()
	defer r.lock.Unlock()
	t, ok := r.lastSeen[addr]
	return t, ok
}

// Stale lists, in ascending order, nodes seen before but not within
// maxAge.
func (r *Receiver) Stale(maxAge time.Duration) []byte {
	now := r.now()
	var addrs []byte
	r.lock.Lock()
	for addr, seen := range r.lastSeen {
		if now.Sub(seen) >= maxAge {
			addrs = append(addrs, addr)
		}
	}
	r.lock.Unlock()
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })
	return addrs
}

// StaleCheck returns a Runnable logging stale nodes every maxAge.
func (r *Receiver) StaleCheck(maxAge time.Duration) fx.Runnable {
	return fx.RunFunc(func(ctx context.Context) error {
		ticker := time.NewTicker(maxAge)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				if stale := r.Stale(maxAge); len(stale) > 0 {
					glog.Warningf("no push within %s from %v", maxAge, stale)
				}
			}
		}
	})
}
