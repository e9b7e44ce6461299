package collector

import (
	"context"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/tmon/pkg/proto"
	"github.com/robotalks/tmon/pkg/reading"
)

// Defaults of Poller.
const (
	DefaultPollInterval = 60 * time.Second
	DefaultPollTimeout  = 200 * time.Millisecond
	DefaultPollRetries  = 2
)

// Cycle is the result of one sweep.
type Cycle struct {
	Seq    int
	Polled []byte
	Missed []byte
}

// Poller sweeps Addresses in order on a Bus, one outstanding request at
// a time.
type Poller struct {
	Bus       Bus
	Sink      reading.Sink
	Addresses []byte
	Interval  time.Duration
	Timeout   time.Duration
	// Retries is the number of resends after the first attempt.
	Retries int
	Metrics *Metrics
	Now     func() time.Time

	cycles int
}

// NewPoller creates a Poller with defaults.
func NewPoller(bus Bus, sink reading.Sink, addrs ...byte) *Poller {
	return &Poller{
		Bus:       bus,
		Sink:      sink,
		Addresses: addrs,
		Interval:  DefaultPollInterval,
		Timeout:   DefaultPollTimeout,
		Retries:   DefaultPollRetries,
		Now:       time.Now,
	}
}

func (p *Poller) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// Poll requests one node, resending up to Retries times. A miss returns
// a *MissError.
func (p *Poller) Poll(ctx context.Context, addr byte) (reading.Reading, error) {
	req, err := proto.EncodePoll(addr)
	if err != nil {
		return reading.Reading{}, err
	}
	miss := &MissError{Address: addr}
	for attempt := 0; attempt <= p.Retries; attempt++ {
		if attempt > 0 {
			p.Metrics.retry(addr)
		}
		miss.Attempts++
		temps, err := p.exchange(ctx, addr, req)
		if err == nil {
			return reading.FromTemps(p.now(), addr, temps), nil
		}
		if ctx.Err() != nil {
			return reading.Reading{}, ctx.Err()
		}
		glog.V(2).Infof("addr %d: attempt %d failed: %v", addr, miss.Attempts, err)
		miss.Last = err
	}
	return reading.Reading{}, miss
}

// exchange sends req and waits for a REPLY from addr. Frames from other
// nodes or the echo of the request are skipped within the same deadline;
// bytes which do not decode fail the attempt.
func (p *Poller) exchange(ctx context.Context, addr byte, req []byte) (proto.Temps, error) {
	if err := p.Bus.Send(ctx, req); err != nil {
		return proto.Temps{}, err
	}
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultPollTimeout
	}
	deadline := time.Now().Add(timeout)
	for {
		remains := time.Until(deadline)
		if remains <= 0 {
			return proto.Temps{}, ErrTimeout
		}
		data, err := p.Bus.Receive(ctx, remains)
		if err != nil {
			return proto.Temps{}, err
		}
		f, err := proto.Decode(data)
		if err != nil {
			return proto.Temps{}, err
		}
		if !f.IsReplyFrom(addr) {
			glog.V(4).Infof("addr %d: skip %s", addr, f)
			continue
		}
		return proto.ParseReply(f.Payload)
	}
}

// Sweep polls every address once, in order, and stores the readings.
func (p *Poller) Sweep(ctx context.Context) Cycle {
	p.cycles++
	cycle := Cycle{Seq: p.cycles}
	for _, addr := range p.Addresses {
		if ctx.Err() != nil {
			break
		}
		r, err := p.Poll(ctx, addr)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			glog.Warningf("%v", err)
			cycle.Missed = append(cycle.Missed, addr)
			p.Metrics.poll(addr, ResultMiss)
			continue
		}
		cycle.Polled = append(cycle.Polled, addr)
		p.Metrics.poll(addr, ResultOK)
		p.Metrics.observe(r)
		glog.Info(r)
		if err := p.Sink.Insert(ctx, r); err != nil {
			glog.Errorf("store addr %d: %v", addr, err)
		}
	}
	glog.Infof("cycle %d: %d/%d nodes responded", cycle.Seq, len(cycle.Polled), len(p.Addresses))
	return cycle
}

// Run implements Runnable: it sweeps immediately and then every Interval
// until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		p.Sweep(ctx)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
