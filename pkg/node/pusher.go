package node

import (
	"fmt"
	"io"
	"net"
	"strconv"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/tmon/pkg/framework"
)

// DefaultPushInterval is the default period of unsolicited reports.
const DefaultPushInterval = 10 * time.Second

// Pusher is the UDP node: it sends a REPLY frame to the controller every
// Interval without being polled.
type Pusher struct {
	Dispatcher *Dispatcher
	Conn       io.Writer
	Interval   time.Duration
	Indicator  *Indicator

	next  time.Time
	txBuf [ReplyLen]byte
}

// DialPusher creates a Pusher sending datagrams to host:port.
func DialPusher(d *Dispatcher, host string, port int, interval time.Duration) (*Pusher, net.Conn, error) {
	conn, err := net.Dial("udp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return nil, nil, err
	}
	return &Pusher{Dispatcher: d, Conn: conn, Interval: interval}, conn, nil
}

// Control implements framework.Controller.
func (p *Pusher) Control(cc fx.ControlContext) error {
	now := cc.Time()
	if now.Before(p.next) {
		return nil
	}
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultPushInterval
	}
	p.next = now.Add(interval)
	err := p.push()
	if p.Indicator != nil {
		p.Indicator.SetError(err != nil)
	}
	return err
}

func (p *Pusher) push() error {
	frame, err := p.Dispatcher.Report(p.txBuf[:])
	if err != nil {
		return err
	}
	if _, err = p.Conn.Write(frame); err != nil {
		return fmt.Errorf("push: %w", err)
	}
	glog.V(2).Infof("pushed %d bytes", len(frame))
	return nil
}

// AddToLoop implements framework.LoopAdder.
func (p *Pusher) AddToLoop(l *fx.Loop) {
	l.AddController(fx.PrLvControl, p)
}
