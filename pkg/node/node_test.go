package node

import (
	"bytes"
	"context"
	"errors"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	fx "github.com/robotalks/tmon/pkg/framework"
	"github.com/robotalks/tmon/pkg/link"
	"github.com/robotalks/tmon/pkg/proto"
)

var fixedSensors = SensorFunc(func(ch int) (int16, error) {
	switch ch {
	case 0:
		return 235, nil
	case 1:
		return 198, nil
	}
	return 0, ErrChannelUnavailable
})

var goldenReply = []byte{0x01, 0x03, 0x02, 0x08, 0xeb, 0x00, 0xc6, 0x00, 0xff, 0x7f, 0xff, 0x7f, 0x90, 0xeb}

func TestDispatchOnlyPollForOwnAddress(t *testing.T) {
	d := &Dispatcher{Address: 3, Sensors: fixedSensors}
	var buf [ReplyLen]byte
	for _, addr := range []byte{1, 2, 3, 4, 247} {
		for cmd := 0; cmd < 256; cmd++ {
			f := proto.Frame{Address: addr, Command: byte(cmd)}
			reply, err := d.Dispatch(f, buf[:])
			require.NoError(t, err)
			if addr == 3 && byte(cmd) == proto.CmdPoll {
				require.Equal(t, goldenReply, reply)
			} else {
				require.Nil(t, reply, "addr %d cmd %#x", addr, cmd)
			}
		}
	}
}

func TestDispatchShortBuffer(t *testing.T) {
	d := &Dispatcher{Address: 3, Sensors: fixedSensors}
	_, err := d.Dispatch(proto.Frame{Address: 3, Command: proto.CmdPoll}, make([]byte, ReplyLen-1))
	require.True(t, errors.Is(err, proto.ErrShortBuffer))
}

func TestSample(t *testing.T) {
	require.Equal(t, proto.Temps{235, 198, proto.Invalid, proto.Invalid}, Sample(fixedSensors))
}

func TestSimSensorsRange(t *testing.T) {
	s := &SimSensors{Rand: rand.New(rand.NewSource(1))}
	invalid := 0
	for n := 0; n < 1000; n++ {
		v, err := s.ReadChannel(n % proto.Channels)
		if err != nil {
			invalid++
			continue
		}
		require.True(t, v >= 50 && v <= 900, "value %d", v)
	}
	require.True(t, invalid > 0 && invalid < 250, "invalid %d", invalid)
}

func TestParseMillidegrees(t *testing.T) {
	cases := []struct {
		in   string
		want int16
		err  bool
	}{
		{"23500", 235, false},
		{"23549", 235, false},
		{"23550", 236, false},
		{"-19750", -198, false},
		{"0", 0, false},
		{"abc", proto.Invalid, true},
		{"9999999", proto.Invalid, true},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			v, err := ParseMillidegrees(c.in)
			if c.err {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			require.Equal(t, c.want, v)
		})
	}
}

func TestHwmonSensors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "temp1_input")
	require.NoError(t, os.WriteFile(path, []byte("21375\n"), 0644))
	s := &HwmonSensors{Paths: [proto.Channels]string{path, filepath.Join(dir, "missing")}}
	require.Equal(t, proto.Temps{214, proto.Invalid, proto.Invalid, proto.Invalid}, Sample(s))
}

type fakeClock struct {
	now time.Time
}

func newLoop() (*fx.Loop, *fakeClock) {
	clk := &fakeClock{now: time.Unix(1000, 0)}
	l := fx.NewLoop(time.Millisecond)
	l.Now = func() time.Time { return clk.now }
	return l, clk
}

func (c *fakeClock) step(l *fx.Loop, d time.Duration) {
	c.now = c.now.Add(d)
	l.Step(context.Background())
}

func TestCachedSensors(t *testing.T) {
	var calls int
	src := SensorFunc(func(ch int) (int16, error) {
		if ch == 0 {
			calls++
		}
		return int16(calls), nil
	})
	cached := NewCachedSensors(src, time.Second)
	_, err := cached.ReadChannel(0)
	require.Error(t, err)

	l, clk := newLoop()
	l.Add(cached)
	clk.step(l, 0)
	v, err := cached.ReadChannel(0)
	require.NoError(t, err)
	require.Equal(t, int16(1), v)
	clk.step(l, 500*time.Millisecond)
	require.Equal(t, 1, calls)
	clk.step(l, 500*time.Millisecond)
	require.Equal(t, 2, calls)
}

type recordingLED struct {
	colors []Color
}

func (l *recordingLED) Set(c Color) error {
	l.colors = append(l.colors, c)
	return nil
}

func TestIndicatorIdentify(t *testing.T) {
	led := &recordingLED{}
	ind := NewIndicator(led)
	now := time.Unix(0, 0)
	require.NoError(t, ind.Update(now))
	require.Equal(t, []Color{ColorOff}, led.colors)

	ind.Identify(2)
	var states []IndicatorState
	for n := 0; n < 6; n++ {
		require.NoError(t, ind.Update(now))
		states = append(states, ind.State())
		now = now.Add(ind.Interval)
	}
	require.Equal(t, []Color{ColorOff, ColorYellow, ColorOff, ColorYellow, ColorOff}, led.colors)
	require.Equal(t, IndicatorOff, ind.State())
	require.Equal(t, IndicatorIdentify, states[0])
	require.Equal(t, IndicatorOff, states[3])
}

func TestIndicatorNeverWaitsBetweenTicks(t *testing.T) {
	led := &recordingLED{}
	ind := NewIndicator(led)
	now := time.Unix(0, 0)
	ind.Identify(1)
	require.NoError(t, ind.Update(now))
	for n := 0; n < 10; n++ {
		now = now.Add(10 * time.Millisecond)
		require.NoError(t, ind.Update(now))
	}
	require.Equal(t, []Color{ColorYellow}, led.colors)
	require.Equal(t, 1, ind.Remaining())
}

func TestIndicatorIdentifyRestoresError(t *testing.T) {
	led := &recordingLED{}
	ind := NewIndicator(led)
	now := time.Unix(0, 0)
	ind.SetError(true)
	require.NoError(t, ind.Update(now))
	ind.Identify(1)
	require.Equal(t, IndicatorIdentify, ind.State())
	for n := 0; n < 3; n++ {
		require.NoError(t, ind.Update(now))
		now = now.Add(ind.Interval)
	}
	require.Equal(t, IndicatorError, ind.State())
	require.Equal(t, []Color{ColorRed, ColorYellow, ColorRed}, led.colors)

	ind.SetError(false)
	require.NoError(t, ind.Update(now))
	require.Equal(t, ColorOff, led.colors[len(led.colors)-1])
}

func TestIndicatorIdentifyMessage(t *testing.T) {
	led := &recordingLED{}
	ind := NewIndicator(led)
	l, clk := newLoop()
	l.Add(ind)
	l.PostMessage(IdentifyMsg{Count: 3})
	clk.step(l, 0)
	require.Equal(t, IndicatorIdentify, ind.State())
	require.Equal(t, 3, ind.Remaining())
	require.Equal(t, ColorYellow, led.colors[len(led.colors)-1])
}

type busRecorder struct {
	bytes.Buffer
	events []string
}

func (b *busRecorder) EnableTransmit() error {
	b.events = append(b.events, "tx")
	return nil
}

func (b *busRecorder) EnableReceive() error {
	b.events = append(b.events, "rx")
	return nil
}

func newResponder(t *testing.T) (*Responder, *busRecorder, chan link.Chunk, *fx.Loop, *fakeClock) {
	bus := &busRecorder{}
	input := make(chan link.Chunk, 8)
	d := &Dispatcher{Address: 3, Sensors: fixedSensors}
	r := NewResponder(d, nil, link.NewHalfDuplex(bus, bus), 0, 0)
	r.Input = input
	l, clk := newLoop()
	l.Add(r)
	return r, bus, input, l, clk
}

func TestResponderAnswersPoll(t *testing.T) {
	r, bus, input, l, clk := newResponder(t)
	poll, err := proto.EncodePoll(3)
	require.NoError(t, err)

	input <- link.Chunk{Data: poll[:2], At: clk.now}
	clk.step(l, 0)
	input <- link.Chunk{Data: poll[2:], At: clk.now.Add(20 * time.Millisecond)}
	clk.step(l, 20*time.Millisecond)
	require.Zero(t, bus.Len())

	clk.step(l, 60*time.Millisecond)
	require.Equal(t, goldenReply, bus.Bytes())
	require.Equal(t, []string{"tx", "rx"}, bus.events)
	require.Equal(t, Stats{Frames: 1, Replies: 1}, r.Stats())
}

func TestResponderSplitsOnSilence(t *testing.T) {
	r, bus, input, l, clk := newResponder(t)
	poll, err := proto.EncodePoll(3)
	require.NoError(t, err)

	input <- link.Chunk{Data: poll[:3], At: clk.now}
	clk.step(l, 0)
	input <- link.Chunk{Data: poll[3:], At: clk.now.Add(80 * time.Millisecond)}
	clk.step(l, 80*time.Millisecond)
	clk.step(l, 80*time.Millisecond)
	require.Zero(t, bus.Len())
	require.Equal(t, Stats{Frames: 2, Rejected: 2}, r.Stats())
}

func TestResponderIgnoresSiblings(t *testing.T) {
	r, bus, input, l, clk := newResponder(t)
	poll, err := proto.EncodePoll(4)
	require.NoError(t, err)
	reply := append([]byte(nil), goldenReply...)

	input <- link.Chunk{Data: poll, At: clk.now}
	clk.step(l, 0)
	clk.step(l, 60*time.Millisecond)
	input <- link.Chunk{Data: reply, At: clk.now}
	clk.step(l, 0)
	clk.step(l, 60*time.Millisecond)
	require.Zero(t, bus.Len())
	require.Empty(t, bus.events)
	require.Equal(t, Stats{Frames: 2, Ignored: 2}, r.Stats())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, io.ErrClosedPipe }

func TestPusher(t *testing.T) {
	var out bytes.Buffer
	ind := NewIndicator(&recordingLED{})
	p := &Pusher{
		Dispatcher: &Dispatcher{Address: 3, Sensors: fixedSensors},
		Conn:       &out,
		Interval:   time.Second,
		Indicator:  ind,
	}
	l, clk := newLoop()
	l.Add(p)
	clk.step(l, 0)
	require.Equal(t, goldenReply, out.Bytes())
	clk.step(l, 500*time.Millisecond)
	require.Len(t, out.Bytes(), ReplyLen)
	clk.step(l, 500*time.Millisecond)
	require.Len(t, out.Bytes(), 2*ReplyLen)

	p.Conn = failingWriter{}
	clk.step(l, time.Second)
	require.Equal(t, IndicatorError, ind.State())
}
