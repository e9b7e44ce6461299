package main

import (
	"context"
	"flag"
	"io"
	"syscall"

	"github.com/golang/glog"

	"github.com/robotalks/tmon/pkg/config"
	fx "github.com/robotalks/tmon/pkg/framework"
	"github.com/robotalks/tmon/pkg/link"
	"github.com/robotalks/tmon/pkg/link/gpio"
	"github.com/robotalks/tmon/pkg/node"
)

func init() {
	config.SetupNodeFlags()
}

func newSensors(conf config.SensorsConfig) node.SensorProvider {
	if conf.Kind == config.SensorsHwmon {
		s := &node.HwmonSensors{}
		copy(s.Paths[:], conf.Paths)
		return s
	}
	return node.NewSimSensors()
}

func mustLED(conf config.LEDConfig) node.LED {
	if conf.Pin == "" {
		return node.LogLED{}
	}
	pin, err := gpio.Open(conf.Pin, conf.ActiveLow)
	if err != nil {
		glog.Exit(err)
	}
	return &node.MonoLED{Switch: pin}
}

func main() {
	flag.Parse()
	conf := config.MustNewNodeConfig()

	sensors := node.NewCachedSensors(newSensors(conf.Sensors), conf.Sensors.Sample)
	d := &node.Dispatcher{Address: byte(conf.Address), Sensors: sensors}
	indicator := node.NewIndicator(mustLED(conf.LED))
	loop := fx.NewLoop(conf.Tick).Add(sensors, indicator)

	var closer io.Closer
	var stats func()
	switch conf.Transport {
	case config.TransportRS485:
		port, dir, err := conf.Serial.Open()
		if err != nil {
			glog.Exit(err)
		}
		resp := node.NewResponder(d, port, link.NewHalfDuplex(port, dir), conf.InterByte, conf.Buffer)
		loop.Add(resp)
		closer = port
		stats = func() { glog.Infof("node %d: %+v", conf.Address, resp.Stats()) }
		glog.Infof("node %d: answering on %s", conf.Address, conf.Serial.Port)
	case config.TransportUDP:
		pusher, conn, err := node.DialPusher(d, conf.Push.Host, conf.Push.Port, conf.Push.Interval)
		if err != nil {
			glog.Exit(err)
		}
		pusher.Indicator = indicator
		loop.Add(pusher)
		closer = conn
		stats = func() {}
		glog.Infof("node %d: pushing to %s:%d every %s", conf.Address, conf.Push.Host, conf.Push.Port, conf.Push.Interval)
	}

	runner := fx.NewRunner().HandleSignals()
	runner.OnSignal(syscall.SIGUSR1, func() {
		loop.PostMessage(node.IdentifyMsg{Count: conf.Address})
	})
	runner.Go(fx.NamedRun("node", fx.RunFunc(func(ctx context.Context) error {
		return fx.RunWithContextCloser(ctx, closer, func() error { return loop.Run(ctx) })
	})))
	err := runner.Wait()
	stats()
	if err != nil {
		glog.Exit(err)
	}
}
