package main

import (
	"context"
	"flag"
	"net/http"
	"time"

	"github.com/golang/glog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/robotalks/tmon/pkg/collector"
	"github.com/robotalks/tmon/pkg/config"
	"github.com/robotalks/tmon/pkg/env"
	fx "github.com/robotalks/tmon/pkg/framework"
	"github.com/robotalks/tmon/pkg/live"
	"github.com/robotalks/tmon/pkg/mqtt"
	"github.com/robotalks/tmon/pkg/msgs"
	"github.com/robotalks/tmon/pkg/reading"
	"github.com/robotalks/tmon/pkg/store/sqlite"
)

const connectTimeout = 10 * time.Second

func init() {
	config.SetupFlags()
}

func mustPublisher(conf config.MQTTConfig) *mqtt.Publisher {
	enc, err := msgs.ParseEncoding(conf.Encoding)
	if err != nil {
		glog.Exit(err)
	}
	q, err := mqtt.NewQueueFromURL(conf.URL, env.ClientID("tmond"))
	if err != nil {
		glog.Exitf("mqtt: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := q.Connect(ctx); err != nil {
		glog.Exitf("mqtt connect %s: %v", conf.URL, err)
	}
	return mqtt.NewPublisher(q, conf.Topic, enc)
}

func httpServer(addr string, hub *live.Hub) fx.Runnable {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/live", hub.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	return fx.RunFunc(func(ctx context.Context) error {
		glog.Infof("http: listening on %s", addr)
		return fx.RunWithContextCancel(ctx, func() { srv.Close() }, srv.ListenAndServe)
	})
}

func main() {
	flag.Parse()
	conf := config.MustNewConfig()

	store, err := sqlite.Open(conf.DB)
	if err != nil {
		glog.Exit(err)
	}
	defer store.Close()

	hub := live.NewHub()
	sinks := reading.MultiSink{store, hub}
	if conf.MQTT.URL != "" {
		pub := mustPublisher(conf.MQTT)
		defer pub.Queue.Close()
		sinks = append(sinks, pub)
	}
	metrics := collector.NewMetrics(prometheus.DefaultRegisterer)

	var runnables []fx.Runnable
	if conf.UsesSerial() {
		port, dir, err := conf.Serial.Open()
		if err != nil {
			glog.Exit(err)
		}
		bus := collector.NewSerialBus(port, dir, conf.Poll.InterByte)
		poller := collector.NewPoller(bus, sinks, conf.Addresses()...)
		poller.Interval = conf.Poll.Interval
		poller.Timeout = conf.Poll.Timeout
		poller.Retries = conf.Poll.Retries
		poller.Metrics = metrics
		runnables = append(runnables,
			fx.NamedRun("bus", fx.RunFunc(func(ctx context.Context) error {
				return fx.RunWithContextCloser(ctx, port, func() error { return bus.Run(ctx) })
			})),
			fx.NamedRun("poller", poller))
		glog.Infof("polling %v on %s every %s", conf.Poll.Sensors, conf.Serial.Port, conf.Poll.Interval)
	}
	if conf.UsesUDP() {
		rcv, err := collector.Listen(conf.UDP.Listen, sinks)
		if err != nil {
			glog.Exit(err)
		}
		rcv.Metrics = metrics
		runnables = append(runnables, fx.NamedRun("receiver", rcv))
		if conf.StaleAfter > 0 {
			runnables = append(runnables, fx.NamedRun("stale-check", rcv.StaleCheck(conf.StaleAfter)))
		}
		glog.Infof("receiving pushed readings on %s", conf.UDP.Listen)
	}
	if conf.HTTP.Listen != "" {
		runnables = append(runnables, fx.NamedRun("http", httpServer(conf.HTTP.Listen, hub)))
	}

	if err := fx.NewRunner().HandleSignals().Go(runnables...).Wait(); err != nil {
		glog.Exit(err)
	}
}
