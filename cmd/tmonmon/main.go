package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/tmon/pkg/env"
	fx "github.com/robotalks/tmon/pkg/framework"
	"github.com/robotalks/tmon/pkg/mqtt"
	"github.com/robotalks/tmon/pkg/msgs"
)

var (
	mqttURL  = "mqtt://localhost:1883/tmon/"
	topic    = mqtt.DefaultTopic
	encoding = string(msgs.JSON)
)

func init() {
	if val := os.Getenv("TMON_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
	flag.StringVar(&topic, "topic", topic, "Topic readings are published under.")
	flag.StringVar(&encoding, "encoding", encoding, "Message encoding: json or proto.")
}

func main() {
	flag.Parse()

	enc, err := msgs.ParseEncoding(encoding)
	if err != nil {
		glog.Exit(err)
	}
	q, err := mqtt.NewQueueFromURL(mqttURL, env.ClientID("tmonmon"))
	if err != nil {
		glog.Exit(err)
	}
	q.Sub(topic+"/#", func(topic string, payload []byte) {
		r, err := msgs.Decode(payload, enc)
		if err != nil {
			glog.Warningf("%s: bad message: %v", topic, err)
			return
		}
		glog.Infof("%s: %s %s", topic, r.Time.Format(time.RFC3339), r)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	err = q.Connect(ctx)
	cancel()
	if err != nil {
		glog.Exit(err)
	}
	defer q.Close()

	runner := fx.NewRunner().HandleSignals()
	<-runner.Context.Done()
}
