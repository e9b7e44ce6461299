package mqtt

import (
	"context"
	"fmt"

	"github.com/robotalks/tmon/pkg/msgs"
	"github.com/robotalks/tmon/pkg/reading"
)

// DefaultTopic is the topic readings are published under.
const DefaultTopic = "readings"

// Publisher is a reading.Sink publishing every reading to
// <Topic>/<address>.
type Publisher struct {
	Queue    *Queue
	Topic    string
	Encoding msgs.Encoding
	QoS      byte
	Retain   bool
}

// NewPublisher creates a Publisher.
func NewPublisher(q *Queue, topic string, enc msgs.Encoding) *Publisher {
	if topic == "" {
		topic = DefaultTopic
	}
	return &Publisher{Queue: q, Topic: topic, Encoding: enc}
}

// TopicOf returns the topic a reading of addr is published to.
func (p *Publisher) TopicOf(addr byte) string {
	return fmt.Sprintf("%s/%d", p.Topic, addr)
}

// Insert implements reading.Sink.
func (p *Publisher) Insert(ctx context.Context, r reading.Reading) error {
	data, err := msgs.Encode(r, p.Encoding)
	if err != nil {
		return err
	}
	token := p.Queue.PubWith(p.TopicOf(r.Address), data, p.QoS, p.Retain)
	if err := Wait(ctx, token); err != nil {
		return fmt.Errorf("publish addr %d: %w", r.Address, err)
	}
	return nil
}
