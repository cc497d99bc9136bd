package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Event kinds published to the lifecycle topic.
const (
	EventRegistered     = "user.registered"
	EventForgotPassword = "user.forgot-password"
)

// event is the envelope written to Kafka; the owner email keys the record so
// per-user events stay ordered within a partition.
type event struct {
	Kind             string `json:"kind"`
	EmailAddress     string `json:"emailAddress"`
	FirstName        string `json:"firstName"`
	PasswordResetURL string `json:"passwordResetUrl,omitempty"`
}

// KafkaNotifier publishes lifecycle events to a topic for deployments that
// fan notifications out by stream instead of calling the notification
// service directly.
type KafkaNotifier struct {
	client *kgo.Client
	topic  string
}

func NewKafka(brokers []string, topic string) (*KafkaNotifier, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}
	return &KafkaNotifier{client: client, topic: topic}, nil
}

func (n *KafkaNotifier) NotifyRegistered(ctx context.Context, emailAddr, firstName string) error {
	return n.publish(ctx, event{
		Kind:         EventRegistered,
		EmailAddress: emailAddr,
		FirstName:    firstName,
	})
}

func (n *KafkaNotifier) NotifyForgotPassword(ctx context.Context, emailAddr, firstName, resetURL string) error {
	return n.publish(ctx, event{
		Kind:             EventForgotPassword,
		EmailAddress:     emailAddr,
		FirstName:        firstName,
		PasswordResetURL: resetURL,
	})
}

func (n *KafkaNotifier) publish(ctx context.Context, ev event) error {
	value, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	record := &kgo.Record{
		Topic: n.topic,
		Key:   []byte(ev.EmailAddress),
		Value: value,
	}
	if err := n.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce %s: %w", ev.Kind, err)
	}
	return nil
}

// Close flushes and releases the underlying client.
func (n *KafkaNotifier) Close() {
	n.client.Close()
}
