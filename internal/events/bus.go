package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const (
	TopicBookingConfirmed  = "booking.confirmed"
	TopicBookingCancelled  = "booking.cancelled"
	TopicPassOTPIssued     = "pass.otp_issued"
	TopicPassStatusChanged = "pass.status_changed"
)

// Topics lists every topic the notifier listens on.
var Topics = []string{TopicBookingConfirmed, TopicBookingCancelled, TopicPassOTPIssued, TopicPassStatusChanged}

// Notification is the payload carried by every topic.
type Notification struct {
	UserID  int64  `json:"userId"`
	Mobile  string `json:"mobile,omitempty"`
	Email   string `json:"email,omitempty"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Publisher is what services depend on.
type Publisher interface {
	Publish(ctx context.Context, topic string, n Notification) error
}

// Bus is an in-process pub/sub built on watermill's go channel transport.
type Bus struct {
	pubsub *gochannel.GoChannel
}

func NewBus(logger watermill.LoggerAdapter) *Bus {
	return &Bus{pubsub: gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, logger)}
}

func (b *Bus) Publish(ctx context.Context, topic string, n Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	if err := b.pubsub.Publish(topic, msg); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return b.pubsub.Subscribe(ctx, topic)
}

func (b *Bus) Close() error {
	return b.pubsub.Close()
}

// Nop drops every notification.
type Nop struct{}

func (Nop) Publish(context.Context, string, Notification) error { return nil }
