package events

import (
	"context"
	"encoding/json"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Sender delivers a notification over one channel.
type Sender interface {
	Send(ctx context.Context, topic string, n Notification) error
}

// SMSSender logs outgoing text messages. No gateway is wired.
type SMSSender struct{}

func (SMSSender) Send(_ context.Context, topic string, n Notification) error {
	if n.Mobile == "" {
		return nil
	}
	log.WithFields(log.Fields{"module": "sms", "topic": topic, "to": n.Mobile}).Info(n.Body)
	return nil
}

// EmailSender logs outgoing mail. No SMTP relay is wired.
type EmailSender struct{}

func (EmailSender) Send(_ context.Context, topic string, n Notification) error {
	if n.Email == "" {
		return nil
	}
	log.WithFields(log.Fields{"module": "email", "topic": topic, "to": n.Email, "subject": n.Subject}).Info(n.Body)
	return nil
}

// Notifier fans messages from the bus out to senders until ctx ends.
type Notifier struct {
	Bus     *Bus
	Senders []Sender
}

// Run subscribes to all topics and returns once the subscriptions are open.
// The returned WaitGroup completes after ctx is cancelled and in-flight
// messages are handled.
func (n Notifier) Run(ctx context.Context) (*sync.WaitGroup, error) {
	var wg sync.WaitGroup
	for _, topic := range Topics {
		msgs, err := n.Bus.Subscribe(ctx, topic)
		if err != nil {
			return nil, err
		}
		wg.Add(1)
		go func(topic string) {
			defer wg.Done()
			for msg := range msgs {
				var payload Notification
				if err := json.Unmarshal(msg.Payload, &payload); err != nil {
					log.WithField("topic", topic).WithError(err).Warn("drop malformed notification")
					msg.Ack()
					continue
				}
				for _, s := range n.Senders {
					if err := s.Send(msg.Context(), topic, payload); err != nil {
						log.WithField("topic", topic).WithError(err).Error("notification send failed")
					}
				}
				msg.Ack()
			}
		}(topic)
	}
	return &wg, nil
}
