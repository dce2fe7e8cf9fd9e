package notify

import (
	"context"
	"time"
)

type Publisher interface {
	Publish(routingKey string, payload any) error
}

// Envelope is the message body handed to the delivery workers.
type Envelope struct {
	Kind      Kind      `json:"kind"`
	Recipient string    `json:"recipient"`
	Payload   Payload   `json:"payload"`
	QueuedAt  time.Time `json:"queued_at"`
}

// AMQPDispatcher queues notifications on the message bus under
// "notification.<kind>" for downstream email/SMS/WhatsApp workers.
type AMQPDispatcher struct {
	pub Publisher
}

func NewAMQPDispatcher(pub Publisher) *AMQPDispatcher {
	return &AMQPDispatcher{pub: pub}
}

func (d *AMQPDispatcher) Send(_ context.Context, kind Kind, recipient string, payload Payload) error {
	return d.pub.Publish("notification."+string(kind), Envelope{
		Kind:      kind,
		Recipient: recipient,
		Payload:   payload,
		QueuedAt:  time.Now().UTC(),
	})
}
