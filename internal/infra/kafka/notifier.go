package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/core/domain"
	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/core/port"
)

// TopicEmailNotification carries rendered emails to the mail relay.
const TopicEmailNotification = "notification.email"

type emailEnvelope struct {
	Recipient string    `json:"recipient"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Kind      string    `json:"kind,omitempty"`
	SentAt    time.Time `json:"sent_at"`
}

// Notifier implements port.Notifier by publishing rendered emails to Kafka.
type Notifier struct {
	producer *Producer
	now      func() time.Time
}

// NewNotifier constructs a Kafka-backed notifier.
func NewNotifier(producer *Producer) *Notifier {
	return &Notifier{producer: producer, now: time.Now}
}

// Send enqueues the message on the email topic keyed by recipient, so one
// recipient's messages stay ordered.
func (n *Notifier) Send(ctx context.Context, notification domain.Notification) error {
	recipient := strings.TrimSpace(notification.Recipient)
	if recipient == "" {
		return fmt.Errorf("notification recipient is required: %w", domain.ErrValidation)
	}

	body, err := json.Marshal(emailEnvelope{
		Recipient: recipient,
		Subject:   notification.Subject,
		Body:      notification.Body,
		Kind:      notification.Kind,
		SentAt:    n.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal email envelope: %w", err)
	}

	return n.producer.Send(ctx, &sarama.ProducerMessage{
		Topic: n.producer.TopicName(TopicEmailNotification),
		Key:   sarama.StringEncoder(strings.ToLower(recipient)),
		Value: sarama.ByteEncoder(body),
	})
}

// CountDeliveryFailures increments failures for every email the brokers
// reject after Send has returned. Call it before the first Send.
func (n *Notifier) CountDeliveryFailures(failures prometheus.Counter) {
	if failures == nil {
		return
	}
	topic := n.producer.TopicName(TopicEmailNotification)
	n.producer.OnError(func(failed string, _ error) {
		if failed == topic {
			failures.Inc()
		}
	})
}

var _ port.Notifier = (*Notifier)(nil)
