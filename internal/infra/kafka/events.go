package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/core/domain"
	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/core/port"
	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/infra/config"
)

const schemaVersion = "1.0"

const (
	TopicUserRegistered = "user.registered"
	TopicUserActivated  = "user.activated"
	TopicAdminLoggedIn  = "admin.logged_in"
)

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	SubjectID string           `json:"subject_id,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Payload   any              `json:"payload"`
	Metadata  envelopeMetadata `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType string, subjectID int64, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	if eventID == "" {
		eventID = uuid.NewString()
	}

	metadata := envelopeMetadata{
		"service":     p.appCfg.Name,
		"environment": p.appCfg.Env,
	}
	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
		metadata["trace_id"] = sc.TraceID().String()
	}

	topic := p.producer.TopicName(eventType)
	key := strconv.FormatInt(subjectID, 10)

	body, err := json.Marshal(eventEnvelope{
		EventID:   eventID,
		EventType: topic,
		SubjectID: key,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata:  metadata,
	})
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	return p.producer.Send(ctx, &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(body),
	})
}

// PublishUserRegistered publishes devclub.user.registered events.
func (p *EventPublisher) PublishUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error {
	payload := struct {
		UserID       int64     `json:"user_id"`
		Email        string    `json:"email"`
		FullName     string    `json:"full_name"`
		FacultyID    int64     `json:"faculty_id"`
		DepartmentID int64     `json:"department_id"`
		RegisteredAt time.Time `json:"registered_at"`
	}{
		UserID:       event.UserID,
		Email:        event.Email,
		FullName:     event.FullName,
		FacultyID:    event.FacultyID,
		DepartmentID: event.DepartmentID,
		RegisteredAt: event.RegisteredAt.UTC(),
	}

	return p.publish(ctx, event.EventID, TopicUserRegistered, event.UserID, event.RegisteredAt, payload)
}

// PublishUserActivated publishes devclub.user.activated events.
func (p *EventPublisher) PublishUserActivated(ctx context.Context, event domain.UserActivatedEvent) error {
	payload := struct {
		UserID      int64     `json:"user_id"`
		Email       string    `json:"email"`
		ActivatedAt time.Time `json:"activated_at"`
	}{
		UserID:      event.UserID,
		Email:       event.Email,
		ActivatedAt: event.ActivatedAt.UTC(),
	}

	return p.publish(ctx, event.EventID, TopicUserActivated, event.UserID, event.ActivatedAt, payload)
}

// PublishAdminLoggedIn publishes devclub.admin.logged_in events.
func (p *EventPublisher) PublishAdminLoggedIn(ctx context.Context, event domain.AdminLoggedInEvent) error {
	payload := struct {
		AdminID   int64     `json:"admin_id"`
		Email     string    `json:"email"`
		LoginTime time.Time `json:"login_time"`
		IPAddress string    `json:"ip_address,omitempty"`
		UserAgent string    `json:"user_agent,omitempty"`
	}{
		AdminID:   event.AdminID,
		Email:     event.Email,
		LoginTime: event.LoginTime.UTC(),
		IPAddress: event.IPAddress,
		UserAgent: event.UserAgent,
	}

	return p.publish(ctx, event.EventID, TopicAdminLoggedIn, event.AdminID, event.LoginTime, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)
