package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/core/domain"
	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/core/port"
	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/infra/logger"
)

// StubPublisher logs events instead of sending them to Kafka. It is used when
// no brokers are configured.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType string, subjectID int64, at time.Time, fields ...zap.Field) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("stub event published", append([]zap.Field{
		zap.String("event_type", eventType),
		zap.Int64("subject_id", subjectID),
		zap.Time("timestamp", at.UTC()),
	}, fields...)...)
}

// PublishUserRegistered logs devclub.user.registered events.
func (p *StubPublisher) PublishUserRegistered(_ context.Context, event domain.UserRegisteredEvent) error {
	p.logEvent(TopicUserRegistered, event.UserID, event.RegisteredAt,
		zap.String("email", logger.MaskEmail(event.Email)),
		zap.Int64("faculty_id", event.FacultyID),
		zap.Int64("department_id", event.DepartmentID),
	)
	return nil
}

// PublishUserActivated logs devclub.user.activated events.
func (p *StubPublisher) PublishUserActivated(_ context.Context, event domain.UserActivatedEvent) error {
	p.logEvent(TopicUserActivated, event.UserID, event.ActivatedAt,
		zap.String("email", logger.MaskEmail(event.Email)),
	)
	return nil
}

// PublishAdminLoggedIn logs devclub.admin.logged_in events.
func (p *StubPublisher) PublishAdminLoggedIn(_ context.Context, event domain.AdminLoggedInEvent) error {
	p.logEvent(TopicAdminLoggedIn, event.AdminID, event.LoginTime,
		zap.String("email", logger.MaskEmail(event.Email)),
		zap.String("ip", logger.MaskIP(event.IPAddress)),
	)
	return nil
}

// LogNotifier writes notifications to the log instead of delivering them.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier constructs a notifier for environments without a mail relay.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Send logs the notification. The body is included outside production so
// developers can read OTP codes from the console.
func (n *LogNotifier) Send(_ context.Context, notification domain.Notification) error {
	n.logger.Info("notification not delivered: no brokers configured",
		zap.String("recipient", logger.MaskEmail(notification.Recipient)),
		zap.String("subject", notification.Subject),
		zap.String("kind", notification.Kind),
	)
	n.logger.Debug("notification body", zap.String("body", notification.Body))
	return nil
}

var (
	_ port.EventPublisher = (*StubPublisher)(nil)
	_ port.Notifier       = (*LogNotifier)(nil)
)
