package port

import (
	"context"

	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/core/domain"
)

// Notifier delivers a rendered message to its recipient.
type Notifier interface {
	Send(ctx context.Context, notification domain.Notification) error
}

// NotificationQueue accepts notifications for background delivery. Enqueue
// must not block; it reports false when the message was dropped.
type NotificationQueue interface {
	Enqueue(notification domain.Notification) bool
}
