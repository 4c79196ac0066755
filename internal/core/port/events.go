package port

import (
	"context"

	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/core/domain"
)

// EventPublisher publishes domain events to the message bus.
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error
	PublishUserActivated(ctx context.Context, event domain.UserActivatedEvent) error
	PublishAdminLoggedIn(ctx context.Context, event domain.AdminLoggedInEvent) error
}
