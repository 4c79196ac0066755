package port

import (
	"context"
	"time"

	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/core/domain"
)

// ListOptions paginates list queries.
type ListOptions struct {
	Limit  int
	Offset int
}

// EventFilter narrows event counts and listings.
type EventFilter struct {
	Status *domain.EventStatus
}

// AnnouncementFilter narrows announcement counts and listings. ActiveAt keeps
// rows with status=active whose expiry is NULL or later than the instant.
type AnnouncementFilter struct {
	Priority *domain.AnnouncementPriority
	ActiveAt *time.Time
}

// StudentFilter narrows student counts and listings.
type StudentFilter struct {
	MembershipStatus *string
	Role             *domain.StudentRole
	JoinedSince      *time.Time
}

// RegistrationFilter narrows registration counts and listings.
type RegistrationFilter struct {
	EventID *int64
	Status  *string
}

type EventRepository interface {
	Create(ctx context.Context, event domain.Event) (domain.Event, error)
	GetByID(ctx context.Context, id int64) (*domain.Event, error)
	List(ctx context.Context, filter EventFilter, opts ListOptions) ([]domain.Event, error)
	Update(ctx context.Context, event domain.Event) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context, filter EventFilter) (int, error)
}

type AnnouncementRepository interface {
	Create(ctx context.Context, announcement domain.Announcement) (domain.Announcement, error)
	GetByID(ctx context.Context, id int64) (*domain.Announcement, error)
	List(ctx context.Context, filter AnnouncementFilter, opts ListOptions) ([]domain.Announcement, error)
	Update(ctx context.Context, announcement domain.Announcement) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context, filter AnnouncementFilter) (int, error)
}

type StudentRepository interface {
	Create(ctx context.Context, student domain.Student) (domain.Student, error)
	GetByID(ctx context.Context, id int64) (*domain.Student, error)
	List(ctx context.Context, filter StudentFilter, opts ListOptions) ([]domain.Student, error)
	Update(ctx context.Context, student domain.Student) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context, filter StudentFilter) (int, error)
}

// RegistrationRepository stores event registrations. Create reports false,
// without writing, when the event already has max_participants registered
// students.
type RegistrationRepository interface {
	Create(ctx context.Context, registration domain.EventRegistration) (domain.EventRegistration, bool, error)
	List(ctx context.Context, filter RegistrationFilter) ([]domain.EventRegistration, error)
	Delete(ctx context.Context, eventID, studentID int64) error
	Count(ctx context.Context, filter RegistrationFilter) (int, error)
}
