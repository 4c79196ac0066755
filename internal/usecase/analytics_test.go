package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/core/domain"
	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/core/port"
	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/repository"
)

type memoryEventRepository struct {
	events   []domain.Event
	countErr error
}

func (r *memoryEventRepository) Create(_ context.Context, e domain.Event) (domain.Event, error) {
	e.ID = int64(len(r.events) + 1)
	r.events = append(r.events, e)
	return e, nil
}

func (r *memoryEventRepository) GetByID(_ context.Context, id int64) (*domain.Event, error) {
	for _, e := range r.events {
		if e.ID == id {
			return &e, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memoryEventRepository) List(context.Context, port.EventFilter, port.ListOptions) ([]domain.Event, error) {
	return r.events, nil
}

func (r *memoryEventRepository) Update(_ context.Context, e domain.Event) error {
	for i := range r.events {
		if r.events[i].ID == e.ID {
			r.events[i] = e
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *memoryEventRepository) Delete(_ context.Context, id int64) error {
	for i := range r.events {
		if r.events[i].ID == id {
			r.events = append(r.events[:i], r.events[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *memoryEventRepository) Count(_ context.Context, f port.EventFilter) (int, error) {
	if r.countErr != nil {
		return 0, r.countErr
	}
	n := 0
	for _, e := range r.events {
		if f.Status == nil || e.Status == *f.Status {
			n++
		}
	}
	return n, nil
}

type memoryAnnouncementRepository struct {
	port.AnnouncementRepository
	announcements []domain.Announcement
}

func (r *memoryAnnouncementRepository) Count(_ context.Context, f port.AnnouncementFilter) (int, error) {
	n := 0
	for _, a := range r.announcements {
		if f.Priority != nil && a.Priority != *f.Priority {
			continue
		}
		if f.ActiveAt != nil && !a.IsActive(*f.ActiveAt) {
			continue
		}
		n++
	}
	return n, nil
}

type memoryStudentRepository struct {
	port.StudentRepository
	students []domain.Student
}

func (r *memoryStudentRepository) Count(_ context.Context, f port.StudentFilter) (int, error) {
	n := 0
	for _, s := range r.students {
		if f.MembershipStatus != nil && s.MembershipStatus != *f.MembershipStatus {
			continue
		}
		if f.Role != nil && s.Role != *f.Role {
			continue
		}
		if f.JoinedSince != nil && s.JoinDate.Before(*f.JoinedSince) {
			continue
		}
		n++
	}
	return n, nil
}

func TestAnalyticsReport(t *testing.T) {
	now := time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC)
	window := 30 * 24 * time.Hour
	past := now.Add(-time.Hour)
	future := now.Add(24 * time.Hour)

	events := &memoryEventRepository{events: []domain.Event{
		{ID: 1, Status: domain.EventStatusUpcoming},
		{ID: 2, Status: domain.EventStatusUpcoming},
		{ID: 3, Status: domain.EventStatusCompleted},
		{ID: 4, Status: domain.EventStatusCancelled},
	}}
	announcements := &memoryAnnouncementRepository{announcements: []domain.Announcement{
		{ID: 1, Priority: domain.AnnouncementPriorityHigh, Status: "active", ExpiryDate: &future},
		{ID: 2, Priority: domain.AnnouncementPriorityHigh, Status: "active", ExpiryDate: &past},
	}}
	students := &memoryStudentRepository{students: []domain.Student{
		{ID: 1, MembershipStatus: "active", Role: domain.StudentRoleOrganizer, JoinDate: now.Add(-window)},
		{ID: 2, MembershipStatus: "active", Role: domain.StudentRoleMember, JoinDate: now.Add(-window - time.Second)},
		{ID: 3, MembershipStatus: "suspended", Role: domain.StudentRoleLeader, JoinDate: now.Add(-48 * time.Hour)},
	}}

	users := newMemoryUserRepository()
	users.users["a@x.com"] = domain.User{ID: 1, Email: "a@x.com", IsActive: true, CreatedAt: now.Add(-24 * time.Hour)}
	users.users["b@x.com"] = domain.User{ID: 2, Email: "b@x.com", CreatedAt: now.Add(-90 * 24 * time.Hour)}

	registrations := &memoryRegistrationRepository{registrations: []domain.EventRegistration{
		{ID: 1, EventID: 1, StudentID: 1, Status: domain.RegistrationStatusRegistered},
		{ID: 2, EventID: 1, StudentID: 2, Status: domain.RegistrationStatusRegistered},
		{ID: 3, EventID: 3, StudentID: 1, Status: domain.RegistrationStatusRegistered},
		{ID: 4, EventID: 2, StudentID: 3, Status: "cancelled"},
	}}

	svc := NewAnalyticsService(events, registrations, announcements, students, users, 0)
	report, err := svc.Report(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, now, report.GeneratedAt)
	assert.Equal(t, domain.EventStats{Total: 4, Upcoming: 2, Completed: 1, AvgParticipants: 0.75}, report.Events)
	assert.Equal(t, domain.AnnouncementStats{Total: 2, Active: 1, HighPriority: 2}, report.Announcements)
	assert.Equal(t, domain.StudentStats{Total: 3, Active: 2, Organizers: 1, NewMembers: 2}, report.Students)
	assert.Equal(t, domain.UserStats{Total: 2, Active: 1, NewUsers: 1}, report.Users)

	require.Len(t, users.countFilters, 3)
	require.NotNil(t, users.countFilters[2].CreatedSince)
	assert.Equal(t, now.Add(-window), *users.countFilters[2].CreatedSince)
}

func TestAnalyticsHighPriorityIgnoresStatusAndExpiry(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	expired := now.Add(-time.Minute)

	announcements := &memoryAnnouncementRepository{announcements: []domain.Announcement{
		{ID: 1, Priority: domain.AnnouncementPriorityHigh, Status: "active"},
		{ID: 2, Priority: domain.AnnouncementPriorityHigh, Status: "archived", ExpiryDate: &expired},
	}}

	svc := NewAnalyticsService(&memoryEventRepository{}, nil, announcements, &memoryStudentRepository{}, newMemoryUserRepository(), time.Hour)
	report, err := svc.Report(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Announcements.HighPriority)
	assert.Equal(t, 1, report.Announcements.Active)
}

func TestAnalyticsPropagatesCountErrors(t *testing.T) {
	events := &memoryEventRepository{countErr: errors.New("pool closed")}
	svc := NewAnalyticsService(events, nil, &memoryAnnouncementRepository{}, &memoryStudentRepository{}, newMemoryUserRepository(), 0)

	_, err := svc.Report(context.Background(), time.Now())
	require.Error(t, err)
	assert.ErrorContains(t, err, "count events")
}

func TestAnalyticsAverageParticipantsRoundsAndHandlesNoEvents(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	registrations := &memoryRegistrationRepository{registrations: []domain.EventRegistration{
		{ID: 1, EventID: 1, StudentID: 1, Status: domain.RegistrationStatusRegistered},
		{ID: 2, EventID: 2, StudentID: 1, Status: domain.RegistrationStatusRegistered},
	}}

	empty := NewAnalyticsService(&memoryEventRepository{}, registrations, &memoryAnnouncementRepository{}, &memoryStudentRepository{}, newMemoryUserRepository(), 0)
	report, err := empty.Report(context.Background(), now)
	require.NoError(t, err)
	assert.Zero(t, report.Events.AvgParticipants)

	events := &memoryEventRepository{events: []domain.Event{{ID: 1}, {ID: 2}, {ID: 3}}}
	svc := NewAnalyticsService(events, registrations, &memoryAnnouncementRepository{}, &memoryStudentRepository{}, newMemoryUserRepository(), 0)
	report, err = svc.Report(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 0.67, report.Events.AvgParticipants)
}
