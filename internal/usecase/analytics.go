package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/core/domain"
	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/core/port"
)

const defaultNewMemberWindow = 30 * 24 * time.Hour

// AnalyticsService computes the admin dashboard counts.
type AnalyticsService struct {
	events        port.EventRepository
	registrations port.RegistrationRepository
	announcements port.AnnouncementRepository
	students      port.StudentRepository
	users         port.UserRepository
	window        time.Duration
}

// NewAnalyticsService constructs an AnalyticsService. window bounds the
// "new members" and "new users" counts and defaults to 30 days. A nil
// registrations repository reports an average of 0 participants.
func NewAnalyticsService(
	events port.EventRepository,
	registrations port.RegistrationRepository,
	announcements port.AnnouncementRepository,
	students port.StudentRepository,
	users port.UserRepository,
	window time.Duration,
) *AnalyticsService {
	if window <= 0 {
		window = defaultNewMemberWindow
	}
	return &AnalyticsService{
		events:        events,
		registrations: registrations,
		announcements: announcements,
		students:      students,
		users:         users,
		window:        window,
	}
}

// Report runs each count as its own query at instant now.
func (s *AnalyticsService) Report(ctx context.Context, now time.Time) (domain.AnalyticsReport, error) {
	now = now.UTC()
	since := now.Add(-s.window)
	report := domain.AnalyticsReport{GeneratedAt: now}

	var err error
	if report.Events, err = s.eventStats(ctx); err != nil {
		return domain.AnalyticsReport{}, err
	}
	if report.Announcements, err = s.announcementStats(ctx, now); err != nil {
		return domain.AnalyticsReport{}, err
	}
	if report.Students, err = s.studentStats(ctx, since); err != nil {
		return domain.AnalyticsReport{}, err
	}
	if report.Users, err = s.userStats(ctx, since); err != nil {
		return domain.AnalyticsReport{}, err
	}
	return report, nil
}

func (s *AnalyticsService) eventStats(ctx context.Context) (domain.EventStats, error) {
	upcoming := domain.EventStatusUpcoming
	completed := domain.EventStatusCompleted

	var stats domain.EventStats
	var err error
	if stats.Total, err = s.events.Count(ctx, port.EventFilter{}); err != nil {
		return stats, fmt.Errorf("count events: %w", err)
	}
	if stats.Upcoming, err = s.events.Count(ctx, port.EventFilter{Status: &upcoming}); err != nil {
		return stats, fmt.Errorf("count upcoming events: %w", err)
	}
	if stats.Completed, err = s.events.Count(ctx, port.EventFilter{Status: &completed}); err != nil {
		return stats, fmt.Errorf("count completed events: %w", err)
	}
	if stats.AvgParticipants, err = s.avgParticipants(ctx, stats.Total); err != nil {
		return stats, err
	}
	return stats, nil
}

// avgParticipants divides registered seats by the number of events,
// rounded to two decimals.
func (s *AnalyticsService) avgParticipants(ctx context.Context, events int) (float64, error) {
	if s.registrations == nil || events == 0 {
		return 0, nil
	}
	registered := domain.RegistrationStatusRegistered
	seats, err := s.registrations.Count(ctx, port.RegistrationFilter{Status: &registered})
	if err != nil {
		return 0, fmt.Errorf("count registrations: %w", err)
	}
	return math.Round(float64(seats)/float64(events)*100) / 100, nil
}

func (s *AnalyticsService) announcementStats(ctx context.Context, now time.Time) (domain.AnnouncementStats, error) {
	high := domain.AnnouncementPriorityHigh

	var stats domain.AnnouncementStats
	var err error
	if stats.Total, err = s.announcements.Count(ctx, port.AnnouncementFilter{}); err != nil {
		return stats, fmt.Errorf("count announcements: %w", err)
	}
	if stats.Active, err = s.announcements.Count(ctx, port.AnnouncementFilter{ActiveAt: &now}); err != nil {
		return stats, fmt.Errorf("count active announcements: %w", err)
	}
	// High priority ignores status and expiry.
	if stats.HighPriority, err = s.announcements.Count(ctx, port.AnnouncementFilter{Priority: &high}); err != nil {
		return stats, fmt.Errorf("count high priority announcements: %w", err)
	}
	return stats, nil
}

func (s *AnalyticsService) studentStats(ctx context.Context, since time.Time) (domain.StudentStats, error) {
	active := domain.MembershipStatusActive
	organizer := domain.StudentRoleOrganizer

	var stats domain.StudentStats
	var err error
	if stats.Total, err = s.students.Count(ctx, port.StudentFilter{}); err != nil {
		return stats, fmt.Errorf("count students: %w", err)
	}
	if stats.Active, err = s.students.Count(ctx, port.StudentFilter{MembershipStatus: &active}); err != nil {
		return stats, fmt.Errorf("count active students: %w", err)
	}
	if stats.Organizers, err = s.students.Count(ctx, port.StudentFilter{Role: &organizer}); err != nil {
		return stats, fmt.Errorf("count organizers: %w", err)
	}
	if stats.NewMembers, err = s.students.Count(ctx, port.StudentFilter{JoinedSince: &since}); err != nil {
		return stats, fmt.Errorf("count new members: %w", err)
	}
	return stats, nil
}

func (s *AnalyticsService) userStats(ctx context.Context, since time.Time) (domain.UserStats, error) {
	var stats domain.UserStats
	var err error
	if stats.Total, err = s.users.Count(ctx, port.UserFilter{}); err != nil {
		return stats, fmt.Errorf("count users: %w", err)
	}
	if stats.Active, err = s.users.Count(ctx, port.UserFilter{ActiveOnly: true}); err != nil {
		return stats, fmt.Errorf("count active users: %w", err)
	}
	if stats.NewUsers, err = s.users.Count(ctx, port.UserFilter{CreatedSince: &since}); err != nil {
		return stats, fmt.Errorf("count new users: %w", err)
	}
	return stats, nil
}
