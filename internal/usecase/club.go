package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/core/domain"
	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/core/port"
	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/repository"
)

func notFound(entity string, id int64, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%s %d not found: %w", entity, id, domain.ErrNotFound)
	}
	return fmt.Errorf("%s %d: %w", entity, id, err)
}

// EventService manages club events and the students registered for them.
type EventService struct {
	events        port.EventRepository
	registrations port.RegistrationRepository
}

// NewEventService builds an EventService. registrations may be nil, in which
// case the registration operations report ErrValidation.
func NewEventService(events port.EventRepository, registrations port.RegistrationRepository) *EventService {
	return &EventService{events: events, registrations: registrations}
}

// Create validates and stores a new event, defaulting its status to upcoming.
func (s *EventService) Create(ctx context.Context, event domain.Event) (domain.Event, error) {
	if err := prepareEvent(&event); err != nil {
		return domain.Event{}, err
	}
	created, err := s.events.Create(ctx, event)
	if err != nil {
		return domain.Event{}, fmt.Errorf("create event: %w", err)
	}
	return created, nil
}

// Get returns a single event or ErrNotFound.
func (s *EventService) Get(ctx context.Context, id int64) (domain.Event, error) {
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return domain.Event{}, notFound("event", id, err)
	}
	return *event, nil
}

// List returns events ordered by date.
func (s *EventService) List(ctx context.Context, filter port.EventFilter, opts port.ListOptions) ([]domain.Event, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, fmt.Errorf("unknown event status %q: %w", *filter.Status, domain.ErrValidation)
	}
	return s.events.List(ctx, filter, opts)
}

// Update replaces every editable field of an event.
func (s *EventService) Update(ctx context.Context, event domain.Event) error {
	if err := prepareEvent(&event); err != nil {
		return err
	}
	if err := s.events.Update(ctx, event); err != nil {
		return notFound("event", event.ID, err)
	}
	return nil
}

// Delete removes an event together with its registrations.
func (s *EventService) Delete(ctx context.Context, id int64) error {
	if err := s.events.Delete(ctx, id); err != nil {
		return notFound("event", id, err)
	}
	return nil
}

// Register books a seat for a student. Cancelled and completed events are
// closed, and an event at max_participants rejects further students.
func (s *EventService) Register(ctx context.Context, eventID, studentID int64) (domain.EventRegistration, error) {
	if s.registrations == nil {
		return domain.EventRegistration{}, fmt.Errorf("registrations are not configured: %w", domain.ErrValidation)
	}
	if studentID <= 0 {
		return domain.EventRegistration{}, fmt.Errorf("student_id is required: %w", domain.ErrValidation)
	}
	event, err := s.Get(ctx, eventID)
	if err != nil {
		return domain.EventRegistration{}, err
	}
	if event.Status == domain.EventStatusCancelled || event.Status == domain.EventStatusCompleted {
		return domain.EventRegistration{}, fmt.Errorf("event %d is %s: %w", eventID, event.Status, domain.ErrValidation)
	}

	created, ok, err := s.registrations.Create(ctx, domain.EventRegistration{EventID: eventID, StudentID: studentID})
	switch {
	case errors.Is(err, domain.ErrDuplicateEntity):
		return domain.EventRegistration{}, fmt.Errorf("student %d already registered for event %d: %w", studentID, eventID, domain.ErrDuplicateEntity)
	case errors.Is(err, repository.ErrNotFound):
		return domain.EventRegistration{}, notFound("event", eventID, err)
	case err != nil:
		return domain.EventRegistration{}, fmt.Errorf("register for event: %w", err)
	case !ok:
		return domain.EventRegistration{}, fmt.Errorf("event %d is full: %w", eventID, domain.ErrValidation)
	}
	return created, nil
}

// Registrations lists the students booked on an event.
func (s *EventService) Registrations(ctx context.Context, eventID int64) ([]domain.EventRegistration, error) {
	if s.registrations == nil {
		return nil, fmt.Errorf("registrations are not configured: %w", domain.ErrValidation)
	}
	if _, err := s.Get(ctx, eventID); err != nil {
		return nil, err
	}
	return s.registrations.List(ctx, port.RegistrationFilter{EventID: &eventID})
}

// CancelRegistration frees a student's seat.
func (s *EventService) CancelRegistration(ctx context.Context, eventID, studentID int64) error {
	if s.registrations == nil {
		return fmt.Errorf("registrations are not configured: %w", domain.ErrValidation)
	}
	if err := s.registrations.Delete(ctx, eventID, studentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("student %d is not registered for event %d: %w", studentID, eventID, domain.ErrNotFound)
		}
		return fmt.Errorf("cancel registration: %w", err)
	}
	return nil
}

func prepareEvent(event *domain.Event) error {
	event.Title = strings.TrimSpace(event.Title)
	event.Location = strings.TrimSpace(event.Location)
	if event.Title == "" {
		return fmt.Errorf("title is required: %w", domain.ErrValidation)
	}
	if event.EventDate.IsZero() {
		return fmt.Errorf("event_date is required: %w", domain.ErrValidation)
	}
	if event.Status == "" {
		event.Status = domain.EventStatusUpcoming
	}
	if !event.Status.Valid() {
		return fmt.Errorf("unknown event status %q: %w", event.Status, domain.ErrValidation)
	}
	if event.MaxParticipants != nil && *event.MaxParticipants < 0 {
		return fmt.Errorf("max_participants cannot be negative: %w", domain.ErrValidation)
	}
	return nil
}

// AnnouncementService manages announcements.
type AnnouncementService struct {
	announcements port.AnnouncementRepository
}

// NewAnnouncementService builds an AnnouncementService.
func NewAnnouncementService(announcements port.AnnouncementRepository) *AnnouncementService {
	return &AnnouncementService{announcements: announcements}
}

// Create stores an announcement with normal priority and active status unless set.
func (s *AnnouncementService) Create(ctx context.Context, announcement domain.Announcement) (domain.Announcement, error) {
	if err := prepareAnnouncement(&announcement); err != nil {
		return domain.Announcement{}, err
	}
	created, err := s.announcements.Create(ctx, announcement)
	if err != nil {
		return domain.Announcement{}, fmt.Errorf("create announcement: %w", err)
	}
	return created, nil
}

// Get returns a single announcement or ErrNotFound.
func (s *AnnouncementService) Get(ctx context.Context, id int64) (domain.Announcement, error) {
	announcement, err := s.announcements.GetByID(ctx, id)
	if err != nil {
		return domain.Announcement{}, notFound("announcement", id, err)
	}
	return *announcement, nil
}

// List returns announcements, newest first.
func (s *AnnouncementService) List(ctx context.Context, filter port.AnnouncementFilter, opts port.ListOptions) ([]domain.Announcement, error) {
	if filter.Priority != nil && !filter.Priority.Valid() {
		return nil, fmt.Errorf("unknown priority %q: %w", *filter.Priority, domain.ErrValidation)
	}
	return s.announcements.List(ctx, filter, opts)
}

// Update replaces an announcement. A zero PublishDate keeps the stored one.
func (s *AnnouncementService) Update(ctx context.Context, announcement domain.Announcement) error {
	if announcement.PublishDate.IsZero() {
		stored, err := s.announcements.GetByID(ctx, announcement.ID)
		if err != nil {
			return notFound("announcement", announcement.ID, err)
		}
		announcement.PublishDate = stored.PublishDate
	}
	if err := prepareAnnouncement(&announcement); err != nil {
		return err
	}
	if err := s.announcements.Update(ctx, announcement); err != nil {
		return notFound("announcement", announcement.ID, err)
	}
	return nil
}

// Delete removes an announcement.
func (s *AnnouncementService) Delete(ctx context.Context, id int64) error {
	if err := s.announcements.Delete(ctx, id); err != nil {
		return notFound("announcement", id, err)
	}
	return nil
}

func prepareAnnouncement(a *domain.Announcement) error {
	a.Title = strings.TrimSpace(a.Title)
	if a.Title == "" || strings.TrimSpace(a.Content) == "" {
		return fmt.Errorf("title and content are required: %w", domain.ErrValidation)
	}
	if a.Priority == "" {
		a.Priority = domain.AnnouncementPriorityNormal
	}
	if !a.Priority.Valid() {
		return fmt.Errorf("unknown priority %q: %w", a.Priority, domain.ErrValidation)
	}
	a.Status = strings.TrimSpace(a.Status)
	if a.Status == "" {
		a.Status = domain.AnnouncementStatusActive
	}
	if a.ExpiryDate != nil && !a.PublishDate.IsZero() && !a.ExpiryDate.After(a.PublishDate) {
		return fmt.Errorf("expiry_date must be after publish_date: %w", domain.ErrValidation)
	}
	return nil
}

// StudentService manages the club roster.
type StudentService struct {
	students port.StudentRepository
}

// NewStudentService builds a StudentService.
func NewStudentService(students port.StudentRepository) *StudentService {
	return &StudentService{students: students}
}

// Create adds a student to the roster. Email and student_id are unique.
func (s *StudentService) Create(ctx context.Context, student domain.Student) (domain.Student, error) {
	if err := prepareStudent(&student); err != nil {
		return domain.Student{}, err
	}
	created, err := s.students.Create(ctx, student)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEntity) {
			return domain.Student{}, fmt.Errorf("student email or student_id already exists: %w", domain.ErrDuplicateEntity)
		}
		return domain.Student{}, fmt.Errorf("create student: %w", err)
	}
	return created, nil
}

// Get returns a single student or ErrNotFound.
func (s *StudentService) Get(ctx context.Context, id int64) (domain.Student, error) {
	student, err := s.students.GetByID(ctx, id)
	if err != nil {
		return domain.Student{}, notFound("student", id, err)
	}
	return *student, nil
}

// List returns roster entries matching the filter.
func (s *StudentService) List(ctx context.Context, filter port.StudentFilter, opts port.ListOptions) ([]domain.Student, error) {
	if filter.Role != nil && !filter.Role.Valid() {
		return nil, fmt.Errorf("unknown role %q: %w", *filter.Role, domain.ErrValidation)
	}
	return s.students.List(ctx, filter, opts)
}

// Update replaces a roster entry.
func (s *StudentService) Update(ctx context.Context, student domain.Student) error {
	if err := prepareStudent(&student); err != nil {
		return err
	}
	if err := s.students.Update(ctx, student); err != nil {
		if errors.Is(err, domain.ErrDuplicateEntity) {
			return fmt.Errorf("student email or student_id already exists: %w", domain.ErrDuplicateEntity)
		}
		return notFound("student", student.ID, err)
	}
	return nil
}

// Delete removes a student and, through the schema, their registrations.
func (s *StudentService) Delete(ctx context.Context, id int64) error {
	if err := s.students.Delete(ctx, id); err != nil {
		return notFound("student", id, err)
	}
	return nil
}

func prepareStudent(student *domain.Student) error {
	student.FullName = strings.TrimSpace(student.FullName)
	student.Email = normalizeEmail(student.Email)
	if student.FullName == "" || student.Email == "" {
		return fmt.Errorf("full_name and email are required: %w", domain.ErrValidation)
	}
	if student.Role == "" {
		student.Role = domain.StudentRoleMember
	}
	if !student.Role.Valid() {
		return fmt.Errorf("unknown role %q: %w", student.Role, domain.ErrValidation)
	}
	if student.MembershipStatus == "" {
		student.MembershipStatus = domain.MembershipStatusActive
	}
	if student.YearOfStudy != nil && (*student.YearOfStudy < 1 || *student.YearOfStudy > 8) {
		return fmt.Errorf("year_of_study must be between 1 and 8: %w", domain.ErrValidation)
	}
	return nil
}
