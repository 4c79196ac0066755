package handlers

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/core/domain"
	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/core/port"
	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/infra/security"
	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/repository"
	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/transport/http/middleware"
	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/usecase"
)

const (
	testSecret        = "handlers-test-secret"
	testAdminEmail    = "admin@devclub.dz"
	testAdminPassword = "club-admin-pass"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memUsers struct {
	mu     sync.Mutex
	nextID int64
	byMail map[string]domain.User
}

func newMemUsers() *memUsers { return &memUsers{byMail: map[string]domain.User{}} }

func (r *memUsers) Create(_ context.Context, user domain.User) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := strings.ToLower(user.Email)
	if _, ok := r.byMail[key]; ok {
		return domain.User{}, repository.ErrDuplicate
	}
	r.nextID++
	user.ID = r.nextID
	r.byMail[key] = user
	return user, nil
}

func (r *memUsers) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byMail {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byMail[strings.ToLower(email)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *memUsers) ConsumeOTP(_ context.Context, email, code string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := strings.ToLower(email)
	u, ok := r.byMail[key]
	if !ok || u.OTPCode == nil || *u.OTPCode != code || u.OTPValidUntil == nil || u.OTPValidUntil.Before(now) {
		return false, nil
	}
	u.IsActive, u.OTPCode, u.OTPValidUntil = true, nil, nil
	r.byMail[key] = u
	return true, nil
}

func (r *memUsers) ReplaceOTP(_ context.Context, email, code string, validUntil time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := strings.ToLower(email)
	u, ok := r.byMail[key]
	if !ok || u.IsActive {
		return false, nil
	}
	u.OTPCode, u.OTPValidUntil = &code, &validUntil
	r.byMail[key] = u
	return true, nil
}

func (r *memUsers) Count(_ context.Context, filter port.UserFilter) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, u := range r.byMail {
		if filter.ActiveOnly && !u.IsActive {
			continue
		}
		n++
	}
	return n, nil
}

type memAdmins struct {
	admins  []domain.Admin
	history []domain.AdminLoginHistory
}

func (r *memAdmins) Create(_ context.Context, admin domain.Admin) (domain.Admin, error) {
	admin.ID = int64(len(r.admins) + 1)
	r.admins = append(r.admins, admin)
	return admin, nil
}

func (r *memAdmins) GetByID(_ context.Context, id int64) (*domain.Admin, error) {
	for _, a := range r.admins {
		if a.ID == id {
			return &a, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memAdmins) GetByEmail(_ context.Context, email string) (*domain.Admin, error) {
	for _, a := range r.admins {
		if strings.EqualFold(a.Email, email) {
			return &a, nil
		}
	}
	return nil, repository.ErrNotFound
}

// RecordLogin enforces the column widths of admin_login_history.
func (r *memAdmins) RecordLogin(_ context.Context, entry domain.AdminLoginHistory) (domain.AdminLoginHistory, error) {
	if tooLong(entry.UserAgent, 255) || tooLong(entry.IPAddress, 50) {
		return domain.AdminLoginHistory{}, repository.ErrValueTooLong
	}
	entry.ID = int64(len(r.history) + 1)
	r.history = append(r.history, entry)
	return entry, nil
}

func tooLong(v *string, width int) bool {
	return v != nil && utf8.RuneCountInString(*v) > width
}

func (r *memAdmins) ListLoginHistory(_ context.Context, adminID int64, limit int) ([]domain.AdminLoginHistory, error) {
	var out []domain.AdminLoginHistory
	for i := len(r.history) - 1; i >= 0 && len(out) < limit; i-- {
		if r.history[i].AdminID == adminID {
			out = append(out, r.history[i])
		}
	}
	return out, nil
}

type memEvents struct {
	port.EventRepository
	rows map[int64]domain.Event
	next int64
}

func newMemEvents() *memEvents { return &memEvents{rows: map[int64]domain.Event{}} }

func (r *memEvents) Create(_ context.Context, event domain.Event) (domain.Event, error) {
	r.next++
	event.ID = r.next
	event.CreatedAt = time.Now().UTC()
	r.rows[event.ID] = event
	return event, nil
}

func (r *memEvents) GetByID(_ context.Context, id int64) (*domain.Event, error) {
	e, ok := r.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

func (r *memEvents) List(_ context.Context, filter port.EventFilter, _ port.ListOptions) ([]domain.Event, error) {
	out := []domain.Event{}
	for _, e := range r.rows {
		if filter.Status != nil && e.Status != *filter.Status {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memEvents) Update(_ context.Context, event domain.Event) error {
	existing, ok := r.rows[event.ID]
	if !ok {
		return repository.ErrNotFound
	}
	event.OrganizerID = existing.OrganizerID
	event.CreatedAt = existing.CreatedAt
	r.rows[event.ID] = event
	return nil
}

func (r *memEvents) Delete(_ context.Context, id int64) error {
	if _, ok := r.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *memEvents) Count(_ context.Context, filter port.EventFilter) (int, error) {
	rows, _ := r.List(context.Background(), filter, port.ListOptions{})
	return len(rows), nil
}

// memRegistrations enforces capacity from the events fake.
type memRegistrations struct {
	events *memEvents
	rows   []domain.EventRegistration
}

func (r *memRegistrations) Create(_ context.Context, reg domain.EventRegistration) (domain.EventRegistration, bool, error) {
	event, ok := r.events.rows[reg.EventID]
	if !ok {
		return domain.EventRegistration{}, false, repository.ErrNotFound
	}
	taken := 0
	for _, existing := range r.rows {
		if existing.EventID != reg.EventID {
			continue
		}
		if existing.StudentID == reg.StudentID {
			return domain.EventRegistration{}, false, repository.ErrDuplicate
		}
		taken++
	}
	if event.MaxParticipants != nil && taken >= *event.MaxParticipants {
		return domain.EventRegistration{}, false, nil
	}
	reg.ID = int64(len(r.rows) + 1)
	reg.RegistrationDate = time.Now().UTC()
	reg.Status = domain.RegistrationStatusRegistered
	reg.AttendanceStatus = domain.AttendanceStatusPending
	r.rows = append(r.rows, reg)
	return reg, true, nil
}

func (r *memRegistrations) List(_ context.Context, filter port.RegistrationFilter) ([]domain.EventRegistration, error) {
	var out []domain.EventRegistration
	for _, reg := range r.rows {
		if filter.EventID == nil || reg.EventID == *filter.EventID {
			out = append(out, reg)
		}
	}
	return out, nil
}

func (r *memRegistrations) Delete(_ context.Context, eventID, studentID int64) error {
	for i, reg := range r.rows {
		if reg.EventID == eventID && reg.StudentID == studentID {
			r.rows = append(r.rows[:i], r.rows[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *memRegistrations) Count(ctx context.Context, filter port.RegistrationFilter) (int, error) {
	rows, _ := r.List(ctx, filter)
	return len(rows), nil
}

type memAnnouncements struct {
	port.AnnouncementRepository
	rows map[int64]domain.Announcement
	next int64
}

func (r *memAnnouncements) Create(_ context.Context, a domain.Announcement) (domain.Announcement, error) {
	r.next++
	a.ID = r.next
	r.rows[a.ID] = a
	return a, nil
}

func (r *memAnnouncements) GetByID(_ context.Context, id int64) (*domain.Announcement, error) {
	a, ok := r.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (r *memAnnouncements) Update(_ context.Context, a domain.Announcement) error {
	existing, ok := r.rows[a.ID]
	if !ok {
		return repository.ErrNotFound
	}
	a.AdminID = existing.AdminID
	r.rows[a.ID] = a
	return nil
}

type countingAnnouncements struct {
	port.AnnouncementRepository
	rows []domain.Announcement
}

func (r *countingAnnouncements) Count(_ context.Context, filter port.AnnouncementFilter) (int, error) {
	n := 0
	for _, a := range r.rows {
		if filter.Priority != nil && a.Priority != *filter.Priority {
			continue
		}
		if filter.ActiveAt != nil && !a.IsActive(*filter.ActiveAt) {
			continue
		}
		n++
	}
	return n, nil
}

type countingStudents struct {
	port.StudentRepository
	total int
}

func (r *countingStudents) Count(context.Context, port.StudentFilter) (int, error) {
	return r.total, nil
}

type memReference struct {
	cities      []domain.City
	faculties   []domain.Faculty
	departments []domain.Department
}

func (r *memReference) ListCities(context.Context) ([]domain.City, error) { return r.cities, nil }

func (r *memReference) ListCitiesByWilaya(_ context.Context, code string) ([]domain.City, error) {
	var out []domain.City
	for _, c := range r.cities {
		if c.WilayaCode == code {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memReference) ListFaculties(context.Context) ([]domain.Faculty, error) {
	return r.faculties, nil
}

func (r *memReference) ListDepartmentsByFaculty(_ context.Context, facultyID int64) ([]domain.Department, error) {
	var out []domain.Department
	for _, d := range r.departments {
		if d.FacultyID == facultyID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *memReference) CreateFaculty(_ context.Context, f domain.Faculty) (domain.Faculty, error) {
	f.ID = int64(len(r.faculties) + 1)
	r.faculties = append(r.faculties, f)
	return f, nil
}

func (r *memReference) CreateDepartment(_ context.Context, d domain.Department) (domain.Department, error) {
	for _, f := range r.faculties {
		if f.ID == d.FacultyID {
			d.ID = int64(len(r.departments) + 1)
			r.departments = append(r.departments, d)
			return d, nil
		}
	}
	return domain.Department{}, repository.ErrInvalidReference
}

func (r *memReference) UpsertCities(_ context.Context, cities []domain.City) (int, error) {
	r.cities = append(r.cities, cities...)
	return len(cities), nil
}

type capturingQueue struct {
	mu     sync.Mutex
	queued []domain.Notification
}

func (q *capturingQueue) Enqueue(n domain.Notification) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.queued = append(q.queued, n)
	return true
}

type fixedCode string

func (c fixedCode) Generate() (string, error) { return string(c), nil }

// testEnv wires real services over in-memory repositories.
type testEnv struct {
	engine        *gin.Engine
	users         *memUsers
	admins        *memAdmins
	events        *memEvents
	registrations *memRegistrations
	announcements *memAnnouncements
	reference     *memReference
	queue         *capturingQueue
	tokens        *security.TokenService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	hasher, err := security.NewPasswordHasher(security.HasherConfig{Algorithm: security.AlgorithmBcrypt, BcryptCost: 4})
	require.NoError(t, err)
	tokens, err := security.NewTokenService(security.TokenConfig{Secret: testSecret})
	require.NoError(t, err)

	adminHash, err := hasher.Hash(testAdminPassword)
	require.NoError(t, err)

	env := &testEnv{
		users:         newMemUsers(),
		admins:        &memAdmins{},
		events:        newMemEvents(),
		reference:     &memReference{},
		announcements: &memAnnouncements{rows: map[int64]domain.Announcement{}},
		queue:         &capturingQueue{},
		tokens:        tokens,
	}
	env.registrations = &memRegistrations{events: env.events}
	_, err = env.admins.Create(context.Background(), domain.Admin{
		Email:        testAdminEmail,
		PasswordHash: adminHash,
		FullName:     "Club Admin",
		IsSuperAdmin: true,
	})
	require.NoError(t, err)

	log := zap.NewNop()
	registration := usecase.NewRegistrationService(usecase.RegistrationDeps{
		Users:         env.users,
		Hasher:        hasher,
		OTPs:          fixedCode("482913"),
		Tokens:        tokens,
		Policy:        security.NewPasswordPolicy(8, 0),
		Notifications: env.queue,
		Logger:        log,
	})
	adminAuth := usecase.NewAdminAuthService(env.admins, hasher, tokens, nil, nil, 0, log)
	analytics := usecase.NewAnalyticsService(
		env.events,
		env.registrations,
		&countingAnnouncements{rows: []domain.Announcement{
			{Priority: domain.AnnouncementPriorityHigh, Status: domain.AnnouncementStatusActive},
			{Priority: domain.AnnouncementPriorityHigh, Status: "archived"},
		}},
		&countingStudents{total: 3},
		env.users,
		0,
	)
	principals := usecase.NewPrincipalResolver(tokens, env.users, env.admins)
	reference := usecase.NewReferenceService(env.reference, nil, 0, log)

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.EnrichContext())
	api := r.Group("/api")
	NewAuthHandler(registration, principals, log).RegisterRoutes(api)
	NewReferenceHandler(reference, log).RegisterRoutes(api.Group("/data"))

	admin := api.Group("/admin")
	adminHandler := NewAdminHandler(adminAuth, analytics, log)
	adminHandler.RegisterPublicRoutes(admin)
	protected := admin.Group("")
	protected.Use(middleware.RequireAdmin(principals))
	adminHandler.RegisterRoutes(protected)
	NewEventHandler(usecase.NewEventService(env.events, env.registrations), log).RegisterRoutes(protected)
	NewAnnouncementHandler(usecase.NewAnnouncementService(env.announcements), log).RegisterRoutes(protected)
	NewReferenceHandler(reference, log).RegisterAdminRoutes(protected)

	env.engine = r
	return env
}

func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	admin, err := e.admins.GetByEmail(context.Background(), testAdminEmail)
	require.NoError(t, err)
	token, err := e.tokens.Issue(domain.AdminClaims{Email: admin.Email, AdminID: admin.ID}, time.Minute)
	require.NoError(t, err)
	return token.Value
}
