package usecase

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/core/domain"
	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/core/port"
	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/infra/security"
	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/repository"
)

const testSecret = "usecase-test-secret"

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestHasher(t *testing.T) *security.PasswordHasher {
	t.Helper()
	hasher, err := security.NewPasswordHasher(security.HasherConfig{Algorithm: security.AlgorithmBcrypt, BcryptCost: 4})
	if err != nil {
		t.Fatalf("NewPasswordHasher returned error: %v", err)
	}
	return hasher
}

func newTestTokens(t *testing.T, clock *fakeClock) *security.TokenService {
	t.Helper()
	tokens, err := security.NewTokenService(security.TokenConfig{Secret: testSecret}, security.WithClock(clock.Now))
	if err != nil {
		t.Fatalf("NewTokenService returned error: %v", err)
	}
	return tokens
}

// memoryUserRepository keeps users in memory and mirrors the conditional
// statements of the SQL repository.
type memoryUserRepository struct {
	mu     sync.Mutex
	nextID int64
	users  map[string]domain.User

	createErr     error
	consumeCalls  int
	countFilters  []port.UserFilter
	countResponse int
}

func newMemoryUserRepository() *memoryUserRepository {
	return &memoryUserRepository{users: map[string]domain.User{}}
}

func (r *memoryUserRepository) Create(_ context.Context, user domain.User) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return domain.User{}, r.createErr
	}
	key := strings.ToLower(user.Email)
	if _, ok := r.users[key]; ok {
		return domain.User{}, repository.ErrDuplicate
	}
	r.nextID++
	user.ID = r.nextID
	r.users[key] = user
	return user, nil
}

func (r *memoryUserRepository) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memoryUserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[strings.ToLower(email)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *memoryUserRepository) ConsumeOTP(_ context.Context, email, code string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.consumeCalls++
	key := strings.ToLower(email)
	u, ok := r.users[key]
	if !ok || u.OTPCode == nil || *u.OTPCode != code || u.OTPValidUntil == nil || u.OTPValidUntil.Before(now) {
		return false, nil
	}
	u.IsActive = true
	u.OTPCode = nil
	u.OTPValidUntil = nil
	u.UpdatedAt = &now
	r.users[key] = u
	return true, nil
}

func (r *memoryUserRepository) ReplaceOTP(_ context.Context, email, code string, validUntil time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := strings.ToLower(email)
	u, ok := r.users[key]
	if !ok || u.IsActive {
		return false, nil
	}
	u.OTPCode = &code
	u.OTPValidUntil = &validUntil
	r.users[key] = u
	return true, nil
}

func (r *memoryUserRepository) Count(_ context.Context, filter port.UserFilter) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.countFilters = append(r.countFilters, filter)
	count := 0
	for _, u := range r.users {
		if filter.ActiveOnly && !u.IsActive {
			continue
		}
		if filter.CreatedSince != nil && u.CreatedAt.Before(*filter.CreatedSince) {
			continue
		}
		count++
	}
	return count, nil
}

type memoryAdminRepository struct {
	admins    map[int64]domain.Admin
	history   []domain.AdminLoginHistory
	recordErr error

	historyLimit int
}

func newMemoryAdminRepository(admins ...domain.Admin) *memoryAdminRepository {
	repo := &memoryAdminRepository{admins: map[int64]domain.Admin{}}
	for _, a := range admins {
		repo.admins[a.ID] = a
	}
	return repo
}

func (r *memoryAdminRepository) Create(_ context.Context, admin domain.Admin) (domain.Admin, error) {
	admin.ID = int64(len(r.admins) + 1)
	r.admins[admin.ID] = admin
	return admin, nil
}

func (r *memoryAdminRepository) GetByID(_ context.Context, id int64) (*domain.Admin, error) {
	a, ok := r.admins[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (r *memoryAdminRepository) GetByEmail(_ context.Context, email string) (*domain.Admin, error) {
	for _, a := range r.admins {
		if strings.EqualFold(a.Email, email) {
			return &a, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memoryAdminRepository) RecordLogin(_ context.Context, entry domain.AdminLoginHistory) (domain.AdminLoginHistory, error) {
	if r.recordErr != nil {
		return domain.AdminLoginHistory{}, r.recordErr
	}
	entry.ID = int64(len(r.history) + 1)
	r.history = append(r.history, entry)
	return entry, nil
}

func (r *memoryAdminRepository) ListLoginHistory(_ context.Context, adminID int64, limit int) ([]domain.AdminLoginHistory, error) {
	r.historyLimit = limit
	var out []domain.AdminLoginHistory
	for i := len(r.history) - 1; i >= 0 && len(out) < limit; i-- {
		if r.history[i].AdminID == adminID {
			out = append(out, r.history[i])
		}
	}
	return out, nil
}

type recordingQueue struct {
	accept bool
	queued []domain.Notification
}

func (q *recordingQueue) Enqueue(n domain.Notification) bool {
	if !q.accept {
		return false
	}
	q.queued = append(q.queued, n)
	return true
}

type recordingEvents struct {
	registered []domain.UserRegisteredEvent
	activated  []domain.UserActivatedEvent
	logins     []domain.AdminLoggedInEvent
	err        error
}

func (e *recordingEvents) PublishUserRegistered(_ context.Context, event domain.UserRegisteredEvent) error {
	e.registered = append(e.registered, event)
	return e.err
}

func (e *recordingEvents) PublishUserActivated(_ context.Context, event domain.UserActivatedEvent) error {
	e.activated = append(e.activated, event)
	return e.err
}

func (e *recordingEvents) PublishAdminLoggedIn(_ context.Context, event domain.AdminLoggedInEvent) error {
	e.logins = append(e.logins, event)
	return e.err
}

type fixedOTP struct{ codes []string }

func (g *fixedOTP) Generate() (string, error) {
	code := g.codes[0]
	if len(g.codes) > 1 {
		g.codes = g.codes[1:]
	}
	return code, nil
}

var (
	_ port.UserRepository    = (*memoryUserRepository)(nil)
	_ port.AdminRepository   = (*memoryAdminRepository)(nil)
	_ port.NotificationQueue = (*recordingQueue)(nil)
	_ port.EventPublisher    = (*recordingEvents)(nil)
)
