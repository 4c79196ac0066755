package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/core/domain"
	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/core/port"
	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/repository"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
		mock.Close()
	})
	return mock
}

func userRow(id int64, email string, active bool, code *string, validUntil *time.Time, created time.Time) *pgxmock.Rows {
	return pgxmock.NewRows(userColumns).AddRow(
		id, "REG-001", "2024", "Amina B", email, "$2b$12$hash", "16", "Alger Centre",
		int64(1), int64(2), "L1", active, code, validUntil, created, (*time.Time)(nil),
	)
}

func TestUserRepository_Create(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	code := "123456"
	validUntil := now.Add(10 * time.Minute)

	user := domain.User{
		RegistrationNumber: "REG-001",
		RegistrationYear:   "2024",
		FullName:           "Amina B",
		Email:              "A@X.com",
		PasswordHash:       "$2b$12$hash",
		WilayaCode:         "16",
		CommuneName:        "Alger Centre",
		FacultyID:          1,
		DepartmentID:       2,
		Level:              "L1",
		OTPCode:            &code,
		OTPValidUntil:      &validUntil,
	}

	mock.ExpectQuery(`INSERT INTO users .* RETURNING id, registration_number`).
		WithArgs("REG-001", "2024", "Amina B", "a@x.com", "$2b$12$hash", "16", "Alger Centre", int64(1), int64(2), "L1", false, &code, &validUntil).
		WillReturnRows(userRow(42, "a@x.com", false, &code, &validUntil, now))

	created, err := repo.Create(context.Background(), user)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created.ID != 42 || created.Email != "a@x.com" || created.IsActive {
		t.Fatalf("unexpected created user: %+v", created)
	}
	if created.OTPCode == nil || *created.OTPCode != code {
		t.Fatalf("expected pending otp, got %v", created.OTPCode)
	}
}

func TestUserRepository_CreateDuplicate(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	_, err := repo.Create(context.Background(), domain.User{Email: "a@x.com"})
	if !errors.Is(err, repository.ErrDuplicate) || !errors.Is(err, domain.ErrDuplicateEntity) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
}

func TestUserRepository_GetByEmailNotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE LOWER(email) = $1 LIMIT 1`)).
		WithArgs("missing@x.com").
		WillReturnError(pgx.ErrNoRows)

	if _, err := repo.GetByEmail(context.Background(), " Missing@x.com "); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserRepository_ConsumeOTP(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	now := time.Date(2024, 3, 1, 10, 5, 0, 0, time.UTC)

	stmt := regexp.QuoteMeta(`UPDATE users SET is_active = $1, otp_code = $2, otp_valid_until = $3, updated_at = $4 WHERE LOWER(email) = $5 AND otp_code = $6 AND otp_valid_until >= $7`)

	mock.ExpectExec(stmt).
		WithArgs(true, nil, nil, now, "a@x.com", "123456", now).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(stmt).
		WithArgs(true, nil, nil, now, "a@x.com", "123456", now).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	ok, err := repo.ConsumeOTP(context.Background(), "a@x.com", "123456", now)
	if err != nil || !ok {
		t.Fatalf("first consume: ok=%v err=%v", ok, err)
	}

	ok, err = repo.ConsumeOTP(context.Background(), "a@x.com", "123456", now)
	if err != nil {
		t.Fatalf("second consume returned error: %v", err)
	}
	if ok {
		t.Fatal("replayed code must not activate twice")
	}
}

func TestUserRepository_ReplaceOTPOnlyForInactive(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	validUntil := time.Date(2024, 3, 1, 10, 15, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET otp_code = $1, otp_valid_until = $2, updated_at = now() WHERE LOWER(email) = $3 AND is_active = $4`)).
		WithArgs("654321", validUntil, "a@x.com", false).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	ok, err := repo.ReplaceOTP(context.Background(), "a@x.com", "654321", validUntil)
	if err != nil {
		t.Fatalf("ReplaceOTP returned error: %v", err)
	}
	if ok {
		t.Fatal("expected no row to be replaced")
	}
}

func TestUserRepository_Count(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	since := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM users WHERE is_active = $1 AND created_at >= $2`)).
		WithArgs(true, since).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(7)))

	count, err := repo.Count(context.Background(), port.UserFilter{ActiveOnly: true, CreatedSince: &since})
	if err != nil {
		t.Fatalf("Count returned error: %v", err)
	}
	if count != 7 {
		t.Fatalf("expected 7, got %d", count)
	}
}

func TestUserRepository_CreateValueTooLong(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "22001", Message: "value too long for type character varying(100)"})

	_, err := repo.Create(context.Background(), domain.User{Email: "a@x.com"})
	if !errors.Is(err, repository.ErrValueTooLong) || !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected value too long validation error, got %v", err)
	}
}
