package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/core/domain"
	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/core/port"
	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/repository"
)

const lockEventSQL = `SELECT max_participants FROM events WHERE id = $1 FOR UPDATE`

func TestRegistrationRepository_CreateCommits(t *testing.T) {
	mock := newMock(t)
	repo := NewRegistrationRepository(mock)
	capacity := 30
	when := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockEventSQL)).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows([]string{"max_participants"}).AddRow(&capacity))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM event_registrations WHERE event_id = $1 AND status = $2`)).
		WithArgs(int64(7), "registered").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(29)))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO event_registrations (event_id,student_id,status,attendance_status) VALUES ($1,$2,$3,$4) RETURNING`)).
		WithArgs(int64(7), int64(3), "registered", "pending").
		WillReturnRows(pgxmock.NewRows(registrationColumns).
			AddRow(int64(1), int64(7), int64(3), when, "registered", "pending"))
	mock.ExpectCommit()

	reg, ok, err := repo.Create(context.Background(), domain.EventRegistration{EventID: 7, StudentID: 3})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if !ok || reg.ID != 1 || reg.AttendanceStatus != domain.AttendanceStatusPending {
		t.Fatalf("unexpected registration: ok=%v %+v", ok, reg)
	}
}

func TestRegistrationRepository_CreateFullEventRollsBack(t *testing.T) {
	mock := newMock(t)
	repo := NewRegistrationRepository(mock)
	capacity := 2

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockEventSQL)).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows([]string{"max_participants"}).AddRow(&capacity))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM event_registrations`)).
		WithArgs(int64(7), "registered").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(2)))
	mock.ExpectRollback()

	_, ok, err := repo.Create(context.Background(), domain.EventRegistration{EventID: 7, StudentID: 3})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if ok {
		t.Fatal("expected a full event to refuse the registration")
	}
}

func TestRegistrationRepository_CreateUnlimitedSkipsCount(t *testing.T) {
	mock := newMock(t)
	repo := NewRegistrationRepository(mock)
	when := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockEventSQL)).
		WithArgs(int64(8)).
		WillReturnRows(pgxmock.NewRows([]string{"max_participants"}).AddRow(nil))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO event_registrations`)).
		WithArgs(int64(8), int64(3), "registered", "pending").
		WillReturnRows(pgxmock.NewRows(registrationColumns).
			AddRow(int64(2), int64(8), int64(3), when, "registered", "pending"))
	mock.ExpectCommit()

	if _, ok, err := repo.Create(context.Background(), domain.EventRegistration{EventID: 8, StudentID: 3}); err != nil || !ok {
		t.Fatalf("expected booking, got ok=%v err=%v", ok, err)
	}
}

func TestRegistrationRepository_CreateDuplicate(t *testing.T) {
	mock := newMock(t)
	repo := NewRegistrationRepository(mock)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockEventSQL)).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows([]string{"max_participants"}).AddRow(nil))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO event_registrations`)).
		WithArgs(int64(7), int64(3), "registered", "pending").
		WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectRollback()

	_, _, err := repo.Create(context.Background(), domain.EventRegistration{EventID: 7, StudentID: 3})
	if !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestRegistrationRepository_CreateMissingEvent(t *testing.T) {
	mock := newMock(t)
	repo := NewRegistrationRepository(mock)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockEventSQL)).
		WithArgs(int64(404)).
		WillReturnRows(pgxmock.NewRows([]string{"max_participants"}))
	mock.ExpectRollback()

	_, _, err := repo.Create(context.Background(), domain.EventRegistration{EventID: 404, StudentID: 3})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRegistrationRepository_CountRegistered(t *testing.T) {
	mock := newMock(t)
	repo := NewRegistrationRepository(mock)
	status := domain.RegistrationStatusRegistered

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM event_registrations WHERE status = $1`)).
		WithArgs("registered").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(12)))

	count, err := repo.Count(context.Background(), port.RegistrationFilter{Status: &status})
	if err != nil {
		t.Fatalf("Count returned error: %v", err)
	}
	if count != 12 {
		t.Fatalf("expected 12, got %d", count)
	}
}

func TestRegistrationRepository_DeleteMissing(t *testing.T) {
	mock := newMock(t)
	repo := NewRegistrationRepository(mock)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM event_registrations WHERE event_id = $1 AND student_id = $2`)).
		WithArgs(int64(7), int64(3)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	if err := repo.Delete(context.Background(), 7, 3); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
