package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/core/domain"
	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/core/port"
)

var registrationColumns = []string{
	"id",
	"event_id",
	"student_id",
	"registration_date",
	"status",
	"attendance_status",
}

// txBeginner is satisfied by *pgxpool.Pool and pgxmock pools.
type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// RegistrationRepository implements port.RegistrationRepository using PostgreSQL.
type RegistrationRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewRegistrationRepository wires a PostgreSQL-backed registration repository.
// Create needs an executor that can begin transactions.
func NewRegistrationRepository(exec pgExecutor) *RegistrationRepository {
	return &RegistrationRepository{exec: exec, builder: newBuilder()}
}

// Create books a seat. The event row is locked for the duration of the
// transaction so concurrent registrations for one event are counted in turn.
func (r *RegistrationRepository) Create(ctx context.Context, reg domain.EventRegistration) (domain.EventRegistration, bool, error) {
	beginner, ok := r.exec.(txBeginner)
	if !ok {
		return domain.EventRegistration{}, false, errors.New("insert registration: executor cannot begin transactions")
	}
	if reg.Status == "" {
		reg.Status = domain.RegistrationStatusRegistered
	}
	if reg.AttendanceStatus == "" {
		reg.AttendanceStatus = domain.AttendanceStatusPending
	}

	tx, err := beginner.Begin(ctx)
	if err != nil {
		return domain.EventRegistration{}, false, fmt.Errorf("begin registration: %w", err)
	}

	created, booked, err := r.createLocked(ctx, tx, reg)
	if err != nil || !booked {
		_ = tx.Rollback(ctx)
		return domain.EventRegistration{}, false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.EventRegistration{}, false, translateError("commit registration", err)
	}
	return created, true, nil
}

func (r *RegistrationRepository) createLocked(ctx context.Context, tx pgx.Tx, reg domain.EventRegistration) (domain.EventRegistration, bool, error) {
	var capacity *int
	err := tx.QueryRow(ctx, `SELECT max_participants FROM events WHERE id = $1 FOR UPDATE`, reg.EventID).Scan(&capacity)
	if err != nil {
		return domain.EventRegistration{}, false, translateError("lock event", err)
	}

	if capacity != nil {
		registered := domain.RegistrationStatusRegistered
		taken, err := countRows(ctx, tx, applyRegistrationFilter(
			r.builder.Select("COUNT(*)").From("event_registrations"),
			port.RegistrationFilter{EventID: &reg.EventID, Status: &registered},
		), "count registrations")
		if err != nil {
			return domain.EventRegistration{}, false, err
		}
		if taken >= *capacity {
			return domain.EventRegistration{}, false, nil
		}
	}

	stmt, args, err := r.builder.Insert("event_registrations").
		Columns("event_id", "student_id", "status", "attendance_status").
		Values(reg.EventID, reg.StudentID, reg.Status, reg.AttendanceStatus).
		Suffix("RETURNING " + strings.Join(registrationColumns, ", ")).
		ToSql()
	if err != nil {
		return domain.EventRegistration{}, false, fmt.Errorf("build insert registration sql: %w", err)
	}

	created, err := scanRegistration(tx.QueryRow(ctx, stmt, args...))
	if err != nil {
		return domain.EventRegistration{}, false, translateError("insert registration", err)
	}
	return *created, true, nil
}

// List returns registrations in booking order.
func (r *RegistrationRepository) List(ctx context.Context, filter port.RegistrationFilter) ([]domain.EventRegistration, error) {
	stmt, args, err := applyRegistrationFilter(r.builder.Select(registrationColumns...).From("event_registrations"), filter).
		OrderBy("registration_date ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list registrations sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, translateError("list registrations", err)
	}
	defer rows.Close()

	var out []domain.EventRegistration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		out = append(out, *reg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate registrations: %w", err)
	}
	return out, nil
}

// Delete removes a student's registration for an event.
func (r *RegistrationRepository) Delete(ctx context.Context, eventID, studentID int64) error {
	stmt, args, err := r.builder.Delete("event_registrations").
		Where(squirrel.Eq{"event_id": eventID, "student_id": studentID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete registration sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return translateError("delete registration", err)
	}
	return affectedOrNotFound(tag)
}

// Count returns the number of registrations matching the filter.
func (r *RegistrationRepository) Count(ctx context.Context, filter port.RegistrationFilter) (int, error) {
	return countRows(ctx, r.exec, applyRegistrationFilter(r.builder.Select("COUNT(*)").From("event_registrations"), filter), "count registrations")
}

func applyRegistrationFilter(query squirrel.SelectBuilder, filter port.RegistrationFilter) squirrel.SelectBuilder {
	if filter.EventID != nil {
		query = query.Where(squirrel.Eq{"event_id": *filter.EventID})
	}
	if filter.Status != nil {
		query = query.Where(squirrel.Eq{"status": *filter.Status})
	}
	return query
}

func scanRegistration(row pgx.Row) (*domain.EventRegistration, error) {
	var reg domain.EventRegistration
	if err := row.Scan(
		&reg.ID,
		&reg.EventID,
		&reg.StudentID,
		&reg.RegistrationDate,
		&reg.Status,
		&reg.AttendanceStatus,
	); err != nil {
		return nil, err
	}
	return &reg, nil
}
