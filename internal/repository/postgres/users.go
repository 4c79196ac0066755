package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/core/domain"
	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/core/port"
)

var userColumns = []string{
	"id",
	"registration_number",
	"registration_year",
	"full_name",
	"email",
	"password",
	"wilaya_code",
	"commune_name",
	"faculty_id",
	"department_id",
	"level",
	"is_active",
	"otp_code",
	"otp_valid_until",
	"created_at",
	"updated_at",
}

// UserRepository implements port.UserRepository using PostgreSQL.
type UserRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewUserRepository wires a PostgreSQL-backed user repository.
func NewUserRepository(exec pgExecutor) *UserRepository {
	return &UserRepository{exec: exec, builder: newBuilder()}
}

// Create inserts a new user row and returns it with the generated id and timestamps.
func (r *UserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	stmt, args, err := r.builder.Insert("users").
		Columns(
			"registration_number",
			"registration_year",
			"full_name",
			"email",
			"password",
			"wilaya_code",
			"commune_name",
			"faculty_id",
			"department_id",
			"level",
			"is_active",
			"otp_code",
			"otp_valid_until",
		).
		Values(
			user.RegistrationNumber,
			user.RegistrationYear,
			user.FullName,
			strings.ToLower(user.Email),
			user.PasswordHash,
			user.WilayaCode,
			user.CommuneName,
			user.FacultyID,
			user.DepartmentID,
			user.Level,
			user.IsActive,
			user.OTPCode,
			user.OTPValidUntil,
		).
		Suffix("RETURNING " + strings.Join(userColumns, ", ")).
		ToSql()
	if err != nil {
		return domain.User{}, fmt.Errorf("build insert user sql: %w", err)
	}

	created, err := scanUser(r.exec.QueryRow(ctx, stmt, args...))
	if err != nil {
		return domain.User{}, translateError("insert user", err)
	}
	return *created, nil
}

// GetByID retrieves a user by identifier.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByEmail retrieves a user by email, case-insensitively.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, squirrel.Eq{"LOWER(email)": strings.ToLower(strings.TrimSpace(email))})
}

func (r *UserRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*domain.User, error) {
	stmt, args, err := r.builder.Select(userColumns...).
		From("users").
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user sql: %w", err)
	}

	user, err := scanUser(r.exec.QueryRow(ctx, stmt, args...))
	if err != nil {
		return nil, translateError("select user", err)
	}
	return user, nil
}

// ConsumeOTP activates the user and clears the OTP fields in one statement.
// The predicate on code and deadline makes concurrent consumers race on the
// row lock; only the first one sees an affected row.
func (r *UserRepository) ConsumeOTP(ctx context.Context, email, code string, now time.Time) (bool, error) {
	stmt, args, err := r.builder.Update("users").
		Set("is_active", true).
		Set("otp_code", nil).
		Set("otp_valid_until", nil).
		Set("updated_at", now).
		Where(squirrel.Eq{"LOWER(email)": strings.ToLower(email)}).
		Where(squirrel.Eq{"otp_code": code}).
		Where(squirrel.GtOrEq{"otp_valid_until": now}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build consume otp sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return false, translateError("consume otp", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ReplaceOTP stores a new code for an account that has not been activated yet.
func (r *UserRepository) ReplaceOTP(ctx context.Context, email, code string, validUntil time.Time) (bool, error) {
	stmt, args, err := r.builder.Update("users").
		Set("otp_code", code).
		Set("otp_valid_until", validUntil).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"LOWER(email)": strings.ToLower(email)}).
		Where(squirrel.Eq{"is_active": false}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build replace otp sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return false, translateError("replace otp", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Count returns the number of users matching the filter.
func (r *UserRepository) Count(ctx context.Context, filter port.UserFilter) (int, error) {
	query := r.builder.Select("COUNT(*)").From("users")

	if filter.ActiveOnly {
		query = query.Where(squirrel.Eq{"is_active": true})
	}
	if filter.CreatedSince != nil {
		query = query.Where(squirrel.GtOrEq{"created_at": *filter.CreatedSince})
	}

	return countRows(ctx, r.exec, query, "count users")
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.RegistrationNumber,
		&user.RegistrationYear,
		&user.FullName,
		&user.Email,
		&user.PasswordHash,
		&user.WilayaCode,
		&user.CommuneName,
		&user.FacultyID,
		&user.DepartmentID,
		&user.Level,
		&user.IsActive,
		&user.OTPCode,
		&user.OTPValidUntil,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}
