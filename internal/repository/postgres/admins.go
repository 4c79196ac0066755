package postgres

import (
	"context"
	"fmt"
	"strings"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/core/domain"
)

const maxLoginHistory = 100

var adminColumns = []string{"id", "email", "password", "full_name", "is_super_admin", "created_at", "updated_at"}

// AdminRepository implements port.AdminRepository using PostgreSQL.
type AdminRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewAdminRepository wires a PostgreSQL-backed admin repository.
func NewAdminRepository(exec pgExecutor) *AdminRepository {
	return &AdminRepository{exec: exec, builder: newBuilder()}
}

// Create inserts an administrator account.
func (r *AdminRepository) Create(ctx context.Context, admin domain.Admin) (domain.Admin, error) {
	stmt, args, err := r.builder.Insert("admins").
		Columns("email", "password", "full_name", "is_super_admin").
		Values(strings.ToLower(admin.Email), admin.PasswordHash, admin.FullName, admin.IsSuperAdmin).
		Suffix("RETURNING " + strings.Join(adminColumns, ", ")).
		ToSql()
	if err != nil {
		return domain.Admin{}, fmt.Errorf("build insert admin sql: %w", err)
	}

	created, err := scanAdmin(r.exec.QueryRow(ctx, stmt, args...))
	if err != nil {
		return domain.Admin{}, translateError("insert admin", err)
	}
	return *created, nil
}

// GetByID retrieves an admin by identifier.
func (r *AdminRepository) GetByID(ctx context.Context, id int64) (*domain.Admin, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByEmail retrieves an admin by email, case-insensitively.
func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	return r.getOne(ctx, squirrel.Eq{"LOWER(email)": strings.ToLower(strings.TrimSpace(email))})
}

func (r *AdminRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*domain.Admin, error) {
	stmt, args, err := r.builder.Select(adminColumns...).
		From("admins").
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select admin sql: %w", err)
	}

	admin, err := scanAdmin(r.exec.QueryRow(ctx, stmt, args...))
	if err != nil {
		return nil, translateError("select admin", err)
	}
	return admin, nil
}

// RecordLogin appends one login history row.
func (r *AdminRepository) RecordLogin(ctx context.Context, entry domain.AdminLoginHistory) (domain.AdminLoginHistory, error) {
	stmt, args, err := r.builder.Insert("admin_login_history").
		Columns("admin_id", "login_time", "ip_address", "user_agent").
		Values(entry.AdminID, entry.LoginTime, entry.IPAddress, entry.UserAgent).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return domain.AdminLoginHistory{}, fmt.Errorf("build insert login history sql: %w", err)
	}

	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&entry.ID); err != nil {
		return domain.AdminLoginHistory{}, translateError("insert login history", err)
	}
	return entry, nil
}

// ListLoginHistory returns the most recent logins of an admin, newest first.
func (r *AdminRepository) ListLoginHistory(ctx context.Context, adminID int64, limit int) ([]domain.AdminLoginHistory, error) {
	if limit <= 0 || limit > maxLoginHistory {
		limit = maxLoginHistory
	}

	stmt, args, err := r.builder.Select("id", "admin_id", "login_time", "ip_address", "user_agent").
		From("admin_login_history").
		Where(squirrel.Eq{"admin_id": adminID}).
		OrderBy("login_time DESC", "id DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select login history sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, translateError("select login history", err)
	}
	defer rows.Close()

	history := make([]domain.AdminLoginHistory, 0, limit)
	for rows.Next() {
		var entry domain.AdminLoginHistory
		if err := rows.Scan(&entry.ID, &entry.AdminID, &entry.LoginTime, &entry.IPAddress, &entry.UserAgent); err != nil {
			return nil, fmt.Errorf("scan login history: %w", err)
		}
		history = append(history, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate login history: %w", err)
	}

	return history, nil
}

func scanAdmin(row pgx.Row) (*domain.Admin, error) {
	var admin domain.Admin
	if err := row.Scan(
		&admin.ID,
		&admin.Email,
		&admin.PasswordHash,
		&admin.FullName,
		&admin.IsSuperAdmin,
		&admin.CreatedAt,
		&admin.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &admin, nil
}
