package postgres

import (
	"context"
	"fmt"
	"strings"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/core/domain"
	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/core/port"
)

var studentColumns = []string{
	"id",
	"full_name",
	"email",
	"student_id",
	"COALESCE(department, '')",
	"year_of_study",
	"join_date",
	"membership_status",
	"role",
}

// StudentRepository implements port.StudentRepository using PostgreSQL.
type StudentRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewStudentRepository wires a PostgreSQL-backed student repository.
func NewStudentRepository(exec pgExecutor) *StudentRepository {
	return &StudentRepository{exec: exec, builder: newBuilder()}
}

// Create inserts a student. A zero join date defaults to now() in the database.
func (r *StudentRepository) Create(ctx context.Context, s domain.Student) (domain.Student, error) {
	if s.MembershipStatus == "" {
		s.MembershipStatus = domain.MembershipStatusActive
	}
	if s.Role == "" {
		s.Role = domain.StudentRoleMember
	}

	var joinDate any = squirrel.Expr("now()")
	if !s.JoinDate.IsZero() {
		joinDate = s.JoinDate
	}

	stmt, args, err := r.builder.Insert("students").
		Columns("full_name", "email", "student_id", "department", "year_of_study", "join_date", "membership_status", "role").
		Values(s.FullName, strings.ToLower(s.Email), s.StudentID, s.Department, s.YearOfStudy, joinDate, s.MembershipStatus, string(s.Role)).
		Suffix("RETURNING " + strings.Join(studentColumns, ", ")).
		ToSql()
	if err != nil {
		return domain.Student{}, fmt.Errorf("build insert student sql: %w", err)
	}

	created, err := scanStudent(r.exec.QueryRow(ctx, stmt, args...))
	if err != nil {
		return domain.Student{}, translateError("insert student", err)
	}
	return *created, nil
}

// GetByID retrieves a student.
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*domain.Student, error) {
	stmt, args, err := r.builder.Select(studentColumns...).
		From("students").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select student sql: %w", err)
	}

	s, err := scanStudent(r.exec.QueryRow(ctx, stmt, args...))
	if err != nil {
		return nil, translateError("select student", err)
	}
	return s, nil
}

// List returns students ordered by name.
func (r *StudentRepository) List(ctx context.Context, filter port.StudentFilter, opts port.ListOptions) ([]domain.Student, error) {
	query := applyStudentFilter(r.builder.Select(studentColumns...).From("students"), filter).
		OrderBy("full_name ASC", "id ASC")
	query = paginate(query, opts.Limit, opts.Offset)

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list students sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, translateError("list students", err)
	}
	defer rows.Close()

	var out []domain.Student
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		out = append(out, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate students: %w", err)
	}
	return out, nil
}

// Update overwrites the mutable fields of a student.
func (r *StudentRepository) Update(ctx context.Context, s domain.Student) error {
	stmt, args, err := r.builder.Update("students").
		Set("full_name", s.FullName).
		Set("email", strings.ToLower(s.Email)).
		Set("student_id", s.StudentID).
		Set("department", s.Department).
		Set("year_of_study", s.YearOfStudy).
		Set("membership_status", s.MembershipStatus).
		Set("role", string(s.Role)).
		Where(squirrel.Eq{"id": s.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update student sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return translateError("update student", err)
	}
	return affectedOrNotFound(tag)
}

// Delete removes a student.
func (r *StudentRepository) Delete(ctx context.Context, id int64) error {
	stmt, args, err := r.builder.Delete("students").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete student sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return translateError("delete student", err)
	}
	return affectedOrNotFound(tag)
}

// Count returns the number of students matching the filter.
func (r *StudentRepository) Count(ctx context.Context, filter port.StudentFilter) (int, error) {
	query := applyStudentFilter(r.builder.Select("COUNT(*)").From("students"), filter)
	return countRows(ctx, r.exec, query, "count students")
}

func applyStudentFilter(query squirrel.SelectBuilder, filter port.StudentFilter) squirrel.SelectBuilder {
	if filter.MembershipStatus != nil {
		query = query.Where(squirrel.Eq{"membership_status": *filter.MembershipStatus})
	}
	if filter.Role != nil {
		query = query.Where(squirrel.Eq{"role": string(*filter.Role)})
	}
	if filter.JoinedSince != nil {
		query = query.Where(squirrel.GtOrEq{"join_date": *filter.JoinedSince})
	}
	return query
}

func scanStudent(row pgx.Row) (*domain.Student, error) {
	var (
		s    domain.Student
		role string
	)
	if err := row.Scan(
		&s.ID,
		&s.FullName,
		&s.Email,
		&s.StudentID,
		&s.Department,
		&s.YearOfStudy,
		&s.JoinDate,
		&s.MembershipStatus,
		&role,
	); err != nil {
		return nil, err
	}
	s.Role = domain.StudentRole(role)
	return &s, nil
}
