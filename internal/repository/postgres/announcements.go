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

var announcementColumns = []string{"id", "title", "content", "publish_date", "expiry_date", "priority", "admin_id", "status"}

// AnnouncementRepository implements port.AnnouncementRepository using PostgreSQL.
type AnnouncementRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewAnnouncementRepository wires a PostgreSQL-backed announcement repository.
func NewAnnouncementRepository(exec pgExecutor) *AnnouncementRepository {
	return &AnnouncementRepository{exec: exec, builder: newBuilder()}
}

// Create inserts an announcement. Zero publish dates default to now() in the database.
func (r *AnnouncementRepository) Create(ctx context.Context, a domain.Announcement) (domain.Announcement, error) {
	if a.Priority == "" {
		a.Priority = domain.AnnouncementPriorityNormal
	}
	if a.Status == "" {
		a.Status = domain.AnnouncementStatusActive
	}

	var publishDate any = squirrel.Expr("now()")
	if !a.PublishDate.IsZero() {
		publishDate = a.PublishDate
	}

	stmt, args, err := r.builder.Insert("announcements").
		Columns("title", "content", "publish_date", "expiry_date", "priority", "admin_id", "status").
		Values(a.Title, a.Content, publishDate, a.ExpiryDate, string(a.Priority), a.AdminID, a.Status).
		Suffix("RETURNING " + strings.Join(announcementColumns, ", ")).
		ToSql()
	if err != nil {
		return domain.Announcement{}, fmt.Errorf("build insert announcement sql: %w", err)
	}

	created, err := scanAnnouncement(r.exec.QueryRow(ctx, stmt, args...))
	if err != nil {
		return domain.Announcement{}, translateError("insert announcement", err)
	}
	return *created, nil
}

// GetByID retrieves an announcement.
func (r *AnnouncementRepository) GetByID(ctx context.Context, id int64) (*domain.Announcement, error) {
	stmt, args, err := r.builder.Select(announcementColumns...).
		From("announcements").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select announcement sql: %w", err)
	}

	a, err := scanAnnouncement(r.exec.QueryRow(ctx, stmt, args...))
	if err != nil {
		return nil, translateError("select announcement", err)
	}
	return a, nil
}

// List returns announcements, newest first.
func (r *AnnouncementRepository) List(ctx context.Context, filter port.AnnouncementFilter, opts port.ListOptions) ([]domain.Announcement, error) {
	query := applyAnnouncementFilter(r.builder.Select(announcementColumns...).From("announcements"), filter).
		OrderBy("publish_date DESC", "id DESC")
	query = paginate(query, opts.Limit, opts.Offset)

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list announcements sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, translateError("list announcements", err)
	}
	defer rows.Close()

	var out []domain.Announcement
	for rows.Next() {
		a, err := scanAnnouncement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan announcement: %w", err)
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate announcements: %w", err)
	}
	return out, nil
}

// Update overwrites the mutable fields of an announcement.
func (r *AnnouncementRepository) Update(ctx context.Context, a domain.Announcement) error {
	stmt, args, err := r.builder.Update("announcements").
		Set("title", a.Title).
		Set("content", a.Content).
		Set("publish_date", a.PublishDate).
		Set("expiry_date", a.ExpiryDate).
		Set("priority", string(a.Priority)).
		Set("status", a.Status).
		Where(squirrel.Eq{"id": a.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update announcement sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return translateError("update announcement", err)
	}
	return affectedOrNotFound(tag)
}

// Delete removes an announcement.
func (r *AnnouncementRepository) Delete(ctx context.Context, id int64) error {
	stmt, args, err := r.builder.Delete("announcements").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete announcement sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return translateError("delete announcement", err)
	}
	return affectedOrNotFound(tag)
}

// Count returns the number of announcements matching the filter.
func (r *AnnouncementRepository) Count(ctx context.Context, filter port.AnnouncementFilter) (int, error) {
	query := applyAnnouncementFilter(r.builder.Select("COUNT(*)").From("announcements"), filter)
	return countRows(ctx, r.exec, query, "count announcements")
}

func applyAnnouncementFilter(query squirrel.SelectBuilder, filter port.AnnouncementFilter) squirrel.SelectBuilder {
	if filter.Priority != nil {
		query = query.Where(squirrel.Eq{"priority": string(*filter.Priority)})
	}
	if filter.ActiveAt != nil {
		query = query.
			Where(squirrel.Eq{"status": domain.AnnouncementStatusActive}).
			Where(squirrel.Or{
				squirrel.Eq{"expiry_date": nil},
				squirrel.Gt{"expiry_date": *filter.ActiveAt},
			})
	}
	return query
}

func scanAnnouncement(row pgx.Row) (*domain.Announcement, error) {
	var (
		a        domain.Announcement
		priority string
	)
	if err := row.Scan(
		&a.ID,
		&a.Title,
		&a.Content,
		&a.PublishDate,
		&a.ExpiryDate,
		&priority,
		&a.AdminID,
		&a.Status,
	); err != nil {
		return nil, err
	}
	a.Priority = domain.AnnouncementPriority(priority)
	return &a, nil
}
