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

var eventColumns = []string{
	"id",
	"title",
	"COALESCE(description, '')",
	"event_date",
	"COALESCE(location, '')",
	"max_participants",
	"status",
	"organizer_id",
	"created_at",
}

// EventRepository implements port.EventRepository using PostgreSQL.
type EventRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewEventRepository wires a PostgreSQL-backed event repository.
func NewEventRepository(exec pgExecutor) *EventRepository {
	return &EventRepository{exec: exec, builder: newBuilder()}
}

// Create inserts an event.
func (r *EventRepository) Create(ctx context.Context, event domain.Event) (domain.Event, error) {
	if event.Status == "" {
		event.Status = domain.EventStatusUpcoming
	}

	stmt, args, err := r.builder.Insert("events").
		Columns("title", "description", "event_date", "location", "max_participants", "status", "organizer_id").
		Values(event.Title, event.Description, event.EventDate, event.Location, event.MaxParticipants, string(event.Status), event.OrganizerID).
		Suffix("RETURNING " + strings.Join(eventColumns, ", ")).
		ToSql()
	if err != nil {
		return domain.Event{}, fmt.Errorf("build insert event sql: %w", err)
	}

	created, err := scanEvent(r.exec.QueryRow(ctx, stmt, args...))
	if err != nil {
		return domain.Event{}, translateError("insert event", err)
	}
	return *created, nil
}

// GetByID retrieves an event.
func (r *EventRepository) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	stmt, args, err := r.builder.Select(eventColumns...).
		From("events").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select event sql: %w", err)
	}

	event, err := scanEvent(r.exec.QueryRow(ctx, stmt, args...))
	if err != nil {
		return nil, translateError("select event", err)
	}
	return event, nil
}

// List returns events ordered by date, soonest first.
func (r *EventRepository) List(ctx context.Context, filter port.EventFilter, opts port.ListOptions) ([]domain.Event, error) {
	query := applyEventFilter(r.builder.Select(eventColumns...).From("events"), filter).
		OrderBy("event_date ASC", "id ASC")
	query = paginate(query, opts.Limit, opts.Offset)

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list events sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, translateError("list events", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

// Update overwrites the mutable fields of an event.
func (r *EventRepository) Update(ctx context.Context, event domain.Event) error {
	stmt, args, err := r.builder.Update("events").
		Set("title", event.Title).
		Set("description", event.Description).
		Set("event_date", event.EventDate).
		Set("location", event.Location).
		Set("max_participants", event.MaxParticipants).
		Set("status", string(event.Status)).
		Set("organizer_id", event.OrganizerID).
		Where(squirrel.Eq{"id": event.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update event sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return translateError("update event", err)
	}
	return affectedOrNotFound(tag)
}

// Delete removes an event.
func (r *EventRepository) Delete(ctx context.Context, id int64) error {
	stmt, args, err := r.builder.Delete("events").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete event sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return translateError("delete event", err)
	}
	return affectedOrNotFound(tag)
}

// Count returns the number of events matching the filter.
func (r *EventRepository) Count(ctx context.Context, filter port.EventFilter) (int, error) {
	return countRows(ctx, r.exec, applyEventFilter(r.builder.Select("COUNT(*)").From("events"), filter), "count events")
}

func applyEventFilter(query squirrel.SelectBuilder, filter port.EventFilter) squirrel.SelectBuilder {
	if filter.Status != nil {
		query = query.Where(squirrel.Eq{"status": string(*filter.Status)})
	}
	return query
}

func scanEvent(row pgx.Row) (*domain.Event, error) {
	var (
		event  domain.Event
		status string
	)
	if err := row.Scan(
		&event.ID,
		&event.Title,
		&event.Description,
		&event.EventDate,
		&event.Location,
		&event.MaxParticipants,
		&status,
		&event.OrganizerID,
		&event.CreatedAt,
	); err != nil {
		return nil, err
	}
	event.Status = domain.EventStatus(status)
	return &event, nil
}
