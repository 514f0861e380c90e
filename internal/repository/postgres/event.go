package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dtroode/taskboard/internal/model"
)

var _ model.EventStore = (*EventRepository)(nil)

const eventColumns = `id, type, entity, entity_id, payload, user_id, created_at`

// EventRepository appends to and reads the event log. It has no update or
// delete operations.
type EventRepository struct {
	db *Connection
}

func NewEventRepository(db *Connection) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Append(ctx context.Context, event model.Event) error {
	const query = `INSERT INTO events (` + eventColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.querier(ctx).Exec(ctx, query,
		event.ID, string(event.Type), string(event.Entity), event.EntityID,
		[]byte(event.Payload), toNullUUID(event.UserID), event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

func (r *EventRepository) GetAll(ctx context.Context) ([]model.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY seq`

	return r.list(ctx, query)
}

func (r *EventRepository) GetByEntity(ctx context.Context, entity model.EntityType, entityID uuid.UUID) ([]model.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE entity = $1 AND entity_id = $2 ORDER BY seq`

	return r.list(ctx, query, string(entity), entityID)
}

func (r *EventRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.querier(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return n, nil
}

func (r *EventRepository) list(ctx context.Context, query string, args ...any) ([]model.Event, error) {
	rows, err := r.db.querier(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	events := []model.Event{}
	for rows.Next() {
		var (
			event         model.Event
			eventType     string
			entity        string
			payload       []byte
			relatedUserID uuid.NullUUID
		)
		err := rows.Scan(
			&event.ID, &eventType, &entity, &event.EntityID,
			&payload, &relatedUserID, &event.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		event.Type = model.EventType(eventType)
		event.Entity = model.EntityType(entity)
		event.Payload = payload
		event.UserID = fromNullUUID(relatedUserID)
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}
