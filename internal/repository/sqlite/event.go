package sqlite

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dtroode/taskboard/internal/model"
)

var _ model.EventStore = (*EventRepository)(nil)

const eventColumns = `id, type, entity, entity_id, payload, user_id, created_at`

// EventRepository is the append-only event log.
type EventRepository struct {
	db *Connection
}

func (r *EventRepository) Append(ctx context.Context, event model.Event) error {
	_, err := r.db.querier(ctx).ExecContext(ctx,
		`INSERT INTO events (`+eventColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		event.ID, string(event.Type), string(event.Entity), event.EntityID,
		string(event.Payload), toNullUUID(event.UserID), toUnix(event.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

func (r *EventRepository) GetAll(ctx context.Context) ([]model.Event, error) {
	return r.list(ctx, `SELECT `+eventColumns+` FROM events ORDER BY seq`)
}

func (r *EventRepository) GetByEntity(ctx context.Context, entity model.EntityType, entityID uuid.UUID) ([]model.Event, error) {
	return r.list(ctx, `SELECT `+eventColumns+` FROM events WHERE entity = ? AND entity_id = ? ORDER BY seq`, string(entity), entityID)
}

func (r *EventRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.querier(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return n, nil
}

func (r *EventRepository) list(ctx context.Context, query string, args ...any) ([]model.Event, error) {
	rows, err := r.db.querier(ctx).QueryContext(ctx, query, args...)
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
			payload       string
			relatedUserID uuid.NullUUID
			createdAt     int64
		)
		err := rows.Scan(&event.ID, &eventType, &entity, &event.EntityID, &payload, &relatedUserID, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		event.Type = model.EventType(eventType)
		event.Entity = model.EntityType(entity)
		event.Payload = []byte(payload)
		event.UserID = fromNullUUID(relatedUserID)
		event.CreatedAt = fromUnix(createdAt)
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}
