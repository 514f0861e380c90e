package model

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventType enumerates mutation kinds recorded in the event log.
type EventType string

const (
	EventTypeInsert EventType = "INSERT"
	EventTypeUpdate EventType = "UPDATE"
	EventTypeDelete EventType = "DELETE"
)

// EntityType enumerates entity kinds recorded in the event log.
type EntityType string

const (
	EntityTypeTask EntityType = "TASK"
	EntityTypeUser EntityType = "USER"
)

// ParseEntityType converts s into an EntityType.
func ParseEntityType(s string) (EntityType, error) {
	switch entity := EntityType(s); entity {
	case EntityTypeTask, EntityTypeUser:
		return entity, nil
	default:
		return "", fmt.Errorf("unknown entity type %q", s)
	}
}

// EventStore is the append-only event log. Events are never updated or deleted.
type EventStore interface {
	Append(ctx context.Context, event Event) error
	GetAll(ctx context.Context) ([]Event, error)
	GetByEntity(ctx context.Context, entity EntityType, entityID uuid.UUID) ([]Event, error)
	Count(ctx context.Context) (int64, error)
}

// Event is an immutable record of a single entity mutation.
type Event struct {
	ID        uuid.UUID       `json:"id"`
	Type      EventType       `json:"type"`
	Entity    EntityType      `json:"entity"`
	EntityID  uuid.UUID       `json:"entityId"`
	Payload   json.RawMessage `json:"payload"`
	UserID    *uuid.UUID      `json:"userId"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Snapshotter is implemented by entities recorded in the event log.
type Snapshotter interface {
	Snapshot() map[string]any
}

// NewInsertEvent records the creation of task or user.
func NewInsertEvent(entity any, userID *uuid.UUID) (Event, error) {
	return newEvent(EventTypeInsert, entity, userID)
}

// NewUpdateEvent records the new state of an updated task or user.
func NewUpdateEvent(entity any, userID *uuid.UUID) (Event, error) {
	return newEvent(EventTypeUpdate, entity, userID)
}

// NewDeleteEvent records the last state of a removed task or user.
func NewDeleteEvent(entity any, userID *uuid.UUID) (Event, error) {
	return newEvent(EventTypeDelete, entity, userID)
}

func newEvent(eventType EventType, entity any, userID *uuid.UUID) (Event, error) {
	var (
		entityType EntityType
		entityID   uuid.UUID
		snapshot   Snapshotter
	)

	switch e := entity.(type) {
	case Task:
		entityType, entityID, snapshot = EntityTypeTask, e.ID, e
	case User:
		entityType, entityID, snapshot = EntityTypeUser, e.ID, e
	default:
		return Event{}, fmt.Errorf("unsupported event entity %T", entity)
	}

	payload, err := json.Marshal(snapshot.Snapshot())
	if err != nil {
		return Event{}, fmt.Errorf("failed to encode event payload: %w", err)
	}

	return Event{
		ID:        uuid.New(),
		Type:      eventType,
		Entity:    entityType,
		EntityID:  entityID,
		Payload:   payload,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// DecodePayload returns the entity field set captured by the event.
func (e Event) DecodePayload() (map[string]any, error) {
	fields := make(map[string]any)
	if err := json.Unmarshal(e.Payload, &fields); err != nil {
		return nil, fmt.Errorf("failed to decode event payload: %w", err)
	}
	return fields, nil
}
