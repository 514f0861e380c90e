package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dtroode/taskboard/internal/model"
)

// Journal receives one event per successful task or user mutation.
type Journal interface {
	Record(ctx context.Context, event model.Event) error
}

// EventLog is the journal backed by the append-only event store.
type EventLog struct {
	events model.EventStore
}

func NewEventLog(events model.EventStore) *EventLog {
	return &EventLog{events: events}
}

func (j *EventLog) Record(ctx context.Context, event model.Event) error {
	return j.events.Append(ctx, event)
}

// discardJournal keeps no history; only current state is persisted.
type discardJournal struct{}

func (discardJournal) Record(context.Context, model.Event) error {
	return nil
}

type eventFactory func(entity any, userID *uuid.UUID) (model.Event, error)

func record(ctx context.Context, journal Journal, newEvent eventFactory, entity any, userID *uuid.UUID) error {
	event, err := newEvent(entity, userID)
	if err != nil {
		return err
	}
	if err := journal.Record(ctx, event); err != nil {
		return fmt.Errorf("failed to record %s event: %w", event.Type, err)
	}
	return nil
}

func cloneID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
