package service

import (
	"fmt"

	"github.com/dtroode/taskboard/internal/logger"
	"github.com/dtroode/taskboard/internal/model"
)

// Persistence modes.
const (
	// ModeEventSourcing writes every mutation to the event log as well.
	ModeEventSourcing = "eventsourcing"
	// ModeState writes current state only.
	ModeState = "state"
)

// Persistence holds the task and user persistence services of one mode.
type Persistence struct {
	Tasks *Task
	Users *User
}

// NewPersistence wires the persistence services selected by mode on top of storage.
func NewPersistence(mode string, storage model.Storage, logger *logger.Logger) (*Persistence, error) {
	var journal Journal
	switch mode {
	case ModeEventSourcing:
		journal = NewEventLog(storage.Events())
	case ModeState:
		journal = discardJournal{}
	default:
		return nil, fmt.Errorf("unknown persistence mode %q", mode)
	}

	return &Persistence{
		Tasks: NewTask(storage, storage.Tasks(), journal, logger),
		Users: NewUser(storage, storage.Users(), journal, logger),
	}, nil
}
