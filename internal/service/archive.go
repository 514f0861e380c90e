package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dtroode/taskboard/internal/logger"
	"github.com/dtroode/taskboard/internal/model"
)

const (
	archivePrefix      = "events/"
	archiveContentType = "application/x-ndjson"
)

// Archive exports the event log to object storage as JSON Lines.
type Archive struct {
	events  model.EventStore
	objects model.ObjectStore
	logger  *logger.Logger
	now     func() time.Time
}

func NewArchive(events model.EventStore, objects model.ObjectStore, logger *logger.Logger) *Archive {
	return &Archive{
		events:  events,
		objects: objects,
		logger:  logger,
		now:     time.Now,
	}
}

// Export writes every event, oldest first, to a new timestamped object.
// It returns model.ErrArchiveExists instead of replacing an object. The
// Exists check only skips reading the log; the conditional Put decides.
func (a *Archive) Export(ctx context.Context) (model.ArchiveResult, error) {
	key := archiveKey(a.now())

	exists, err := a.objects.Exists(ctx, key)
	if err != nil {
		return model.ArchiveResult{}, fmt.Errorf("failed to check archive: %w", err)
	}
	if exists {
		return model.ArchiveResult{}, fmt.Errorf("%s: %w", key, model.ErrArchiveExists)
	}

	events, err := a.events.GetAll(ctx)
	if err != nil {
		return model.ArchiveResult{}, fmt.Errorf("failed to get events: %w", err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, event := range events {
		if err := enc.Encode(event); err != nil {
			return model.ArchiveResult{}, fmt.Errorf("failed to encode event %s: %w", event.ID, err)
		}
	}

	if err := a.objects.Put(ctx, key, &buf, int64(buf.Len()), archiveContentType); err != nil {
		if errors.Is(err, model.ErrArchiveExists) {
			return model.ArchiveResult{}, err
		}
		return model.ArchiveResult{}, fmt.Errorf("failed to store archive: %w", err)
	}

	a.logger.Info("event log archived", "key", key, "events", len(events))
	return model.ArchiveResult{Key: key, Events: len(events)}, nil
}

// List returns the stored exports.
func (a *Archive) List(ctx context.Context) ([]model.ObjectInfo, error) {
	objects, err := a.objects.List(ctx, archivePrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list archives: %w", err)
	}
	return objects, nil
}

func archiveKey(t time.Time) string {
	return archivePrefix + t.UTC().Format(time.RFC3339) + ".jsonl"
}
