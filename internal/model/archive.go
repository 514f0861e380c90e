package model

import (
	"context"
	"io"
	"time"
)

// ObjectStore keeps event log exports in a bucket.
type ObjectStore interface {
	// Put returns ErrArchiveExists when key is already taken.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Exists(ctx context.Context, key string) (bool, error)
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
}

// ObjectInfo describes a stored export.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// ArchiveResult reports a finished export.
type ArchiveResult struct {
	Key    string
	Events int
}
