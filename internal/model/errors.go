package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by stores when a row does not exist.
	ErrNotFound = errors.New("not found")

	ErrTaskNotFound  = errors.New("task not found")
	ErrUserNotFound  = errors.New("user not found")
	ErrDuplicateName = errors.New("duplicate user name")

	ErrInvalidTaskStatus = errors.New("invalid task status")

	// ErrArchiveExists is returned when an export would overwrite an object.
	ErrArchiveExists = errors.New("archive already exists")

	// ErrConsistencyViolation marks a write whose post-condition was not observed.
	// It means the storage contract is broken and must not be retried.
	ErrConsistencyViolation = errors.New("consistency violation")
)

// ConsistencyError describes a failed write-then-verify check.
type ConsistencyError struct {
	Op     string
	Entity EntityType
	Detail string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("%s: %s %s: %s", ErrConsistencyViolation, e.Op, e.Entity, e.Detail)
}

// Is reports ErrConsistencyViolation as the error kind.
func (e *ConsistencyError) Is(target error) bool {
	return target == ErrConsistencyViolation
}
