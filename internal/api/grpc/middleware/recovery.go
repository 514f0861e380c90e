package middleware

import (
	"context"
	"runtime/debug"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dtroode/taskboard/internal/logger"
)

// Recovery turns handler panics into Internal errors.
type Recovery struct {
	logger *logger.Logger
}

func NewRecovery(logger *logger.Logger) *Recovery {
	return &Recovery{logger: logger}
}

// HandlePanic is the recovery handler for the go-grpc-middleware recovery interceptors.
func (r *Recovery) HandlePanic(_ context.Context, p any) error {
	r.logger.Error("recovered from panic", "panic", p, "stack", string(debug.Stack()))
	return status.Errorf(codes.Internal, "internal error")
}
