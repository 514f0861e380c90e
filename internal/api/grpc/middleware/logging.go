package middleware

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dtroode/taskboard/internal/logger"
)

// Logging logs every gRPC call with its duration and status code.
type Logging struct {
	logger *logger.Logger
}

func NewLogging(logger *logger.Logger) *Logging {
	return &Logging{logger: logger}
}

// HandleGRPC is the unary interceptor.
func (l *Logging) HandleGRPC(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	l.log(info.FullMethod, start, err)
	return resp, err
}

// HandleStream is the stream interceptor. Health watches are streams.
func (l *Logging) HandleStream(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	start := time.Now()
	err := handler(srv, ss)
	l.log(info.FullMethod, start, err)
	return err
}

func (l *Logging) log(method string, start time.Time, err error) {
	code := statusCode(err)
	args := []any{
		"method", method,
		"duration_ms", time.Since(start).Milliseconds(),
		"status", code.String(),
	}

	if err != nil {
		l.logger.Error("gRPC request failed", append(args, "error", err.Error())...)
		return
	}
	l.logger.Debug("gRPC request completed", args...)
}

func statusCode(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	if st, ok := status.FromError(err); ok {
		return st.Code()
	}
	return codes.Internal
}
