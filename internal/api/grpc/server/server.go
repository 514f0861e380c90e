package server

import (
	"context"
	"fmt"

	"google.golang.org/grpc"

	"github.com/dtroode/taskboard/internal/model"
)

var _ model.Server = (*GRPCServer)(nil)

// GRPCServer binds a gRPC server to an address.
type GRPCServer struct {
	server *grpc.Server
	addr   string
}

func NewGRPCServer(server *grpc.Server, addr string) *GRPCServer {
	return &GRPCServer{server: server, addr: addr}
}

// Start blocks serving on a listener opened by securityLayer.
func (s *GRPCServer) Start(securityLayer model.SecurityLayer) error {
	listener, err := securityLayer.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	if err := s.server.Serve(listener); err != nil {
		return fmt.Errorf("failed to serve: %w", err)
	}
	return nil
}

// Stop waits for in-flight calls to finish. Remaining calls are cancelled
// when ctx is done first.
func (s *GRPCServer) Stop(ctx context.Context) error {
	stopped := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
		return nil
	case <-ctx.Done():
		s.server.Stop()
		<-stopped
		return fmt.Errorf("forced shutdown: %w", ctx.Err())
	}
}

func (s *GRPCServer) Address() string {
	return s.addr
}
