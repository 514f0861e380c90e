package server

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// MockSecurityLayer mocks the SecurityLayer interface
type MockSecurityLayer struct {
	mock.Mock
}

func (m *MockSecurityLayer) Listen(protocol, addr string) (net.Listener, error) {
	args := m.Called(protocol, addr)
	ln, _ := args.Get(0).(net.Listener)
	return ln, args.Error(1)
}

func TestGRPCServer_Address(t *testing.T) {
	s := NewGRPCServer(grpc.NewServer(), ":0")
	assert.Equal(t, ":0", s.Address())
}

func TestGRPCServer_Stop(t *testing.T) {
	s := NewGRPCServer(grpc.NewServer(), ":0")
	assert.NoError(t, s.Stop(context.Background()))
}

func TestGRPCServer_StartListenError(t *testing.T) {
	sec := &MockSecurityLayer{}
	sec.On("Listen", "tcp", ":0").Return(nil, errors.New("address in use"))

	err := NewGRPCServer(grpc.NewServer(), ":0").Start(sec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to listen")
}

func TestGRPCServer_StartServesHealth(t *testing.T) {
	gs := grpc.NewServer()
	health := grpchealth.NewServer()
	healthpb.RegisterHealthServer(gs, health)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	sec := &MockSecurityLayer{}
	sec.On("Listen", "tcp", ":0").Return(ln, nil)

	srv := NewGRPCServer(gs, ":0")
	served := make(chan error, 1)
	go func() { served <- srv.Start(sec) }()

	conn, err := grpc.NewClient(ln.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())

	require.NoError(t, srv.Stop(ctx))
	assert.NoError(t, <-served)
}
