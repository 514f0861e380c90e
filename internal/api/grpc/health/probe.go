// Package health reports storage reachability through the standard gRPC
// health service.
package health

import (
	"context"
	"time"

	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/dtroode/taskboard/internal/logger"
)

const (
	// ServiceName is the health service name of the board.
	ServiceName = "taskboard"
	// DefaultInterval replaces a non-positive check interval.
	DefaultInterval = 15 * time.Second
)

// Pinger is implemented by model.Storage.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Probe pings storage and publishes the result to a health server.
type Probe struct {
	pinger   Pinger
	server   *grpchealth.Server
	interval time.Duration
	timeout  time.Duration
	logger   *logger.Logger
}

func NewProbe(pinger Pinger, interval time.Duration, logger *logger.Logger) *Probe {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Probe{
		pinger:   pinger,
		server:   grpchealth.NewServer(),
		interval: interval,
		timeout:  interval / 2,
		logger:   logger,
	}
}

// Server returns the health server to register on the gRPC server.
func (p *Probe) Server() *grpchealth.Server {
	return p.server
}

// Check pings storage once and updates the serving status.
func (p *Probe) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	pingCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := p.pinger.Ping(pingCtx); err != nil {
		p.logger.Warn("storage ping failed", "error", err)
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}

	p.server.SetServingStatus("", status)
	p.server.SetServingStatus(ServiceName, status)
	return status
}

// Run checks storage every interval until ctx is done, then marks the
// services as shutting down.
func (p *Probe) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.Check(ctx)
	for {
		select {
		case <-ctx.Done():
			p.server.Shutdown()
			return
		case <-ticker.C:
			p.Check(ctx)
		}
	}
}
