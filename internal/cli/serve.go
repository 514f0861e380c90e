package cli

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/dtroode/taskboard/internal/api/grpc/health"
	"github.com/dtroode/taskboard/internal/api/grpc/router"
	grpcServer "github.com/dtroode/taskboard/internal/api/grpc/server"
	"github.com/dtroode/taskboard/internal/model"
	"github.com/dtroode/taskboard/internal/seed"
	"github.com/dtroode/taskboard/internal/server"
	"github.com/dtroode/taskboard/internal/service"
)

const shutdownTimeout = 10 * time.Second

// NewServeCommand creates the serve command.
func NewServeCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the gRPC health server on top of the board storage",
		Long: `Apply migrations, optionally load development data (SEED_ON_START), and
serve gRPC health and reflection until interrupted. Storage is pinged every
HEALTH_INTERVAL and reported through grpc.health.v1.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
}

func runServe(ctx context.Context, opts *RootOptions) error {
	cfg, logger := opts.Config, opts.Logger

	storage, err := openStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer storage.Close()

	p, err := service.NewPersistence(cfg.PersistenceMode, storage, logger)
	if err != nil {
		return err
	}
	logger.Info("persistence ready", "driver", cfg.StorageDriver, "mode", cfg.PersistenceMode)

	if cfg.SeedOnStart {
		fixtures, err := seed.DefaultFixtures()
		if err != nil {
			return err
		}
		if _, err := seed.NewLoader(p.Tasks, p.Users, logger).Load(ctx, fixtures); err != nil {
			return fmt.Errorf("failed to load initial data: %w", err)
		}
	}

	probe := health.NewProbe(storage, cfg.HealthInterval, logger)
	s := router.New(probe.Server(), logger).Register()
	srv := grpcServer.NewGRPCServer(s, fmt.Sprintf(":%s", cfg.GRPC.Port))
	sl := server.NewSecurityLayer(cfg.GRPC.EnableHTTPS, cfg.GRPC.CertFileName, cfg.GRPC.PrivateKeyFileName)

	probeCtx, stopProbe := context.WithCancel(ctx)
	defer stopProbe()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		probe.Run(probeCtx)
	}()

	serveErr := make(chan error, 1)
	go func(s model.Server) {
		logger.Info("starting server", "address", s.Address())
		serveErr <- s.Start(sl)
	}(srv)

	select {
	case err := <-serveErr:
		stopProbe()
		wg.Wait()
		return err
	case <-ctx.Done():
		logger.Info("received interruption signal, shutting down")
	}

	stopProbe()
	wg.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", srv.Address())
	}
	if err := <-serveErr; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logger.Info("shutdown complete")
	return nil
}
