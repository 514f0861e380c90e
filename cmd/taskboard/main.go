package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dtroode/taskboard/internal/cli"
	"github.com/dtroode/taskboard/internal/logger"
	"github.com/dtroode/taskboard/internal/model"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	opts := &cli.RootOptions{}
	cmd := cli.NewRootCommand(opts, appVersion())

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return
	}

	lg := opts.Logger
	if lg == nil {
		lg = logger.New(0)
	}
	if errors.Is(err, model.ErrConsistencyViolation) {
		lg.Fatal("storage consistency violated", "error", err)
	}

	stop()
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}

func appVersion() string {
	return fmt.Sprintf("%s (built %s, commit %s)", buildVersion, buildDate, buildCommit)
}
