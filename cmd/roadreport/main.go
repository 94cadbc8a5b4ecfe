// Command roadreport files pothole reports from the command line.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/roadreport/internal/cli"
	"github.com/okian/roadreport/internal/config"
	"github.com/okian/roadreport/pkg/logger"
)

func main() {
	// Logs go to stderr so command output stays clean.
	if err := logger.Init(logger.WithWriter(os.Stderr)); err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize logging:", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1) //nolint:gocritic // exitAfterDefer: stop already called
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		_ = logger.SetLevelString("warn")
	}

	env := &cli.Env{Service: cli.NewService(cfg), Out: os.Stdout}
	if err := cli.Execute(ctx, env, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
