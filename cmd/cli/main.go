package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/vk/bundlepipe/internal/app"
	"github.com/vk/bundlepipe/internal/cli"
	"github.com/vk/bundlepipe/internal/config"
	"github.com/vk/bundlepipe/internal/hcl"
)

// main is the entrypoint for the bundlepipe application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Stdout, os.Args[1:])
	stop()

	// The real main function handles errors and exit codes.
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitCode(err))
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(ctx context.Context, outW io.Writer, args []string) (err error) {
	appConfig, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	// The app panics when the compiled-in modules do not cover every
	// pipeline; report that as a regular error.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("application startup panicked: %v", r)
		}
	}()

	env := config.EnvFromOS()
	loader := hcl.NewLoader(env)
	bundleApp, err := app.NewApp(outW, appConfig, loader, app.WithEnv(env))
	if err != nil {
		return err
	}
	defer bundleApp.Close()

	return bundleApp.Run(ctx)
}
