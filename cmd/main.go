package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/promo/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)
	runner := NewRunner(RunnerOpts{Logger: logger})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runner.app().Run(ctx, os.Args); err != nil {
		if errors.Is(err, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		}
		stop()
		logger.Fatalf("application error: %v", err)
	}
}

// app is the root command with the global flags every subcommand inherits.
func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:    "promo",
		Usage:   "Track promotion tasks for your music releases",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.StringFlag{
				Name:  "scope",
				Usage: "Session storage scope (overrides session.scope and " + shared.EnvScope + ")",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output JSON",
			},
			&cli.BoolFlag{
				Name:  "yaml",
				Usage: "Output YAML",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
		},
		Before:   r.prepare,
		After:    r.cleanup,
		Commands: r.register(),
	}
}
