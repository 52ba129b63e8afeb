package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"
)

// version is embedded at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/kubeprofiles/profilectl/pkg/cli.version=1.0.0'"
var version = "dev"

// New constructs the root command.
func New() *cli.Command {
	return &cli.Command{
		Name:                  "profilectl",
		Usage:                 "Generate and deploy containerized application profiles",
		Version:               version,
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
			&cli.BoolFlag{
				Name:  "log-json",
				Usage: "Output logs in JSON format",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			configureLogging(cmd.Bool("debug"), cmd.Bool("log-json"))
			return ctx, nil
		},
		Commands: []*cli.Command{
			generateCmd(),
			deployCmd(),
		},
	}
}

// configureLogging installs the process-wide slog handler. Logs go to
// stderr so stdout stays clean for serialized command output.
func configureLogging(debug, logJSON bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if logJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
