package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/kubeprofiles/profilectl/pkg/cli"
	pkgerrors "github.com/kubeprofiles/profilectl/pkg/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.New().Run(ctx, os.Args); err != nil {
		cli.PrintFailure(os.Stderr, err)
		stop()
		os.Exit(pkgerrors.ExitCode(err))
	}
}
