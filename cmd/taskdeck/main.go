// Package main is the entry point for the taskdeck CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"taskdeck/internal/backend/restapi"
	"taskdeck/internal/cli"
	"taskdeck/internal/commands"
	"taskdeck/internal/config"
	"taskdeck/internal/service"
	"taskdeck/internal/session"
)

func main() {
	// Context cancels on interrupt
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	factory := func(ctx context.Context, cfg *config.Config, sess *session.Context) (service.Service, error) {
		c, err := restapi.New(cfg, sess)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	auth := func(cfg *config.Config) service.Authenticator {
		return restapi.NewAnonymous(cfg)
	}

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory, auth)

	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
