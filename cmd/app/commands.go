package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/sealed/internal/app"
	"github.com/allisson/sealed/internal/config"
)

func getCommands(version string) []*cli.Command {
	cmds := []*cli.Command{}
	cmds = append(cmds, getSystemCommands(version)...)
	cmds = append(cmds, getKeyCommands()...)
	cmds = append(cmds, getAuthCommands()...)
	return cmds
}

// formatFlag is shared by every command that prints a report.
func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   "text",
		Usage:   "Output format: 'text' or 'json'",
	}
}

// withContainer builds a container from the environment, runs fn and shuts it down.
func withContainer(ctx context.Context, fn func(*config.Config, *app.Container) error) error {
	cfg := config.Load()
	container := app.NewContainer(cfg)
	defer func() { _ = container.Shutdown(ctx) }()
	return fn(cfg, container)
}
