package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/sealed/cmd/app/commands"
	"github.com/allisson/sealed/internal/app"
	"github.com/allisson/sealed/internal/config"
)

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "server",
			Usage: "Start the HTTP server",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunServer(ctx, version)
			},
		},
		{
			Name:  "migrate",
			Usage: "Run database migrations",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "down",
					Value: 0,
					Usage: "Revert this many migrations instead of applying pending ones",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(cfg *config.Config, c *app.Container) error {
					if steps := int(cmd.Int("down")); steps > 0 {
						return commands.RunMigrationsDown(c.Logger(), cfg.DBDriver, cfg.DBConnectionString, steps)
					}
					return commands.RunMigrations(c.Logger(), cfg.DBDriver, cfg.DBConnectionString)
				})
			},
		},
	}
}
