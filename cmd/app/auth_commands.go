package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/sealed/cmd/app/commands"
	"github.com/allisson/sealed/internal/app"
	"github.com/allisson/sealed/internal/config"
)

const dateFlagUsage = "in YYYY-MM-DD or YYYY-MM-DD HH:MM:SS format (UTC)"

func getAuthCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "verify-token",
			Usage: "Verify a bearer token and print the identity it carries",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "token",
					Aliases:  []string{"t"},
					Required: true,
					Usage:    "Bearer token, the 'Bearer ' prefix is optional",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(_ *config.Config, c *app.Container) error {
					verifier, err := c.TokenVerifier()
					if err != nil {
						return err
					}
					return commands.RunVerifyToken(
						ctx, verifier, c.Logger(), commands.DefaultIO().Writer,
						cmd.String("token"), cmd.String("format"),
					)
				})
			},
		},
		{
			Name:  "clean-audit-logs",
			Usage: "Remove audit entries past the retention window",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:     "days",
					Aliases:  []string{"d"},
					Required: true,
					Usage:    "Retention window in days",
				},
				&cli.BoolFlag{
					Name:    "dry-run",
					Aliases: []string{"n"},
					Usage:   "Only count matching entries",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(_ *config.Config, c *app.Container) error {
					uc, err := c.AuditLogUseCase()
					if err != nil {
						return err
					}
					return commands.RunCleanAuditLogs(
						ctx, uc, c.Logger(), commands.DefaultIO().Writer,
						int(cmd.Int("days")), cmd.Bool("dry-run"), cmd.String("format"),
					)
				})
			},
		},
		{
			Name:  "list-audit-logs",
			Usage: "List audit entries, newest first",
			Flags: []cli.Flag{
				&cli.IntFlag{Name: "offset", Usage: "Entries to skip"},
				&cli.IntFlag{
					Name:    "limit",
					Aliases: []string{"l"},
					Value:   50,
					Usage:   "Page size (1-1000)",
				},
				&cli.StringFlag{
					Name:    "start-date",
					Aliases: []string{"s"},
					Usage:   "Inclusive lower bound " + dateFlagUsage,
				},
				&cli.StringFlag{
					Name:    "end-date",
					Aliases: []string{"e"},
					Usage:   "Inclusive upper bound " + dateFlagUsage,
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(_ *config.Config, c *app.Container) error {
					uc, err := c.AuditLogUseCase()
					if err != nil {
						return err
					}
					return commands.RunListAuditLogs(
						ctx, uc, c.Logger(), commands.DefaultIO().Writer,
						int(cmd.Int("offset")), int(cmd.Int("limit")),
						cmd.String("start-date"), cmd.String("end-date"),
						cmd.String("format"),
					)
				})
			},
		},
	}
}
