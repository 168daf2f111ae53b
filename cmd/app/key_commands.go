package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/sealed/cmd/app/commands"
	cryptoService "github.com/allisson/sealed/internal/crypto/service"
)

func getKeyCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-local-kms-key",
			Usage: "Generate a local base64key:// KMS key for development",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "name",
					Aliases: []string{"n"},
					Value:   "local",
					Usage:   "Key name recorded on every wrapped DEK",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunCreateLocalKMSKey(
					ctx,
					cryptoService.NewKMSService(),
					commands.DefaultIO().Writer,
					cmd.String("name"),
					cmd.String("format"),
				)
			},
		},
	}
}
