package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/nazarli-shabnam/subscription-tracker/cmd/app/commands"
	"github.com/nazarli-shabnam/subscription-tracker/internal/app"
	"github.com/nazarli-shabnam/subscription-tracker/internal/config"
	webhookService "github.com/nazarli-shabnam/subscription-tracker/internal/webhook/service"
)

func getWebhookCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "sign-payload",
			Usage: "Compute the X-Webhook-Signature of a payload, for verifying receivers",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "secret",
					Aliases:  []string{"s"},
					Required: true,
					Usage:    "Webhook signing secret",
				},
				&cli.StringFlag{
					Name:    "payload",
					Aliases: []string{"p"},
					Usage:   "Compacted event data, the body's data field (omit to read from stdin)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunSignPayload(
					webhookService.NewSigner(),
					commands.DefaultIO(),
					cmd.String("secret"),
					cmd.String("payload"),
				)
			},
		},
		{
			Name:  "reactivate-webhook",
			Usage: "Re-enable a webhook that was deactivated after repeated failures",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "id",
					Aliases:  []string{"i"},
					Required: true,
					Usage:    "Webhook ID (UUID)",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				webhookUseCase, err := container.WebhookUseCase()
				if err != nil {
					return err
				}

				return commands.RunReactivateWebhook(
					ctx,
					webhookUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("id"),
					cmd.String("format"),
				)
			},
		},
	}
}
