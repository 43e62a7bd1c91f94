package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/nazarli-shabnam/subscription-tracker/cmd/app/commands"
	"github.com/nazarli-shabnam/subscription-tracker/internal/app"
	"github.com/nazarli-shabnam/subscription-tracker/internal/config"
)

func getWorkflowCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "start-reminder",
			Usage: "Start the renewal reminder workflow of a subscription",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "subscription-id",
					Aliases:  []string{"s"},
					Required: true,
					Usage:    "Subscription ID (UUID)",
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

				reminderUseCase, err := container.ReminderUseCase()
				if err != nil {
					return err
				}

				return commands.RunStartReminder(
					ctx,
					reminderUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("subscription-id"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "create-user",
			Usage: "Register a user in the local directory",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "name",
					Aliases:  []string{"n"},
					Required: true,
					Usage:    "Display name",
				},
				&cli.StringFlag{
					Name:     "email",
					Aliases:  []string{"e"},
					Required: true,
					Usage:    "Email address reminders are sent to",
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

				userUseCase, err := container.UserUseCase()
				if err != nil {
					return err
				}

				return commands.RunCreateUser(
					ctx,
					userUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("name"),
					cmd.String("email"),
					cmd.String("format"),
				)
			},
		},
	}
}
