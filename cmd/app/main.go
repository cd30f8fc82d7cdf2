// Package main provides the entry point for the application with CLI commands.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/allisson/expenses/cmd/app/commands"
	"github.com/allisson/expenses/internal/app"
	"github.com/allisson/expenses/internal/config"
)

const version = "1.0.0"

func main() {
	cmd := &cli.Command{
		Name:    "app",
		Usage:   "Expense recording and processing service",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:  "server",
				Usage: "Start the HTTP API server",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunServer(ctx, version)
				},
			},
			{
				Name:  "worker",
				Usage: "Start the expense processing worker",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunWorker(ctx, version)
				},
			},
			{
				Name:  "reconcile",
				Usage: "Sweep stale PENDING expenses and optionally re-enqueue them",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:    "interval",
						Aliases: []string{"i"},
						Value:   0,
						Usage:   "Run continuously on this interval (0 runs a single sweep)",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunReconcile(ctx, cmd.Duration("interval"), commands.DefaultIO())
				},
			},
			{
				Name:  "migrate",
				Usage: "Run database migrations",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunMigrations()
				},
			},
			{
				Name:  "create-client",
				Usage: "Create a new API client and print its API key",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "name",
						Aliases:  []string{"n"},
						Required: true,
						Usage:    "Human-readable client name",
					},
					&cli.StringFlag{
						Name:     "owner",
						Aliases:  []string{"o"},
						Required: true,
						Usage:    "Owner identifier the client submits expenses for",
					},
					&cli.BoolFlag{
						Name:    "active",
						Aliases: []string{"a"},
						Value:   true,
						Usage:   "Whether the client can authenticate immediately",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withContainer(ctx, func(ctx context.Context, container *app.Container) error {
						clientUseCase, err := container.ClientUseCase()
						if err != nil {
							return err
						}
						return commands.RunCreateClient(
							ctx,
							clientUseCase,
							container.Logger(),
							cmd.String("name"),
							cmd.String("owner"),
							cmd.Bool("active"),
							cmd.String("format"),
							commands.DefaultIO(),
						)
					})
				},
			},
			{
				Name:  "update-client",
				Usage: "Activate or deactivate an existing API client",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "id",
						Aliases:  []string{"i"},
						Required: true,
						Usage:    "Client ID (UUID)",
					},
					&cli.BoolFlag{
						Name:    "active",
						Aliases: []string{"a"},
						Value:   true,
						Usage:   "Whether the client can authenticate",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withContainer(ctx, func(ctx context.Context, container *app.Container) error {
						clientUseCase, err := container.ClientUseCase()
						if err != nil {
							return err
						}
						return commands.RunUpdateClient(
							ctx,
							clientUseCase,
							container.Logger(),
							cmd.String("id"),
							cmd.Bool("active"),
							commands.DefaultIO(),
						)
					})
				},
			},
			{
				Name:  "list-expenses",
				Usage: "List expenses across all owners by status or category",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "status",
						Aliases: []string{"s"},
						Usage:   "Filter by status (PENDING or PROCESSED)",
					},
					&cli.StringFlag{
						Name:    "category",
						Aliases: []string{"c"},
						Usage:   "Filter by category",
					},
					&cli.IntFlag{
						Name:  "offset",
						Value: 0,
						Usage: "Number of expenses to skip",
					},
					&cli.IntFlag{
						Name:  "limit",
						Value: 50,
						Usage: "Maximum number of expenses to return",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withContainer(ctx, func(ctx context.Context, container *app.Container) error {
						expenseUseCase, err := container.ExpenseUseCase()
						if err != nil {
							return err
						}
						return commands.RunListExpenses(
							ctx,
							expenseUseCase,
							container.Logger(),
							cmd.String("status"),
							cmd.String("category"),
							cmd.Int("offset"),
							cmd.Int("limit"),
							cmd.String("format"),
							commands.DefaultIO(),
						)
					})
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}

// withContainer builds a DI container for a one-shot command and tears it down
// when the command returns.
func withContainer(ctx context.Context, fn func(ctx context.Context, container *app.Container) error) error {
	container := app.NewContainer(config.Load())
	defer func() {
		if err := container.Shutdown(context.Background()); err != nil {
			container.Logger().Error("failed to shutdown container", slog.Any("error", err))
		}
	}()

	return fn(ctx, container)
}
