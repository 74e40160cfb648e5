package main

import (
	"context"
	"os"
	"time"

	cli "github.com/urfave/cli/v3"

	"github.com/Yoas-Hutapea/IDISys-sub004/pkg/cmd"
	"github.com/Yoas-Hutapea/IDISys-sub004/pkg/log"
	"github.com/Yoas-Hutapea/IDISys-sub004/pkg/otelhelper"
)

const (
	defaultPort      = 9080
	defaultRetention = 24 * time.Hour
)

func main() {
	logger := log.WithModule("api")

	command := &cli.Command{
		Name:                  "procurement-api",
		Usage:                 "Purchase request wizard API",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:     "backend-url",
				Usage:    "Base URL of the procurement backend",
				Required: true,
				Sources:  cli.EnvVars("BACKEND_URL"),
			},
			&cli.StringFlag{
				Name:    "redis-url",
				Usage:   "Redis URL for sessions and reference cache (empty: in-memory)",
				Sources: cli.EnvVars("REDIS_URL"),
			},
			&cli.StringFlag{
				Name:    "kafka-brokers",
				Usage:   "Comma-separated Kafka brokers for wizard events (empty: in-process)",
				Sources: cli.EnvVars("KAFKA_BROKERS"),
			},
			&cli.DurationFlag{
				Name:    "session-retention",
				Usage:   "How long abandoned wizard sessions are kept",
				Value:   defaultRetention,
				Sources: cli.EnvVars("SESSION_RETENTION"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "Log format (text, json)",
				Value:   "json",
				Sources: cli.EnvVars("LOG_FORMAT"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"), command.String("log-format"))

			logger.InfoContext(ctx, "Initializing procurement wizard API")

			tracer, err := otelhelper.NewTracer(ctx, "procurement-api")
			if err != nil {
				logger.WarnContext(ctx, "Tracing disabled", "error", err)
			}

			store, closeStore := cmd.NewSessionStore(
				command.String("redis-url"),
				command.Duration("session-retention"),
				logger,
			)
			defer closeStore()

			cacheStore, closeCache := cmd.NewCache(command.String("redis-url"), logger)
			defer closeCache()

			eventBus := cmd.NewEventBus(command.String("kafka-brokers"), logger)
			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			api := NewAPI(
				logger,
				command.String("backend-url"),
				store,
				cacheStore,
				eventBus,
				tracer,
			)

			if err := api.Start(command.Int("port")); err != nil {
				logger.ErrorContext(ctx, "Failed to start API server", "error", err)
			}

			return nil
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}
