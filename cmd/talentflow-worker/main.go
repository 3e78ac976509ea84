package main

import (
	"context"
	"os"
	"time"

	"github.com/dukex/talentflow/pkg/cmd"
	"github.com/dukex/talentflow/pkg/log"
	"github.com/dukex/talentflow/pkg/mail"
	"github.com/dukex/talentflow/pkg/otelhelper"
	"github.com/dukex/talentflow/pkg/services"
	"github.com/dukex/talentflow/pkg/workflow"
	"github.com/google/uuid"
	cli "github.com/urfave/cli/v3"
)

func main() {
	command := &cli.Command{
		Name:                  "talentflow-worker",
		EnableShellCompletion: true,
		Usage:                 "Match domain events to active automations and execute them",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "worker-id",
				Aliases: []string{"id"},
				Usage:   "Custom worker ID (auto-generated if not provided)",
				Value:   "",
				Sources: cli.EnvVars("WORKER_ID"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence (file://<dir> or postgres://...)",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (gochannel, kafka)",
				Value:   "kafka",
				Sources: cli.EnvVars("EVENT_BUS"),
			},
			&cli.StringSliceFlag{
				Name:    "kafka-brokers",
				Usage:   "Kafka broker addresses",
				Value:   []string{"localhost:9092"},
				Sources: cli.EnvVars("KAFKA_BROKERS"),
			},
			&cli.StringFlag{
				Name:    "activity-store-url",
				Usage:   "Redis URL of the activity timeline; empty writes it to the database",
				Sources: cli.EnvVars("ACTIVITY_STORE_URL"),
			},
			&cli.StringFlag{
				Name:    "models-file",
				Usage:   "YAML catalog of automatable models; empty uses the built-in catalog",
				Sources: cli.EnvVars("MODELS_FILE"),
			},
			&cli.StringFlag{
				Name:    "plugins-path",
				Usage:   "Path to the directory containing action executor plugins",
				Value:   "./plugins",
				Sources: cli.EnvVars("PLUGINS_PATH"),
			},
			&cli.DurationFlag{
				Name:    "retry-base-delay",
				Usage:   "Delay before the first retry of a failed action",
				Value:   time.Second,
				Sources: cli.EnvVars("RETRY_BASE_DELAY"),
			},
			&cli.IntFlag{
				Name:    "retry-max-attempts",
				Usage:   "Attempts per action node, first one included",
				Value:   3,
				Sources: cli.EnvVars("RETRY_MAX_ATTEMPTS"),
			},
			&cli.DurationFlag{
				Name:    "webhook-timeout",
				Usage:   "Timeout of one send_webhook request",
				Value:   10 * time.Second,
				Sources: cli.EnvVars("WEBHOOK_TIMEOUT"),
			},
			&cli.DurationFlag{
				Name:    "retention",
				Usage:   "Age after which execution records are deleted; 0 keeps them forever",
				Value:   30 * 24 * time.Hour,
				Sources: cli.EnvVars("RETENTION"),
			},
			&cli.StringFlag{
				Name:    "retention-schedule",
				Usage:   "Cron expression of the retention sweep",
				Value:   "@daily",
				Sources: cli.EnvVars("RETENTION_SCHEDULE"),
			},
			&cli.BoolFlag{
				Name:    "otel-enabled",
				Usage:   "Export execution traces over OTLP/HTTP",
				Sources: cli.EnvVars("OTEL_ENABLED"),
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
				Value:   "text",
				Sources: cli.EnvVars("LOG_FORMAT"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.SetupFormat(command.String("log-level"), command.String("log-format"))

			workerID := command.String("worker-id")
			if workerID == "" {
				workerID = "worker-" + uuid.New().String()[:8]
			}

			logger := log.WithModule("talentflow-worker").With("worker_id", workerID)

			logger.InfoContext(ctx, "Initializing TalentFlow Worker")

			persistence := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			defer func() {
				err := persistence.Close(ctx)
				if err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			provider := command.String("event-bus")
			brokers := command.StringSlice("kafka-brokers")

			eventBus := cmd.NewEventBus(provider, brokers, "talentflow-worker", logger)
			defer func() {
				err := eventBus.Close()
				if err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			mailPublisher := cmd.NewMailPublisher(provider, brokers, logger)
			defer func() {
				err := mailPublisher.Close()
				if err != nil {
					logger.ErrorContext(ctx, "Failed to close mail publisher", "error", err)
				}
			}()

			registry := cmd.NewRegistry(logger, command.String("plugins-path"), cmd.ExecutorDeps{
				Mailer:         mail.NewQueue(mailPublisher, mail.Topic),
				Activities:     cmd.NewActivityStore(ctx, logger, command.String("activity-store-url"), persistence),
				WebhookTimeout: command.Duration("webhook-timeout"),
			})

			engineOptions := []workflow.EngineOption{
				workflow.WithRetryPolicy(workflow.RetryPolicy{
					BaseDelay:   command.Duration("retry-base-delay"),
					Multiplier:  2,
					MaxAttempts: command.Int("retry-max-attempts"),
				}),
			}

			if command.Bool("otel-enabled") {
				tracer, shutdown, err := otelhelper.NewTracer(ctx, "talentflow-worker")
				if err != nil {
					return err
				}

				defer func() {
					err := shutdown(context.WithoutCancel(ctx))
					if err != nil {
						logger.ErrorContext(ctx, "Failed to shutdown tracer provider", "error", err)
					}
				}()

				engineOptions = append(engineOptions, workflow.WithTracer(tracer))
			}

			dispatcher := newDispatcher(workerID, persistence, registry, eventBus, logger, engineOptions...)

			var retention *RetentionSweeper

			if command.Duration("retention") > 0 {
				automations := services.NewAutomation(persistence, cmd.NewCatalog(command.String("models-file")), logger)

				sweeper, err := NewRetentionSweeper(command.String("retention-schedule"), command.Duration("retention"), automations, logger)
				if err != nil {
					return err
				}

				retention = sweeper
			}

			worker := NewWorkerManager(workerID, dispatcher, eventBus, retention, logger)

			err := worker.Start(ctx)
			if err != nil {
				logger.ErrorContext(ctx, "Failed to start worker", "error", err)

				return err
			}

			return nil
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}
