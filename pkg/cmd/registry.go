// Package cmd provides common initialization functions for command-line applications.
package cmd

import (
	"context"
	"log/slog"
	"time"

	"github.com/dukex/talentflow/pkg/actions/createactivity"
	"github.com/dukex/talentflow/pkg/actions/sendemail"
	"github.com/dukex/talentflow/pkg/actions/sendwebhook"
	"github.com/dukex/talentflow/pkg/activitylog/redisstream"
	"github.com/dukex/talentflow/pkg/models"
	"github.com/dukex/talentflow/pkg/persistence"
	"github.com/dukex/talentflow/pkg/registry"
)

// ActivityStore is written by create_activity and read by the activities API.
type ActivityStore interface {
	createactivity.Store
	ActivitiesByEntity(ctx context.Context, owner, entityID string) ([]models.Activity, error)
}

// ExecutorDeps are the collaborators of the built-in executors.
type ExecutorDeps struct {
	Mailer         sendemail.Mailer
	Activities     createactivity.Store
	WebhookTimeout time.Duration
}

func registerNativeExecutors(reg *registry.Registry, log *slog.Logger, deps ExecutorDeps) {
	var webhookOptions []sendwebhook.Option
	if deps.WebhookTimeout > 0 {
		webhookOptions = append(webhookOptions, sendwebhook.WithTimeout(deps.WebhookTimeout))
	}

	reg.Register(sendwebhook.NewExecutor(log, webhookOptions...))
	reg.Register(sendemail.NewExecutor(deps.Mailer, log))
	reg.Register(createactivity.NewExecutor(deps.Activities, log))
}

func registerExecutorPlugins(reg *registry.Registry, pluginsPath string) {
	_, err := reg.LoadPlugins(pluginsPath)
	if err != nil {
		panic(err)
	}
}

// NewRegistry registers the built-in executors, then plugins, which may replace them.
func NewRegistry(log *slog.Logger, pluginsPath string, deps ExecutorDeps) *registry.Registry {
	reg := registry.NewRegistry(log)

	registerNativeExecutors(reg, log, deps)
	registerExecutorPlugins(reg, pluginsPath)

	return reg
}

// NewActivityStore returns the Redis stream store for redis:// urls and the main store otherwise.
func NewActivityStore(ctx context.Context, logger *slog.Logger, url string, fallback persistence.Persistence) ActivityStore {
	if parsePersistenceProvider(url) != "redis" && parsePersistenceProvider(url) != "rediss" {
		return fallback
	}

	store, err := redisstream.NewStore(ctx, url, logger)
	if err != nil {
		panic(err)
	}

	return store
}
