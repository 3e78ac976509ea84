package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/dukex/talentflow/pkg/eventbus"
	"github.com/dukex/talentflow/pkg/events"
	"github.com/dukex/talentflow/pkg/persistence"
	"github.com/dukex/talentflow/pkg/workflow"
)

type WorkerManager struct {
	id         string
	logger     *slog.Logger
	dispatcher *workflow.Dispatcher
	eventBus   eventbus.EventBus
	retention  *RetentionSweeper
}

// NewWorkerManager creates the manager. retention may be nil to keep every execution record.
func NewWorkerManager(
	id string,
	dispatcher *workflow.Dispatcher,
	eventBus eventbus.EventBus,
	retention *RetentionSweeper,
	logger *slog.Logger,
) *WorkerManager {
	return &WorkerManager{
		id:         id,
		logger:     logger.With("module", "talentflow-worker", "worker_id", id),
		dispatcher: dispatcher,
		eventBus:   eventBus,
		retention:  retention,
	}
}

// Start runs the worker until SIGINT or SIGTERM.
func (w *WorkerManager) Start(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return w.Run(ctx)
}

// Run consumes domain events until ctx is done, then stops running executions and waits for
// their records to be saved.
func (w *WorkerManager) Run(ctx context.Context) error {
	w.logger.InfoContext(ctx, "Starting worker manager")

	err := w.eventBus.Handle(events.DomainEventReceivedEvent, w.dispatcher.HandleEvent)
	if err != nil {
		return err
	}

	err = w.eventBus.Subscribe(ctx)
	if err != nil {
		w.logger.ErrorContext(ctx, "Failed to subscribe to event bus", "error", err)

		return err
	}

	if w.retention != nil {
		w.retention.Start()
	}

	w.logger.InfoContext(ctx, "Worker started successfully")

	<-ctx.Done()

	w.logger.Info("Shutting down worker...")

	if w.retention != nil {
		w.retention.Stop()
	}

	w.dispatcher.Stop()

	w.logger.Info("Worker stopped")

	return nil
}

// newDispatcher composes matcher, engine and dispatcher over one store. Executions stop between
// nodes when the store reports their graph disabled.
func newDispatcher(
	workerID string,
	store persistence.Persistence,
	executors workflow.ExecutorSource,
	eventBus eventbus.EventBus,
	logger *slog.Logger,
	opts ...workflow.EngineOption,
) *workflow.Dispatcher {
	opts = append([]workflow.EngineOption{workflow.WithStatusSource(store)}, opts...)

	return workflow.NewDispatcher(
		workerID,
		workflow.NewTriggerMatcher(store, logger),
		workflow.NewEngine(executors, logger, opts...),
		store,
		eventBus,
		logger,
	)
}
