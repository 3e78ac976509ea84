package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dukex/talentflow/pkg/eventbus"
	"github.com/dukex/talentflow/pkg/events"
	"github.com/dukex/talentflow/pkg/models"
	"github.com/google/uuid"
)

// ExecutionSink persists finished execution records.
type ExecutionSink interface {
	SaveExecution(ctx context.Context, record *models.ExecutionRecord) error
}

// Dispatcher fans an event out to every matching graph. Each execution runs in its own goroutine;
// its record is saved and announced on the bus when it finishes.
type Dispatcher struct {
	workerID  string
	matcher   *TriggerMatcher
	engine    *Engine
	records   ExecutionSink
	publisher eventbus.EventPublisher
	// mu orders starting executions against Stop
	mu        sync.Mutex
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	logger    *slog.Logger
}

// NewDispatcher creates a dispatcher. publisher may be nil when nobody listens for finished
// executions.
func NewDispatcher(
	workerID string,
	matcher *TriggerMatcher,
	engine *Engine,
	records ExecutionSink,
	publisher eventbus.EventPublisher,
	logger *slog.Logger,
) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())

	return &Dispatcher{
		workerID:  workerID,
		matcher:   matcher,
		engine:    engine,
		records:   records,
		publisher: publisher,
		ctx:       ctx,
		cancel:    cancel,
		logger: logger.With(
			"module", "dispatcher",
			"worker_id", workerID,
		),
	}
}

// Dispatch starts one execution per matching graph and returns how many were started.
func (d *Dispatcher) Dispatch(ctx context.Context, event models.DomainEvent) (int, error) {
	if d.ctx.Err() != nil {
		return 0, errors.New("dispatcher is stopped")
	}

	graphs, err := d.matcher.Match(ctx, event)
	if err != nil {
		return 0, fmt.Errorf("failed to match event %s: %w", event.ID, err)
	}

	d.mu.Lock()
	if d.ctx.Err() != nil {
		d.mu.Unlock()

		return 0, errors.New("dispatcher is stopped")
	}

	d.wg.Add(len(graphs))

	for _, graph := range graphs {
		go func(graph *models.Graph) {
			defer d.wg.Done()

			d.run(graph, event)
		}(graph)
	}
	d.mu.Unlock()

	d.logger.InfoContext(ctx, "Dispatched event",
		"event_id", event.ID,
		"owner", event.Owner,
		"event_kind", event.Kind,
		"executions", len(graphs))

	return len(graphs), nil
}

// HandleEvent is the bus handler for events.DomainEventReceived.
func (d *Dispatcher) HandleEvent(ctx context.Context, event any) error {
	var domainEvent models.DomainEvent

	switch received := event.(type) {
	case *events.DomainEventReceived:
		domainEvent = received.Event
	case events.DomainEventReceived:
		domainEvent = received.Event
	default:
		return fmt.Errorf("unexpected event %T", event)
	}

	_, err := d.Dispatch(ctx, domainEvent)

	return err
}

func (d *Dispatcher) run(graph *models.Graph, event models.DomainEvent) {
	record := d.engine.Execute(d.ctx, graph, event)

	// the audit trail is written even while shutting down
	ctx := context.WithoutCancel(d.ctx)

	err := d.records.SaveExecution(ctx, record)
	if err != nil {
		d.logger.ErrorContext(ctx, "Failed to save execution record",
			"execution_id", record.ID,
			"graph_id", record.GraphID,
			"error", err)
	}

	if d.publisher == nil {
		return
	}

	err = d.publisher.Publish(ctx, record.GraphID, events.NewExecutionFinished(uuid.New().String(), d.workerID, record))
	if err != nil {
		d.logger.ErrorContext(ctx, "Failed to publish execution finished",
			"execution_id", record.ID,
			"error", err)
	}
}

// Wait blocks until every started execution has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Stop cancels running executions between nodes and waits for them to record their outcome.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	d.cancel()
	d.mu.Unlock()

	d.wg.Wait()
}
