// Package workflow matches domain events to active automation graphs and executes them.
package workflow

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dukex/talentflow/pkg/graph"
	"github.com/dukex/talentflow/pkg/models"
	"github.com/dukex/talentflow/pkg/otelhelper"
	"github.com/dukex/talentflow/pkg/persistence"
	"github.com/dukex/talentflow/pkg/protocol"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ExecutorSource resolves the executor of an action node type.
type ExecutorSource interface {
	Executor(nodeType models.NodeType) (protocol.ActionExecutor, error)
}

// GraphLoader is read between node invocations to notice a graph being disabled.
type GraphLoader interface {
	LoadGraph(ctx context.Context, id string) (*models.Graph, error)
}

// Engine runs one graph against one event. Nodes of a run execute one at a time in topological
// order; independent runs share nothing and may call Execute concurrently.
type Engine struct {
	executors ExecutorSource
	status    GraphLoader
	retry     RetryPolicy
	tracer    trace.Tracer
	logger    *slog.Logger
}

type EngineOption func(*Engine)

func WithRetryPolicy(policy RetryPolicy) EngineOption {
	return func(e *Engine) {
		e.retry = policy
	}
}

// WithStatusSource makes the engine stop a run when the graph is disabled or deleted mid-run.
func WithStatusSource(loader GraphLoader) EngineOption {
	return func(e *Engine) {
		e.status = loader
	}
}

func WithTracer(tracer trace.Tracer) EngineOption {
	return func(e *Engine) {
		e.tracer = tracer
	}
}

func NewEngine(executors ExecutorSource, logger *slog.Logger, opts ...EngineOption) *Engine {
	engine := &Engine{
		executors: executors,
		retry:     DefaultRetryPolicy(),
		tracer:    otelhelper.NoopTracer(),
		logger:    logger.With("module", "execution_engine"),
	}

	for _, opt := range opts {
		opt(engine)
	}

	return engine
}

// run is the transient state of one execution.
type run struct {
	doc     *models.Graph
	graph   *graph.Graph
	event   models.DomainEvent
	record  *models.ExecutionRecord
	status  map[string]models.NodeStatus
	outputs map[string]map[string]any
	halted  models.SkipReason
	logger  *slog.Logger
}

// Execute always returns a finished record. Node failures, cancellation and malformed input are
// reported in the record, never as an error.
func (e *Engine) Execute(ctx context.Context, doc *models.Graph, event models.DomainEvent) *models.ExecutionRecord {
	record := &models.ExecutionRecord{
		ID:             uuid.New().String(),
		GraphID:        doc.ID,
		GraphVersion:   doc.Version,
		Owner:          doc.Owner,
		TriggerEventID: event.ID,
		StartedAt:      time.Now().UTC(),
		NodeResults:    make([]models.NodeResult, 0, len(doc.Nodes)),
	}

	logger := e.logger.With("graph_id", doc.ID, "execution_id", record.ID, "event_id", event.ID)

	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "execute_graph",
		attribute.String(otelhelper.GraphIDKey, doc.ID),
		attribute.Int64(otelhelper.GraphVersionKey, doc.Version),
		attribute.String(otelhelper.ExecutionIDKey, record.ID),
		attribute.String(otelhelper.EventIDKey, event.ID),
		attribute.String(otelhelper.EventKindKey, string(event.Kind)),
		attribute.String(otelhelper.ModelKey, event.ModelKey),
		attribute.String(otelhelper.OwnerKey, doc.Owner),
	)
	defer span.End()

	built, err := graph.FromDocument(doc)
	if err == nil {
		_, err = built.TriggerNode()
	}

	if err != nil {
		logger.ErrorContext(ctx, "Graph cannot be executed", "error", err)
		otelhelper.SetError(span, err)

		record.Status = models.ExecutionStatusFailed
		record.FinishedAt = time.Now().UTC()

		return record
	}

	r := &run{
		doc:     doc,
		graph:   built,
		event:   event,
		record:  record,
		status:  make(map[string]models.NodeStatus, built.Len()),
		outputs: make(map[string]map[string]any, built.Len()),
		logger:  logger,
	}

	logger.InfoContext(ctx, "Starting execution")

	e.execute(ctx, r)

	record.FinishedAt = time.Now().UTC()
	record.Status = record.Summarize()

	span.SetAttributes(attribute.String("talentflow.execution.status", string(record.Status)))
	logger.InfoContext(ctx, "Execution finished", "status", record.Status, "duration", record.FinishedAt.Sub(record.StartedAt))

	return record
}

func (e *Engine) execute(ctx context.Context, r *run) {
	trigger, _ := r.graph.TriggerNode()
	now := time.Now().UTC()

	r.status[trigger.ID] = models.NodeStatusSucceeded
	r.outputs[trigger.ID] = r.event.Payload
	r.record.NodeResults = append(r.record.NodeResults, models.NodeResult{
		NodeID:     trigger.ID,
		NodeType:   trigger.Type,
		Status:     models.NodeStatusSucceeded,
		Attempts:   1,
		Output:     r.event.Payload,
		StartedAt:  &now,
		FinishedAt: &now,
	})

	order, err := r.graph.TopologicalOrder(trigger.ID)
	if errors.Is(err, graph.ErrCycle) {
		r.logger.WarnContext(ctx, "Graph has a cycle, nodes on it will not run")
	}

	for _, node := range order {
		if node.IsTrigger() {
			continue
		}

		if r.halted == "" {
			r.halted = e.haltReason(ctx, r)
		}

		switch {
		case r.halted != "":
			r.skip(node, r.halted)
		case !r.hasSucceededPredecessor(node):
			r.skip(node, models.SkipReasonUpstreamFailed)
		default:
			e.runNode(ctx, r, node)
		}
	}

	// nodes outside the trigger's reach, or on a cycle, never run
	for _, node := range r.graph.Nodes() {
		if _, seen := r.status[node.ID]; !seen && node.IsAction() {
			r.skip(node, models.SkipReasonUnreachable)
		}
	}
}

// haltReason is checked before every node; a non-empty reason skips the rest of the run.
func (e *Engine) haltReason(ctx context.Context, r *run) models.SkipReason {
	if ctx.Err() != nil {
		return models.SkipReasonCancelled
	}

	if e.status == nil {
		return ""
	}

	current, err := e.status.LoadGraph(ctx, r.doc.ID)

	switch {
	case persistence.IsGraphNotFound(err):
		r.logger.WarnContext(ctx, "Graph was deleted during execution")

		return models.SkipReasonGraphDisabled
	case err != nil:
		if ctx.Err() != nil {
			return models.SkipReasonCancelled
		}

		r.logger.WarnContext(ctx, "Could not read graph status, continuing", "error", err)

		return ""
	case current.Status == models.GraphStatusDisabled:
		r.logger.InfoContext(ctx, "Graph was disabled during execution")

		return models.SkipReasonGraphDisabled
	default:
		return ""
	}
}

func (e *Engine) runNode(ctx context.Context, r *run, node *models.Node) {
	logger := r.logger.With("node_id", node.ID, "node_type", node.Type)

	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "execute_node",
		attribute.String(otelhelper.NodeIDKey, node.ID),
		attribute.String(otelhelper.NodeTypeKey, string(node.Type)),
		attribute.String(otelhelper.ExecutionIDKey, r.record.ID),
	)
	defer span.End()

	started := time.Now().UTC()
	result := models.NodeResult{
		NodeID:    node.ID,
		NodeType:  node.Type,
		StartedAt: &started,
	}

	output, attempts, err := e.invoke(ctx, r, node, logger)

	finished := time.Now().UTC()
	result.FinishedAt = &finished
	result.Attempts = attempts

	if err != nil {
		otelhelper.SetError(span, err,
			attribute.Int(otelhelper.AttemptKey, attempts),
			attribute.Bool(otelhelper.RetryableKey, protocol.IsRetryable(err)))
		logger.ErrorContext(ctx, "Node failed", "attempt", attempts, "error", err)

		result.Status = models.NodeStatusFailed
		result.Error = &models.ExecutionError{Message: err.Error(), Retryable: protocol.IsRetryable(err)}
	} else {
		logger.InfoContext(ctx, "Node succeeded", "attempt", attempts)

		result.Status = models.NodeStatusSucceeded
		result.Output = output
		r.outputs[node.ID] = output
	}

	r.status[node.ID] = result.Status
	r.record.NodeResults = append(r.record.NodeResults, result)
}

// invoke calls the node executor under the retry policy and returns the attempt count. A started
// invocation, retries included, is never interrupted: cancellation of ctx only takes effect before
// the next node.
func (e *Engine) invoke(ctx context.Context, r *run, node *models.Node, logger *slog.Logger) (map[string]any, int, error) {
	executor, err := e.executors.Executor(node.Type)
	if err != nil {
		return nil, 0, protocol.Terminal(err)
	}

	input := protocol.Input{
		Data:        r.input(node),
		Owner:       r.doc.Owner,
		GraphID:     r.doc.ID,
		ExecutionID: r.record.ID,
		NodeID:      node.ID,
	}

	// values such as the span stay, cancellation does not
	callCtx := context.WithoutCancel(ctx)

	var (
		output   map[string]any
		attempts int
	)

	operation := func() error {
		attempts++

		out, err := executor.Execute(callCtx, node.Config, input)
		if err == nil {
			output = out

			return nil
		}

		if !protocol.IsRetryable(err) {
			return backoff.Permanent(err)
		}

		return err
	}

	notify := func(err error, wait time.Duration) {
		logger.WarnContext(callCtx, "Node attempt failed, retrying", "attempt", attempts, "retry_in", wait, "error", err)
	}

	err = backoff.RetryNotify(operation, e.retry.backOff(callCtx), notify)
	if err != nil {
		var actionErr *protocol.ActionError
		if !errors.As(err, &actionErr) {
			err = protocol.Terminal(err)
		}

		return nil, attempts, err
	}

	if output == nil {
		output = map[string]any{}
	}

	return output, attempts, nil
}

func (r *run) skip(node *models.Node, reason models.SkipReason) {
	r.status[node.ID] = models.NodeStatusSkipped
	r.record.NodeResults = append(r.record.NodeResults, models.NodeResult{
		NodeID:   node.ID,
		NodeType: node.Type,
		Status:   models.NodeStatusSkipped,
		Reason:   reason,
	})

	r.logger.Debug("Node skipped", "node_id", node.ID, "reason", reason)
}

// hasSucceededPredecessor implements the diamond rule: a node runs while any path into it is
// still alive.
func (r *run) hasSucceededPredecessor(node *models.Node) bool {
	for _, predecessor := range r.graph.Predecessors(node.ID) {
		if r.status[predecessor.ID] == models.NodeStatusSucceeded {
			return true
		}
	}

	return false
}

// input is the event payload at the top level plus "event" and "nodes", the outputs of every
// succeeded ancestor keyed by node id.
func (r *run) input(node *models.Node) map[string]any {
	data := make(map[string]any, len(r.event.Payload)+2)
	for key, value := range r.event.Payload {
		data[key] = value
	}

	event := map[string]any{
		"id":         r.event.ID,
		"model_key":  r.event.ModelKey,
		"event_kind": string(r.event.Kind),
	}

	if r.event.WebhookPath != "" {
		event["webhook_path"] = r.event.WebhookPath
	}

	if r.event.Transition != nil {
		event["from_stage"] = r.event.Transition.From
		event["to_stage"] = r.event.Transition.To
	}

	data["event"] = event
	data["nodes"] = r.ancestorOutputs(node)

	return data
}

func (r *run) ancestorOutputs(node *models.Node) map[string]any {
	outputs := make(map[string]any)
	visited := map[string]bool{node.ID: true}
	stack := r.graph.Predecessors(node.ID)

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if visited[current.ID] {
			continue
		}

		visited[current.ID] = true

		if output, ok := r.outputs[current.ID]; ok {
			outputs[current.ID] = output
		}

		stack = append(stack, r.graph.Predecessors(current.ID)...)
	}

	return outputs
}
