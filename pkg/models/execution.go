package models

import (
	"fmt"
	"time"
)

// NodeStatus is the outcome of one node within an execution.
type NodeStatus string

const (
	NodeStatusSucceeded NodeStatus = "succeeded"
	NodeStatusFailed    NodeStatus = "failed"
	NodeStatusSkipped   NodeStatus = "skipped"
)

// SkipReason explains why a node never ran.
type SkipReason string

const (
	SkipReasonUpstreamFailed SkipReason = "upstream_failed"
	SkipReasonGraphDisabled  SkipReason = "graph_disabled"
	SkipReasonCancelled      SkipReason = "cancelled"
	SkipReasonUnreachable    SkipReason = "unreachable"
)

// ExecutionStatus summarises all node results of a record.
type ExecutionStatus string

const (
	ExecutionStatusSucceeded       ExecutionStatus = "succeeded"
	ExecutionStatusPartiallyFailed ExecutionStatus = "partially_failed"
	ExecutionStatusFailed          ExecutionStatus = "failed"
	ExecutionStatusCancelled       ExecutionStatus = "cancelled"
)

// ExecutionError is the terminal failure of a node as kept in the record.
type ExecutionError struct {
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

func (e *ExecutionError) Error() string {
	return e.Message
}

// NodeResult is the outcome of one node.
type NodeResult struct {
	NodeID     string          `json:"node_id"`
	NodeType   NodeType        `json:"node_type"`
	Status     NodeStatus      `json:"status"`
	Attempts   int             `json:"attempts"`
	Reason     SkipReason      `json:"reason,omitempty"`
	Error      *ExecutionError `json:"error,omitempty"`
	Output     map[string]any  `json:"output,omitempty"`
	StartedAt  *time.Time      `json:"started_at,omitempty"`
	FinishedAt *time.Time      `json:"finished_at,omitempty"`
}

// ExecutionRecord is the audit trail of one graph run against one event.
type ExecutionRecord struct {
	ID             string          `json:"id"`
	GraphID        string          `json:"graph_id"`
	GraphVersion   int64           `json:"graph_version"`
	Owner          string          `json:"owner"`
	TriggerEventID string          `json:"trigger_event_id"`
	Status         ExecutionStatus `json:"status"`
	StartedAt      time.Time       `json:"started_at"`
	FinishedAt     time.Time       `json:"finished_at"`
	NodeResults    []NodeResult    `json:"node_results"`
}

// Result returns the result recorded for nodeID.
func (r *ExecutionRecord) Result(nodeID string) (NodeResult, bool) {
	for _, result := range r.NodeResults {
		if result.NodeID == nodeID {
			return result, true
		}
	}

	return NodeResult{}, false
}

// Summarize derives the record status from its node results.
func (r *ExecutionRecord) Summarize() ExecutionStatus {
	var succeeded, failed, cancelled int

	for _, result := range r.NodeResults {
		if result.NodeType.Kind() == NodeKindTrigger {
			continue
		}

		switch {
		case result.Status == NodeStatusSucceeded:
			succeeded++
		case result.Status == NodeStatusFailed:
			failed++
		case result.Reason == SkipReasonGraphDisabled || result.Reason == SkipReasonCancelled:
			cancelled++
		}
	}

	switch {
	case cancelled > 0:
		return ExecutionStatusCancelled
	case failed == 0:
		return ExecutionStatusSucceeded
	case succeeded == 0:
		return ExecutionStatusFailed
	default:
		return ExecutionStatusPartiallyFailed
	}
}

func (r *ExecutionRecord) String() string {
	return fmt.Sprintf("execution %s of graph %s@%d: %s", r.ID, r.GraphID, r.GraphVersion, r.Status)
}
