package models

import "fmt"

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// IssueCode is the machine-readable kind of a validation issue.
type IssueCode string

const (
	IssueTriggerCount    IssueCode = "trigger_count"
	IssueInvalidEdge     IssueCode = "invalid_edge"
	IssueCycleDetected   IssueCode = "cycle_detected"
	IssueUnreachableNode IssueCode = "unreachable_node"
	IssueInvalidConfig   IssueCode = "invalid_config"
	IssueDeadEnd         IssueCode = "dead_end"
)

// ValidationIssue is one problem found in a graph. NodeID is empty for graph-level issues.
type ValidationIssue struct {
	Severity Severity  `json:"severity"`
	NodeID   string    `json:"node_id,omitempty"`
	Code     IssueCode `json:"code"`
	Message  string    `json:"message"`
}

func (i ValidationIssue) String() string {
	if i.NodeID == "" {
		return fmt.Sprintf("%s: %s: %s", i.Severity, i.Code, i.Message)
	}

	return fmt.Sprintf("%s: %s [%s]: %s", i.Severity, i.Code, i.NodeID, i.Message)
}

// HasErrors reports whether any issue blocks activation.
func HasErrors(issues []ValidationIssue) bool {
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			return true
		}
	}

	return false
}
