package models

import "time"

// Activity is a timeline entry written against a domain entity by create_activity.
type Activity struct {
	ID          string    `json:"id"`
	Owner       string    `json:"owner"`
	EntityID    string    `json:"entity_id"`
	Message     string    `json:"message"`
	GraphID     string    `json:"graph_id"`
	ExecutionID string    `json:"execution_id"`
	NodeID      string    `json:"node_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// EmailMessage is a rendered email handed to the delivery service.
type EmailMessage struct {
	ID          string    `json:"id"`
	Owner       string    `json:"owner"`
	To          string    `json:"to"`
	Subject     string    `json:"subject"`
	Body        string    `json:"body"`
	GraphID     string    `json:"graph_id"`
	ExecutionID string    `json:"execution_id"`
	NodeID      string    `json:"node_id"`
	CreatedAt   time.Time `json:"created_at"`
}
