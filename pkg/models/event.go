package models

import "time"

// StageTransition is the observed stage move of a stage_changed event.
type StageTransition struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// DomainEvent is an incoming occurrence a trigger can react to.
type DomainEvent struct {
	ID          string           `json:"id"`
	Owner       string           `json:"owner"                  validate:"required"`
	ModelKey    string           `json:"model_key,omitempty"    validate:"required_unless=Kind webhook_receive"`
	Kind        EventKind        `json:"event_kind"             validate:"required,oneof=created updated deleted stage_changed webhook_receive"`
	WebhookPath string           `json:"webhook_path,omitempty" validate:"required_if=Kind webhook_receive"`
	Transition  *StageTransition `json:"transition,omitempty"   validate:"required_if=Kind stage_changed"`
	Payload     map[string]any   `json:"payload"`
	OccurredAt  time.Time        `json:"occurred_at"`
}
