package models

// EventKind identifies what happened to a domain entity.
type EventKind string

const (
	EventKindCreated        EventKind = "created"
	EventKindUpdated        EventKind = "updated"
	EventKindDeleted        EventKind = "deleted"
	EventKindStageChanged   EventKind = "stage_changed"
	EventKindWebhookReceive EventKind = "webhook_receive"
)

// FieldType is the semantic type of an automatable model field.
type FieldType string

const (
	FieldTypeString   FieldType = "string"
	FieldTypeNumber   FieldType = "number"
	FieldTypeBoolean  FieldType = "boolean"
	FieldTypeEmail    FieldType = "email"
	FieldTypeDate     FieldType = "date"
	FieldTypeURL      FieldType = "url"
	FieldTypeRelation FieldType = "relation"
)

// AutomatableModel is a domain entity type that can originate trigger events.
type AutomatableModel struct {
	Key         string               `json:"key"              yaml:"key"              validate:"required"`
	DisplayName string               `json:"display_name"     yaml:"display_name"     validate:"required"`
	Fields      map[string]FieldType `json:"fields"           yaml:"fields"           validate:"required,min=1,dive,keys,required,endkeys,oneof=string number boolean email date url relation"`
	Events      []EventKind          `json:"events"           yaml:"events"           validate:"required,min=1,dive,oneof=created updated deleted stage_changed"`
	Stages      []string             `json:"stages,omitempty" yaml:"stages,omitempty" validate:"dive,required"`
}

// SupportsEvent reports whether the model emits events of the given kind.
func (m *AutomatableModel) SupportsEvent(kind EventKind) bool {
	for _, event := range m.Events {
		if event == kind {
			return true
		}
	}

	return false
}

// HasStage reports whether stage is declared. Models without declared stages accept any stage.
func (m *AutomatableModel) HasStage(stage string) bool {
	if len(m.Stages) == 0 {
		return true
	}

	for _, s := range m.Stages {
		if s == stage {
			return true
		}
	}

	return false
}
