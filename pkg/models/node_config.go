package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strings"
)

const (
	defaultWebhookMethod  = http.MethodPost
	defaultRecipientField = "email"
)

// NodeConfig is the closed set of per-type node configurations.
type NodeConfig interface {
	isNodeConfig()
}

// WebhookReceiveConfig configures a webhook_receive trigger. Schema, when set, is a JSON schema the
// inbound payload must satisfy for the trigger to match.
type WebhookReceiveConfig struct {
	WebhookPath string         `json:"webhook_path"     validate:"required,startswith=/"`
	Schema      map[string]any `json:"schema,omitempty"`
}

// ModelTriggerConfig configures model_created, model_updated and model_deleted triggers.
type ModelTriggerConfig struct {
	Model string `json:"model" validate:"required"`
}

// StageChangedConfig configures a stage_changed trigger. Empty stage filters match any stage.
type StageChangedConfig struct {
	Model     string `json:"model"                validate:"required"`
	FromStage string `json:"from_stage,omitempty"`
	ToStage   string `json:"to_stage,omitempty"`
}

type SendWebhookConfig struct {
	URL     string            `json:"url"               validate:"required,http_url"`
	Method  string            `json:"method,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
}

// webhookMethods are the methods a send_webhook node may use, compared case-insensitively.
var webhookMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete}

// HTTPMethod returns the configured method upper-cased, or POST.
func (c *SendWebhookConfig) HTTPMethod() string {
	if c.Method == "" {
		return defaultWebhookMethod
	}

	return strings.ToUpper(c.Method)
}

// HasValidMethod reports whether HTTPMethod is one of GET, POST, PUT, PATCH or DELETE.
func (c *SendWebhookConfig) HasValidMethod() bool {
	return slices.Contains(webhookMethods, c.HTTPMethod())
}

type SendEmailConfig struct {
	Template string `json:"template"           validate:"required"`
	Subject  string `json:"subject,omitempty"`
	ToField  string `json:"to_field,omitempty"`
}

// RecipientField returns the input field holding the recipient address.
func (c *SendEmailConfig) RecipientField() string {
	if c.ToField == "" {
		return defaultRecipientField
	}

	return c.ToField
}

type CreateActivityConfig struct {
	EntityField     string `json:"entity_field"     validate:"required"`
	MessageTemplate string `json:"message_template" validate:"required"`
}

// InvalidConfig keeps a config that could not be decoded for its declared type.
type InvalidConfig struct {
	Raw json.RawMessage
	Err error
}

func (c *InvalidConfig) MarshalJSON() ([]byte, error) {
	if len(c.Raw) == 0 {
		return []byte("{}"), nil
	}

	return c.Raw, nil
}

func (*WebhookReceiveConfig) isNodeConfig() {}
func (*ModelTriggerConfig) isNodeConfig()   {}
func (*StageChangedConfig) isNodeConfig()   {}
func (*SendWebhookConfig) isNodeConfig()    {}
func (*SendEmailConfig) isNodeConfig()      {}
func (*CreateActivityConfig) isNodeConfig() {}
func (*InvalidConfig) isNodeConfig()        {}

// DecodeNodeConfig decodes raw JSON into the config variant of nodeType.
func DecodeNodeConfig(nodeType NodeType, raw json.RawMessage) NodeConfig {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		raw = json.RawMessage("{}")
	}

	var config NodeConfig

	switch nodeType {
	case NodeTypeWebhookReceive:
		config = &WebhookReceiveConfig{}
	case NodeTypeModelCreated, NodeTypeModelUpdated, NodeTypeModelDeleted:
		config = &ModelTriggerConfig{}
	case NodeTypeStageChanged:
		config = &StageChangedConfig{}
	case NodeTypeSendWebhook:
		config = &SendWebhookConfig{}
	case NodeTypeSendEmail:
		config = &SendEmailConfig{}
	case NodeTypeCreateActivity:
		config = &CreateActivityConfig{}
	default:
		return &InvalidConfig{Raw: raw, Err: fmt.Errorf("unknown node type %q", nodeType)}
	}

	if err := json.Unmarshal(raw, config); err != nil {
		return &InvalidConfig{Raw: raw, Err: fmt.Errorf("config does not match type %q: %w", nodeType, err)}
	}

	return config
}

// ConfigMatchesType reports whether config is the variant expected for nodeType.
func ConfigMatchesType(nodeType NodeType, config NodeConfig) bool {
	switch config.(type) {
	case *WebhookReceiveConfig:
		return nodeType == NodeTypeWebhookReceive
	case *ModelTriggerConfig:
		return nodeType == NodeTypeModelCreated || nodeType == NodeTypeModelUpdated || nodeType == NodeTypeModelDeleted
	case *StageChangedConfig:
		return nodeType == NodeTypeStageChanged
	case *SendWebhookConfig:
		return nodeType == NodeTypeSendWebhook
	case *SendEmailConfig:
		return nodeType == NodeTypeSendEmail
	case *CreateActivityConfig:
		return nodeType == NodeTypeCreateActivity
	default:
		return false
	}
}

// TriggerModel returns the model key a trigger config is bound to, if any.
func TriggerModel(config NodeConfig) string {
	switch c := config.(type) {
	case *ModelTriggerConfig:
		return c.Model
	case *StageChangedConfig:
		return c.Model
	default:
		return ""
	}
}
