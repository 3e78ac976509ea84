// Package sendemail renders an email from the node input and hands it to a delivery service.
package sendemail

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/talentflow/pkg/models"
	"github.com/dukex/talentflow/pkg/protocol"
	"github.com/dukex/talentflow/pkg/template"
	"github.com/google/uuid"
)

const defaultSubject = "Notification"

// Mailer delivers rendered messages. Delivery failures are treated as transient.
type Mailer interface {
	Deliver(ctx context.Context, message models.EmailMessage) error
}

type Executor struct {
	mailer Mailer
	logger *slog.Logger
}

func NewExecutor(mailer Mailer, logger *slog.Logger) *Executor {
	return &Executor{
		mailer: mailer,
		logger: logger.With("module", "send_email"),
	}
}

func (e *Executor) Type() models.NodeType {
	return models.NodeTypeSendEmail
}

// Execute fails terminally when the recipient is missing or a template does not render, and
// retryably when the mailer rejects the message.
func (e *Executor) Execute(ctx context.Context, config models.NodeConfig, input protocol.Input) (map[string]any, error) {
	cfg, ok := config.(*models.SendEmailConfig)
	if !ok {
		return nil, protocol.Terminal(fmt.Errorf("send_email: unexpected config %T", config))
	}

	recipient, _ := input.Data[cfg.RecipientField()].(string)
	if recipient == "" {
		return nil, protocol.Terminal(fmt.Errorf("recipient field %q is missing or empty", cfg.RecipientField()))
	}

	body, err := template.RenderString(cfg.Template, input.Data)
	if err != nil {
		return nil, protocol.Terminal(fmt.Errorf("failed to render email body: %w", err))
	}

	subject := defaultSubject
	if cfg.Subject != "" {
		subject, err = template.RenderString(cfg.Subject, input.Data)
		if err != nil {
			return nil, protocol.Terminal(fmt.Errorf("failed to render email subject: %w", err))
		}
	}

	message := models.EmailMessage{
		ID:          uuid.New().String(),
		Owner:       input.Owner,
		To:          recipient,
		Subject:     subject,
		Body:        body,
		GraphID:     input.GraphID,
		ExecutionID: input.ExecutionID,
		NodeID:      input.NodeID,
		CreatedAt:   time.Now().UTC(),
	}

	err = e.mailer.Deliver(ctx, message)
	if err != nil {
		return nil, protocol.Retryable(fmt.Errorf("email delivery failed: %w", err))
	}

	e.logger.InfoContext(ctx, "Email handed to delivery",
		"node_id", input.NodeID,
		"execution_id", input.ExecutionID,
		"message_id", message.ID,
	)

	return map[string]any{
		"message_id": message.ID,
		"to":         recipient,
		"subject":    subject,
	}, nil
}
