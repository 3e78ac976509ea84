package sendemail_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/dukex/talentflow/pkg/actions/sendemail"
	"github.com/dukex/talentflow/pkg/mocks"
	"github.com/dukex/talentflow/pkg/models"
	"github.com/dukex/talentflow/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func input(data map[string]any) protocol.Input {
	return protocol.Input{Data: data, Owner: "tenant-1", GraphID: "graph-1", ExecutionID: "exec-1", NodeID: "welcome"}
}

func TestExecutor_Execute_Delivers(t *testing.T) {
	mailer := new(mocks.MockMailer)
	mailer.On("Deliver", mock.Anything, mock.MatchedBy(func(message models.EmailMessage) bool {
		return message.To == "ada@example.test" &&
			message.Subject == "Welcome Ada" &&
			message.Body == "Hi Ada, thanks for applying." &&
			message.ExecutionID == "exec-1" &&
			message.Owner == "tenant-1"
	})).Return(nil).Once()

	executor := sendemail.NewExecutor(mailer, slog.Default())

	output, err := executor.Execute(context.Background(), &models.SendEmailConfig{
		Template: "Hi {{ .first_name }}, thanks for applying.",
		Subject:  "Welcome {{ .first_name }}",
	}, input(map[string]any{"first_name": "Ada", "email": "ada@example.test"}))
	require.NoError(t, err)

	assert.Equal(t, "ada@example.test", output["to"])
	assert.NotEmpty(t, output["message_id"])
	mailer.AssertExpectations(t)
}

func TestExecutor_Execute_CustomRecipientField(t *testing.T) {
	mailer := new(mocks.MockMailer)
	mailer.On("Deliver", mock.Anything, mock.MatchedBy(func(message models.EmailMessage) bool {
		return message.To == "hm@example.test" && message.Subject == "Notification"
	})).Return(nil).Once()

	executor := sendemail.NewExecutor(mailer, slog.Default())

	_, err := executor.Execute(context.Background(), &models.SendEmailConfig{
		Template: "New applicant",
		ToField:  "hiring_manager_email",
	}, input(map[string]any{"hiring_manager_email": "hm@example.test"}))
	require.NoError(t, err)
	mailer.AssertExpectations(t)
}

func TestExecutor_Execute_Failures(t *testing.T) {
	testCases := []struct {
		name      string
		config    *models.SendEmailConfig
		data      map[string]any
		deliver   error
		retryable bool
	}{
		{
			name:      "render failure",
			config:    &models.SendEmailConfig{Template: "Hi {{ .last_name }}"},
			data:      map[string]any{"email": "ada@example.test"},
			retryable: false,
		},
		{
			name:      "missing recipient",
			config:    &models.SendEmailConfig{Template: "Hi"},
			data:      map[string]any{"first_name": "Ada"},
			retryable: false,
		},
		{
			name:      "delivery failure",
			config:    &models.SendEmailConfig{Template: "Hi"},
			data:      map[string]any{"email": "ada@example.test"},
			deliver:   errors.New("broker unavailable"),
			retryable: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mailer := new(mocks.MockMailer)
			if tc.deliver != nil {
				mailer.On("Deliver", mock.Anything, mock.Anything).Return(tc.deliver).Once()
			}

			executor := sendemail.NewExecutor(mailer, slog.Default())

			_, err := executor.Execute(context.Background(), tc.config, input(tc.data))
			require.Error(t, err)

			var actionErr *protocol.ActionError
			require.ErrorAs(t, err, &actionErr)
			assert.Equal(t, tc.retryable, actionErr.Retryable)
			mailer.AssertExpectations(t)
		})
	}
}
