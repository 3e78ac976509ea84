package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dukex/talentflow/pkg/mocks"
	"github.com/dukex/talentflow/pkg/modelregistry"
	"github.com/dukex/talentflow/pkg/models"
	"github.com/dukex/talentflow/pkg/persistence/file"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestApp(t *testing.T) *fiber.App {
	t.Helper()

	persistence := file.NewPersistence(t.TempDir())

	api := NewAPI(
		slog.Default(),
		persistence,
		nil,
		modelregistry.Default(),
		&mocks.MockEventBus{},
	)

	return api.App()
}

func readBody(t *testing.T, resp *http.Response) []byte {
	t.Helper()

	defer func() {
		err := resp.Body.Close()
		if err != nil {
			t.Logf("Failed to close response body: %v", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return body
}

func TestAPI_RootEndpoint(t *testing.T) {
	app := setupTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "TalentFlow Automations API", string(readBody(t, resp)))
}

func TestAPI_Liveness(t *testing.T) {
	app := setupTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/livez", nil))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", string(readBody(t, resp)))
}

func TestAPI_Health(t *testing.T) {
	app := setupTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.Unmarshal(readBody(t, resp), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestAPI_CreateAndList(t *testing.T) {
	app := setupTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/automations", strings.NewReader(`{
		"owner": "tenant-1",
		"name": "Welcome candidates",
		"nodes": [
			{"id": "trigger", "kind": "trigger", "type": "model_created", "config": {"model": "candidate"}},
			{"id": "log", "kind": "action", "type": "create_activity", "config": {"entity_field": "id", "message_template": "Welcome"}}
		],
		"edges": [{"source": "trigger", "target": "log"}]
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode, string(readBody(t, resp)))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/automations?owner=tenant-1", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var list struct {
		Automations []models.Graph `json:"automations"`
		TotalCount  int            `json:"total_count"`
	}
	require.NoError(t, json.Unmarshal(readBody(t, resp), &list))
	require.Len(t, list.Automations, 1)
	assert.Equal(t, 1, list.TotalCount)
	assert.Equal(t, "Welcome candidates", list.Automations[0].Name)
	assert.Equal(t, models.GraphStatusDraft, list.Automations[0].Status)
}
