package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/dukex/talentflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeGraph(t *testing.T, doc string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "graph.json")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	app := newApp()
	app.Writer = &out

	err := app.Run(context.Background(), append([]string{"talentflow"}, args...))

	return out.String(), err
}

func TestValidateCommand_ValidGraph(t *testing.T) {
	path := writeGraph(t, `{
		"owner": "tenant-1",
		"name": "Log new leads",
		"nodes": [
			{"id": "trigger", "kind": "trigger", "type": "model_created", "config": {"model": "lead"}},
			{"id": "log", "kind": "action", "type": "create_activity", "config": {"entity_field": "id", "message_template": "New lead"}}
		],
		"edges": [{"source": "trigger", "target": "log"}]
	}`)

	out, err := run(t, "validate", path)
	require.NoError(t, err)
	assert.Equal(t, "graph is valid\n", out)
}

func TestValidateCommand_ReportsIssues(t *testing.T) {
	path := writeGraph(t, `{
		"owner": "tenant-1",
		"name": "Looping",
		"nodes": [
			{"id": "trigger", "kind": "trigger", "type": "model_created", "config": {"model": "lead"}},
			{"id": "a", "kind": "action", "type": "send_webhook", "config": {"url": "https://a.example.test"}},
			{"id": "b", "kind": "action", "type": "send_webhook", "config": {"url": "https://b.example.test"}}
		],
		"edges": [
			{"source": "trigger", "target": "a"},
			{"source": "a", "target": "b"},
			{"source": "b", "target": "a"}
		]
	}`)

	out, err := run(t, "validate", "--json", path)
	require.ErrorIs(t, err, ErrGraphInvalid)

	var issues []models.ValidationIssue
	require.NoError(t, json.Unmarshal([]byte(out), &issues))

	codes := make([]models.IssueCode, 0, len(issues))
	for _, issue := range issues {
		codes = append(codes, issue.Code)
	}

	assert.Contains(t, codes, models.IssueCycleDetected)
}

func TestValidateCommand_MissingFile(t *testing.T) {
	_, err := run(t, "validate")
	assert.Error(t, err)

	_, err = run(t, "validate", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestModelsCommand(t *testing.T) {
	out, err := run(t, "models")
	require.NoError(t, err)

	assert.Contains(t, out, "lead\t")
	assert.Contains(t, out, "stages=new,contacted,qualified,converted,lost")
	assert.Contains(t, out, "company\t")
}
