package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_SimpleExpression(t *testing.T) {
	data := map[string]any{
		"first_name": "Ada",
		"score":      30,
		"remote":     true,
	}

	result, err := Render("{{ .first_name }}", data)
	require.NoError(t, err)
	assert.Equal(t, "Ada", result)

	result, err = Render("{{ .remote }}", data)
	require.NoError(t, err)
	assert.Equal(t, true, result)

	// numbers always come back as float64
	result, err = Render("{{ .score }}", data)
	require.NoError(t, err)
	assert.Equal(t, 30.0, result)
}

func TestRender_ObjectConstruction(t *testing.T) {
	data := map[string]any{
		"candidate": map[string]any{
			"name":  "Grace",
			"email": "grace@example.test",
		},
		"applications": []any{
			map[string]any{"id": 1},
			map[string]any{"id": 2},
		},
	}

	result, err := Render(`{
		"candidate_name": "{{ .candidate.name }}",
		"applications": {{ len .applications }}
	}`, data)
	require.NoError(t, err)

	resultMap, ok := result.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Grace", resultMap["candidate_name"])
	assert.Equal(t, 2.0, resultMap["applications"])
}

func TestRenderString(t *testing.T) {
	data := map[string]any{
		"first_name": "Ada",
		"stage":      "interview",
		"nodes": map[string]any{
			"notify": map[string]any{"status_code": 202},
		},
	}

	result, err := RenderString("Hi {{ .first_name }}, you moved to {{ .stage | upper }}", data)
	require.NoError(t, err)
	assert.Equal(t, "Hi Ada, you moved to INTERVIEW", result)

	result, err = RenderString(`{{ if eq .nodes.notify.status_code 202 }}queued{{ else }}sent{{ end }}`, data)
	require.NoError(t, err)
	assert.Equal(t, "queued", result)

	result, err = RenderString("42", data)
	require.NoError(t, err)
	assert.Equal(t, "42", result)
}

func TestRender_ErrorHandling(t *testing.T) {
	data := map[string]any{"first_name": "Ada"}

	_, err := Render("{ invalid..expression }}", data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse json")

	_, err = Render("{{ nonexistent.field }}", data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "function \"nonexistent\" not defined")

	_, err = RenderString("Hello {{ .last_name }}", data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to execute template")
}

func TestCheck(t *testing.T) {
	assert.NoError(t, Check("Hello {{ .first_name }}"))
	assert.NoError(t, Check("plain text"))
	assert.Error(t, Check("Hello {{ .first_name"))
	assert.Error(t, Check("{{ unknownFunc .x }}"))
}
