package modelregistry_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dukex/talentflow/pkg/models"
	"github.com/dukex/talentflow/pkg/modelregistry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	registry := modelregistry.Default()

	all := registry.All()
	require.Len(t, all, 4)
	assert.Equal(t, "application", all[0].Key)
	assert.Equal(t, "lead", all[3].Key)

	lead, ok := registry.Get("lead")
	require.True(t, ok)
	assert.Equal(t, "Lead", lead.DisplayName)
	assert.True(t, lead.SupportsEvent(models.EventKindStageChanged))
	assert.True(t, lead.HasStage("qualified"))
	assert.False(t, lead.HasStage("offer"))

	company, ok := registry.Get("company")
	require.True(t, ok)
	assert.False(t, company.SupportsEvent(models.EventKindStageChanged))
	assert.True(t, company.HasStage("anything"))

	_, ok = registry.Get("invoice")
	assert.False(t, ok)
}

func TestNew_RejectsInvalidModels(t *testing.T) {
	valid := models.AutomatableModel{
		Key:         "job",
		DisplayName: "Job",
		Fields:      map[string]models.FieldType{"id": models.FieldTypeString},
		Events:      []models.EventKind{models.EventKindCreated},
	}

	_, err := modelregistry.New(valid, valid)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")

	noEvents := valid
	noEvents.Events = nil
	_, err = modelregistry.New(noEvents)
	require.Error(t, err)

	badField := valid
	badField.Fields = map[string]models.FieldType{"id": "uuid"}
	_, err = modelregistry.New(badField)
	require.Error(t, err)

	webhookEvent := valid
	webhookEvent.Events = []models.EventKind{models.EventKindWebhookReceive}
	_, err = modelregistry.New(webhookEvent)
	require.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models.yaml")
	content := `models:
  - key: job
    display_name: Job
    fields:
      id: string
      title: string
      stage: string
    events: [created, stage_changed]
    stages: [draft, open, closed]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	registry, err := modelregistry.LoadFile(path)
	require.NoError(t, err)

	job, ok := registry.Get("job")
	require.True(t, ok)
	assert.Equal(t, models.FieldTypeString, job.Fields["title"])
	assert.Equal(t, []string{"draft", "open", "closed"}, job.Stages)

	_, err = modelregistry.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	registry, err = modelregistry.LoadFile("")
	require.NoError(t, err)
	assert.Len(t, registry.All(), 4)
}
