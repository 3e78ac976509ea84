package workflow

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/dukex/talentflow/pkg/mocks"
	"github.com/dukex/talentflow/pkg/models"
	"github.com/dukex/talentflow/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func triggerGraph(trigger *models.Node, status models.GraphStatus) *models.Graph {
	return testutil.NewGraph(
		testutil.WithStatus(status),
		testutil.WithNodes(trigger, testutil.WebhookAction("notify", "http://notify.test")),
		testutil.WithEdges(testutil.Edge(trigger.ID, "notify")),
	)
}

func stageEvent(from, to string) models.DomainEvent {
	return models.DomainEvent{
		ID:         "evt-1",
		Owner:      "tenant-1",
		ModelKey:   "application",
		Kind:       models.EventKindStageChanged,
		Transition: &models.StageTransition{From: from, To: to},
	}
}

func webhookEvent(path string, payload map[string]any) models.DomainEvent {
	return models.DomainEvent{
		ID:          "evt-2",
		Owner:       "tenant-1",
		Kind:        models.EventKindWebhookReceive,
		WebhookPath: path,
		Payload:     payload,
	}
}

func TestMatches(t *testing.T) {
	applicantSchema := map[string]any{
		"type":     "object",
		"required": []any{"email"},
		"properties": map[string]any{
			"email": map[string]any{"type": "string"},
		},
	}

	testCases := []struct {
		name  string
		graph *models.Graph
		event models.DomainEvent
		want  bool
	}{
		{
			name:  "model created",
			graph: triggerGraph(testutil.ModelTrigger("t", models.NodeTypeModelCreated, "lead"), models.GraphStatusActive),
			event: testutil.LeadCreatedEvent(nil),
			want:  true,
		},
		{
			name:  "draft graph never matches",
			graph: triggerGraph(testutil.ModelTrigger("t", models.NodeTypeModelCreated, "lead"), models.GraphStatusDraft),
			event: testutil.LeadCreatedEvent(nil),
		},
		{
			name:  "disabled graph never matches",
			graph: triggerGraph(testutil.ModelTrigger("t", models.NodeTypeModelCreated, "lead"), models.GraphStatusDisabled),
			event: testutil.LeadCreatedEvent(nil),
		},
		{
			name:  "other model",
			graph: triggerGraph(testutil.ModelTrigger("t", models.NodeTypeModelCreated, "candidate"), models.GraphStatusActive),
			event: testutil.LeadCreatedEvent(nil),
		},
		{
			name:  "other event kind",
			graph: triggerGraph(testutil.ModelTrigger("t", models.NodeTypeModelUpdated, "lead"), models.GraphStatusActive),
			event: testutil.LeadCreatedEvent(nil),
		},
		{
			name: "other owner",
			graph: testutil.NewGraph(
				testutil.WithOwner("tenant-2"),
				testutil.WithStatus(models.GraphStatusActive),
				testutil.WithNodes(testutil.ModelTrigger("t", models.NodeTypeModelCreated, "lead")),
			),
			event: testutil.LeadCreatedEvent(nil),
		},
		{
			name:  "stage filters match",
			graph: triggerGraph(testutil.StageTrigger("t", "application", "screening", "interview"), models.GraphStatusActive),
			event: stageEvent("screening", "interview"),
			want:  true,
		},
		{
			name:  "stage target differs",
			graph: triggerGraph(testutil.StageTrigger("t", "application", "screening", "interview"), models.GraphStatusActive),
			event: stageEvent("screening", "offer"),
		},
		{
			name:  "empty from filter matches any stage",
			graph: triggerGraph(testutil.StageTrigger("t", "application", "", "interview"), models.GraphStatusActive),
			event: stageEvent("applied", "interview"),
			want:  true,
		},
		{
			name:  "no filters match any transition",
			graph: triggerGraph(testutil.StageTrigger("t", "application", "", ""), models.GraphStatusActive),
			event: stageEvent("applied", "rejected"),
			want:  true,
		},
		{
			name:  "webhook path",
			graph: triggerGraph(testutil.WebhookTrigger("t", "/applicants", nil), models.GraphStatusActive),
			event: webhookEvent("/applicants", map[string]any{"email": "ada@example.test"}),
			want:  true,
		},
		{
			name:  "webhook path differs",
			graph: triggerGraph(testutil.WebhookTrigger("t", "/applicants", nil), models.GraphStatusActive),
			event: webhookEvent("/referrals", nil),
		},
		{
			name:  "webhook payload satisfies schema",
			graph: triggerGraph(testutil.WebhookTrigger("t", "/applicants", applicantSchema), models.GraphStatusActive),
			event: webhookEvent("/applicants", map[string]any{"email": "ada@example.test"}),
			want:  true,
		},
		{
			name:  "webhook payload violates schema",
			graph: triggerGraph(testutil.WebhookTrigger("t", "/applicants", applicantSchema), models.GraphStatusActive),
			event: webhookEvent("/applicants", map[string]any{"name": "Ada"}),
		},
		{
			name:  "webhook without payload violates schema",
			graph: triggerGraph(testutil.WebhookTrigger("t", "/applicants", applicantSchema), models.GraphStatusActive),
			event: webhookEvent("/applicants", nil),
		},
		{
			name: "graph without trigger",
			graph: testutil.NewGraph(
				testutil.WithStatus(models.GraphStatusActive),
				testutil.WithNodes(testutil.WebhookAction("notify", "http://notify.test")),
			),
			event: testutil.LeadCreatedEvent(nil),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Matches(tc.graph, tc.event))
		})
	}
}

func TestTriggerMatcher_Match(t *testing.T) {
	created := triggerGraph(testutil.ModelTrigger("t", models.NodeTypeModelCreated, "lead"), models.GraphStatusActive)
	updated := triggerGraph(testutil.ModelTrigger("t", models.NodeTypeModelUpdated, "lead"), models.GraphStatusActive)
	createdToo := triggerGraph(testutil.ModelTrigger("t", models.NodeTypeModelCreated, "lead"), models.GraphStatusActive)

	store := &mocks.MockPersistence{}
	store.On("ListActive", context.Background(), "tenant-1", "lead").
		Return([]*models.Graph{created, updated, createdToo}, nil).
		Twice()

	matcher := NewTriggerMatcher(store, slog.Default())
	event := testutil.LeadCreatedEvent(nil)

	first, err := matcher.Match(context.Background(), event)
	require.NoError(t, err)
	assert.Equal(t, []*models.Graph{created, createdToo}, first)

	second, err := matcher.Match(context.Background(), event)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	store.AssertExpectations(t)
}

func TestTriggerMatcher_Match_WebhookListsEveryModel(t *testing.T) {
	schema := map[string]any{"type": "object", "required": []any{"email"}}
	graph := triggerGraph(testutil.WebhookTrigger("t", "/applicants", schema), models.GraphStatusActive)

	store := &mocks.MockPersistence{}
	store.On("ListActive", context.Background(), "tenant-1", "").Return([]*models.Graph{graph}, nil)

	matcher := NewTriggerMatcher(store, slog.Default())

	matched, err := matcher.Match(context.Background(), webhookEvent("/applicants", map[string]any{"email": "x"}))
	require.NoError(t, err)
	assert.Len(t, matched, 1)

	// the compiled schema is reused for the same graph version
	matched, err = matcher.Match(context.Background(), webhookEvent("/applicants", map[string]any{}))
	require.NoError(t, err)
	assert.Empty(t, matched)

	_, cached := matcher.schemas.Load(graph.ID + "@0")
	assert.True(t, cached)
}

func TestTriggerMatcher_Match_StoreError(t *testing.T) {
	store := &mocks.MockPersistence{}
	store.On("ListActive", context.Background(), "tenant-1", "lead").Return(nil, errors.New("database is down"))

	matcher := NewTriggerMatcher(store, slog.Default())

	_, err := matcher.Match(context.Background(), testutil.LeadCreatedEvent(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database is down")
}
