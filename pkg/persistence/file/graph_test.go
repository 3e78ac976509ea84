package file

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/dukex/talentflow/pkg/models"
	"github.com/dukex/talentflow/pkg/persistence"
	"github.com/dukex/talentflow/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func leadGraph(id string) *models.Graph {
	return testutil.NewGraph(
		testutil.WithID(id),
		testutil.WithNodes(
			testutil.ModelTrigger("trigger", models.NodeTypeModelCreated, "lead"),
			testutil.WebhookAction("notify", "https://example.test/hook"),
		),
		testutil.WithEdges(testutil.Edge("trigger", "notify")),
	)
}

func TestPersistence_SaveGraph_CreateAndLoad(t *testing.T) {
	dir := t.TempDir()
	p := NewPersistence(dir)

	stored, err := p.SaveGraph(t.Context(), leadGraph("graph-1"), 0)
	require.NoError(t, err)

	assert.Equal(t, int64(1), stored.Version)
	assert.False(t, stored.CreatedAt.IsZero())
	assert.FileExists(t, filepath.Join(dir, "graphs", "graph-1.json"))

	loaded, err := p.LoadGraph(t.Context(), "graph-1")
	require.NoError(t, err)

	assert.Equal(t, int64(1), loaded.Version)
	require.Len(t, loaded.Nodes, 2)
	assert.Equal(t, &models.ModelTriggerConfig{Model: "lead"}, loaded.Nodes[0].Config)
	assert.Equal(t, &models.SendWebhookConfig{URL: "https://example.test/hook"}, loaded.Nodes[1].Config)
	assert.Equal(t, []models.Edge{{Source: "trigger", Target: "notify"}}, loaded.Edges)
}

func TestPersistence_SaveGraph_StaleVersionConflicts(t *testing.T) {
	p := NewPersistence(t.TempDir())

	_, err := p.SaveGraph(t.Context(), leadGraph("graph-1"), 0)
	require.NoError(t, err)

	edited := leadGraph("graph-1")
	edited.Name = "Second edit"

	v2, err := p.SaveGraph(t.Context(), edited, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v2.Version)

	stale := leadGraph("graph-1")
	stale.Name = "Stale edit"

	_, err = p.SaveGraph(t.Context(), stale, 1)
	require.Error(t, err)

	var conflict *persistence.ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, int64(1), conflict.Expected)
	assert.Equal(t, int64(2), conflict.Actual)

	loaded, err := p.LoadGraph(t.Context(), "graph-1")
	require.NoError(t, err)
	assert.Equal(t, "Second edit", loaded.Name)
	assert.Equal(t, int64(2), loaded.Version)

	// creating over an existing id is a conflict as well
	_, err = p.SaveGraph(t.Context(), leadGraph("graph-1"), 0)
	assert.True(t, persistence.IsConflict(err))
}

func TestPersistence_SaveGraph_ConcurrentEditorsOneWins(t *testing.T) {
	p := NewPersistence(t.TempDir())

	_, err := p.SaveGraph(t.Context(), leadGraph("graph-1"), 0)
	require.NoError(t, err)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		conflicts int
	)

	for range 5 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := p.SaveGraph(t.Context(), leadGraph("graph-1"), 1)
			if persistence.IsConflict(err) {
				mu.Lock()
				conflicts++
				mu.Unlock()
			}
		}()
	}

	wg.Wait()

	assert.Equal(t, 4, conflicts)

	loaded, err := p.LoadGraph(t.Context(), "graph-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), loaded.Version)
}

func TestPersistence_UpdateGraphStatus(t *testing.T) {
	p := NewPersistence(t.TempDir())

	_, err := p.SaveGraph(t.Context(), leadGraph("graph-1"), 0)
	require.NoError(t, err)

	updated, err := p.UpdateGraphStatus(t.Context(), "graph-1", models.GraphStatusActive, 1)
	require.NoError(t, err)
	assert.Equal(t, models.GraphStatusActive, updated.Status)
	assert.Equal(t, int64(1), updated.Version)

	_, err = p.UpdateGraphStatus(t.Context(), "graph-1", models.GraphStatusDisabled, 7)
	assert.True(t, persistence.IsConflict(err))

	_, err = p.UpdateGraphStatus(t.Context(), "missing", models.GraphStatusActive, 1)
	assert.True(t, persistence.IsGraphNotFound(err))
}

func TestPersistence_ListActive(t *testing.T) {
	p := NewPersistence(t.TempDir())
	ctx := t.Context()

	company := testutil.NewGraph(
		testutil.WithID("company"),
		testutil.WithNodes(testutil.ModelTrigger("trigger", models.NodeTypeModelCreated, "company")),
	)
	otherTenant := leadGraph("other-tenant")
	otherTenant.Owner = "tenant-2"

	for _, graph := range []*models.Graph{leadGraph("active-lead"), leadGraph("draft-lead"), company, otherTenant} {
		_, err := p.SaveGraph(ctx, graph, 0)
		require.NoError(t, err)
	}

	for _, id := range []string{"active-lead", "company", "other-tenant"} {
		_, err := p.UpdateGraphStatus(ctx, id, models.GraphStatusActive, 1)
		require.NoError(t, err)
	}

	active, err := p.ListActive(ctx, "tenant-1", "lead")
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "active-lead", active[0].ID)

	active, err = p.ListActive(ctx, "tenant-1", "")
	require.NoError(t, err)
	assert.Len(t, active, 2)

	all, err := p.ListGraphs(ctx, "tenant-1")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestPersistence_LoadGraph_NotFound(t *testing.T) {
	p := NewPersistence(t.TempDir())

	_, err := p.LoadGraph(t.Context(), "non-existent")
	assert.True(t, persistence.IsGraphNotFound(err))

	_, err = p.LoadGraph(t.Context(), "../escape")
	assert.True(t, persistence.IsGraphNotFound(err))
}

func TestPersistence_DeleteGraph(t *testing.T) {
	dir := t.TempDir()
	p := NewPersistence(dir)

	_, err := p.SaveGraph(t.Context(), leadGraph("graph-1"), 0)
	require.NoError(t, err)

	require.NoError(t, p.DeleteGraph(t.Context(), "graph-1"))
	assert.NoFileExists(t, filepath.Join(dir, "graphs", "graph-1.json"))

	err = p.DeleteGraph(t.Context(), "graph-1")
	assert.True(t, persistence.IsGraphNotFound(err))
}

func TestPersistence_ListGraphs_NoDirectory(t *testing.T) {
	p := NewPersistence(t.TempDir())

	graphs, err := p.ListGraphs(t.Context(), "")
	require.NoError(t, err)
	assert.Empty(t, graphs)
}
