package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/dukex/talentflow/pkg/models"
	"github.com/dukex/talentflow/pkg/persistence"
)

const graphsDir = "graphs"

// LoadGraph retrieves a graph by its ID from the file system.
func (fp *Persistence) LoadGraph(_ context.Context, id string) (*models.Graph, error) {
	if err := validateID(id); err != nil {
		return nil, persistence.NewGraphError("LoadGraph", id, persistence.ErrGraphNotFound)
	}

	return fp.loadGraph(id)
}

func (fp *Persistence) loadGraph(id string) (*models.Graph, error) {
	var graph models.Graph

	err := readJSON(fp.dir(graphsDir), id, &graph)
	if errors.Is(err, os.ErrNotExist) {
		return nil, persistence.NewGraphError("LoadGraph", id, persistence.ErrGraphNotFound)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to fetch graph %s: %w", id, err)
	}

	return &graph, nil
}

// SaveGraph writes graph when the stored version equals expectedVersion.
func (fp *Persistence) SaveGraph(_ context.Context, graph *models.Graph, expectedVersion int64) (*models.Graph, error) {
	err := validateID(graph.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid graph id: %w", err)
	}

	fp.mu.Lock()
	defer fp.mu.Unlock()

	var (
		actual    int64
		createdAt time.Time
	)

	current, err := fp.loadGraph(graph.ID)

	switch {
	case err == nil:
		actual = current.Version
		createdAt = current.CreatedAt
	case !persistence.IsGraphNotFound(err):
		return nil, err
	}

	if actual != expectedVersion {
		return nil, &persistence.ConflictError{GraphID: graph.ID, Expected: expectedVersion, Actual: actual}
	}

	now := time.Now().UTC()
	if createdAt.IsZero() {
		createdAt = now
	}

	stored := *graph
	stored.Version = expectedVersion + 1
	stored.CreatedAt = createdAt
	stored.UpdatedAt = now

	err = writeJSON(fp.dir(graphsDir), stored.ID, &stored)
	if err != nil {
		return nil, fmt.Errorf("failed to save graph %s: %w", stored.ID, err)
	}

	return &stored, nil
}

// UpdateGraphStatus changes the status of a stored graph without bumping its version.
func (fp *Persistence) UpdateGraphStatus(_ context.Context, id string, status models.GraphStatus, expectedVersion int64) (*models.Graph, error) {
	if err := validateID(id); err != nil {
		return nil, persistence.NewGraphError("UpdateGraphStatus", id, persistence.ErrGraphNotFound)
	}

	fp.mu.Lock()
	defer fp.mu.Unlock()

	graph, err := fp.loadGraph(id)
	if err != nil {
		return nil, err
	}

	if graph.Version != expectedVersion {
		return nil, &persistence.ConflictError{GraphID: id, Expected: expectedVersion, Actual: graph.Version}
	}

	graph.Status = status
	graph.UpdatedAt = time.Now().UTC()

	err = writeJSON(fp.dir(graphsDir), id, graph)
	if err != nil {
		return nil, fmt.Errorf("failed to update status of graph %s: %w", id, err)
	}

	return graph, nil
}

// ListActive returns the active graphs of owner bound to modelKey.
func (fp *Persistence) ListActive(ctx context.Context, owner, modelKey string) ([]*models.Graph, error) {
	graphs, err := fp.ListGraphs(ctx, owner)
	if err != nil {
		return nil, err
	}

	active := make([]*models.Graph, 0, len(graphs))

	for _, graph := range graphs {
		if graph.IsActive() && persistence.MatchesModel(graph, modelKey) {
			active = append(active, graph)
		}
	}

	return active, nil
}

// ListGraphs returns the graphs of owner ordered by creation time. An empty owner lists all graphs.
func (fp *Persistence) ListGraphs(_ context.Context, owner string) ([]*models.Graph, error) {
	ids, err := documentIDs(fp.dir(graphsDir))
	if err != nil {
		return nil, err
	}

	graphs := make([]*models.Graph, 0, len(ids))

	for _, id := range ids {
		graph, err := fp.loadGraph(id)
		if persistence.IsGraphNotFound(err) {
			// deleted while listing
			continue
		}

		if err != nil {
			return nil, err
		}

		if owner != "" && graph.Owner != owner {
			continue
		}

		graphs = append(graphs, graph)
	}

	sort.SliceStable(graphs, func(i, j int) bool {
		if graphs[i].CreatedAt.Equal(graphs[j].CreatedAt) {
			return graphs[i].ID < graphs[j].ID
		}

		return graphs[i].CreatedAt.Before(graphs[j].CreatedAt)
	})

	return graphs, nil
}

// DeleteGraph removes a graph by its ID.
func (fp *Persistence) DeleteGraph(_ context.Context, id string) error {
	if err := validateID(id); err != nil {
		return persistence.NewGraphError("DeleteGraph", id, persistence.ErrGraphNotFound)
	}

	fp.mu.Lock()
	defer fp.mu.Unlock()

	err := os.Remove(filepath.Join(fp.dir(graphsDir), id+".json"))
	if os.IsNotExist(err) {
		return persistence.NewGraphError("DeleteGraph", id, persistence.ErrGraphNotFound)
	}

	if err != nil {
		return fmt.Errorf("failed to delete graph %s: %w", id, err)
	}

	return nil
}
