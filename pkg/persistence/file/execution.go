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
)

const executionsDir = "executions"

// SaveExecution saves an execution record to the file system.
func (fp *Persistence) SaveExecution(_ context.Context, record *models.ExecutionRecord) error {
	err := validateID(record.ID)
	if err != nil {
		return fmt.Errorf("invalid execution id: %w", err)
	}

	err = writeJSON(fp.dir(executionsDir), record.ID, record)
	if err != nil {
		return fmt.Errorf("failed to save execution %s: %w", record.ID, err)
	}

	return nil
}

// ExecutionsByGraph returns the records of graphID, newest first.
func (fp *Persistence) ExecutionsByGraph(_ context.Context, graphID string, limit int) ([]*models.ExecutionRecord, error) {
	records, err := fp.executions()
	if err != nil {
		return nil, err
	}

	filtered := make([]*models.ExecutionRecord, 0)

	for _, record := range records {
		if record.GraphID == graphID {
			filtered = append(filtered, record)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].StartedAt.After(filtered[j].StartedAt)
	})

	if limit > 0 && len(filtered) > limit {
		filtered = filtered[:limit]
	}

	return filtered, nil
}

// DeleteExecutionsBefore removes the records that finished before cutoff.
func (fp *Persistence) DeleteExecutionsBefore(_ context.Context, cutoff time.Time) (int64, error) {
	records, err := fp.executions()
	if err != nil {
		return 0, err
	}

	var deleted int64

	for _, record := range records {
		if !record.FinishedAt.Before(cutoff) {
			continue
		}

		err := os.Remove(filepath.Join(fp.dir(executionsDir), record.ID+".json"))
		if err != nil && !os.IsNotExist(err) {
			return deleted, fmt.Errorf("failed to delete execution %s: %w", record.ID, err)
		}

		deleted++
	}

	return deleted, nil
}

func (fp *Persistence) executions() ([]*models.ExecutionRecord, error) {
	ids, err := documentIDs(fp.dir(executionsDir))
	if err != nil {
		return nil, err
	}

	records := make([]*models.ExecutionRecord, 0, len(ids))

	for _, id := range ids {
		var record models.ExecutionRecord

		err := readJSON(fp.dir(executionsDir), id, &record)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}

		if err != nil {
			return nil, fmt.Errorf("failed to fetch execution %s: %w", id, err)
		}

		records = append(records, &record)
	}

	return records, nil
}
