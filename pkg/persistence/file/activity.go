package file

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dukex/talentflow/pkg/models"
)

const activitiesFile = "activities.jsonl"

// AppendActivity appends one JSON line to the activity log.
func (fp *Persistence) AppendActivity(_ context.Context, activity models.Activity) error {
	fp.mu.Lock()
	defer fp.mu.Unlock()

	err := os.MkdirAll(fp.root, 0750)
	if err != nil {
		return fmt.Errorf("failed to create root directory: %w", err)
	}

	file, err := os.OpenFile(filepath.Join(fp.root, activitiesFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open activity log: %w", err)
	}
	defer file.Close()

	err = json.NewEncoder(file).Encode(activity)
	if err != nil {
		return fmt.Errorf("failed to append activity %s: %w", activity.ID, err)
	}

	return nil
}

// ActivitiesByEntity scans the log for the timeline of entityID.
func (fp *Persistence) ActivitiesByEntity(_ context.Context, owner, entityID string) ([]models.Activity, error) {
	fp.mu.Lock()
	defer fp.mu.Unlock()

	activities := make([]models.Activity, 0)

	file, err := os.Open(filepath.Join(fp.root, activitiesFile))
	if os.IsNotExist(err) {
		return activities, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to open activity log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		var activity models.Activity

		err := json.Unmarshal(scanner.Bytes(), &activity)
		if err != nil {
			return nil, fmt.Errorf("failed to decode activity log: %w", err)
		}

		if activity.Owner == owner && activity.EntityID == entityID {
			activities = append(activities, activity)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read activity log: %w", err)
	}

	return activities, nil
}
