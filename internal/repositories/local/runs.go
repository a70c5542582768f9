package local

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cochaviz/swift-ci/internal/actions"
	"github.com/cochaviz/swift-ci/internal/models"
)

// LocalRunRepository persists run records as JSON files under BaseDir.
type LocalRunRepository struct {
	BaseDir string
}

// Save writes the record through executor using its ID as the filename, so a dry run
// only traces the write.
func (rep *LocalRunRepository) Save(executor actions.Executor, record models.RunRecord) error {
	if rep.BaseDir == "" {
		return errors.New("base directory is not configured")
	}
	if record.ID == "" {
		return errors.New("run id is required")
	}

	payload, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("encode run record: %w", err)
	}
	payload = append(payload, '\n')

	if err := executor.CreateDirectory(rep.BaseDir); err != nil {
		return err
	}
	return executor.CreateFile(rep.path(record.ID), payload)
}

// Get returns the record with the provided ID, or nil when it does not exist.
func (rep *LocalRunRepository) Get(runID string) (*models.RunRecord, error) {
	if runID == "" {
		return nil, errors.New("run id is required")
	}
	return rep.load(rep.path(runID))
}

// List returns every stored record ordered by start time, oldest first.
func (rep *LocalRunRepository) List() ([]models.RunRecord, error) {
	entries, err := os.ReadDir(rep.BaseDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var records []models.RunRecord
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		record, err := rep.load(filepath.Join(rep.BaseDir, entry.Name()))
		if err != nil {
			return nil, err
		}
		if record != nil {
			records = append(records, *record)
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].StartedAt.Before(records[j].StartedAt)
	})
	return records, nil
}

// Latest returns the most recent record, or nil when none exist.
func (rep *LocalRunRepository) Latest() (*models.RunRecord, error) {
	records, err := rep.List()
	if err != nil || len(records) == 0 {
		return nil, err
	}
	latest := records[len(records)-1]
	return &latest, nil
}

func (rep *LocalRunRepository) path(runID string) string {
	return filepath.Join(rep.BaseDir, runID+".json")
}

func (rep *LocalRunRepository) load(path string) (*models.RunRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var record models.RunRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &record, nil
}
