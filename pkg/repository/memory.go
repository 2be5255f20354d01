package repository

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/phenodash/pkg/domain/interfaces"
	"github.com/secmon-lab/phenodash/pkg/domain/model"
)

// Memory implements DatasetSource over records held in memory
type Memory struct {
	mu         sync.RWMutex
	records    []model.WeeklyRecord
	generation int64
	loads      int
}

// NewMemory creates a new memory dataset source
func NewMemory(records ...model.WeeklyRecord) *Memory {
	m := &Memory{}
	m.set(records)
	return m
}

// Replace swaps the records and bumps the source version
func (m *Memory) Replace(records ...model.WeeklyRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set(records)
}

func (m *Memory) set(records []model.WeeklyRecord) {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b model.WeeklyRecord) int {
		return a.Week.Compare(b.Week)
	})
	m.records = sorted
	m.generation++
}

// Loads returns how many times Load has been called
func (m *Memory) Loads() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loads
}

// Stat returns the current version of the in-memory records
func (m *Memory) Stat(ctx context.Context) (model.SourceVersion, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.version(), nil
}

func (m *Memory) version() model.SourceVersion {
	return model.SourceVersion{
		Path:    "memory",
		ModTime: time.Unix(0, m.generation),
		Size:    int64(len(m.records)),
	}
}

// Load returns a snapshot of the in-memory records
func (m *Memory) Load(ctx context.Context) (*model.Dataset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.loads++
	if len(m.records) == 0 {
		return nil, goerr.New("data source has no rows",
			goerr.V("path", "memory"),
			goerr.T(model.ErrTagDataLoad))
	}

	// Return a copy to prevent external modification
	return model.NewDataset(m.version(), slices.Clone(m.records)), nil
}

var _ interfaces.DatasetSource = (*Memory)(nil)
