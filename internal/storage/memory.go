package storage

import (
	"context"
	"sort"
	"sync"

	"adversa/internal/model"
)

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	records     map[string]model.AttackRecord
	classifiers map[string]model.ClassifierSummary
	histories   map[string][]float64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.records = make(map[string]model.AttackRecord)
	s.classifiers = make(map[string]model.ClassifierSummary)
	s.histories = make(map[string][]float64)
	return nil
}

func (s *MemoryStore) SaveAttackRecord(_ context.Context, record model.AttackRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[record.RunID] = record
	return nil
}

func (s *MemoryStore) GetAttackRecord(_ context.Context, runID string) (model.AttackRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[runID]
	return record, ok, nil
}

func (s *MemoryStore) ListAttackRecords(_ context.Context) ([]model.AttackRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]model.AttackRecord, 0, len(s.records))
	for _, record := range s.records {
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].CreatedAtUTC == records[j].CreatedAtUTC {
			return records[i].RunID < records[j].RunID
		}
		return records[i].CreatedAtUTC > records[j].CreatedAtUTC
	})
	return records, nil
}

func (s *MemoryStore) SaveClassifierSummary(_ context.Context, summary model.ClassifierSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.classifiers[summary.Name] = summary
	return nil
}

func (s *MemoryStore) GetClassifierSummary(_ context.Context, name string) (model.ClassifierSummary, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary, ok := s.classifiers[name]
	return summary, ok, nil
}

func (s *MemoryStore) SaveLossHistory(_ context.Context, runID string, history []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.histories[runID] = append([]float64(nil), history...)
	return nil
}

func (s *MemoryStore) GetLossHistory(_ context.Context, runID string) ([]float64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.histories[runID]
	if !ok {
		return nil, false, nil
	}
	return append([]float64(nil), history...), true, nil
}
