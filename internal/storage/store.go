package storage

import (
	"context"

	"adversa/internal/model"
)

// Store defines persistence operations for attack runs.
type Store interface {
	Init(ctx context.Context) error
	SaveAttackRecord(ctx context.Context, record model.AttackRecord) error
	GetAttackRecord(ctx context.Context, runID string) (model.AttackRecord, bool, error)
	ListAttackRecords(ctx context.Context) ([]model.AttackRecord, error)
	SaveClassifierSummary(ctx context.Context, summary model.ClassifierSummary) error
	GetClassifierSummary(ctx context.Context, name string) (model.ClassifierSummary, bool, error)
	SaveLossHistory(ctx context.Context, runID string, history []float64) error
	GetLossHistory(ctx context.Context, runID string) ([]float64, bool, error)
}
