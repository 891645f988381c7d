package store

import (
	"context"

	"github.com/joescharf/dokploy-deploy/internal/models"
)

// RunListFilter specifies filters for listing runs.
type RunListFilter struct {
	ProjectName string
	Limit       int
}

// Store defines the persistence interface for the run journal.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, run *models.Run) error
	GetRun(ctx context.Context, id string) (*models.Run, error)
	ListRuns(ctx context.Context, filter RunListFilter) ([]*models.Run, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
