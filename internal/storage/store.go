package storage

import (
	"context"
	"errors"
)

// ErrModelNotFound is returned when no snapshot exists for a path.
var ErrModelNotFound = errors.New("model not found")

// Store persists parsed model snapshots.
type Store interface {
	ModelStore
	Close() error
}

// ModelStore defines operations for persisting parsed models.
type ModelStore interface {
	// SaveModel replaces the snapshot stored for the model's path.
	SaveModel(ctx context.Context, m *Model) error

	// LoadModel retrieves the snapshot for a path.
	LoadModel(ctx context.Context, path string) (*Model, error)

	// ListModels returns the header of every stored model, by path.
	ListModels(ctx context.Context) ([]*Model, error)

	// DeleteModel removes a snapshot and everything it owns.
	DeleteModel(ctx context.Context, path string) error

	// FindUnitsByLabel finds units in any model that reference a label.
	FindUnitsByLabel(ctx context.Context, label string) ([]UnitRef, error)
}
