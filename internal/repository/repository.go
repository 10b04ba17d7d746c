package repository

import (
	"context"

	"text-adventure/internal/model"
)

// PlayerStateRepository stores one record per player name. Saving an existing name overwrites it.
type PlayerStateRepository interface {
	Save(ctx context.Context, state *model.PlayerState) error
	// Load returns an error wrapping model.ErrNotFound when there is no usable record.
	// Corrupt or incomplete records additionally wrap model.ErrCorruptRecord.
	Load(ctx context.Context, playerName string) (*model.PlayerState, error)
	// List returns the names of all saved players, sorted.
	List(ctx context.Context) ([]string, error)
}
