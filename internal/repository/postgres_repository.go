package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"text-adventure/internal/model"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	upsertPlayerSaveQuery = `
        INSERT INTO player_saves (player_name, record, updated_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (player_name) DO UPDATE SET
            record = EXCLUDED.record,
            updated_at = EXCLUDED.updated_at
    `
	getPlayerSaveQuery   = `SELECT record FROM player_saves WHERE player_name = $1`
	listPlayerSavesQuery = `SELECT player_name, updated_at FROM player_saves ORDER BY player_name`
)

// SaveSummary is one row of the save listing.
type SaveSummary struct {
	PlayerName string    `db:"player_name"`
	UpdatedAt  time.Time `db:"updated_at"`
}

var _ PlayerStateRepository = (*PostgresRepository)(nil)

// PostgresRepository keeps each player as one JSON row of player_saves.
type PostgresRepository struct {
	db     DBTX
	logger *zap.Logger
}

func NewPostgresRepository(db DBTX, logger *zap.Logger) *PostgresRepository {
	return &PostgresRepository{db: db, logger: logger.Named("PgSaveRepo")}
}

func (r *PostgresRepository) Save(ctx context.Context, state *model.PlayerState) error {
	data, err := EncodeRecord(state)
	if err != nil {
		return err
	}
	log := r.logger.With(zap.String("player", state.PlayerName))
	// record goes in as a string so pgx does not re-encode the bytes
	if _, err := r.db.Exec(ctx, upsertPlayerSaveQuery, state.PlayerName, string(data), time.Now().UTC()); err != nil {
		log.Error("Failed to upsert player save", zap.Error(err))
		return fmt.Errorf("failed to save player '%s': %w", state.PlayerName, err)
	}
	log.Debug("Player state saved")
	return nil
}

func (r *PostgresRepository) Load(ctx context.Context, playerName string) (*model.PlayerState, error) {
	var record []byte
	err := r.db.QueryRow(ctx, getPlayerSaveQuery, playerName).Scan(&record)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: no save for '%s'", model.ErrNotFound, playerName)
		}
		r.logger.Error("Failed to load player save", zap.String("player", playerName), zap.Error(err))
		return nil, fmt.Errorf("failed to load player '%s': %w", playerName, err)
	}
	state, err := DecodeRecord(record)
	if err != nil {
		r.logger.Warn("Stored record is unusable", zap.String("player", playerName), zap.Error(err))
		return nil, err
	}
	return state, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]string, error) {
	summaries, err := r.ListSummaries(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(summaries))
	for _, s := range summaries {
		names = append(names, s.PlayerName)
	}
	return names, nil
}

// ListSummaries returns every save with its last update time, ordered by name.
func (r *PostgresRepository) ListSummaries(ctx context.Context) ([]SaveSummary, error) {
	var summaries []SaveSummary
	if err := pgxscan.Select(ctx, r.db, &summaries, listPlayerSavesQuery); err != nil {
		r.logger.Error("Failed to list player saves", zap.Error(err))
		return nil, fmt.Errorf("failed to list player saves: %w", err)
	}
	return summaries, nil
}
