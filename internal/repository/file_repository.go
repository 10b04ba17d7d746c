package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"text-adventure/internal/model"

	"go.uber.org/zap"
)

// SaveFileSuffix is appended to the player name to form the save file name.
const SaveFileSuffix = "_save.json"

var _ PlayerStateRepository = (*FileRepository)(nil)

// FileRepository keeps each player in <dir>/<name>_save.json.
type FileRepository struct {
	dir    string
	logger *zap.Logger
}

// NewFileRepository creates dir if needed.
func NewFileRepository(dir string, logger *zap.Logger) (*FileRepository, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("%w: save directory is empty", model.ErrInvalidInput)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create save directory %s: %w", dir, err)
	}
	return &FileRepository{dir: dir, logger: logger.Named("FileRepo")}, nil
}

// Dir returns the save directory.
func (r *FileRepository) Dir() string {
	return r.dir
}

func (r *FileRepository) path(playerName string) (string, error) {
	if err := checkPlayerName(playerName); err != nil {
		return "", err
	}
	return filepath.Join(r.dir, playerName+SaveFileSuffix), nil
}

func checkPlayerName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: player name is empty", model.ErrInvalidInput)
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." || strings.ContainsRune(name, 0) {
		return fmt.Errorf("%w: player name '%s' cannot be used as a file name", model.ErrInvalidInput, name)
	}
	return nil
}

// Save writes the record to a temp file and renames it over the old one.
func (r *FileRepository) Save(ctx context.Context, state *model.PlayerState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := EncodeRecord(state)
	if err != nil {
		return err
	}
	path, err := r.path(state.PlayerName)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(r.dir, ".save-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp save file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// the temp file is gone after a successful rename
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write save file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync save file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close save file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace save file: %w", err)
	}

	r.logger.Debug("Player state saved", zap.String("player", state.PlayerName), zap.String("path", path))
	return nil
}

func (r *FileRepository) Load(ctx context.Context, playerName string) (*model.PlayerState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := r.path(playerName)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrNotFound, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: no save for '%s'", model.ErrNotFound, playerName)
		}
		return nil, fmt.Errorf("failed to read save file %s: %w", path, err)
	}
	state, err := DecodeRecord(data)
	if err != nil {
		r.logger.Warn("Save file is unusable", zap.String("path", path), zap.Error(err))
		return nil, err
	}
	return state, nil
}

func (r *FileRepository) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read save directory %s: %w", r.dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name, ok := strings.CutSuffix(e.Name(), SaveFileSuffix)
		if !ok || name == "" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
