package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/fredcamaral/sngedit/internal/domain/ports"
)

// FileRepository implements ports.SongRepository on the local filesystem
type FileRepository struct {
	codec  ports.TextCodec
	logger *zap.Logger
}

var _ ports.SongRepository = (*FileRepository)(nil)

// NewFileRepository creates a file repository using the SNG codec
func NewFileRepository(logger *zap.Logger) *FileRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileRepository{
		codec:  SNGCodec{},
		logger: logger.Named("repository"),
	}
}

// Load reads and decodes the song at path
func (r *FileRepository) Load(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := os.ReadFile(path) // #nosec G304 - path is chosen by the user
	if err != nil {
		return "", fmt.Errorf("reading song %s: %w", path, err)
	}

	text, err := r.codec.Decode(data)
	if err != nil {
		return "", fmt.Errorf("decoding song %s: %w", path, err)
	}

	r.logger.Debug("loaded song", zap.String("path", path), zap.Int("bytes", len(data)))
	return text, nil
}

// Save encodes text and writes it to path, creating parent directories
func (r *FileRepository) Save(ctx context.Context, path string, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := r.codec.Encode(text)
	if err != nil {
		return fmt.Errorf("encoding song %s: %w", path, err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	if err := writeAtomic(path, data); err != nil {
		return fmt.Errorf("writing song %s: %w", path, err)
	}

	r.logger.Debug("saved song", zap.String("path", path), zap.Int("bytes", len(data)))
	return nil
}

// writeAtomic replaces path through a temporary file in the same directory,
// so watchers never observe a truncated song
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
