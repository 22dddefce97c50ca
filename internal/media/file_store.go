package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// fileStore implements Store on the local file system.
type fileStore struct {
	dir     string
	baseURL string
	logger  zerolog.Logger
}

// NewFileStore creates a store writing into dir, creating it if needed.
func NewFileStore(dir, baseURL string, logger zerolog.Logger) (Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media directory %s: %w", dir, err)
	}

	logger = logger.With().Str("component", "file-media-store").Logger()
	logger.Info().Str("dir", dir).Msg("file media store initialised")

	return &fileStore{dir: dir, baseURL: baseURL, logger: logger}, nil
}

func (s *fileStore) path(name string) (string, error) {
	clean := filepath.Base(name)
	if clean != name || clean == "." || clean == ".." {
		return "", fmt.Errorf("invalid media name %q", name)
	}
	return filepath.Join(s.dir, clean), nil
}

func (s *fileStore) Save(ctx context.Context, name, _ string, body io.Reader) (string, error) {
	path, err := s.path(name)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	f, err := os.Create(path)
	if err != nil {
		s.logger.Error().Err(err).Str("file_path", path).Msg("failed to create media file")
		return "", fmt.Errorf("failed to create media file %s: %w", path, err)
	}

	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		os.Remove(path)
		s.logger.Error().Err(err).Str("file_path", path).Msg("failed to write media file")
		return "", fmt.Errorf("failed to write media file %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close media file %s: %w", path, err)
	}

	s.logger.Info().Str("file_path", path).Msg("media file saved")

	return s.URL(name), nil
}

func (s *fileStore) Delete(_ context.Context, name string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete media file %s: %w", path, err)
	}
	return nil
}

func (s *fileStore) URL(name string) string {
	return joinURL(s.baseURL, name)
}
