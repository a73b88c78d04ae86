package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/karimezz22/Library/internal/core/port"
)

// FilesystemStore saves book cover images under a local directory. The stored
// reference is the generated file name, never a full path or URL, so the
// public base URL can change without touching persisted rows.
type FilesystemStore struct {
	dir     string
	maxSize int64
	logger  *zap.Logger
}

// NewFilesystemStore ensures the upload directory exists and returns a store
// rooted at it.
func NewFilesystemStore(dir string, maxSize int64, logger *zap.Logger) (*FilesystemStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("storage: upload directory is required")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create upload directory: %w", err)
	}

	return &FilesystemStore{dir: dir, maxSize: maxSize, logger: logger}, nil
}

// Save writes the asset under a unique name derived from the upload time and
// a random suffix, keeping the original extension.
func (s *FilesystemStore) Save(filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
	default:
		return "", fmt.Errorf("storage: unsupported image extension %q", ext)
	}

	ref := fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), uuid.NewString(), ext)

	dst, err := os.OpenFile(filepath.Join(s.dir, ref), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("storage: create asset file: %w", err)
	}

	src := r
	if s.maxSize > 0 {
		src = io.LimitReader(r, s.maxSize+1)
	}

	written, err := io.Copy(dst, src)
	if err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", fmt.Errorf("storage: write asset: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("storage: close asset: %w", err)
	}

	if s.maxSize > 0 && written > s.maxSize {
		os.Remove(filepath.Join(s.dir, ref))
		return "", fmt.Errorf("storage: asset exceeds %d bytes", s.maxSize)
	}

	s.logger.Debug("stored image asset",
		zap.String("ref", ref),
		zap.Int64("bytes", written),
	)

	return ref, nil
}

// Delete removes the asset for the given reference. Missing assets are not an
// error so callers can retry cleanup safely.
func (s *FilesystemStore) Delete(ref string) error {
	if ref == "" {
		return nil
	}

	// Refuse references that escape the upload directory.
	if filepath.Base(ref) != ref {
		return fmt.Errorf("storage: invalid asset reference %q", ref)
	}

	if err := os.Remove(filepath.Join(s.dir, ref)); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("storage: delete asset: %w", err)
	}

	return nil
}

var _ port.ImageStore = (*FilesystemStore)(nil)
