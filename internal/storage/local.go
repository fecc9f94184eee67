package storage

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/apmatch/invoice-matcher/internal/common"
)

// FileStore is the byte-addressable store for uploaded documents. Save
// returns the name the file is stored under; Path maps that name back to a
// readable location.
type FileStore interface {
	Save(data []byte, filename string) (string, error)
	Path(name string) string
	Delete(name string) error
}

const defaultMaxUploadMB = 25

var reUnsafe = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// LocalStore keeps files in a single directory on disk, each under a
// collision-free name "<uuid-hex>_<sanitized original base name>".
type LocalStore struct {
	dir      string
	maxBytes int64
	logger   *slog.Logger
}

func NewLocalStore(dir string, maxUploadMB int, logger *slog.Logger) (*LocalStore, error) {
	if dir == "" {
		dir = "./uploads"
	}
	if maxUploadMB <= 0 {
		maxUploadMB = defaultMaxUploadMB
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{
		dir:      dir,
		maxBytes: int64(maxUploadMB) * 1024 * 1024,
		logger:   logger,
	}, nil
}

func (s *LocalStore) Save(data []byte, filename string) (string, error) {
	if int64(len(data)) > s.maxBytes {
		return "", common.NewAppError("FILE_TOO_LARGE",
			fmt.Sprintf("file exceeds %d bytes", s.maxBytes), common.ErrInvalidInput)
	}
	if len(data) == 0 {
		return "", common.NewAppError("FILE_EMPTY", "empty upload", common.ErrInvalidInput)
	}

	name := uuid.New().String() + "_" + sanitizeBase(filename)
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		s.logger.Error("storage.save_failed", "name", name, "error", err)
		return "", fmt.Errorf("write file: %w", err)
	}
	s.logger.Info("storage.saved", "name", name, "bytes", len(data))
	return name, nil
}

func (s *LocalStore) Path(name string) string {
	return filepath.Join(s.dir, filepath.Base(name))
}

func (s *LocalStore) Delete(name string) error {
	err := os.Remove(s.Path(name))
	if err != nil && !os.IsNotExist(err) {
		s.logger.Error("storage.delete_failed", "name", name, "error", err)
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

// sanitizeBase strips path components and anything shell-hostile from the
// original filename, keeping the extension intact.
func sanitizeBase(filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	base = reUnsafe.ReplaceAllString(base, "_")
	base = strings.Trim(base, "._")
	if base == "" {
		base = "upload"
	}
	return base
}
