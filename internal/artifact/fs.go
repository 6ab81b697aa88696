package artifact

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/encartelab/flyer-tracker/internal/common"
)

// FSStore writes flyer images under a local directory. Used by the batch CLI
// and by tests; the path contract matches SupabaseStore.
type FSStore struct {
	root   string
	prefix string
	logger *slog.Logger
}

func NewFSStore(root, prefix string, logger *slog.Logger) *FSStore {
	if prefix == "" {
		prefix = "encartes-publico"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FSStore{root: root, prefix: prefix, logger: logger}
}

func (s *FSStore) Store(_ context.Context, imageData []byte, mimeType, sourceContact string) (string, error) {
	objectPath := ObjectPath(s.prefix, sourceContact, mimeType, time.Now())
	full := filepath.Join(s.root, filepath.FromSlash(objectPath))

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		s.logger.Error("artifact.fs.mkdir_error", "path", full, "error", err)
		return "", fmt.Errorf("%w: %w", common.ErrArtifactUpload, err)
	}
	// 0644 + full overwrite keeps the upsert semantics of the remote store.
	if err := os.WriteFile(full, imageData, 0o644); err != nil {
		s.logger.Error("artifact.fs.write_error", "path", full, "error", err)
		return "", fmt.Errorf("%w: %w", common.ErrArtifactUpload, err)
	}

	s.logger.Info("artifact.fs.ok", "path", objectPath, "bytes", len(imageData))
	return objectPath, nil
}
