package artifact

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/encartelab/flyer-tracker/internal/common"
)

// SupabaseConfig for the Supabase storage client.
type SupabaseConfig struct {
	BaseURL    string // e.g. https://xyz.supabase.co
	ServiceKey string
	Bucket     string
	PathPrefix string // default "encartes-publico"
	Timeout    time.Duration
}

// SupabaseStore uploads flyer images through the Supabase storage HTTP API
// with upsert semantics.
type SupabaseStore struct {
	cfg    SupabaseConfig
	http   *http.Client
	logger *slog.Logger
}

func NewSupabaseStore(cfg SupabaseConfig, logger *slog.Logger) *SupabaseStore {
	if cfg.PathPrefix == "" {
		cfg.PathPrefix = "encartes-publico"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SupabaseStore{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// Store uploads the image and returns its object path. Errors are logged
// here with full context; callers only decide what the failure aborts.
func (s *SupabaseStore) Store(ctx context.Context, imageData []byte, mimeType, sourceContact string) (string, error) {
	objectPath := ObjectPath(s.cfg.PathPrefix, sourceContact, mimeType, time.Now())
	endpoint := fmt.Sprintf("%s/storage/v1/object/%s/%s",
		strings.TrimRight(s.cfg.BaseURL, "/"),
		url.PathEscape(s.cfg.Bucket),
		objectPath,
	)

	s.logger.Info("artifact.upload.start",
		"path", objectPath,
		"source_contact", sourceContact,
		"bytes", len(imageData),
	)
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(imageData))
	if err != nil {
		return "", fmt.Errorf("%w: build request: %w", common.ErrArtifactUpload, err)
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.ServiceKey)
	req.Header.Set("Content-Type", mimeType)
	req.Header.Set("x-upsert", "true")

	resp, err := s.http.Do(req)
	if err != nil {
		s.logger.Error("artifact.upload.send_error",
			"path", objectPath, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", fmt.Errorf("%w: %w", common.ErrArtifactUpload, err)
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			s.logger.Warn("artifact.upload.body_close_error", "path", objectPath, "error", err)
		}
	}(resp.Body)

	if resp.StatusCode/100 != 2 {
		buf := new(bytes.Buffer)
		_, _ = buf.ReadFrom(resp.Body)
		s.logger.Error("artifact.upload.status_error",
			"path", objectPath,
			"status", resp.StatusCode,
			"body", buf.String(),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", fmt.Errorf("%w: status %d", common.ErrArtifactUpload, resp.StatusCode)
	}

	s.logger.Info("artifact.upload.ok",
		"path", objectPath,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return objectPath, nil
}
