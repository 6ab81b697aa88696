// Package ingest feeds local image files into the pipeline, for batch runs
// that bypass the messaging gateway.
package ingest

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/encartelab/flyer-tracker/constants"
	"github.com/encartelab/flyer-tracker/internal/entity"
	"github.com/encartelab/flyer-tracker/internal/pipeline"
)

type FileResult struct {
	Path         string
	SubmissionID string
	FlyerID      int64
	Err          string
}

type DirStats struct {
	Scanned   uint32
	Matched   uint32
	Succeeded uint32
	Failed    uint32
}

type DirectoryIngestor struct {
	pipe   *pipeline.Pipeline
	logger *slog.Logger
}

func NewDirectoryIngestor(pipe *pipeline.Pipeline, logger *slog.Logger) *DirectoryIngestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &DirectoryIngestor{pipe: pipe, logger: logger}
}

// IngestDirectory walks root, filters to supported image extensions, skips
// hidden entries, and runs each file through the pipeline sequentially under
// the given source contact. Per-file failures are recorded and the walk
// continues.
func (d *DirectoryIngestor) IngestDirectory(ctx context.Context, root, sourceContact string) ([]FileResult, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root path is required")
	}

	var results []FileResult
	var stats DirStats

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		stats.Scanned++
		if walkErr != nil {
			results = append(results, FileResult{Path: path, Err: walkErr.Error()})
			stats.Failed++
			return nil // continue walking
		}
		if isHidden(path) {
			if entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if entry.IsDir() {
			return nil
		}
		ext := constants.NormalizeExt(filepath.Ext(path))
		if _, ok := constants.AllowedImageExtensions[ext]; !ok {
			return nil
		}
		stats.Matched++

		data, err := os.ReadFile(path)
		if err != nil {
			results = append(results, FileResult{Path: path, Err: err.Error()})
			stats.Failed++
			return nil
		}

		sub := entity.FlyerSubmission{
			ID:            uuid.New(),
			SourceContact: sourceContact,
			ImageData:     data,
			MimeType:      constants.MIMEForExt(ext),
			ReceivedAt:    time.Now(),
		}
		res := d.pipe.Process(ctx, sub)
		if res.Err != nil {
			results = append(results, FileResult{
				Path:         path,
				SubmissionID: res.SubmissionID,
				Err:          res.Err.Error(),
			})
			stats.Failed++
			return nil
		}

		results = append(results, FileResult{
			Path:         path,
			SubmissionID: res.SubmissionID,
			FlyerID:      res.Persisted.FlyerID,
		})
		stats.Succeeded++
		return nil
	})
	if err != nil {
		return results, stats, err
	}

	d.logger.Info("ingest.directory.done",
		"root", root,
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"succeeded", stats.Succeeded,
		"failed", stats.Failed,
	)
	return results, stats, nil
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
