// Package pipeline sequences one flyer submission from raw image to
// committed rows: infer, sanitize, store artifact, parse, persist.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/encartelab/flyer-tracker/constants"
	"github.com/encartelab/flyer-tracker/internal/artifact"
	"github.com/encartelab/flyer-tracker/internal/entity"
	"github.com/encartelab/flyer-tracker/internal/llm"
	"github.com/encartelab/flyer-tracker/internal/persist"
)

// Result is the terminal record of one submission: the stage reached, where
// it failed (if it did), per-stage wall-clock timings, and what was written.
type Result struct {
	SubmissionID string
	Stage        constants.Stage
	FailedAt     constants.Stage
	ArtifactPath string
	Persisted    *persist.Result
	Timings      map[constants.Stage]time.Duration
	Err          error
}

// Pipeline owns no clients; all collaborators are injected so the
// composition root controls their lifecycle.
type Pipeline struct {
	extractor llm.Extractor
	store     artifact.Store
	persister *persist.Service
	logger    *slog.Logger
}

func New(extractor llm.Extractor, store artifact.Store, persister *persist.Service, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		extractor: extractor,
		store:     store,
		persister: persister,
		logger:    logger,
	}
}

// Process runs one submission to a terminal state. Every failure is terminal
// for this submission only: nothing is retried, nothing propagates, and
// independent submissions are unaffected. An artifact stored before a parse
// failure is deliberately kept (orphaned from any database record).
func (p *Pipeline) Process(ctx context.Context, sub entity.FlyerSubmission) Result {
	res := Result{
		SubmissionID: sub.ID.String(),
		Stage:        constants.StageReceived,
		Timings:      make(map[constants.Stage]time.Duration, 5),
	}
	log := p.logger.With("submission_id", res.SubmissionID, "source_contact", sub.SourceContact)
	log.Info("pipeline.start", "mime_type", sub.MimeType, "image_bytes", len(sub.ImageData))

	// Received -> Inferring
	res.Stage = constants.StageInferring
	start := time.Now()
	rawText, err := p.extractor.Infer(ctx, sub.ImageData, sub.MimeType)
	res.Timings[constants.StageInferring] = time.Since(start)
	if err != nil {
		return p.fail(log, &res, constants.StageInferring, err)
	}

	// Inferring -> Sanitized (cannot fail)
	start = time.Now()
	sanitized := llm.StripCodeFence(rawText)
	res.Timings[constants.StageSanitized] = time.Since(start)
	res.Stage = constants.StageSanitized
	log.Info("pipeline.sanitized", "raw_len", len(rawText), "sanitized_len", len(sanitized))

	// Sanitized -> ArtifactStored. Upload happens before parsing on purpose:
	// a flyer with no stored image is never recorded, but a stored image
	// with an unparseable payload is kept.
	start = time.Now()
	path, err := p.store.Store(ctx, sub.ImageData, sub.MimeType, sub.SourceContact)
	res.Timings[constants.StageArtifactStored] = time.Since(start)
	if err != nil {
		return p.fail(log, &res, constants.StageArtifactStored, err)
	}
	res.ArtifactPath = path
	res.Stage = constants.StageArtifactStored

	// ArtifactStored -> Parsed
	start = time.Now()
	payload, err := llm.ParsePayload(sanitized)
	res.Timings[constants.StageParsed] = time.Since(start)
	if err != nil {
		log.Error("pipeline.parse_error", "error", err, "raw_text", sanitized)
		return p.fail(log, &res, constants.StageParsed, err)
	}
	res.Stage = constants.StageParsed

	// Parsed -> Persisted. Per-item failures inside persist are absorbed
	// there; only the flyer insert can fail the submission at this point.
	start = time.Now()
	persisted, err := p.persister.Persist(ctx, payload, sub.SourceContact, path)
	res.Timings[constants.StagePersisted] = time.Since(start)
	if err != nil {
		return p.fail(log, &res, constants.StagePersisted, err)
	}
	res.Persisted = persisted
	res.Stage = constants.StagePersisted

	log.Info("pipeline.ok",
		"flyer_id", persisted.FlyerID,
		"artifact_path", path,
		"items_saved", persisted.ItemsSaved,
		"items_skipped", persisted.ItemsSkipped,
		"total_ms", totalMillis(res.Timings),
	)
	return res
}

func (p *Pipeline) fail(log *slog.Logger, res *Result, at constants.Stage, err error) Result {
	res.FailedAt = at
	res.Stage = constants.StageFailed
	res.Err = err
	log.Error("pipeline.failed",
		"stage", string(at),
		"error", err,
		"total_ms", totalMillis(res.Timings),
	)
	return *res
}

func totalMillis(timings map[constants.Stage]time.Duration) int64 {
	var total time.Duration
	for _, d := range timings {
		total += d
	}
	return total.Milliseconds()
}
