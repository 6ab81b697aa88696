package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/encartelab/flyer-tracker/internal/artifact"
	"github.com/encartelab/flyer-tracker/internal/common"
	"github.com/encartelab/flyer-tracker/internal/export"
	"github.com/encartelab/flyer-tracker/internal/ingest"
	"github.com/encartelab/flyer-tracker/internal/llm/gemini"
	"github.com/encartelab/flyer-tracker/internal/logging"
	"github.com/encartelab/flyer-tracker/internal/persist"
	"github.com/encartelab/flyer-tracker/internal/pipeline"
	"github.com/encartelab/flyer-tracker/internal/repository"
)

const dateLayout = "2006-01-02"

func main() {
	var (
		dir         = flag.String("dir", "", "directory of flyer images to ingest")
		contact     = flag.String("contact", "batch@local", "source contact recorded on ingested flyers")
		out         = flag.String("out", "", "write an XLSX promotion report to this path")
		from        = flag.String("from", "", "report start date (YYYY-MM-DD, inclusive)")
		to          = flag.String("to", "", "report end date (YYYY-MM-DD, inclusive)")
		inmem       = flag.Bool("inmem", false, "use an in-memory SQLite database instead of Postgres")
		artifactDir = flag.String("artifact-dir", "", "store artifacts under this local directory instead of object storage")
	)
	flag.Parse()

	cfg := common.LoadConfig()
	logger := slog.New(logging.NewConsoleSink(logging.ParseLevel(cfg.Log.Level)))
	slog.SetDefault(logger)

	if *dir == "" && *out == "" {
		fmt.Fprintln(os.Stderr, "nothing to do: pass -dir to ingest and/or -out to export")
		flag.Usage()
		os.Exit(2)
	}

	ctx := context.Background()
	if err := run(ctx, cfg, logger, *dir, *contact, *out, *from, *to, *inmem, *artifactDir); err != nil {
		logger.Error("batch run failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *common.Config, logger *slog.Logger, dir, contact, out, from, to string, inmem bool, artifactDir string) error {
	var db *repository.DB
	var err error
	if inmem {
		db, err = repository.OpenSQLite("file::memory:?cache=shared", logger)
	} else {
		db, err = repository.Open(ctx, repository.Config{
			DSN:             cfg.Database.DSN,
			MaxConns:        cfg.Database.MaxConns,
			MinConns:        cfg.Database.MinConns,
			MaxConnLifetime: cfg.Database.MaxConnLifetime,
			MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
			DialTimeout:     cfg.Database.DialTimeout,
		}, logger)
	}
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer repository.Close(db, logger)

	promotions := repository.NewPromotionRepository(db, logger)

	if dir != "" {
		if err := ingestDir(ctx, cfg, logger, db, dir, contact, artifactDir); err != nil {
			return err
		}
	}

	if out != "" {
		fromTime, err := parseDate(from, false)
		if err != nil {
			return fmt.Errorf("invalid -from: %w", err)
		}
		toTime, err := parseDate(to, true)
		if err != nil {
			return fmt.Errorf("invalid -to: %w", err)
		}
		data, err := export.NewService(promotions, logger).ExportPromotionsXLSX(ctx, fromTime, toTime)
		if err != nil {
			return fmt.Errorf("export promotions: %w", err)
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		logger.Info("report written", "path", out, "bytes", len(data))
	}
	return nil
}

func ingestDir(ctx context.Context, cfg *common.Config, logger *slog.Logger, db *repository.DB, dir, contact, artifactDir string) error {
	extractor, err := gemini.NewClient(ctx, gemini.Config{
		ProjectID:   cfg.LLM.ProjectID,
		Region:      cfg.LLM.Region,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
		Prompt:      cfg.LLM.Prompt,
		MaxInFlight: cfg.LLM.MaxInFlight,
	}, logger)
	if err != nil {
		return fmt.Errorf("create inference client: %w", err)
	}
	defer func() { _ = extractor.Close() }()

	var store artifact.Store
	if artifactDir != "" {
		store = artifact.NewFSStore(artifactDir, cfg.Storage.PathPrefix, logger)
	} else {
		store = artifact.NewSupabaseStore(artifact.SupabaseConfig{
			BaseURL:    cfg.Storage.BaseURL,
			ServiceKey: cfg.Storage.ServiceKey,
			Bucket:     cfg.Storage.Bucket,
			PathPrefix: cfg.Storage.PathPrefix,
			Timeout:    cfg.Storage.Timeout,
		}, logger)
	}

	persister := persist.NewService(
		repository.NewFlyerRepository(db, logger),
		repository.NewCatalogRepository(db, logger),
		repository.NewPromotionRepository(db, logger),
		logger,
	)
	pipe := pipeline.New(extractor, store, persister, logger)

	results, stats, err := ingest.NewDirectoryIngestor(pipe, logger).IngestDirectory(ctx, dir, contact)
	if err != nil {
		return fmt.Errorf("ingest directory: %w", err)
	}

	for _, r := range results {
		if r.Err != "" {
			fmt.Printf("FAIL  %s  %s\n", r.Path, r.Err)
		} else {
			fmt.Printf("OK    %s  flyer_id=%d\n", r.Path, r.FlyerID)
		}
	}
	fmt.Printf("scanned=%d matched=%d succeeded=%d failed=%d\n",
		stats.Scanned, stats.Matched, stats.Succeeded, stats.Failed)
	return nil
}

// parseDate turns YYYY-MM-DD into a bound for the report window. End dates
// are pushed to the last instant of the day so the range stays inclusive.
func parseDate(s string, endOfDay bool) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
