package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/encartelab/flyer-tracker/internal/artifact"
	"github.com/encartelab/flyer-tracker/internal/async"
	"github.com/encartelab/flyer-tracker/internal/common"
	"github.com/encartelab/flyer-tracker/internal/llm/gemini"
	"github.com/encartelab/flyer-tracker/internal/logging"
	"github.com/encartelab/flyer-tracker/internal/persist"
	"github.com/encartelab/flyer-tracker/internal/pipeline"
	"github.com/encartelab/flyer-tracker/internal/repository"
	"github.com/encartelab/flyer-tracker/internal/transport"
)

// auditNotifier adapts the gateway sender to the logging sink's interface,
// pinning the audit chat id.
type auditNotifier struct {
	sender *transport.GatewaySender
	chatID string
}

func (n auditNotifier) Send(ctx context.Context, text string) error {
	return n.sender.Send(ctx, n.chatID, text)
}

func main() {
	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Logger: console + daily file + optional audit channel, all behind one
	// fan-out handler.
	level := logging.ParseLevel(cfg.Log.Level)
	fileSink, closeLog, err := logging.NewFileSink(cfg.Log.Dir, level)
	if err != nil {
		slog.Error("failed to open log file", "error", err)
		os.Exit(1)
	}
	defer func() { _ = closeLog() }()

	var replier transport.Replier
	var auditSink slog.Handler
	if cfg.Server.GatewaySendURL != "" {
		sender := transport.NewGatewaySender(cfg.Server.GatewaySendURL, cfg.Server.GatewayAPIToken)
		replier = sender
		if cfg.Intake.AuditChatID != "" {
			auditSink = logging.NewAuditSink(auditNotifier{sender: sender, chatID: cfg.Intake.AuditChatID}, slog.LevelWarn)
		}
	}
	logger := slog.New(logging.NewTee(logging.NewConsoleSink(level), fileSink, auditSink))
	slog.SetDefault(logger)
	logger.Info("starting flyerd")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database
	db, err := repository.Open(ctx, repository.Config{
		DSN:             cfg.Database.DSN,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
		DialTimeout:     cfg.Database.DialTimeout,
	}, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer repository.Close(db, logger)

	if err := repository.HealthCheck(ctx, db, cfg.Database.DialTimeout, logger); err != nil {
		logger.Error("database health check failed", "error", err)
		os.Exit(1)
	}
	logger.Info("database health OK")

	// Inference client
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
		logger.Error("failed to create inference client", "error", err)
		os.Exit(1)
	}
	defer func() { _ = extractor.Close() }()

	// Artifact store
	store := artifact.NewSupabaseStore(artifact.SupabaseConfig{
		BaseURL:    cfg.Storage.BaseURL,
		ServiceKey: cfg.Storage.ServiceKey,
		Bucket:     cfg.Storage.Bucket,
		PathPrefix: cfg.Storage.PathPrefix,
		Timeout:    cfg.Storage.Timeout,
	}, logger)

	// Persistence
	persister := persist.NewService(
		repository.NewFlyerRepository(db, logger),
		repository.NewCatalogRepository(db, logger),
		repository.NewPromotionRepository(db, logger),
		logger,
	)

	// Pipeline + worker queue
	pipe := pipeline.New(extractor, store, persister, logger)
	queue := async.NewSubmissionQueue(pipe, logger,
		async.WithWorkers(cfg.Intake.Workers),
		async.WithQueueSize(cfg.Intake.QueueSize),
	)

	// Intake
	handler := transport.NewHandler(transport.HandlerConfig{
		IngestCommand:   cfg.Intake.Command,
		AllowedContacts: cfg.Intake.AllowedContacts,
	}, transport.InlineDownloader{}, replier, queue, logger)

	mux := http.NewServeMux()
	transport.NewWebhook(handler, logger).Routes(mux)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{Addr: cfg.Server.Addr, Handler: mux}
	go func() {
		logger.Info("webhook intake serving", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", "error", err)
	}
	queue.Shutdown(shutdownCtx)
	logger.Info("stopped")
}
