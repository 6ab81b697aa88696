package transport

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/encartelab/flyer-tracker/internal/entity"
)

// Diagnostic commands handled without touching the pipeline.
const (
	CommandPing   = "!ping"
	CommandChatID = "!chatid"
)

// Enqueuer accepts submissions for asynchronous processing.
type Enqueuer interface {
	Enqueue(ctx context.Context, sub entity.FlyerSubmission) error
}

// HandlerConfig controls the intake filter.
type HandlerConfig struct {
	// Command that forces ingestion of an attached image from any sender.
	IngestCommand string
	// Contacts whose image messages are ingested without a command.
	AllowedContacts []string
}

// Handler applies the intake filter to gateway events and enqueues
// qualifying submissions. Everything that misses the filter is silently
// ignored; that is not an error.
type Handler struct {
	cfg        HandlerConfig
	downloader MediaDownloader
	replier    Replier
	queue      Enqueuer
	allowed    map[string]struct{}
	logger     *slog.Logger
}

func NewHandler(cfg HandlerConfig, downloader MediaDownloader, replier Replier, queue Enqueuer, logger *slog.Logger) *Handler {
	if cfg.IngestCommand == "" {
		cfg.IngestCommand = "!encarteNovo"
	}
	if logger == nil {
		logger = slog.Default()
	}
	allowed := make(map[string]struct{}, len(cfg.AllowedContacts))
	for _, c := range cfg.AllowedContacts {
		if c = strings.TrimSpace(c); c != "" {
			allowed[c] = struct{}{}
		}
	}
	return &Handler{
		cfg:        cfg,
		downloader: downloader,
		replier:    replier,
		queue:      queue,
		allowed:    allowed,
		logger:     logger,
	}
}

// Handle routes one gateway event. Ingestion failures are logged only; the
// sender never receives an error reply for them.
func (h *Handler) Handle(ctx context.Context, ev Event) {
	switch ev.Body {
	case CommandPing:
		h.logger.Info("ping received", "from", ev.From)
		h.reply(ctx, ev.From, "Bot: pong!")
		return
	case CommandChatID:
		h.logger.Info("chatid requested", "from", ev.From)
		h.reply(ctx, ev.From, "Bot: "+ev.From)
		return
	}

	if !h.qualifies(ev) {
		return
	}

	h.logger.Info("image received", "from", ev.From)
	media, err := h.downloader.DownloadMedia(ctx, ev)
	if err != nil {
		h.logger.Error("media download failed", "from", ev.From, "error", err)
		return
	}
	h.logger.Debug("media downloaded", "from", ev.From, "bytes", len(media.Data))

	sub := entity.FlyerSubmission{
		ID:            uuid.New(),
		SourceContact: ev.From,
		ImageData:     media.Data,
		MimeType:      media.MimeType,
		ReceivedAt:    time.Now(),
	}
	if err := h.queue.Enqueue(ctx, sub); err != nil {
		h.logger.Error("enqueue failed", "from", ev.From, "submission_id", sub.ID, "error", err)
	}
}

// qualifies implements the intake filter: the ingest command with attached
// media (any sender), or image media from an allow-listed sender.
func (h *Handler) qualifies(ev Event) bool {
	if ev.Body == h.cfg.IngestCommand && ev.HasMedia {
		return true
	}
	if ev.HasMedia && ev.MediaType == "image" {
		_, ok := h.allowed[ev.From]
		return ok
	}
	return false
}

func (h *Handler) reply(ctx context.Context, to, text string) {
	if h.replier == nil {
		return
	}
	if err := h.replier.Reply(ctx, to, text); err != nil {
		h.logger.Warn("reply failed", "to", to, "error", err)
	}
}
