package transport

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
)

// webhookEvent is the gateway's POST body. Media arrives inline as base64,
// mirroring the gateway's downloadMedia response.
type webhookEvent struct {
	Body      string `json:"body"`
	HasMedia  bool   `json:"has_media"`
	MediaType string `json:"media_type"`
	From      string `json:"from"`
	Media     *struct {
		Data     string `json:"data"`
		MimeType string `json:"mimetype"`
	} `json:"media,omitempty"`
}

// InlineDownloader resolves media straight from the event payload. It is the
// webhook's implementation of the gateway's downloadMedia operation.
type InlineDownloader struct{}

func (InlineDownloader) DownloadMedia(_ context.Context, ev Event) (Media, error) {
	if ev.Media == nil {
		return Media{}, fmt.Errorf("event from %s has no media attached", ev.From)
	}
	return *ev.Media, nil
}

// Webhook receives gateway events over HTTP and hands them to the intake
// handler. The response is fire-and-forget: the gateway gets 202 as soon as
// the event is accepted, processing happens asynchronously.
type Webhook struct {
	handler *Handler
	logger  *slog.Logger
}

func NewWebhook(handler *Handler, logger *slog.Logger) *Webhook {
	if logger == nil {
		logger = slog.Default()
	}
	return &Webhook{handler: handler, logger: logger}
}

func (w *Webhook) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(rw, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var raw webhookEvent
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		w.logger.Warn("webhook decode failed", "error", err)
		http.Error(rw, "invalid event payload", http.StatusBadRequest)
		return
	}
	if raw.From == "" {
		http.Error(rw, "missing from", http.StatusBadRequest)
		return
	}

	ev := Event{
		Body:      raw.Body,
		HasMedia:  raw.HasMedia,
		MediaType: raw.MediaType,
		From:      raw.From,
	}
	if raw.Media != nil {
		data, err := base64.StdEncoding.DecodeString(raw.Media.Data)
		if err != nil {
			w.logger.Warn("webhook media decode failed", "from", raw.From, "error", err)
			http.Error(rw, "invalid media encoding", http.StatusBadRequest)
			return
		}
		ev.Media = &Media{Data: data, MimeType: raw.Media.MimeType}
	}

	w.handler.Handle(r.Context(), ev)
	rw.WriteHeader(http.StatusAccepted)
}

// Routes registers the webhook on a mux.
func (w *Webhook) Routes(mux *http.ServeMux) {
	mux.Handle("/v1/events", w)
}
