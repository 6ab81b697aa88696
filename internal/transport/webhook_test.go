package transport

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func postEvent(t *testing.T, wh *Webhook, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/events", strings.NewReader(body))
	rec := httptest.NewRecorder()
	wh.ServeHTTP(rec, req)
	return rec
}

func TestWebhook(t *testing.T) {
	cfg := HandlerConfig{AllowedContacts: []string{"5511999999999@c.us"}}

	t.Run("accepts event and enqueues decoded media", func(t *testing.T) {
		queue := &fakeEnqueuer{}
		wh := NewWebhook(NewHandler(cfg, InlineDownloader{}, nil, queue, nil), nil)

		media := base64.StdEncoding.EncodeToString([]byte("image bytes"))
		rec := postEvent(t, wh, `{
			"body": "",
			"has_media": true,
			"media_type": "image",
			"from": "5511999999999@c.us",
			"media": {"data": "`+media+`", "mimetype": "image/jpeg"}
		}`)
		if rec.Code != http.StatusAccepted {
			t.Fatalf("status = %d, want 202", rec.Code)
		}
		if len(queue.subs) != 1 {
			t.Fatalf("enqueued = %d, want 1", len(queue.subs))
		}
		if string(queue.subs[0].ImageData) != "image bytes" {
			t.Errorf("image data = %q", queue.subs[0].ImageData)
		}
	})

	t.Run("rejects malformed json", func(t *testing.T) {
		wh := NewWebhook(NewHandler(cfg, InlineDownloader{}, nil, &fakeEnqueuer{}, nil), nil)
		if rec := postEvent(t, wh, "{not json"); rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("rejects missing from", func(t *testing.T) {
		wh := NewWebhook(NewHandler(cfg, InlineDownloader{}, nil, &fakeEnqueuer{}, nil), nil)
		if rec := postEvent(t, wh, `{"body":"!ping"}`); rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("rejects bad base64 media", func(t *testing.T) {
		wh := NewWebhook(NewHandler(cfg, InlineDownloader{}, nil, &fakeEnqueuer{}, nil), nil)
		body := `{"from":"x","has_media":true,"media_type":"image","media":{"data":"!!!","mimetype":"image/jpeg"}}`
		if rec := postEvent(t, wh, body); rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("rejects non-post", func(t *testing.T) {
		wh := NewWebhook(NewHandler(cfg, InlineDownloader{}, nil, &fakeEnqueuer{}, nil), nil)
		req := httptest.NewRequest(http.MethodGet, "/v1/events", nil)
		rec := httptest.NewRecorder()
		wh.ServeHTTP(rec, req)
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("status = %d, want 405", rec.Code)
		}
	})
}

func TestInlineDownloader(t *testing.T) {
	t.Run("returns inline media", func(t *testing.T) {
		m, err := InlineDownloader{}.DownloadMedia(context.Background(), Event{
			Media: &Media{Data: []byte("x"), MimeType: "image/png"},
		})
		if err != nil {
			t.Fatalf("DownloadMedia error: %v", err)
		}
		if m.MimeType != "image/png" {
			t.Errorf("MimeType = %q", m.MimeType)
		}
	})

	t.Run("errors without media", func(t *testing.T) {
		if _, err := (InlineDownloader{}).DownloadMedia(context.Background(), Event{From: "x"}); err == nil {
			t.Fatal("expected error for event without media")
		}
	})
}
