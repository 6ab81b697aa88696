package transport

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/encartelab/flyer-tracker/internal/entity"
)

type fakeEnqueuer struct {
	subs []entity.FlyerSubmission
	err  error
}

func (f *fakeEnqueuer) Enqueue(_ context.Context, sub entity.FlyerSubmission) error {
	if f.err != nil {
		return f.err
	}
	f.subs = append(f.subs, sub)
	return nil
}

type fakeReplier struct {
	to   []string
	text []string
}

func (f *fakeReplier) Reply(_ context.Context, to, text string) error {
	f.to = append(f.to, to)
	f.text = append(f.text, text)
	return nil
}

func imageEvent(from string) Event {
	return Event{
		HasMedia:  true,
		MediaType: "image",
		From:      from,
		Media:     &Media{Data: []byte("img"), MimeType: "image/jpeg"},
	}
}

func TestHandle(t *testing.T) {
	ctx := context.Background()
	cfg := HandlerConfig{
		IngestCommand:   "!encarteNovo",
		AllowedContacts: []string{"5511999999999@c.us"},
	}

	t.Run("ping replies pong", func(t *testing.T) {
		replier := &fakeReplier{}
		queue := &fakeEnqueuer{}
		h := NewHandler(cfg, InlineDownloader{}, replier, queue, nil)

		h.Handle(ctx, Event{Body: CommandPing, From: "anyone@c.us"})
		if len(replier.text) != 1 || replier.text[0] != "Bot: pong!" {
			t.Errorf("replies = %v", replier.text)
		}
		if len(queue.subs) != 0 {
			t.Errorf("ping enqueued a submission")
		}
	})

	t.Run("chatid echoes the sender id", func(t *testing.T) {
		replier := &fakeReplier{}
		h := NewHandler(cfg, InlineDownloader{}, replier, &fakeEnqueuer{}, nil)

		h.Handle(ctx, Event{Body: CommandChatID, From: "5511888888888@c.us"})
		if len(replier.text) != 1 || replier.text[0] != "Bot: 5511888888888@c.us" {
			t.Errorf("replies = %v", replier.text)
		}
	})

	t.Run("allow-listed image is enqueued", func(t *testing.T) {
		queue := &fakeEnqueuer{}
		h := NewHandler(cfg, InlineDownloader{}, nil, queue, nil)

		h.Handle(ctx, imageEvent("5511999999999@c.us"))
		if len(queue.subs) != 1 {
			t.Fatalf("enqueued = %d, want 1", len(queue.subs))
		}
		sub := queue.subs[0]
		if sub.SourceContact != "5511999999999@c.us" || sub.MimeType != "image/jpeg" {
			t.Errorf("submission = %+v", sub)
		}
		if sub.ID == uuid.Nil {
			t.Errorf("submission id not assigned")
		}
	})

	t.Run("unknown sender image is silently dropped", func(t *testing.T) {
		queue := &fakeEnqueuer{}
		h := NewHandler(cfg, InlineDownloader{}, nil, queue, nil)

		h.Handle(ctx, imageEvent("5511000000000@c.us"))
		if len(queue.subs) != 0 {
			t.Errorf("filter miss was enqueued")
		}
	})

	t.Run("ingest command admits any sender with media", func(t *testing.T) {
		queue := &fakeEnqueuer{}
		h := NewHandler(cfg, InlineDownloader{}, nil, queue, nil)

		ev := imageEvent("5511000000000@c.us")
		ev.Body = "!encarteNovo"
		h.Handle(ctx, ev)
		if len(queue.subs) != 1 {
			t.Errorf("command with media not enqueued")
		}
	})

	t.Run("ingest command without media is ignored", func(t *testing.T) {
		queue := &fakeEnqueuer{}
		h := NewHandler(cfg, InlineDownloader{}, nil, queue, nil)

		h.Handle(ctx, Event{Body: "!encarteNovo", From: "x@c.us"})
		if len(queue.subs) != 0 {
			t.Errorf("command without media enqueued")
		}
	})

	t.Run("non-image media from allow-listed sender is ignored", func(t *testing.T) {
		queue := &fakeEnqueuer{}
		h := NewHandler(cfg, InlineDownloader{}, nil, queue, nil)

		ev := imageEvent("5511999999999@c.us")
		ev.MediaType = "video"
		h.Handle(ctx, ev)
		if len(queue.subs) != 0 {
			t.Errorf("video enqueued")
		}
	})

	t.Run("plain text is ignored", func(t *testing.T) {
		queue := &fakeEnqueuer{}
		replier := &fakeReplier{}
		h := NewHandler(cfg, InlineDownloader{}, replier, queue, nil)

		h.Handle(ctx, Event{Body: "bom dia", From: "5511999999999@c.us"})
		if len(queue.subs) != 0 || len(replier.text) != 0 {
			t.Errorf("plain text produced activity")
		}
	})
}
