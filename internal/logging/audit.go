package logging

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Notifier delivers one audit line to the designated channel. The
// transport-backed implementation lives elsewhere; this package only emits.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// AuditSink mirrors log records at or above its level to a messaging
// channel. Delivery is best effort: a failed send never fails the logger.
type AuditSink struct {
	notifier Notifier
	level    slog.Level
	attrs    []slog.Attr
	timeout  time.Duration
}

func NewAuditSink(notifier Notifier, level slog.Level) *AuditSink {
	return &AuditSink{
		notifier: notifier,
		level:    level,
		timeout:  5 * time.Second,
	}
}

func (a *AuditSink) Enabled(_ context.Context, level slog.Level) bool {
	return level >= a.level
}

func (a *AuditSink) Handle(_ context.Context, rec slog.Record) error {
	var b strings.Builder
	b.WriteString(prefixFor(rec.Level))
	b.WriteString(" [")
	b.WriteString(rec.Time.UTC().Format(time.RFC3339))
	b.WriteString("] [")
	b.WriteString(rec.Level.String())
	b.WriteString("] ")
	b.WriteString(rec.Message)

	for _, attr := range a.attrs {
		fmt.Fprintf(&b, " %s=%v", attr.Key, attr.Value)
	}
	rec.Attrs(func(attr slog.Attr) bool {
		fmt.Fprintf(&b, " %s=%v", attr.Key, attr.Value)
		return true
	})

	// Detached context: the record may outlive the request that logged it.
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()
	_ = a.notifier.Send(ctx, b.String())
	return nil
}

func (a *AuditSink) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(a.attrs)+len(attrs))
	merged = append(merged, a.attrs...)
	merged = append(merged, attrs...)
	return &AuditSink{notifier: a.notifier, level: a.level, attrs: merged, timeout: a.timeout}
}

func (a *AuditSink) WithGroup(string) slog.Handler {
	// Groups are flattened; the audit channel is a chat, not a JSON consumer.
	return a
}

func prefixFor(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "❌"
	case level >= slog.LevelWarn:
		return "⚠️"
	case level >= slog.LevelInfo:
		return "ℹ"
	default:
		return "🛠️"
	}
}
