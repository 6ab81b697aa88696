package logging

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		" warn ":  slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestTeeHandler(t *testing.T) {
	t.Run("fans out to every sink", func(t *testing.T) {
		var a, b bytes.Buffer
		logger := slog.New(NewTee(
			slog.NewTextHandler(&a, nil),
			slog.NewTextHandler(&b, nil),
		))

		logger.Info("pipeline.ok", "flyer_id", 7)
		for name, buf := range map[string]*bytes.Buffer{"a": &a, "b": &b} {
			if !strings.Contains(buf.String(), "pipeline.ok") {
				t.Errorf("sink %s missing record: %q", name, buf.String())
			}
		}
	})

	t.Run("skips nil sinks", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(NewTee(nil, slog.NewTextHandler(&buf, nil), nil))
		logger.Info("hello")
		if !strings.Contains(buf.String(), "hello") {
			t.Errorf("record lost: %q", buf.String())
		}
	})

	t.Run("respects per-sink levels", func(t *testing.T) {
		var debugSink, warnSink bytes.Buffer
		logger := slog.New(NewTee(
			slog.NewTextHandler(&debugSink, &slog.HandlerOptions{Level: slog.LevelDebug}),
			slog.NewTextHandler(&warnSink, &slog.HandlerOptions{Level: slog.LevelWarn}),
		))

		logger.Debug("noise")
		logger.Warn("trouble")
		if !strings.Contains(debugSink.String(), "noise") {
			t.Errorf("debug sink missed debug record")
		}
		if strings.Contains(warnSink.String(), "noise") {
			t.Errorf("warn sink received debug record")
		}
		if !strings.Contains(warnSink.String(), "trouble") {
			t.Errorf("warn sink missed warn record")
		}
	})

	t.Run("with-attrs propagates", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(NewTee(slog.NewTextHandler(&buf, nil))).With("submission_id", "abc")
		logger.Info("x")
		if !strings.Contains(buf.String(), "submission_id=abc") {
			t.Errorf("attr lost: %q", buf.String())
		}
	})
}

func TestNewFileSink(t *testing.T) {
	dir := t.TempDir()
	sink, closeFn, err := NewFileSink(filepath.Join(dir, "logs"), slog.LevelInfo)
	if err != nil {
		t.Fatalf("NewFileSink error: %v", err)
	}

	slog.New(sink).Info("persist.ok", "flyer_id", 1)
	if err := closeFn(); err != nil {
		t.Fatalf("close: %v", err)
	}

	entries, err := os.ReadDir(filepath.Join(dir, "logs"))
	if err != nil {
		t.Fatalf("read log dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("log files = %d, want 1", len(entries))
	}
	name := entries[0].Name()
	if !strings.HasPrefix(name, "logs-") || !strings.HasSuffix(name, ".log") {
		t.Errorf("file name = %q, want logs-YYYY-MM-DD.log", name)
	}
	data, err := os.ReadFile(filepath.Join(dir, "logs", name))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"persist.ok"`) {
		t.Errorf("log content = %q", data)
	}
}

type fakeNotifier struct {
	sent []string
}

func (f *fakeNotifier) Send(_ context.Context, text string) error {
	f.sent = append(f.sent, text)
	return nil
}

func TestAuditSink(t *testing.T) {
	t.Run("forwards warnings and errors only", func(t *testing.T) {
		notifier := &fakeNotifier{}
		logger := slog.New(NewAuditSink(notifier, slog.LevelWarn))

		logger.Info("pipeline.ok")
		logger.Warn("queue saturated", "depth", 100)
		logger.Error("pipeline.failed", "stage", "INFERRING")

		if len(notifier.sent) != 2 {
			t.Fatalf("sent = %d messages, want 2", len(notifier.sent))
		}
		if !strings.HasPrefix(notifier.sent[0], "⚠️") || !strings.Contains(notifier.sent[0], "depth=100") {
			t.Errorf("warn message = %q", notifier.sent[0])
		}
		if !strings.HasPrefix(notifier.sent[1], "❌") || !strings.Contains(notifier.sent[1], "stage=INFERRING") {
			t.Errorf("error message = %q", notifier.sent[1])
		}
	})

	t.Run("carries logger attrs", func(t *testing.T) {
		notifier := &fakeNotifier{}
		logger := slog.New(NewAuditSink(notifier, slog.LevelWarn)).With("submission_id", "abc")

		logger.Warn("slow")
		if len(notifier.sent) != 1 || !strings.Contains(notifier.sent[0], "submission_id=abc") {
			t.Errorf("sent = %v", notifier.sent)
		}
	})
}
