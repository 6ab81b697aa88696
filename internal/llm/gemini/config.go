package gemini

import (
	"log/slog"
	"time"
)

// Config for the Vertex AI Gemini client.
type Config struct {
	ProjectID   string
	Region      string        // default us-central1
	Model       string        // e.g. "gemini-2.5-flash"
	Temperature float32       // 0..2
	Timeout     time.Duration // per-request deadline
	Prompt      string        // optional prompt override
	MaxInFlight int64         // concurrent GenerateContent calls allowed
}

func (c *Config) defaults(logger *slog.Logger) *slog.Logger {
	if c.Region == "" {
		c.Region = "us-central1"
	}
	if c.Model == "" {
		c.Model = "gemini-2.5-flash"
	}
	if c.Timeout <= 0 {
		c.Timeout = 90 * time.Second
	}
	if c.MaxInFlight <= 0 {
		c.MaxInFlight = 4
	}
	if logger == nil {
		logger = slog.Default()
	}
	return logger
}
