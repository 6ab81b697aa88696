package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"cloud.google.com/go/vertexai/genai"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/encartelab/flyer-tracker/internal/common"
	"github.com/encartelab/flyer-tracker/internal/llm"
)

// Client implements llm.Extractor on top of Vertex AI Gemini. One multi-part
// request per flyer: the fixed prompt text plus the image inline.
type Client struct {
	cfg    Config
	model  *genai.GenerativeModel
	base   *genai.Client
	sem    *semaphore.Weighted
	prompt string
	log    *slog.Logger
}

// NewClient builds the Vertex AI client and pre-configures the generative
// model. Model selection and decoding parameters are fixed configuration,
// not runtime-variable.
func NewClient(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	logger = cfg.defaults(logger)
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("gemini: project id cannot be empty")
	}

	base, err := genai.NewClient(ctx, cfg.ProjectID, cfg.Region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	model := base.GenerativeModel(cfg.Model)
	model.GenerationConfig = genai.GenerationConfig{
		Temperature: genai.Ptr(cfg.Temperature),
	}

	return &Client{
		cfg:    cfg,
		model:  model,
		base:   base,
		sem:    semaphore.NewWeighted(cfg.MaxInFlight),
		prompt: llm.BuildPrompt(cfg.Prompt),
		log:    logger,
	}, nil
}

func (c *Client) Close() error {
	if c.base != nil {
		return c.base.Close()
	}
	return nil
}

// Infer sends the prompt and the image to Gemini and returns the raw text.
// The semaphore bounds how many submissions can be inside GenerateContent at
// once; waiting submissions stay queued here rather than piling into the API.
func (c *Client) Infer(ctx context.Context, imageData []byte, mimeType string) (string, error) {
	rid := uuid.New().String()

	if err := c.sem.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("%w: acquire inference slot: %w", common.ErrInference, err)
	}
	defer c.sem.Release(1)

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	start := time.Now()
	c.log.Debug("llm.infer.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"mime_type", mimeType,
		"image_bytes", len(imageData),
	)

	resp, err := c.model.GenerateContent(ctx,
		genai.Text(c.prompt),
		genai.Blob{MIMEType: mimeType, Data: imageData},
	)
	elapsed := time.Since(start)
	if err != nil {
		c.log.Error("llm.infer.error", "req_id", rid, "error", err, "elapsed_ms", elapsed.Milliseconds())
		return "", fmt.Errorf("%w: %w", common.ErrInference, err)
	}

	text := extractText(resp)
	c.log.Debug("llm.infer.ok",
		"req_id", rid,
		"elapsed_ms", elapsed.Milliseconds(),
		"text_len", len(text),
	)
	if text == "" {
		return "", fmt.Errorf("%w: empty response from model", common.ErrInference)
	}
	return text, nil
}

// extractText concatenates all text parts of the first candidate.
func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return b.String()
}
