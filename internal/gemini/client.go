package gemini

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/narengee/c4c-api/pkg/config"
)

// Client generates text from a prompt. Implementations wrap a hosted model.
type Client interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	Model() string
}

// CallObserver receives timing for each model call.
type CallObserver interface {
	ObserveModelCall(operation string, duration time.Duration, success bool)
}

// GoogleClient talks to the Gemini API through the official SDK.
type GoogleClient struct {
	client *genai.Client
	cfg    config.GeminiConfig
	logger *zap.Logger
}

// NewGoogleClient creates a client for the configured Gemini model.
func NewGoogleClient(ctx context.Context, cfg config.GeminiConfig, logger *zap.Logger) (*GoogleClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GoogleClient{client: client, cfg: cfg, logger: logger}, nil
}

// Model returns the configured model name.
func (c *GoogleClient) Model() string {
	return c.cfg.Model
}

// GenerateText sends a single-turn prompt and returns the raw text reply.
func (c *GoogleClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(c.cfg.Temperature),
		TopP:            genai.Ptr(c.cfg.TopP),
		TopK:            genai.Ptr(float32(c.cfg.TopK)),
		MaxOutputTokens: c.cfg.MaxOutputTokens,
	}

	start := time.Now()
	result, err := c.client.Models.GenerateContent(ctx, c.cfg.Model, contents, cfg)
	elapsed := time.Since(start)
	if err != nil {
		c.logger.Warn("gemini call failed",
			zap.String("model", c.cfg.Model),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := result.Text()
	if text == "" {
		return "", fmt.Errorf("generate content: empty reply")
	}
	c.logger.Debug("gemini call completed",
		zap.String("model", c.cfg.Model),
		zap.Duration("elapsed", elapsed),
		zap.Int("reply_chars", len(text)))
	return text, nil
}
