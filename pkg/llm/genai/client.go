// Package genai provides a Google Generative AI chat client.
package genai

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/genai"
)

// DefaultModel is the default chat model for query parsing
const DefaultModel = "gemini-3-flash-preview"

// Config holds the configuration for the Generative AI chat client
type Config struct {
	APIKey string
	Model  string

	// Temperature stays at or below 0.1 so identical prompts produce
	// identical, cacheable completions.
	Temperature float64
}

// Client is a Google Generative AI chat client
type Client struct {
	client      *genai.Client
	model       string
	temperature float32
	log         *slog.Logger
}

// ClientOption configures the Client
type ClientOption func(*Client)

// WithLogger sets the logger
func WithLogger(log *slog.Logger) ClientOption {
	return func(c *Client) {
		c.log = log
	}
}

// NewClient creates a new Google Generative AI chat client
func NewClient(ctx context.Context, cfg Config, opts ...ClientOption) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Temperature > 0.1 {
		cfg.Temperature = 0.1
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	c := &Client{
		client:      client,
		model:       cfg.Model,
		temperature: float32(cfg.Temperature),
		log:         slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Complete generates a completion for the given prompt
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	temp := c.temperature
	result, err := c.client.Models.GenerateContent(
		ctx,
		c.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			Temperature: &temp,
		},
	)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := result.Text()
	if text == "" {
		return "", fmt.Errorf("empty completion")
	}
	return text, nil
}

// IsConfigured returns true
func (c *Client) IsConfigured() bool {
	return true
}
