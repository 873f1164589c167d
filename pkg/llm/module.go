package llm

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/stagedoor-labs/stagedoor/internal/config"
	llmgenai "github.com/stagedoor-labs/stagedoor/pkg/llm/genai"
)

// Module provides the llm fx.Module
var Module = fx.Module("llm",
	fx.Provide(NewProvider),
)

// NewProvider creates an LLM provider from configuration. When no API key is
// set (or network calls are disabled) the noop provider is returned and the
// query parser degrades to keyword extraction only.
func NewProvider(cfg *config.Config, log *slog.Logger) Provider {
	llmCfg := cfg.LLM

	if !llmCfg.IsEnabled() {
		log.Info("llm provider disabled - no configuration provided")
		return NoopProvider{}
	}

	client, err := llmgenai.NewClient(context.Background(), llmgenai.Config{
		APIKey:      llmCfg.GoogleAPIKey,
		Model:       llmCfg.Model,
		Temperature: llmCfg.Temperature,
	}, llmgenai.WithLogger(log))
	if err != nil {
		log.Error("failed to initialize llm client", slog.String("error", err.Error()))
		return NoopProvider{}
	}

	log.Info("llm provider initialized", slog.String("model", llmCfg.Model))
	return client
}
