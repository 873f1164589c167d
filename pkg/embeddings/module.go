package embeddings

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/stagedoor-labs/stagedoor/internal/config"
	"github.com/stagedoor-labs/stagedoor/pkg/embeddings/genai"
)

// Module provides the embeddings fx.Module
var Module = fx.Module("embeddings",
	fx.Provide(NewService),
)

// Service provides embedding generation with automatic client selection
type Service struct {
	client  Client
	log     *slog.Logger
	enabled bool
}

// NewNoopService creates a service with a noop client (for testing)
func NewNoopService(log *slog.Logger) *Service {
	return &Service{
		client:  NewNoopClient(),
		log:     log,
		enabled: false,
	}
}

// NewService creates a new embeddings service
func NewService(lc fx.Lifecycle, cfg *config.Config, log *slog.Logger) *Service {
	embCfg := cfg.Embeddings

	if !embCfg.IsEnabled() {
		log.Info("embeddings service disabled - no configuration provided")
		return &Service{
			client:  NewNoopClient(),
			log:     log,
			enabled: false,
		}
	}

	svc := &Service{
		client:  NewNoopClient(), // Will be replaced on start
		log:     log,
		enabled: false,
	}

	// Initialize client on startup
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("initializing Google Generative AI embeddings client",
				slog.String("model", embCfg.Model),
				slog.Int("dimension", embCfg.Dimension),
			)

			client, err := genai.NewClient(ctx, genai.Config{
				APIKey:    embCfg.GoogleAPIKey,
				Model:     embCfg.Model,
				Dimension: embCfg.Dimension,
			}, genai.WithLogger(log))
			if err != nil {
				log.Error("failed to initialize Generative AI client", slog.String("error", err.Error()))
				// Keep noop client rather than failing startup
				return nil
			}
			svc.client = client
			svc.enabled = true
			log.Info("Google Generative AI embeddings client initialized")
			return nil
		},
	})

	return svc
}

// IsEnabled returns true if embeddings are available
func (s *Service) IsEnabled() bool {
	return s.enabled
}

// EmbedQuery generates an embedding for a single query
func (s *Service) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	return s.client.EmbedQuery(ctx, query)
}

// EmbedDocuments generates embeddings for multiple documents
func (s *Service) EmbedDocuments(ctx context.Context, documents []string) ([][]float32, error) {
	return s.client.EmbedDocuments(ctx, documents)
}
