package search

import (
	"go.uber.org/fx"

	"github.com/stagedoor-labs/stagedoor/domain/catalog"
	"github.com/stagedoor-labs/stagedoor/domain/favorites"
	"github.com/stagedoor-labs/stagedoor/domain/profile"
	"github.com/stagedoor-labs/stagedoor/domain/quota"
	"github.com/stagedoor-labs/stagedoor/pkg/embeddings"
)

// Module provides the search domain
var Module = fx.Module("search",
	fx.Provide(
		NewCorrector,
		NewClassifier,
		NewExtractor,
		NewMerger,
		NewMetrics,
		fx.Annotate(
			NewLLMParser,
			fx.As(new(QueryParser)),
		),
		fx.Annotate(
			NewSearchRepository,
			fx.As(new(Retriever)),
		),
		func(svc *embeddings.Service) Embedder { return svc },
		func(g *quota.Gate) QuotaGate { return g },
		func(r *catalog.Repository) Hydrator { return r },
		func(p *profile.Service) ProfileSource { return p },
		func(f *favorites.Service) FavoriteSource { return f },
		NewService,
		NewHandler,
	),
	fx.Invoke(RegisterRoutes),
)
