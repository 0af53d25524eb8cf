package narration

import (
	"context"

	"go.uber.org/zap"

	"github.com/tatianab/arena-of-gods/internal/combat"
	"github.com/tatianab/arena-of-gods/internal/config"
)

// NewProvider picks the Gemini-backed Service when an API key is configured
// and the local formula otherwise. The returned close func releases the
// Gemini client and is always safe to call.
func NewProvider(ctx context.Context, cfg *config.Config, rng combat.Source, logger *zap.Logger) (Provider, func()) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.GeminiAPIKey == "" {
		logger.Warn("GEMINI_API_KEY not set, narrating with the local formula")
		return NewLocal(rng), func() {}
	}

	gen, err := NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		logger.Warn("Gemini client unavailable, narrating with the local formula", zap.Error(err))
		return NewLocal(rng), func() {}
	}

	svc := NewService(gen,
		WithTimeout(cfg.NarrationTimeout),
		WithRetries(cfg.NarrationRetries),
		WithBackoff(cfg.NarrationBackoff),
		WithCacheSize(cfg.CacheSize),
		WithRand(rng),
		WithLogger(logger.Named("narration")),
	)
	return svc, func() {
		if err := gen.Close(); err != nil {
			logger.Warn("closing Gemini client", zap.Error(err))
		}
	}
}
