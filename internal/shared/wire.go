package shared

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"tripsearch/internal/adapters/amadeus"
	"tripsearch/internal/adapters/llm"
	"tripsearch/internal/adapters/places"
	redisad "tripsearch/internal/adapters/redis"
	"tripsearch/internal/app"
	"tripsearch/internal/domain"
	"tripsearch/internal/resolve"
)

// Services is the wired application used by both binaries.
type Services struct {
	Search *app.SearchFacade
	Intent *app.IntentExtractor
	// Photos is nil when Places is not configured.
	Photos domain.PhotoFetcher
	cache  *redisad.Cache
}

func (s *Services) Close() {
	if s.cache != nil {
		_ = s.cache.Close()
	}
}

// Build constructs every client once. Amadeus is required; Places, Redis and
// Groq are optional and their features degrade when they are missing.
func Build(ctx context.Context, cfg Config) (*Services, error) {
	baseURL := cfg.AmadeusBaseURL
	if baseURL == "" {
		baseURL = amadeus.BaseURLFor(cfg.AmadeusEnv)
	}
	am, err := amadeus.New(amadeus.Options{
		BaseURL:      baseURL,
		ClientID:     cfg.AmadeusClientID,
		ClientSecret: cfg.AmadeusClientSecret,
		RPS:          cfg.AmadeusRPS,
		Timeout:      cfg.ProviderTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("amadeus: %w", err)
	}

	svc := &Services{}

	var cache domain.Cache
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := rc.Ping(pctx)
		cancel()
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable; enrichment cache disabled")
			_ = rc.Close()
		} else {
			svc.cache = rc
			cache = rc
		}
	}

	var merger *app.EnrichmentMerger
	if cfg.PlacesKey != "" {
		pc, err := places.New(places.Options{APIKey: cfg.PlacesKey})
		if err != nil {
			return nil, fmt.Errorf("places: %w", err)
		}
		merger = app.NewEnrichmentMerger(pc, cache, app.MergerOptions{
			Workers:  cfg.Workers,
			CacheTTL: cfg.CacheTTL,
		})
		svc.Photos = pc
	}

	var completer domain.Completer
	if cfg.GroqKey != "" {
		lc, err := llm.New(llm.Options{
			APIKey:      cfg.GroqKey,
			BaseURL:     cfg.GroqBaseURL,
			Model:       cfg.GroqModel,
			MaxAttempts: cfg.LLMMaxAttempts,
		})
		if err != nil {
			return nil, fmt.Errorf("llm: %w", err)
		}
		completer = lc
	}

	svc.Search = app.NewSearchFacade(resolve.NewLocationResolver(am), am, am, am, merger).
		WithTimeout(cfg.ProviderTimeout)
	svc.Intent = app.NewIntentExtractor(completer)
	return svc, nil
}
