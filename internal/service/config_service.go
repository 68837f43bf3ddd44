package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/recopesa/intake-backend/internal/cache"
	"github.com/recopesa/intake-backend/internal/domain"
	"github.com/recopesa/intake-backend/internal/report"
	"github.com/recopesa/intake-backend/internal/repository"
)

// ConfigService serves the singleton surcharge configuration. Reads go
// through the cache; an update invalidates and re-primes it so the next
// finish operation sees the new percentage.
type ConfigService struct {
	repo  repository.ConfigRepository
	cache cache.ConfigCache
}

func NewConfigService(repo repository.ConfigRepository, configCache cache.ConfigCache) *ConfigService {
	return &ConfigService{repo: repo, cache: configCache}
}

func (s *ConfigService) Get(ctx context.Context) (*domain.SystemConfig, error) {
	if cached, ok, err := s.cache.Get(ctx); err != nil {
		log.Warn().Err(err).Msg("config cache read failed")
	} else if ok {
		return cached, nil
	}

	cfg, err := s.repo.Get(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, cfg); err != nil {
		log.Warn().Err(err).Msg("config cache write failed")
	}
	return cfg, nil
}

func (s *ConfigService) Update(ctx context.Context, extraPercentage float64) (*domain.SystemConfig, error) {
	if extraPercentage < 0 {
		return nil, &report.ValidationError{Field: "extraPercentage", Reason: "must not be negative"}
	}

	cfg, err := s.repo.Update(ctx, extraPercentage)
	if err != nil {
		return nil, fmt.Errorf("update system config: %w", err)
	}

	if err := s.cache.Invalidate(ctx); err != nil {
		log.Warn().Err(err).Msg("config cache invalidation failed")
	}
	if err := s.cache.Set(ctx, cfg); err != nil {
		log.Warn().Err(err).Msg("config cache write failed")
	}

	log.Info().Float64("extra_percentage", cfg.ExtraPercentage).Msg("surcharge updated")
	return cfg, nil
}
