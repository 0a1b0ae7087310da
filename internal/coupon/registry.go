package coupon

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/model"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// RegistryConfig holds configuration for a file-backed registry.
type RegistryConfig struct {
	// Files is the list of registry file paths to load.
	Files []string

	// MinMatchCount is the number of files a code must appear in.
	MinMatchCount int

	// MinLength and MaxLength bound the accepted code length.
	MinLength int
	MaxLength int
}

// fileRegistry accepts codes found in enough registry files.
// Sets are read-only after construction.
type fileRegistry struct {
	sets   []CodeSet
	config RegistryConfig
	logger zerolog.Logger
}

// NewRegistry loads every registry file concurrently. Any load failure aborts
// construction.
func NewRegistry(ctx context.Context, cfg RegistryConfig, loader Loader, logger zerolog.Logger) (Registry, error) {
	logger = logger.With().Str("component", "coupon-registry").Logger()

	if cfg.MinMatchCount < 1 || cfg.MinMatchCount > len(cfg.Files) {
		return nil, fmt.Errorf("min match count %d out of range for %d files", cfg.MinMatchCount, len(cfg.Files))
	}

	logger.Info().
		Int("file_count", len(cfg.Files)).
		Int("min_match_count", cfg.MinMatchCount).
		Msg("initialising coupon registry")

	sets := make([]CodeSet, len(cfg.Files))
	g, gctx := errgroup.WithContext(ctx)
	for i, path := range cfg.Files {
		g.Go(func() error {
			set, err := loader.Load(gctx, path)
			if err != nil {
				return fmt.Errorf("failed to load coupon file %s: %w", path, err)
			}
			sets[i] = set
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("failed to initialise coupon registry")
		return nil, err
	}

	total := 0
	for _, set := range sets {
		total += set.Size()
	}
	logger.Info().Int("total_coupons", total).Msg("coupon registry initialised")

	return &fileRegistry{
		sets:   sets,
		config: cfg,
		logger: logger,
	}, nil
}

func (r *fileRegistry) Validate(ctx context.Context, code string) error {
	// Length first, it is cheap.
	if len(code) < r.config.MinLength || len(code) > r.config.MaxLength {
		r.logger.Debug().Int("length", len(code)).Msg("coupon code length out of range")
		return model.ErrInvalidCoupon
	}

	matches := r.countMatches(ctx, code)
	if matches < r.config.MinMatchCount {
		r.logger.Debug().
			Str("coupon_code", code).
			Int("match_count", matches).
			Msg("coupon code not found in enough files")
		return model.ErrInvalidCoupon
	}

	return nil
}

// countMatches checks the sets in parallel and stops reading results once
// MinMatchCount is reached. The result channel is buffered so late workers
// never block.
func (r *fileRegistry) countMatches(ctx context.Context, code string) int {
	results := make(chan bool, len(r.sets))
	for _, set := range r.sets {
		go func(s CodeSet) {
			results <- s.Contains(code)
		}(set)
	}

	matches := 0
	for checked := 0; checked < len(r.sets); checked++ {
		select {
		case found := <-results:
			if found {
				matches++
				if matches >= r.config.MinMatchCount {
					return matches
				}
			}
		case <-ctx.Done():
			return matches
		}
	}
	return matches
}

func (r *fileRegistry) Close() error {
	r.sets = nil
	return nil
}

// openRegistry treats coupon codes as opaque and accepts any non-blank one.
type openRegistry struct{}

// NewOpenRegistry returns a Registry used when no registry files are configured.
func NewOpenRegistry() Registry {
	return openRegistry{}
}

func (openRegistry) Validate(_ context.Context, code string) error {
	if strings.TrimSpace(code) == "" {
		return model.ErrInvalidCoupon
	}
	return nil
}

func (openRegistry) Close() error { return nil }
