package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"priceintel/internal/application"
	"priceintel/internal/cache"
	"priceintel/internal/config"
	"priceintel/internal/domain/pricing"
	"priceintel/internal/infrastructure/db"
	"priceintel/internal/internaldata"
	"priceintel/internal/market"
	"priceintel/internal/metrics"
)

// stack is the assembled service dependency graph.
type stack struct {
	cfg         *config.Config
	cache       cache.Cache
	recommender *application.Recommender
	metrics     *metrics.Registry
	services    map[string]string
	closers     []func()
}

func (s *stack) Close() {
	for _, c := range s.closers {
		c()
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	return config.Load(path)
}

// buildStack wires cache, market provider, sales store, predictor, and the
// decision engine from configuration.
func buildStack(ctx context.Context, cfg *config.Config) (*stack, error) {
	reg := metrics.NewRegistry()
	c := cache.New(cfg.Cache.Redis.Addr, cfg.Cache.Redis.DB)

	services := map[string]string{
		"cache": c.Kind(),
		"sales": cfg.Sales.Backend,
	}

	s := &stack{cfg: cfg, cache: c, metrics: reg, services: services}

	scraper := market.NewScraper(market.ScraperConfig{
		Headless:    cfg.Scraper.Headless,
		ExecPath:    cfg.Scraper.ExecPath,
		NavTimeout:  cfg.Scraper.NavTimeout(),
		RatePerMin:  cfg.Scraper.RatePerMin,
		MaxListings: cfg.Scraper.MaxListings,
	})
	provider := market.NewCachedProvider(market.NewBreakerProvider(scraper), c, cfg.Cache.TTL(), reg)

	var sales internaldata.Store
	switch cfg.Sales.Backend {
	case "postgres":
		conn, err := db.Connect(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("sales backend: %w", err)
		}
		s.closers = append(s.closers, func() { conn.Close() })
		sales = internaldata.NewPostgresStore(conn)
	default:
		store, err := internaldata.NewCSVStore(cfg.Sales.CSVPath)
		if err != nil {
			return nil, fmt.Errorf("sales backend: %w", err)
		}
		sales = store
	}

	predictor := pricing.LoadPredictor(cfg.Model.ArtifactPath)
	if predictor.Available() {
		services["model"] = "loaded"
	} else {
		services["model"] = "unavailable"
	}

	engine := pricing.NewEngine(predictor)
	s.recommender = application.NewRecommender(provider, sales, engine, reg)

	return s, nil
}
