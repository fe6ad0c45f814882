// Package app initializes and holds long-lived application services, acting as a
// dependency injection container.
package app

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/JakeFAU/product-sitemap-scraper/internal/config"
	"github.com/JakeFAU/product-sitemap-scraper/internal/crawler"
	collyfetcher "github.com/JakeFAU/product-sitemap-scraper/internal/fetcher/colly"
	headlessfetcher "github.com/JakeFAU/product-sitemap-scraper/internal/fetcher/headless"
	"github.com/JakeFAU/product-sitemap-scraper/internal/id/uuid"
	"github.com/JakeFAU/product-sitemap-scraper/internal/logging"
	"github.com/JakeFAU/product-sitemap-scraper/internal/metrics"
	"github.com/JakeFAU/product-sitemap-scraper/internal/pipeline"
	"github.com/JakeFAU/product-sitemap-scraper/internal/robots"
	"github.com/JakeFAU/product-sitemap-scraper/internal/scraper"
	"github.com/JakeFAU/product-sitemap-scraper/internal/sitemap"
	"github.com/JakeFAU/product-sitemap-scraper/internal/summarizer"
)

// App holds the services shared by every command: the logger, the two fetchers
// and the pipeline built on top of them.
type App struct {
	cfg      config.Config
	logger   *zap.Logger
	headless *headlessfetcher.Fetcher
	pipeline *pipeline.Orchestrator
}

// New wires the pipeline from cfg. When headless rendering is disabled the
// browser-backed stages fail with crawler.ErrPageLoad.
func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	logger = logging.OrNop(logger)
	metrics.Init()

	httpFetcher := collyfetcher.New(collyfetcher.Config{
		UserAgent: cfg.HTTP.UserAgent,
		Timeout:   cfg.FetchTimeout(),
	})

	a := &App{cfg: cfg, logger: logger}
	var renderer crawler.Fetcher = headlessfetcher.NewNoop()
	if cfg.Headless.Enabled {
		hf, err := headlessfetcher.NewChromedp(headlessfetcher.Config{
			MaxParallel:       cfg.Headless.MaxParallel,
			UserAgent:         cfg.HTTP.UserAgent,
			NavigationTimeout: cfg.NavigationTimeout(),
			ExecPath:          cfg.Headless.ExecPath,
		})
		if err != nil {
			return nil, fmt.Errorf("init headless fetcher: %w", err)
		}
		a.headless = hf
		renderer = hf
	} else {
		logger.Warn("headless rendering disabled; product sitemaps and pages cannot be loaded")
	}

	orchestrator, err := pipeline.New(pipeline.Deps{
		Locator:   robots.NewLocator(httpFetcher, robots.ParserFor(cfg.Sitemap.RobotsParser), logger),
		Resolver:  sitemap.NewResolver(httpFetcher, cfg.Sitemap.ProductToken, logger),
		Extractor: sitemap.NewExtractor(renderer, logger),
		Scraper:   scraper.New(renderer, cfg.Scraper.PriceSelector, logger),
		Summarizer: summarizer.New(summarizer.Config{
			BaseURL:   cfg.Summarizer.BaseURL,
			APIKey:    cfg.Summarizer.APIKey,
			Model:     cfg.Summarizer.Model,
			MaxTokens: cfg.Summarizer.MaxTokens,
			Timeout:   cfg.SummarizerTimeout(),
		}, logger),
		IDs: uuid.New(),
	}, pipeline.Config{
		ProductLimit: cfg.Sitemap.ProductLimit,
		Concurrency:  cfg.Pipeline.Concurrency,
	}, logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init pipeline: %w", err)
	}
	a.pipeline = orchestrator

	logger.Info("application services initialized",
		zap.Bool("headless", cfg.Headless.Enabled),
		zap.String("robots_parser", cfg.Sitemap.RobotsParser),
		zap.Int("product_limit", cfg.Sitemap.ProductLimit),
		zap.Int("concurrency", cfg.Pipeline.Concurrency),
	)
	return a, nil
}

// Logger returns the shared logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Config returns the configuration the App was built from.
func (a *App) Config() config.Config {
	return a.cfg
}

// Pipeline returns the orchestrator used by the serve and run commands.
func (a *App) Pipeline() *pipeline.Orchestrator {
	return a.pipeline
}

// Close releases the browser allocator.
func (a *App) Close() {
	if a.headless != nil {
		a.headless.Close()
	}
	a.logger.Debug("application services closed")
}
