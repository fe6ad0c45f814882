// Package pipeline runs the domain → products flow: locate the sitemap index,
// resolve the product sitemap, extract descriptors, then scrape and summarize
// every product.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/JakeFAU/product-sitemap-scraper/internal/crawler"
	"github.com/JakeFAU/product-sitemap-scraper/internal/id/uuid"
	"github.com/JakeFAU/product-sitemap-scraper/internal/logging"
	"github.com/JakeFAU/product-sitemap-scraper/internal/metrics"
)

// Stage names a pipeline state.
type Stage string

// Pipeline stages in execution order, plus the terminal failure state.
const (
	StageLocating         Stage = "locating"
	StageResolvingIndex   Stage = "resolving_index"
	StageExtractingList   Stage = "extracting_list"
	StageScrapingProducts Stage = "scraping_products"
	StageDone             Stage = "done"
	StageFailed           Stage = "failed"
)

// Locator finds the sitemap index declared for a domain.
type Locator interface {
	Locate(ctx context.Context, domain string) (string, error)
}

// IndexResolver picks the product sitemap out of a sitemap index.
type IndexResolver interface {
	ResolveProductSitemap(ctx context.Context, indexURL string) (string, error)
}

// ListExtractor turns a product sitemap into descriptors.
type ListExtractor interface {
	ExtractProductList(ctx context.Context, sitemapURL string, limit int) ([]crawler.ProductDescriptor, error)
}

// PageScraper extracts fields from a product page.
type PageScraper interface {
	Scrape(ctx context.Context, url string) (crawler.ScrapedFields, error)
}

// Deps are the collaborators an Orchestrator drives.
type Deps struct {
	Locator    Locator
	Resolver   IndexResolver
	Extractor  ListExtractor
	Scraper    PageScraper
	Summarizer crawler.Summarizer
	Clock      crawler.Clock
	IDs        crawler.IDGenerator
}

// Config tunes a run.
type Config struct {
	// ProductLimit caps the descriptors taken from the product sitemap.
	ProductLimit int
	// Concurrency is the number of products processed at once. Values below 2
	// process products strictly one after another.
	Concurrency int
	// OnStage, when set, is called on every state transition.
	OnStage func(runID string, stage Stage)
}

// Orchestrator executes pipeline runs. It holds no per-run state and is safe
// for concurrent use.
type Orchestrator struct {
	deps   Deps
	cfg    Config
	logger *zap.Logger
}

type clockFunc func() time.Time

func (f clockFunc) Now() time.Time { return f() }

// New builds an Orchestrator. Clock and IDs default to the wall clock and
// UUIDv7 run IDs.
func New(deps Deps, cfg Config, logger *zap.Logger) (*Orchestrator, error) {
	switch {
	case deps.Locator == nil:
		return nil, errors.New("pipeline: locator is required")
	case deps.Resolver == nil:
		return nil, errors.New("pipeline: resolver is required")
	case deps.Extractor == nil:
		return nil, errors.New("pipeline: extractor is required")
	case deps.Scraper == nil:
		return nil, errors.New("pipeline: scraper is required")
	case deps.Summarizer == nil:
		return nil, errors.New("pipeline: summarizer is required")
	}
	if deps.Clock == nil {
		deps.Clock = clockFunc(time.Now)
	}
	if deps.IDs == nil {
		deps.IDs = uuid.New()
	}
	logger = logging.OrNop(logger)
	return &Orchestrator{deps: deps, cfg: cfg, logger: logger.Named("pipeline")}, nil
}

// Run executes the whole pipeline for domain. Any stage or product failure
// aborts the run and returns the failing stage's error unchanged; no partial
// product list is ever returned.
func (o *Orchestrator) Run(ctx context.Context, domain string) ([]crawler.ProductDescriptor, error) {
	runID, err := o.deps.IDs.NewID()
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	logger := o.logger.With(zap.String("run_id", runID), zap.String("domain", domain))
	start := o.deps.Clock.Now()

	products, stage, err := o.run(ctx, runID, domain, logger)
	metrics.ObservePipelineRun(crawler.Kind(err))
	if err != nil {
		o.transition(runID, StageFailed)
		logger.Warn("pipeline failed",
			zap.String("stage", string(stage)),
			zap.String("kind", crawler.Kind(err)),
			zap.Duration("elapsed", o.deps.Clock.Now().Sub(start)),
			zap.Error(err),
		)
		return nil, err
	}
	o.transition(runID, StageDone)
	logger.Info("pipeline finished",
		zap.Int("products", len(products)),
		zap.Duration("elapsed", o.deps.Clock.Now().Sub(start)),
	)
	return products, nil
}

func (o *Orchestrator) run(
	ctx context.Context,
	runID, domain string,
	logger *zap.Logger,
) ([]crawler.ProductDescriptor, Stage, error) {
	var indexURL, productSitemap string
	var products []crawler.ProductDescriptor

	err := o.stage(runID, StageLocating, logger, func() error {
		var err error
		indexURL, err = o.deps.Locator.Locate(ctx, domain)
		return err
	})
	if err != nil {
		return nil, StageLocating, err
	}

	err = o.stage(runID, StageResolvingIndex, logger, func() error {
		var err error
		productSitemap, err = o.deps.Resolver.ResolveProductSitemap(ctx, indexURL)
		return err
	})
	if err != nil {
		return nil, StageResolvingIndex, err
	}

	err = o.stage(runID, StageExtractingList, logger, func() error {
		var err error
		products, err = o.deps.Extractor.ExtractProductList(ctx, productSitemap, o.cfg.ProductLimit)
		if err == nil && len(products) == 0 {
			err = fmt.Errorf("%w: %s", crawler.ErrNoProductsFound, productSitemap)
		}
		return err
	})
	if err != nil {
		return nil, StageExtractingList, err
	}

	err = o.stage(runID, StageScrapingProducts, logger, func() error {
		return o.processAll(ctx, products, logger)
	})
	if err != nil {
		return nil, StageScrapingProducts, err
	}
	return products, StageDone, nil
}

func (o *Orchestrator) stage(runID string, stage Stage, logger *zap.Logger, fn func() error) error {
	o.transition(runID, stage)
	start := o.deps.Clock.Now()
	err := fn()
	elapsed := o.deps.Clock.Now().Sub(start)
	metrics.ObserveStage(string(stage), elapsed)
	logger.Debug("stage complete",
		zap.String("stage", string(stage)),
		zap.Duration("elapsed", elapsed),
		zap.Bool("ok", err == nil),
	)
	return err
}

func (o *Orchestrator) transition(runID string, stage Stage) {
	if o.cfg.OnStage != nil {
		o.cfg.OnStage(runID, stage)
	}
}

// processAll fills in the summary of every product in place. Results land at
// their own index, so output order never depends on completion order.
func (o *Orchestrator) processAll(ctx context.Context, products []crawler.ProductDescriptor, logger *zap.Logger) error {
	if o.cfg.Concurrency < 2 {
		for i := range products {
			if err := o.processProduct(ctx, &products[i], logger); err != nil {
				return err
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.Concurrency)
	for i := range products {
		g.Go(func() error {
			return o.processProduct(gctx, &products[i], logger)
		})
	}
	return g.Wait()
}

func (o *Orchestrator) processProduct(ctx context.Context, product *crawler.ProductDescriptor, logger *zap.Logger) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("product %s: %w", product.Link, err)
	}
	fields, err := o.deps.Scraper.Scrape(ctx, product.Link)
	if err != nil {
		metrics.ObserveProduct(product.Link, "scrape_error")
		return err
	}
	summary, err := o.deps.Summarizer.Summarize(ctx, fields.DescriptionText())
	if err != nil {
		metrics.ObserveProduct(product.Link, "summarize_error")
		if !errors.Is(err, crawler.ErrSummarization) {
			err = fmt.Errorf("%w: %w", crawler.ErrSummarization, err)
		}
		return fmt.Errorf("product %s: %w", product.Link, err)
	}
	product.Summary = summary
	metrics.ObserveProduct(product.Link, "ok")
	logger.Debug("product summarized", zap.String("link", product.Link))
	return nil
}
