// Package cmd defines the CLI commands for the product-sitemap-scraper executable.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/product-sitemap-scraper/internal/app"
	"github.com/JakeFAU/product-sitemap-scraper/internal/config"
	"github.com/JakeFAU/product-sitemap-scraper/internal/crawler"
	"github.com/JakeFAU/product-sitemap-scraper/internal/logging"
)

// appKeyType is the key for storing the App in the context.
type appKeyType string

const appKey appKeyType = "app"

// App defines the services commands use. Tests inject a fake through newApp.
type App interface {
	Close()
	Logger() *zap.Logger
	Config() config.Config
	Runner() Runner
}

// Runner executes one pipeline run for a domain.
type Runner interface {
	Run(ctx context.Context, domain string) ([]crawler.ProductDescriptor, error)
}

type appAdapter struct {
	*app.App
}

func (a appAdapter) Runner() Runner { return a.Pipeline() }

// newApp is the application factory. It is a variable so tests can replace it.
var newApp = func(cfgPath string) (App, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.Logging.Development, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	zap.ReplaceGlobals(logger)
	a, err := app.New(cfg, logger)
	if err != nil {
		return nil, err
	}
	return appAdapter{a}, nil
}

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	var cfgFile string
	cmd := &cobra.Command{
		Use:   "product-sitemap-scraper",
		Short: "Samples products from a site's sitemap and summarizes them.",
		Long: `product-sitemap-scraper discovers a site's product sitemap through its
robots.txt, renders a handful of product pages in headless Chrome, and asks an
LLM for a three point summary of each product description.`,
		SilenceUsage: true,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := newApp(cfgFile)
			if err != nil {
				return fmt.Errorf("failed to initialize application services: %w", err)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, appInstance))
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML); env vars use the SCRAPER_ prefix")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newRunCmd())
	return cmd
}

func resolveApp(ctx context.Context) (App, error) {
	appInstance, ok := ctx.Value(appKey).(App)
	if !ok || appInstance == nil {
		return nil, errors.New("application services not initialized")
	}
	return appInstance, nil
}

// releaseApp closes the application services. Commands defer it right after
// resolveApp because cobra skips post-run hooks when RunE fails.
func releaseApp(appInstance App) {
	appInstance.Close()
	_ = appInstance.Logger().Sync()
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
