// Package config loads and validates scraper configuration via Viper.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Robots parser names accepted by sitemap.robots_parser.
const (
	RobotsParserRegex     = "regex"
	RobotsParserRobotsTxt = "robotstxt"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Auth       AuthConfig       `mapstructure:"auth"`
	HTTP       HTTPConfig       `mapstructure:"http"`
	Headless   HeadlessConfig   `mapstructure:"headless"`
	Sitemap    SitemapConfig    `mapstructure:"sitemap"`
	Scraper    ScraperConfig    `mapstructure:"scraper"`
	Summarizer SummarizerConfig `mapstructure:"summarizer"`
	Pipeline   PipelineConfig   `mapstructure:"pipeline"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port                  int `mapstructure:"port"`
	RequestTimeoutSeconds int `mapstructure:"request_timeout_seconds"`
}

// AuthConfig defines API authentication toggles.
type AuthConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
}

// HTTPConfig configures the plain HTTP fetcher used for robots.txt and sitemap indexes.
type HTTPConfig struct {
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	UserAgent      string `mapstructure:"user_agent"`
}

// HeadlessConfig configures the headless rendering subsystem.
type HeadlessConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	MaxParallel   int    `mapstructure:"max_parallel"`
	NavTimeoutSec int    `mapstructure:"nav_timeout_seconds"`
	ExecPath      string `mapstructure:"exec_path"`
}

// SitemapConfig controls product sitemap discovery.
type SitemapConfig struct {
	ProductToken string `mapstructure:"product_token"`
	ProductLimit int    `mapstructure:"product_limit"`
	RobotsParser string `mapstructure:"robots_parser"`
}

// ScraperConfig holds the DOM selectors used on product pages.
type ScraperConfig struct {
	PriceSelector string `mapstructure:"price_selector"`
}

// SummarizerConfig points at an OpenAI-compatible chat completions endpoint.
type SummarizerConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	APIKey         string `mapstructure:"api_key"`
	Model          string `mapstructure:"model"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	MaxTokens      int    `mapstructure:"max_tokens"`
}

// PipelineConfig governs per-run product processing.
type PipelineConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SCRAPER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.Summarizer.APIKey == "" {
		cfg.Summarizer.APIKey = os.Getenv("GROQ_API_KEY")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.request_timeout_seconds", 300)
	v.SetDefault("auth.enabled", false)
	v.SetDefault("http.timeout_seconds", 15)
	v.SetDefault("http.user_agent", "product-sitemap-scraper/0.1")
	v.SetDefault("headless.enabled", true)
	v.SetDefault("headless.max_parallel", 1)
	v.SetDefault("headless.nav_timeout_seconds", 45)
	v.SetDefault("sitemap.product_token", "sitemap_products")
	v.SetDefault("sitemap.product_limit", 5)
	v.SetDefault("sitemap.robots_parser", RobotsParserRegex)
	v.SetDefault("scraper.price_selector", ".price")
	v.SetDefault("summarizer.base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("summarizer.model", "llama3-8b-8192")
	v.SetDefault("summarizer.timeout_seconds", 60)
	v.SetDefault("summarizer.max_tokens", 0)
	v.SetDefault("pipeline.concurrency", 1)
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.level", "info")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Server.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("server.request_timeout_seconds must be > 0")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.Headless.Enabled && c.Headless.MaxParallel <= 0 {
		return fmt.Errorf("headless.max_parallel must be > 0 when headless is enabled")
	}
	if c.Auth.Enabled && c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key must be set when auth is enabled")
	}
	if strings.TrimSpace(c.Sitemap.ProductToken) == "" {
		return fmt.Errorf("sitemap.product_token must not be empty")
	}
	if c.Sitemap.ProductLimit <= 0 {
		return fmt.Errorf("sitemap.product_limit must be > 0")
	}
	switch c.Sitemap.RobotsParser {
	case RobotsParserRegex, RobotsParserRobotsTxt:
	default:
		return fmt.Errorf("sitemap.robots_parser must be %q or %q", RobotsParserRegex, RobotsParserRobotsTxt)
	}
	if c.Summarizer.BaseURL == "" || c.Summarizer.Model == "" {
		return fmt.Errorf("summarizer.base_url and summarizer.model are required")
	}
	if c.Summarizer.TimeoutSeconds <= 0 {
		return fmt.Errorf("summarizer.timeout_seconds must be > 0")
	}
	if c.Pipeline.Concurrency <= 0 {
		return fmt.Errorf("pipeline.concurrency must be > 0")
	}
	return nil
}

// FetchTimeout returns the plain HTTP fetch timeout.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// NavigationTimeout returns the headless navigation timeout.
func (c Config) NavigationTimeout() time.Duration {
	return time.Duration(c.Headless.NavTimeoutSec) * time.Second
}

// SummarizerTimeout returns the summarizer HTTP client timeout.
func (c Config) SummarizerTimeout() time.Duration {
	return time.Duration(c.Summarizer.TimeoutSeconds) * time.Second
}

// RequestTimeout bounds a single inbound API request.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeoutSeconds) * time.Second
}
