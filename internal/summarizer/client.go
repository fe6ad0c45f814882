// Package summarizer calls an OpenAI-compatible chat completions endpoint to
// condense product descriptions into three short points.
package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/product-sitemap-scraper/internal/crawler"
	"github.com/JakeFAU/product-sitemap-scraper/internal/logging"
	"github.com/JakeFAU/product-sitemap-scraper/internal/metrics"
)

const (
	// DefaultBaseURL is Groq's OpenAI-compatible API root.
	DefaultBaseURL = "https://api.groq.com/openai/v1"
	// DefaultModel is the chat model used when none is configured.
	DefaultModel = "llama3-8b-8192"
	// FallbackSummary is returned when the model produces no content.
	FallbackSummary = "No summary found"

	defaultTimeout  = 60 * time.Second
	maxErrorBodyLen = 512
)

const promptTemplate = `Give a summary of the product description in exactly 3 points.
Each point should have exactly 4-5 words.
Do not include any introductory text.
Start each point on a new line without any additional text.
If no sufficient data just give the line 'No summary found'.
The format should be:

1. <Point one>
2. <Point two>
3. <Point three>

Product description: %s`

// Prompt returns the user message sent for description.
func Prompt(description string) string {
	return fmt.Sprintf(promptTemplate, description)
}

// Config holds client settings.
type Config struct {
	BaseURL   string
	APIKey    string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// Client implements crawler.Summarizer.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
}

// New builds a Client. Empty fields fall back to the Groq defaults.
func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	logger = logging.OrNop(logger)
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger.Named("summarizer"),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// Summarize sends description to the chat endpoint and returns the first
// choice's content, or FallbackSummary when there is none. Failures are
// crawler.ErrSummarization.
func (c *Client) Summarize(ctx context.Context, description string) (string, error) {
	summary, err := c.complete(ctx, description)
	if err != nil {
		metrics.ObserveSummarizerCall("error")
		return "", fmt.Errorf("%w: %w", crawler.ErrSummarization, err)
	}
	metrics.ObserveSummarizerCall("ok")
	return summary, nil
}

func (c *Client) complete(ctx context.Context, description string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model:     c.cfg.Model,
		Messages:  []chatMessage{{Role: "user", Content: Prompt(description)}},
		MaxTokens: c.cfg.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(body), maxErrorBodyLen))
	}

	var decoded chatResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	c.logger.Debug("summary generated",
		zap.String("model", decoded.Model),
		zap.Int("prompt_tokens", decoded.Usage.PromptTokens),
		zap.Int("completion_tokens", decoded.Usage.CompletionTokens),
		zap.Duration("latency", time.Since(start)),
	)

	if len(decoded.Choices) == 0 || decoded.Choices[0].Message.Content == "" {
		return FallbackSummary, nil
	}
	return decoded.Choices[0].Message.Content, nil
}

func (c *Client) endpoint() string {
	base := strings.TrimSuffix(c.cfg.BaseURL, "/")
	if strings.HasSuffix(base, "/chat/completions") {
		return base
	}
	return base + "/chat/completions"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
