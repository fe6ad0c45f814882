package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/product-sitemap-scraper/internal/config"
	"github.com/JakeFAU/product-sitemap-scraper/internal/crawler"
)

func TestServer_Scrape_Succeeds(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{products: []crawler.ProductDescriptor{
		{Link: "https://example.com/products/a", Image: "https://cdn.example.com/a.jpg", ImageTitle: "A", Summary: "1. a\n2. b\n3. c"},
		{Link: "https://example.com/products/b", Summary: "No summary found"},
	}}
	server := NewServer(runner, testConfig(), zap.NewNop())

	rec := doScrape(t, server, `{"url":" example.com "}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.Equal(t, []string{"example.com"}, runner.domains())
	require.JSONEq(t, `{
		"success": true,
		"data": [
			{"link":"https://example.com/products/a","image":"https://cdn.example.com/a.jpg","imageTitle":"A","summary":"1. a\n2. b\n3. c"},
			{"link":"https://example.com/products/b","summary":"No summary found"}
		]
	}`, rec.Body.String())
}

func TestServer_Scrape_StatusMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{
			name:    "product sitemap missing",
			err:     fmt.Errorf("%w: no entry contains %q", crawler.ErrProductSitemapNotFound, "sitemap_products"),
			status:  http.StatusNotFound,
			message: "Product sitemap not found",
		},
		{
			name:    "sitemap not declared",
			err:     fmt.Errorf("robots.txt for example.com: %w", crawler.ErrSitemapNotDeclared),
			status:  http.StatusInternalServerError,
			message: "robots.txt for example.com: sitemap not found",
		},
		{
			name:    "page load",
			err:     fmt.Errorf("product https://example.com/p/2: %w", crawler.ErrPageLoad),
			status:  http.StatusInternalServerError,
			message: "product https://example.com/p/2: page load failed",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			server := NewServer(&fakeRunner{err: tt.err}, testConfig(), zap.NewNop())
			rec := doScrape(t, server, `{"url":"example.com"}`)

			require.Equal(t, tt.status, rec.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			require.Equal(t, false, body["success"])
			require.Equal(t, tt.message, body["error"])
			require.NotContains(t, body, "data")
		})
	}
}

func TestServer_Scrape_InvalidJSON(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{}
	rec := doScrape(t, NewServer(runner, testConfig(), zap.NewNop()), "{invalid")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "invalid JSON")
	require.Empty(t, runner.domains())
}

func TestServer_Scrape_MissingURL(t *testing.T) {
	t.Parallel()

	rec := doScrape(t, NewServer(&fakeRunner{}, testConfig(), zap.NewNop()), `{"url":"  "}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "url required")
}

func TestServer_Scrape_RecoversPanics(t *testing.T) {
	t.Parallel()

	rec := doScrape(t, NewServer(panicRunner{}, testConfig(), zap.NewNop()), `{"url":"example.com"}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "internal server error")
}

func TestServer_Scrape_TimeoutIsJSON500(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Server.RequestTimeoutSeconds = 1
	server := NewServer(blockingRunner{}, cfg, zap.NewNop())

	rec := doScrape(t, server, `{"url":"slow.example"}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var resp scrapeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.False(t, resp.Success)
	require.Contains(t, resp.Error, context.DeadlineExceeded.Error())
}

func TestTimeoutMiddlewareSetsDeadline(t *testing.T) {
	t.Parallel()

	var hasDeadline bool
	handler := timeoutMiddleware(50 * time.Millisecond)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		_, hasDeadline = r.Context().Deadline()
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/scrape", nil))
	require.True(t, hasDeadline)

	hasDeadline = true
	handler = timeoutMiddleware(0)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		_, hasDeadline = r.Context().Deadline()
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/scrape", nil))
	require.False(t, hasDeadline)
}

func TestServer_ProbesAndMetrics(t *testing.T) {
	t.Parallel()

	server := NewServer(&fakeRunner{}, testConfig(), zap.NewNop())
	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		rec := httptest.NewRecorder()
		server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rec.Code, path)
	}

	rec := httptest.NewRecorder()
	NewServer(nil, testConfig(), zap.NewNop()).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestServer_CORS(t *testing.T) {
	t.Parallel()

	server := NewServer(&fakeRunner{}, testConfig(), zap.NewNop())
	req := httptest.NewRequest(http.MethodOptions, "/scrape", nil)
	req.Header.Set("Origin", "https://shop.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_APIKeyMiddleware(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Auth = config.AuthConfig{Enabled: true, APIKey: "secret"}
	server := NewServer(&fakeRunner{}, cfg, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-API-Key", "secret")
	rec = httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/healthz?api_key=secret", nil)
	rec = httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestIDMiddlewareSetsHeader(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	NewServer(&fakeRunner{}, testConfig(), zap.NewNop()).Handler().ServeHTTP(rec, req)

	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestResponseWriterHijackBehavior(t *testing.T) {
	t.Parallel()

	rw := &responseWriter{ResponseWriter: httptest.NewRecorder()}
	if _, _, err := rw.Hijack(); err == nil || err.Error() != "hijacker not supported" {
		t.Fatalf("expected unsupported hijacker error, got %v", err)
	}

	h := &hijackableRecorder{ResponseRecorder: httptest.NewRecorder()}
	rw = &responseWriter{ResponseWriter: h}
	conn, buf, err := rw.Hijack()
	if err != nil {
		t.Fatalf("expected successful hijack, got %v", err)
	}
	if err := conn.Close(); err != nil {
		t.Fatalf("close hijacked conn: %v", err)
	}
	if err := h.CloseClient(); err != nil {
		t.Fatalf("close hijacked client: %v", err)
	}
	if buf == nil {
		t.Fatal("expected buf to be non-nil")
	}
}

// --- helpers/fakes ---

func testConfig() config.Config {
	return config.Config{
		Server:  config.ServerConfig{Port: 5000, RequestTimeoutSeconds: 30},
		Logging: config.LoggingConfig{Development: true},
	}
}

func doScrape(t *testing.T, server *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/scrape", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	return rec
}

type fakeRunner struct {
	mu       sync.Mutex
	products []crawler.ProductDescriptor
	err      error
	seen     []string
}

func (f *fakeRunner) Run(_ context.Context, domain string) ([]crawler.ProductDescriptor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, domain)
	if f.err != nil {
		return nil, f.err
	}
	return f.products, nil
}

func (f *fakeRunner) domains() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.seen...)
}

type panicRunner struct{}

func (panicRunner) Run(context.Context, string) ([]crawler.ProductDescriptor, error) {
	panic("boom")
}

type blockingRunner struct{}

func (blockingRunner) Run(ctx context.Context, domain string) ([]crawler.ProductDescriptor, error) {
	<-ctx.Done()
	return nil, fmt.Errorf("%w: scrape %s: %w", crawler.ErrNetwork, domain, ctx.Err())
}

type hijackableRecorder struct {
	*httptest.ResponseRecorder
	client net.Conn
}

func (h *hijackableRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	server, client := net.Pipe()
	h.client = client
	return server, bufio.NewReadWriter(bufio.NewReader(client), bufio.NewWriter(client)), nil
}

func (h *hijackableRecorder) CloseClient() error {
	if h.client != nil {
		if err := h.client.Close(); err != nil {
			return fmt.Errorf("close hijacker client: %w", err)
		}
	}
	return nil
}
