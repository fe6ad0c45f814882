package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSanitizeSite(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"standard http", "http://example.com/path", "example.com"},
		{"standard https", "https://Example.com/path", "example.com"},
		{"no scheme", "example.com/path", "example.com"},
		{"just host", "example.com", "example.com"},
		{"host with port", "example.com:8080", "example.com"},
		{"ip address", "192.168.1.1", "192.168.1.1"},
		{"invalid url", "http://%", "unknown"},
		{"empty string", "", "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeSite(tc.input); got != tc.expected {
				t.Errorf("SanitizeSite(%q) = %q; want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestInit(t *testing.T) {
	// Call Init multiple times to test idempotency.
	Init()
	Init()

	if pipelineRunsTotal == nil || pipelineStageSeconds == nil || productsTotal == nil ||
		summarizerCallsTotal == nil || httpRequestsTotal == nil || httpRequestDurationSeconds == nil {
		t.Fatal("Init() did not initialize metrics collectors")
	}
}

func TestObservePipelineCollectors(t *testing.T) {
	Init()
	before := testutil.ToFloat64(productsTotal.WithLabelValues("shop.example", "ok"))
	ObserveProduct("https://Shop.example/products/a", "ok")
	if val := testutil.ToFloat64(productsTotal.WithLabelValues("shop.example", "ok")); val != before+1 {
		t.Errorf("Expected productsTotal to grow by 1, got %f -> %f", before, val)
	}

	before = testutil.ToFloat64(pipelineRunsTotal.WithLabelValues("page_load"))
	ObservePipelineRun("page_load")
	if val := testutil.ToFloat64(pipelineRunsTotal.WithLabelValues("page_load")); val != before+1 {
		t.Errorf("Expected pipelineRunsTotal to grow by 1, got %f -> %f", before, val)
	}

	before = testutil.ToFloat64(summarizerCallsTotal.WithLabelValues("error"))
	ObserveSummarizerCall("error")
	if val := testutil.ToFloat64(summarizerCallsTotal.WithLabelValues("error")); val != before+1 {
		t.Errorf("Expected summarizerCallsTotal to grow by 1, got %f -> %f", before, val)
	}

	ObserveStage("locating", 0)
	if val := testutil.CollectAndCount(pipelineStageSeconds); val <= 0 {
		t.Errorf("Expected pipelineStageSeconds to be observed, got %d", val)
	}
}

// Fuzz test for SanitizeSite.
func FuzzSanitizeSite(f *testing.F) {
	testcases := []string{"http://example.com", "https://google.com", "ftp://example.com"}
	for _, tc := range testcases {
		f.Add(tc)
	}
	f.Fuzz(func(t *testing.T, orig string) {
		sanitized := SanitizeSite(orig)
		if sanitized == "" {
			t.Errorf("SanitizeSite(%q) returned an empty string", orig)
		}
	})
}
