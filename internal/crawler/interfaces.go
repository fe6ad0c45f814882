package crawler

import (
	"context"
	"time"
)

// Fetcher fetches a URL and returns the body plus metadata.
type Fetcher interface {
	Fetch(ctx context.Context, request FetchRequest) (FetchResponse, error)
}

// Summarizer turns a product description into a short free-text summary.
type Summarizer interface {
	Summarize(ctx context.Context, description string) (string, error)
}

// SummarizerFunc adapts a plain function to the Summarizer interface.
type SummarizerFunc func(ctx context.Context, description string) (string, error)

// Summarize calls f.
func (f SummarizerFunc) Summarize(ctx context.Context, description string) (string, error) {
	return f(ctx, description)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces run IDs (UUIDs).
type IDGenerator interface {
	NewID() (string, error)
}
