// Package api hosts the HTTP server, middleware, and handlers. Notable routes:
//   - POST /scrape runs the pipeline for {"url": "<domain>"}.
//   - GET /healthz / readyz for Kubernetes probes.
//   - GET /metrics for Prometheus scraping.
package api
