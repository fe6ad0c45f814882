package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func routeSamples(t *testing.T, method, route string) uint64 {
	t.Helper()
	metric, ok := httpRequestDurationSeconds.WithLabelValues(method, route).(prometheus.Metric)
	require.True(t, ok)
	var m dto.Metric
	require.NoError(t, metric.Write(&m))
	return m.GetHistogram().GetSampleCount()
}

func TestMiddlewareRecordsRoutePattern(t *testing.T) {
	Init()
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Post("/scrape", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	codeBefore := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodPost, "404"))
	routeBefore := routeSamples(t, http.MethodPost, "/scrape")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/scrape", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	require.InDelta(t, codeBefore+1, testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodPost, "404")), 0)
	require.Equal(t, routeBefore+1, routeSamples(t, http.MethodPost, "/scrape"))
}

func TestMiddlewareUnknownRouteWithoutChi(t *testing.T) {
	Init()
	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))

	codeBefore := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodPatch, "200"))
	unknownBefore := routeSamples(t, http.MethodPatch, "unknown")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/anything", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	require.InDelta(t, codeBefore+1, testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodPatch, "200")), 0)
	require.Equal(t, unknownBefore+1, routeSamples(t, http.MethodPatch, "unknown"))
}
