package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/joeydtaylor/vblocks/pkg/registry"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNormalizePath(t *testing.T) {
	cases := map[string]string{
		"/api/list_inference_functions": "/api/list_inference_functions",
		"/apipost/inference":            "/apipost/inference",
		"/ping":                         "/ping",
		"/index.html":                   "/static",
		"/static/js/main.123.js":        "/static",
	}
	for path, want := range cases {
		assert.Equal(t, want, normalizePath(httptest.NewRequest(http.MethodGet, path, nil)), path)
	}
}

func TestCollectCountsRequests(t *testing.T) {
	h := Collect(nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	before := testutil.ToFloat64(totalHttpRequestsToUri.WithLabelValues("200", "/apipost/inference", http.MethodPost))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/apipost/inference", nil))
	after := testutil.ToFloat64(totalHttpRequestsToUri.WithLabelValues("200", "/apipost/inference", http.MethodPost))
	assert.Equal(t, before+1, after)

	// /metrics is never counted.
	before = testutil.ToFloat64(totalHttpRequests.WithLabelValues("200", http.MethodGet))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, before, testutil.ToFloat64(totalHttpRequests.WithLabelValues("200", http.MethodGet)))
}

func TestCollectDefaults(t *testing.T) {
	h := Collect(nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("hello"))
	}))
	roleBefore := testutil.ToFloat64(totalHttpRequestsFromRole.WithLabelValues("anonymous"))
	bytesBefore := testutil.ToFloat64(responseBytes.WithLabelValues("/static"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/index.html", nil))

	assert.Equal(t, roleBefore+1, testutil.ToFloat64(totalHttpRequestsFromRole.WithLabelValues("anonymous")))
	assert.Equal(t, bytesBefore+5, testutil.ToFloat64(responseBytes.WithLabelValues("/static")))
	assert.Equal(t, 0.0, testutil.ToFloat64(inflightRequests))
}

func TestInferenceObserver(t *testing.T) {
	InferenceObserver{}.ObserveInference(registry.TextToText, "upper", "ok", 3*time.Millisecond)
	InferenceObserver{}.ObserveInference(registry.TextToText, "upper", "panic", time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(inferenceCalls.WithLabelValues("text_to_text", "upper", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(inferenceCalls.WithLabelValues("text_to_text", "upper", "panic")))
}

func TestAddMetricsSkipPaths(t *testing.T) {
	AddMetricsSkipPaths(" /healthz ", "")
	h := Collect(nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	before := testutil.ToFloat64(totalHttpRequestsToUri.WithLabelValues("200", "/static", http.MethodGet))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, before, testutil.ToFloat64(totalHttpRequestsToUri.WithLabelValues("200", "/static", http.MethodGet)))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz/x", nil))
	assert.Equal(t, before+1, testutil.ToFloat64(totalHttpRequestsToUri.WithLabelValues("200", "/static", http.MethodGet)))
}
