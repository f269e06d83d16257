package metrics

import (
	"net/http"
	"strings"
	"sync"
)

var (
	skipMu    sync.RWMutex
	skipPaths = map[string]struct{}{"/metrics": {}}
)

// AddMetricsSkipPaths excludes exact request paths from HTTP metrics.
// "/metrics" is always skipped.
func AddMetricsSkipPaths(paths ...string) {
	skipMu.Lock()
	defer skipMu.Unlock()
	for _, p := range paths {
		if p = strings.TrimSpace(p); p != "" {
			skipPaths[p] = struct{}{}
		}
	}
}

func isSkipPath(r *http.Request) bool {
	skipMu.RLock()
	_, ok := skipPaths[r.URL.Path]
	skipMu.RUnlock()
	return ok
}

// normalizePath keeps API paths and labels every bundle asset "/static".
func normalizePath(r *http.Request) string {
	p := r.URL.Path
	if strings.HasPrefix(p, "/api/") || strings.HasPrefix(p, "/apipost/") || p == "/ping" {
		return p
	}
	return "/static"
}
