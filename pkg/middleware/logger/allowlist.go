package logger

import (
	"net/http"
	"strings"
	"sync"
)

type allowlist struct {
	mu    sync.RWMutex
	paths map[string]struct{}
}

// Text requests are small and useful when debugging a model; tensor payloads
// are not logged.
func newAllowlist() *allowlist {
	return &allowlist{paths: map[string]struct{}{
		"/apipost/inference_text_to_text":    {},
		"/apipost/inference_text_to_tensors": {},
	}}
}

func (a *allowlist) add(paths ...string) {
	a.mu.Lock()
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p != "" {
			a.paths[p] = struct{}{}
		}
	}
	a.mu.Unlock()
}

// AddBodyLogPaths lets callers extend the allowlist at runtime (optional).
func (m *Middleware) AddBodyLogPaths(paths ...string) { m.bodies.add(paths...) }

// Only log small JSON request bodies on allowlisted routes.
func (a *allowlist) shouldLogBody(r *http.Request, body []byte) bool {
	if r.Method != http.MethodPost && r.Method != http.MethodPut && r.Method != http.MethodPatch {
		return false
	}
	if len(body) == 0 || len(body) > 1<<16 { // 64 KiB cap
		return false
	}
	ct := r.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "application/json") {
		return false
	}
	a.mu.RLock()
	_, ok := a.paths[r.URL.Path]
	a.mu.RUnlock()
	return ok
}
