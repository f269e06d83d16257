package core

import (
	"net/http"

	"github.com/joeydtaylor/vblocks/pkg/codec"
)

func writeJSON(w http.ResponseWriter, payload []byte, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if len(payload) > 0 {
		_, _ = w.Write(payload)
		return
	}
	_, _ = w.Write([]byte(`{}`))
}

// writeValue encodes v with the shared codec; encode failures fall back to an
// error payload so the client always gets JSON.
func writeValue(w http.ResponseWriter, v any) {
	out, err := codec.JSON.Marshal(v)
	if err != nil {
		out, _ = codec.JSON.Marshal(map[string]string{"error": "encode response: " + err.Error()})
	}
	writeJSON(w, out, http.StatusOK)
}
