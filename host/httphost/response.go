package httphost

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/wp-media/background-processing/host"
)

// Compile-time interface check.
var _ host.ResponseWriter = (*responseWriter)(nil)

// responseWriter adapts http.ResponseWriter to host.ResponseWriter.
type responseWriter struct {
	w    http.ResponseWriter
	done bool
}

// WriteJSON renders v as the structured response.
func (r *responseWriter) WriteJSON(status int, v any) error {
	if r.done {
		return fmt.Errorf("httphost: write after response complete")
	}
	r.done = true
	r.w.Header().Set("Content-Type", "application/json")
	r.w.WriteHeader(status)
	return json.NewEncoder(r.w).Encode(v)
}

// Terminate hard-ends the request with an empty 200. For an HTTP host
// "process termination" means the response is complete and nothing else
// will be written.
func (r *responseWriter) Terminate() {
	if r.done {
		return
	}
	r.done = true
	r.w.WriteHeader(http.StatusOK)
}
