package memory

import (
	"encoding/json"
	"fmt"

	"github.com/wp-media/background-processing/host"
)

// Compile-time interface check.
var _ host.ResponseWriter = (*ResponseRecorder)(nil)

// ResponseRecorder captures what a handler wrote, for assertions.
type ResponseRecorder struct {
	Status     int
	Body       any
	RawBody    []byte
	Terminated bool
}

// WriteJSON records the structured response.
func (r *ResponseRecorder) WriteJSON(status int, v any) error {
	if r.Terminated {
		return fmt.Errorf("memory: write after terminate")
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	r.Status = status
	r.Body = v
	r.RawBody = raw
	return nil
}

// Terminate records the hard end of the request.
func (r *ResponseRecorder) Terminate() {
	r.Terminated = true
}
