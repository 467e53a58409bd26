package fetch

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Response is the settled form of an HTTP response handed to a
// ResponseTransformer: status, headers and the fully-read body.
type Response struct {
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the response body as JSON into v.
func (r *Response) Decode(v any) error {
	return json.Unmarshal(r.Body, v)
}

// StatusError is the raw error produced for a non-2xx response.  It carries
// the full response so an ErrorTransformer can branch on status and body.
type StatusError struct {
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %s", e.Status)
}
