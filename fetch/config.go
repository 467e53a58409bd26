package fetch

import (
	"io"
	"net/http"

	"golang.org/x/time/rate"
)

// Doer is the transport capability Fetch issues requests through.
// *http.Client satisfies it; tests inject fakes.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Options configures a single Fetch call.  The zero value issues a GET on
// http.DefaultClient with default JSON handling and generic error
// normalization.
type Options[T any] struct {
	// Method defaults to GET.
	Method string
	Header http.Header
	Body   io.Reader

	// Client is the transport the request is issued through.
	// Defaults to http.DefaultClient.
	Client Doer

	// Limiter, when set, paces the request: Fetch waits for a token before
	// issuing it.  A wait failure (context canceled or expired) takes the
	// error path like any other raw error.
	Limiter *rate.Limiter

	// ResponseTransformer reshapes a successful response into T.  It runs
	// under the capture boundary: a returned error or a panic takes the
	// error path instead of escaping.  When unset, the declared T drives
	// parsing (see Fetch).
	ResponseTransformer func(res *Response) (T, error)

	// ErrorTransformer reshapes a raw error into the failure payload,
	// bypassing generic normalization.  Raw errors include transport
	// failures, *StatusError for non-2xx responses, decode failures and
	// response transformer failures.  When unset, raw errors are fed
	// through normalize.Normalize.
	ErrorTransformer func(raw error) error
}

func (o Options[T]) method() string {
	if o.Method == "" {
		return http.MethodGet
	}
	return o.Method
}

func (o Options[T]) client() Doer {
	if o.Client == nil {
		return http.DefaultClient
	}
	return o.Client
}
