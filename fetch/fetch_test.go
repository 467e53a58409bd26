package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/ashkansamadiyan/go-errors/normalize"
	"github.com/ashkansamadiyan/go-errors/outcome"
)

type doerFunc func(req *http.Request) (*http.Response, error)

func (f doerFunc) Do(req *http.Request) (*http.Response, error) {
	return f(req)
}

func respond(status int, contentType, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     fmt.Sprintf("%d %s", status, http.StatusText(status)),
		Header:     http.Header{"Content-Type": []string{contentType}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestFetchJSONRoundTrip(t *testing.T) {
	require := require.New(t)

	client := doerFunc(func(req *http.Request) (*http.Response, error) {
		require.Equal(http.MethodGet, req.Method)
		return respond(http.StatusOK, "application/json", `{"a":1}`), nil
	})

	type payload struct {
		A int `json:"a"`
	}

	o := Fetch[payload](context.Background(), "http://example.test/a", Options[payload]{Client: client})
	require.Equal(outcome.Success(payload{A: 1}), o)
}

func TestFetchPassThroughTargets(t *testing.T) {
	require := require.New(t)

	client := doerFunc(func(req *http.Request) (*http.Response, error) {
		return respond(http.StatusOK, "text/plain", "raw text"), nil
	})

	os := Fetch[string](context.Background(), "http://example.test", Options[string]{Client: client})
	require.Equal(outcome.Success("raw text"), os)

	ob := Fetch[[]byte](context.Background(), "http://example.test", Options[[]byte]{Client: client})
	require.NoError(ob.Err)
	require.Equal([]byte("raw text"), ob.Val)

	or := Fetch[*Response](context.Background(), "http://example.test", Options[*Response]{Client: client})
	require.NoError(or.Err)
	require.Equal(http.StatusOK, or.Val.StatusCode)
	require.Equal([]byte("raw text"), or.Val.Body)
}

func TestFetchResponseTransformer(t *testing.T) {
	require := require.New(t)

	client := doerFunc(func(req *http.Request) (*http.Response, error) {
		return respond(http.StatusOK, "application/json", `{"name":"x"}`), nil
	})

	o := Fetch[string](context.Background(), "http://example.test", Options[string]{
		Client: client,
		ResponseTransformer: func(res *Response) (string, error) {
			var body struct {
				Name string `json:"name"`
			}
			if err := res.Decode(&body); err != nil {
				return "", err
			}
			return strings.ToUpper(body.Name), nil
		},
	})

	require.Equal(outcome.Success("X"), o)
}

func TestFetchResponseTransformerPanics(t *testing.T) {
	require := require.New(t)

	client := doerFunc(func(req *http.Request) (*http.Response, error) {
		return respond(http.StatusOK, "application/json", `{}`), nil
	})

	o := Fetch[int](context.Background(), "http://example.test", Options[int]{
		Client: client,
		ResponseTransformer: func(res *Response) (int, error) {
			panic("bad transform")
		},
	})

	require.True(o.IsFailure())
	require.EqualError(o.Err, "bad transform")
	require.True(normalize.IsNormalized(o.Err))
}

func TestFetchStatusError(t *testing.T) {
	require := require.New(t)

	client := doerFunc(func(req *http.Request) (*http.Response, error) {
		return respond(http.StatusNotFound, "application/json", `{"reason":"missing"}`), nil
	})

	o := Fetch[int](context.Background(), "http://example.test", Options[int]{Client: client})
	require.True(o.IsFailure())

	// Without a transformer the raw *StatusError passes through
	// normalization unchanged.
	var se *StatusError
	require.ErrorAs(o.Err, &se)
	require.Equal(http.StatusNotFound, se.StatusCode)
	require.Equal([]byte(`{"reason":"missing"}`), se.Body)
}

type apiError struct {
	status int
	reason string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.status, e.reason)
}

func TestFetchErrorTransformerVerbatim(t *testing.T) {
	require := require.New(t)

	client := doerFunc(func(req *http.Request) (*http.Response, error) {
		return respond(http.StatusBadGateway, "application/json", `{"reason":"upstream"}`), nil
	})

	o := Fetch[int](context.Background(), "http://example.test", Options[int]{
		Client: client,
		ErrorTransformer: func(raw error) error {
			var se *StatusError
			if errors.As(raw, &se) {
				var body struct {
					Reason string `json:"reason"`
				}
				_ = json.Unmarshal(se.Body, &body)
				return &apiError{status: se.StatusCode, reason: body.Reason}
			}
			return raw
		},
	})

	require.True(o.IsFailure())

	var ae *apiError
	require.ErrorAs(o.Err, &ae)
	require.Equal(http.StatusBadGateway, ae.status)
	require.Equal("upstream", ae.reason)
	// The transformer's value is used verbatim; no normalized wrapper around it.
	require.False(normalize.IsNormalized(o.Err))
}

func TestFetchErrorTransformerNilFallsBack(t *testing.T) {
	require := require.New(t)

	client := doerFunc(func(req *http.Request) (*http.Response, error) {
		return respond(http.StatusNotFound, "application/json", `{}`), nil
	})

	o := Fetch[int](context.Background(), "http://example.test", Options[int]{
		Client: client,
		ErrorTransformer: func(raw error) error {
			return nil
		},
	})

	require.True(o.IsFailure())
	var se *StatusError
	require.ErrorAs(o.Err, &se)
}

func TestFetchErrorTransformerPanicFallsBack(t *testing.T) {
	require := require.New(t)

	client := doerFunc(func(req *http.Request) (*http.Response, error) {
		return respond(http.StatusNotFound, "application/json", `{"reason":"missing"}`), nil
	})

	o := Fetch[int](context.Background(), "http://example.test", Options[int]{
		Client: client,
		ErrorTransformer: func(raw error) error {
			panic("bad error transform")
		},
	})

	// The panic never crosses the wrapper; the transformer forfeits its
	// override and the raw status error falls back through normalization.
	require.True(o.IsFailure())

	var se *StatusError
	require.ErrorAs(o.Err, &se)
	require.Equal(http.StatusNotFound, se.StatusCode)
	require.Equal([]byte(`{"reason":"missing"}`), se.Body)
}

func TestFetchTransportError(t *testing.T) {
	require := require.New(t)

	errDial := errors.New("dial failed")
	client := doerFunc(func(req *http.Request) (*http.Response, error) {
		return nil, errDial
	})

	o := Fetch[int](context.Background(), "http://example.test", Options[int]{Client: client})
	require.True(o.IsFailure())
	require.ErrorIs(o.Err, errDial)
}

func TestFetchDecodeError(t *testing.T) {
	require := require.New(t)

	client := doerFunc(func(req *http.Request) (*http.Response, error) {
		return respond(http.StatusOK, "application/json", `not json`), nil
	})

	type payload struct {
		A int `json:"a"`
	}

	o := Fetch[payload](context.Background(), "http://example.test", Options[payload]{Client: client})
	require.True(o.IsFailure())
}

func TestFetchContextCancellation(t *testing.T) {
	require := require.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// A zero-rate limiter can never grant a token; the canceled context
	// aborts the wait and takes the error path.
	o := Fetch[int](ctx, "http://example.test", Options[int]{
		Limiter: rate.NewLimiter(0, 0),
	})

	require.True(o.IsFailure())
}

func TestFetchLimiterPassThrough(t *testing.T) {
	require := require.New(t)

	client := doerFunc(func(req *http.Request) (*http.Response, error) {
		return respond(http.StatusOK, "application/json", `{"a":1}`), nil
	})

	type payload struct {
		A int `json:"a"`
	}

	o := Fetch[payload](context.Background(), "http://example.test", Options[payload]{
		Client:  client,
		Limiter: rate.NewLimiter(rate.Inf, 1),
	})

	require.Equal(outcome.Success(payload{A: 1}), o)
}

func TestFetchAgainstServer(t *testing.T) {
	require := require.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(http.MethodPost, r.Method)
		require.Equal("application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(err)
		require.JSONEq(`{"n":2}`, string(body))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"n":4}`)
	}))
	defer srv.Close()

	type payload struct {
		N int `json:"n"`
	}

	o := Fetch[payload](context.Background(), srv.URL, Options[payload]{
		Method: http.MethodPost,
		Header: http.Header{"Content-Type": []string{"application/json"}},
		Body:   strings.NewReader(`{"n":2}`),
	})

	require.Equal(outcome.Success(payload{N: 4}), o)
}

func TestFetchF(t *testing.T) {
	require := require.New(t)

	client := doerFunc(func(req *http.Request) (*http.Response, error) {
		return respond(http.StatusOK, "application/json", `{"a":1}`), nil
	})

	type payload struct {
		A int `json:"a"`
	}

	f := FetchF[payload](context.Background(), "http://example.test", Options[payload]{Client: client})

	o, err := f.Get(context.Background())
	require.NoError(err)
	require.Equal(outcome.Success(payload{A: 1}), o)
}
