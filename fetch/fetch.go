// Package fetch issues HTTP requests and reports how they settled as outcome
// values.  It follows the same discipline as the wrap package: nothing is
// ever thrown past the wrapper, every failure path ends in a failure outcome,
// and user hooks run under a capture boundary.
//
// Failure detection is deterministic and ordered: transport errors first,
// then the status check, then body parsing.  A non-2xx response is surfaced
// as a *StatusError raw error before any parse attempt is made, so an
// ErrorTransformer always gets to see the status.
//
// Cancellation and deadlines are the context's business: the ctx is attached
// to the request and passed through to the transport untouched.  The package
// adds no timeouts of its own.
package fetch

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/ashkansamadiyan/go-errors/futures"
	"github.com/ashkansamadiyan/go-errors/normalize"
	"github.com/ashkansamadiyan/go-errors/outcome"
	"github.com/ashkansamadiyan/go-errors/wrap"
)

// Fetch issues one HTTP request and reports the settled result.
//
// On success the body becomes the outcome value: a ResponseTransformer, when
// set, reshapes the *Response into T; otherwise the declared T drives
// parsing.  []byte and string receive the raw body, *Response receives the
// whole response, and any other type is decoded from JSON.
//
// Every failure (limiter wait, request construction, transport, non-2xx
// status, decoding, or a failing transformer) takes the error path: the raw
// error is handed to the ErrorTransformer when one is set and its return
// value is the failure payload, verbatim; otherwise the raw error is
// normalized.  Fetch never panics.
func Fetch[T any](ctx context.Context, url string, opts Options[T]) outcome.Outcome[T] {
	res, err := send(ctx, url, opts)
	if err != nil {
		return fail[T](opts.ErrorTransformer, err)
	}

	if opts.ResponseTransformer != nil {
		o := wrap.Sync(func() (T, error) {
			return opts.ResponseTransformer(res)
		})
		if o.IsFailure() {
			return fail[T](opts.ErrorTransformer, o.Err)
		}
		return o
	}

	v, err := decode[T](res)
	if err != nil {
		return fail[T](opts.ErrorTransformer, err)
	}
	return outcome.Success(v)
}

// FetchF is the future form of Fetch.  The returned future is always
// completed, never failed.
func FetchF[T any](ctx context.Context, url string, opts Options[T]) *futures.Future[outcome.Outcome[T]] {
	out := futures.New[outcome.Outcome[T]]()

	go func() {
		out.Complete(Fetch(ctx, url, opts))
	}()

	return out
}

// send runs the request up to the point where a successful response has been
// fully read.  Any error it returns is a raw error for the error path.
func send[T any](ctx context.Context, url string, opts Options[T]) (*Response, error) {
	if opts.Limiter != nil {
		if err := opts.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, opts.method(), url, opts.Body)
	if err != nil {
		return nil, err
	}
	for k, vs := range opts.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := opts.client().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Header:     resp.Header,
			Body:       body,
		}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

// decode is the default parsing applied when no ResponseTransformer is set.
func decode[T any](res *Response) (T, error) {
	var v T

	switch p := any(&v).(type) {
	case *[]byte:
		*p = res.Body
		return v, nil
	case *string:
		*p = string(res.Body)
		return v, nil
	case **Response:
		*p = res
		return v, nil
	}

	if err := json.Unmarshal(res.Body, &v); err != nil {
		return *new(T), err
	}
	return v, nil
}

// fail shapes a raw error into the failure payload.  A set ErrorTransformer
// takes full responsibility for the shape: its return value is used verbatim
// and generic normalization is bypassed.  The transformer itself runs under a
// capture boundary; if it panics, or returns nil, the raw error falls back to
// normalization.
func fail[T any](transform func(error) error, raw error) outcome.Outcome[T] {
	if transform == nil {
		return outcome.Failure[T](normalize.Normalize(raw))
	}

	o := wrap.Sync(func() (error, error) {
		return transform(raw), nil
	})
	if o.IsFailure() || o.Val == nil {
		return outcome.Failure[T](normalize.Normalize(raw))
	}
	return outcome.Failure[T](o.Val)
}
