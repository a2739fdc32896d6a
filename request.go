package attrshare

import (
	"context"
	"encoding/json"
	"maps"
	"net/http"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// Request builds a Descriptor for a JSON call whose envelope data decodes
// into T.
type Request[T any] struct {
	re *RequestExecutor
	d  Descriptor
}

func Get[T any](re *RequestExecutor, path string) *Request[T] {
	return NewRequest[T](re).
		WithMethod(http.MethodGet).
		WithPath(path)
}

func Post[T any](re *RequestExecutor, path string, payload any) *Request[T] {
	return NewRequest[T](re).
		WithMethod(http.MethodPost).
		WithPath(path).
		WithPayload(payload)
}

func Put[T any](re *RequestExecutor, path string, payload any) *Request[T] {
	return NewRequest[T](re).
		WithMethod(http.MethodPut).
		WithPath(path).
		WithPayload(payload)
}

func Patch[T any](re *RequestExecutor, path string, payload any) *Request[T] {
	return NewRequest[T](re).
		WithMethod(http.MethodPatch).
		WithPath(path).
		WithPayload(payload)
}

func NewRequest[T any](re *RequestExecutor) *Request[T] {
	return &Request[T]{
		re: re,
		d:  Descriptor{Method: http.MethodGet},
	}
}

func (r *Request[T]) WithMethod(httpMethod string) *Request[T] {
	r.d.Method = httpMethod
	return r
}

func (r *Request[T]) WithPath(path string) *Request[T] {
	r.d.Path = path
	return r
}

// WithPayload sets the body. Values implementing Body are sent as they are,
// nil sends no body and anything else is encoded as JSON.
func (r *Request[T]) WithPayload(payload any) *Request[T] {
	switch p := payload.(type) {
	case nil:
		r.d.Body = nil
	case Body:
		r.d.Body = p
	default:
		r.d.Body = JSONBody{Value: p}
	}
	return r
}

func (r *Request[T]) WithHeaders(headers map[string]string) *Request[T] {
	r.d.Headers = maps.Clone(headers)
	return r
}

func (r *Request[T]) WithQueryParameters(params map[string]string) *Request[T] {
	if len(params) == 0 {
		return r
	}

	if r.d.Query == nil {
		r.d.Query = make(map[string]string, len(params))
	}
	maps.Copy(r.d.Query, params)

	return r
}

func (r *Request[T]) WithTimeout(timeout time.Duration) *Request[T] {
	r.d.Timeout = timeout
	return r
}

// Descriptor returns the call as it will be dispatched.
func (r *Request[T]) Descriptor() Descriptor {
	d := r.d
	d.Query = maps.Clone(r.d.Query)
	d.Headers = maps.Clone(r.d.Headers)
	return d
}

// Do dispatches the request and returns the full envelope. Callers unwrap
// Data themselves.
func (r *Request[T]) Do(ctx context.Context) (*Envelope[T], error) {
	raw, err := r.re.Call(ctx, r.Descriptor())
	if err != nil {
		return nil, err
	}

	return DecodeEnvelope[T](raw)
}

// DecodeEnvelope decodes the data of an accepted envelope into T. A missing
// or null data field leaves Data at its zero value.
func DecodeEnvelope[T any](raw *RawEnvelope) (*Envelope[T], error) {
	env := &Envelope[T]{Code: raw.Code, Msg: raw.Msg}

	if len(raw.Data) == 0 || string(raw.Data) == "null" {
		return env, nil
	}

	if err := json.Unmarshal(raw.Data, &env.Data); err != nil {
		rich := goerrors.Wrap(err, goerrors.CategoryInternal, "attrshare: decode envelope data").
			WithCode(http.StatusOK).
			WithTextCode(ErrorInternal)
		rich.WithMetadata(map[string]any{"envelope_code": raw.Code})
		return nil, rich
	}

	return env, nil
}
