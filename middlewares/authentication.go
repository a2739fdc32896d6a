package middlewares

import (
	"net/http"
)

// AuthorizationHeader carries the raw credential, without a scheme prefix.
const AuthorizationHeader = "Authorization"

// TokenSource supplies the current credential. An empty token means no
// credential is present.
type TokenSource interface {
	Token() (string, error)
}

// TokenFunc adapts a function to a TokenSource.
type TokenFunc func() (string, error)

func (f TokenFunc) Token() (string, error) { return f() }

// WithAuth returns a copy of req carrying token in the Authorization header.
// The request is returned untouched when token is empty, so the server
// decides what to do with anonymous calls.
func WithAuth(req *http.Request, token string) *http.Request {
	if token == "" {
		return req
	}

	authorized := req.Clone(req.Context())
	authorized.Header.Set(AuthorizationHeader, token)
	return authorized
}

// Authorize reads the credential from source and applies it to req.
// A failing source stops the request before it is dispatched.
func Authorize(req *http.Request, source TokenSource) (*http.Request, error) {
	if source == nil {
		return req, nil
	}

	token, err := source.Token()
	if err != nil {
		return nil, err
	}

	return WithAuth(req, token), nil
}
