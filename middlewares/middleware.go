// Package middlewares holds the request stage of the pipeline and the
// decorators that wrap the transport call.
package middlewares

import "net/http"

// Handler executes one HTTP exchange.
type Handler func(req *http.Request) (*http.Response, error)

// Middleware decorates a Handler.
type Middleware func(next Handler) Handler

// Chain wraps h with mws. The first middleware is the outermost one.
func Chain(h Handler, mws ...Middleware) Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
