package attrshare

import (
	"log/slog"

	"github.com/liviudnicoara/attrshare/middlewares"
)

// TokenSource supplies the current credential. The executor only reads it.
type TokenSource = middlewares.TokenSource

// TokenFunc adapts a function to a TokenSource.
type TokenFunc = middlewares.TokenFunc

// Notifier surfaces a transient user-visible message. Calls are fire-and-forget.
type Notifier interface {
	Notify(message string)
}

// Navigator performs a client-side route transition.
type Navigator interface {
	NavigateTo(path string)
}

type NotifierFunc func(message string)

func (f NotifierFunc) Notify(message string) { f(message) }

type NavigatorFunc func(path string)

func (f NavigatorFunc) NavigateTo(path string) { f(path) }

type nopNotifier struct{}

func (nopNotifier) Notify(string) {}

type nopNavigator struct{}

func (nopNavigator) NavigateTo(string) {}

// LogNotifier writes notifications to a structured logger at warn level.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Notify(message string) {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn(message)
}
