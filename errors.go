package attrshare

import (
	"errors"
	"net/http"

	goerrors "github.com/goliatone/go-errors"
)

const (
	ErrorBadRequest      = "CLIENT_BAD_REQUEST"
	ErrorCredential      = "CLIENT_CREDENTIAL_UNAVAILABLE"
	ErrorDomainFailure   = "CLIENT_DOMAIN_FAILURE"
	ErrorInternal        = "CLIENT_INTERNAL_ERROR"
	ErrorUnauthenticated = "CLIENT_UNAUTHENTICATED"
	ErrorTransport       = "CLIENT_TRANSPORT_FAILURE"
)

func requestError(message string, category goerrors.Category, metadata map[string]any) error {
	err := goerrors.New(message, category).
		WithCode(http.StatusBadRequest).
		WithTextCode(textCode(category))
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func requestWrapError(source error, category goerrors.Category, message string, metadata map[string]any) error {
	if source == nil {
		return requestError(message, category, metadata)
	}
	err := goerrors.Wrap(source, category, message).
		WithCode(http.StatusBadRequest).
		WithTextCode(textCode(category))
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func textCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return ErrorBadRequest
	case goerrors.CategoryAuth:
		return ErrorCredential
	case goerrors.CategoryOperation:
		return ErrorDomainFailure
	case goerrors.CategoryExternal:
		return ErrorTransport
	default:
		return ErrorInternal
	}
}

// AsServiceError maps an outcome error into a go-errors envelope so callers
// can render every failure the same way. Errors that already are go-errors
// values are returned as is.
func AsServiceError(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		return rich
	}

	if env, ok := EnvelopeOf(err); ok {
		msg := env.Msg
		if msg == "" {
			msg = err.Error()
		}
		rich = goerrors.Wrap(err, goerrors.CategoryOperation, msg).
			WithCode(http.StatusOK).
			WithTextCode(ErrorDomainFailure)
		rich.WithMetadata(map[string]any{"envelope_code": env.Code})
		return rich
	}

	var te *TransportError
	if errors.As(err, &te) {
		category := goerrors.CategoryExternal
		text := ErrorTransport
		code := te.StatusCode
		switch te.Class {
		case ClassUnauthenticated:
			category = goerrors.CategoryAuth
			text = ErrorUnauthenticated
		case ClassNetwork, ClassTimeout:
			code = http.StatusBadGateway
			if te.Class == ClassTimeout {
				code = http.StatusGatewayTimeout
			}
		}
		rich = goerrors.Wrap(err, category, string(te.Class)).
			WithCode(code).
			WithTextCode(text)
		rich.WithMetadata(map[string]any{"class": string(te.Class), "status_code": te.StatusCode})
		return rich
	}

	return goerrors.Wrap(err, goerrors.CategoryInternal, err.Error()).
		WithCode(http.StatusInternalServerError).
		WithTextCode(ErrorInternal)
}
