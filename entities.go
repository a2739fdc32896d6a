package attrshare

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Envelope is the {code, msg, data} wrapper every JSON response uses.
type Envelope[T any] struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data T      `json:"data"`
}

// RawEnvelope is an envelope whose data has not been decoded yet.
type RawEnvelope = Envelope[json.RawMessage]

// Class identifies the kind of transport failure.
type Class string

const (
	ClassNetwork         Class = "NETWORK_UNREACHABLE"
	ClassTimeout         Class = "TIMEOUT"
	ClassUnauthenticated Class = "UNAUTHENTICATED"
	ClassServerError     Class = "SERVER_ERROR"
	ClassHTTPStatus      Class = "HTTP_STATUS"
)

// EnvelopeError is returned when the transport succeeded but the envelope code
// is outside the configured success set.
type EnvelopeError struct {
	Envelope RawEnvelope
	// Malformed is set when the body could not be read as an envelope at all.
	Malformed bool
}

func (e *EnvelopeError) Error() string {
	if e.Malformed {
		return "response is not an envelope"
	}
	if e.Envelope.Msg == "" {
		return fmt.Sprintf("envelope code %d", e.Envelope.Code)
	}
	return fmt.Sprintf("envelope code %d: %s", e.Envelope.Code, e.Envelope.Msg)
}

// TransportError is returned for network, timeout and HTTP status failures.
// StatusCode is zero when no response was received.
type TransportError struct {
	Class      Class
	StatusCode int
	Cause      error
}

func (e *TransportError) Error() string {
	msg := fmt.Sprintf("class: %s", e.Class)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" statusCode: %d", e.StatusCode)
	}
	if e.Cause != nil {
		msg += " cause: " + e.Cause.Error()
	}
	return msg
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// ClassOf reports the transport class of err, if it carries one.
func ClassOf(err error) (Class, bool) {
	var te *TransportError
	if errors.As(err, &te) {
		return te.Class, true
	}
	return "", false
}

// IsUnauthenticated reports whether err is an HTTP 401 rejection.
func IsUnauthenticated(err error) bool {
	class, ok := ClassOf(err)
	return ok && class == ClassUnauthenticated
}

// EnvelopeOf returns the rejected envelope carried by err.
func EnvelopeOf(err error) (RawEnvelope, bool) {
	var ee *EnvelopeError
	if errors.As(err, &ee) {
		return ee.Envelope, true
	}
	return RawEnvelope{}, false
}
