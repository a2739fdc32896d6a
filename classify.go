package attrshare

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"slices"
)

// Messages are the user-facing texts the pipeline hands to the Notifier.
type Messages struct {
	// Fallback is used when a rejected envelope has no msg.
	Fallback string
	Timeout  string
	Network  string
	Login    string
	// Status is a format string receiving the HTTP status code.
	Status string
}

func DefaultMessages() Messages {
	return Messages{
		Fallback: "service error",
		Timeout:  "request timed out, please check your network connection",
		Network:  "network unreachable, please check the server status",
		Login:    "please log in",
		Status:   "service error: %d",
	}
}

// Policy configures how exchanges are classified.
type Policy struct {
	SuccessCodes []int
	LoginRoute   string
	Messages     Messages
}

// DefaultSuccessCodes treats 0 as success and 1, 2 as accepted with a warning.
var DefaultSuccessCodes = []int{0, 1, 2}

func DefaultPolicy() Policy {
	return Policy{
		SuccessCodes: slices.Clone(DefaultSuccessCodes),
		LoginRoute:   "/",
		Messages:     DefaultMessages(),
	}
}

func (p Policy) isSuccess(code int) bool {
	return slices.Contains(p.SuccessCodes, code)
}

// Exchange is what the transport produced for one call.
type Exchange struct {
	ResponseType ResponseType
	// HasResponse is false when no HTTP response was received.
	HasResponse bool
	StatusCode  int
	Body        []byte
	Err         error
}

// Outcome is the classified result of an Exchange. Exactly one of Envelope,
// Binary or Err is meaningful. Notice and Redirect describe the side effects
// the caller of Classify must perform; empty means none.
type Outcome struct {
	Envelope *RawEnvelope
	Binary   []byte
	Err      error
	Notice   string
	Redirect string
}

// Classify turns an exchange into an outcome. It performs no side effects.
func Classify(ex Exchange, p Policy) Outcome {
	if !ex.HasResponse {
		return classifyNoResponse(ex, p)
	}

	if ex.StatusCode < http.StatusOK || ex.StatusCode >= http.StatusMultipleChoices {
		return classifyStatus(ex, p)
	}

	if ex.ResponseType == ResponseBinary {
		return Outcome{Binary: ex.Body}
	}

	return classifyEnvelope(ex, p)
}

func classifyNoResponse(ex Exchange, p Policy) Outcome {
	if isTimeout(ex.Err) {
		return Outcome{
			Err:    &TransportError{Class: ClassTimeout, Cause: ex.Err},
			Notice: p.Messages.Timeout,
		}
	}

	return Outcome{
		Err:    &TransportError{Class: ClassNetwork, Cause: ex.Err},
		Notice: p.Messages.Network,
	}
}

func classifyStatus(ex Exchange, p Policy) Outcome {
	switch ex.StatusCode {
	case http.StatusUnauthorized:
		return Outcome{
			Err:      &TransportError{Class: ClassUnauthenticated, StatusCode: ex.StatusCode, Cause: ex.Err},
			Notice:   p.Messages.Login,
			Redirect: p.LoginRoute,
		}
	case http.StatusInternalServerError:
		return Outcome{
			Err: &TransportError{Class: ClassServerError, StatusCode: ex.StatusCode, Cause: ex.Err},
		}
	default:
		return Outcome{
			Err:    &TransportError{Class: ClassHTTPStatus, StatusCode: ex.StatusCode, Cause: ex.Err},
			Notice: fmt.Sprintf(p.Messages.Status, ex.StatusCode),
		}
	}
}

type wireEnvelope struct {
	Code *int            `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

func classifyEnvelope(ex Exchange, p Policy) Outcome {
	var wire wireEnvelope
	if err := json.Unmarshal(ex.Body, &wire); err != nil || wire.Code == nil {
		return Outcome{
			Err:    &EnvelopeError{Envelope: RawEnvelope{Data: json.RawMessage(ex.Body)}, Malformed: true},
			Notice: p.Messages.Fallback,
		}
	}

	env := RawEnvelope{Code: *wire.Code, Msg: wire.Msg, Data: wire.Data}
	if p.isSuccess(env.Code) {
		return Outcome{Envelope: &env}
	}

	notice := env.Msg
	if notice == "" {
		notice = p.Messages.Fallback
	}

	return Outcome{
		Err:    &EnvelopeError{Envelope: env},
		Notice: notice,
	}
}

func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
