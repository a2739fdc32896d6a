package attrshare

import (
	"bytes"
	"encoding/json"
	"io"
	"net/url"
	"strings"
	"time"
)

// ResponseType tells the pipeline how to treat the response body.
type ResponseType int

const (
	// ResponseJSON bodies are parsed as envelopes.
	ResponseJSON ResponseType = iota
	// ResponseBinary bodies are handed back untouched.
	ResponseBinary
)

func (t ResponseType) String() string {
	if t == ResponseBinary {
		return "binary"
	}
	return "json"
}

// Descriptor describes one call. Path is relative to the executor base URL.
type Descriptor struct {
	Method       string
	Path         string
	Query        map[string]string
	Body         Body
	Headers      map[string]string
	ResponseType ResponseType
	// Timeout overrides the executor default for this call when positive.
	Timeout time.Duration
}

// Body is an encodable request payload.
type Body interface {
	ContentType() string
	Reader() (io.Reader, error)
}

// JSONBody encodes Value as a JSON document.
type JSONBody struct {
	Value any
}

func (JSONBody) ContentType() string { return "application/json" }

func (b JSONBody) Reader() (io.Reader, error) {
	data, err := json.Marshal(b.Value)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(data), nil
}

// FormField is one key/value pair of a form body.
type FormField struct {
	Key   string
	Value string
}

// Form is a URL-encoded body that keeps the order fields were added in.
type Form []FormField

func (f Form) Add(key, value string) Form {
	return append(f, FormField{Key: key, Value: value})
}

// Encode renders the form as key=value pairs joined by '&', in insertion order.
func (f Form) Encode() string {
	var sb strings.Builder
	for i, field := range f {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(field.Key))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(field.Value))
	}
	return sb.String()
}

func (Form) ContentType() string { return "application/x-www-form-urlencoded" }

func (f Form) Reader() (io.Reader, error) {
	return strings.NewReader(f.Encode()), nil
}
