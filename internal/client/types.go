package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Method is an HTTP verb a form may be submitted with.
type Method string

const (
	MethodGet    Method = http.MethodGet
	MethodPost   Method = http.MethodPost
	MethodPut    Method = http.MethodPut
	MethodPatch  Method = http.MethodPatch
	MethodDelete Method = http.MethodDelete
)

// ErrUnsupportedMethod is returned for verbs outside get/post/put/patch/delete.
var ErrUnsupportedMethod = errors.New("unsupported method")

// ParseMethod normalizes a verb name such as "post" or "PATCH".
func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToUpper(strings.TrimSpace(s))); m {
	case MethodGet, MethodPost, MethodPut, MethodPatch, MethodDelete:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedMethod, s)
	}
}

// String returns the lowercase verb name.
func (m Method) String() string {
	return strings.ToLower(string(m))
}

// Request describes a form submission. Payload is the field record; GET
// requests carry it as query parameters, every other verb as a JSON body.
type Request struct {
	Method  Method
	URL     string
	Payload map[string]any
}

// Response is a completed backend response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	// Data holds the decoded JSON body, or nil when the body is empty or not JSON.
	Data any
}

// ResponseError reports a response with a 4xx or 5xx status.
type ResponseError struct {
	Method   Method
	URL      string
	Response *Response
}

func (e *ResponseError) Error() string {
	status := 0
	if e.Response != nil {
		status = e.Response.StatusCode
	}
	return fmt.Sprintf("api %s %s returned status %d", e.Method, e.URL, status)
}

// ValidationErrors decodes a body of the form
//
//	{"errors": {"email": ["The email field is required."]}}
//
// The second return value is false when the body does not have that shape.
func (e *ResponseError) ValidationErrors() (map[string][]string, bool) {
	if e == nil || e.Response == nil || len(e.Response.Body) == 0 {
		return nil, false
	}
	var payload struct {
		Errors map[string]json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(e.Response.Body, &payload); err != nil || payload.Errors == nil {
		return nil, false
	}

	out := make(map[string][]string, len(payload.Errors))
	for field, raw := range payload.Errors {
		var messages []string
		if err := json.Unmarshal(raw, &messages); err != nil {
			// Some backends send a single string per field.
			var single string
			if err := json.Unmarshal(raw, &single); err != nil {
				continue
			}
			messages = []string{single}
		}
		out[field] = messages
	}
	return out, true
}

// ValidationErrors extracts field messages from err when it wraps a
// *ResponseError carrying a validation payload.
func ValidationErrors(err error) (map[string][]string, bool) {
	var respErr *ResponseError
	if !errors.As(err, &respErr) {
		return nil, false
	}
	return respErr.ValidationErrors()
}
