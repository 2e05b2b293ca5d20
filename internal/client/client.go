package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Requester issues a single form request. It is implemented by *Client and
// can be replaced in tests.
type Requester interface {
	Do(ctx context.Context, req Request) (*Response, error)
}

// Ensure Client implements Requester at compile time.
var _ Requester = (*Client)(nil)

// ErrNilClient is returned when a method is called on a nil *Client.
var ErrNilClient = errors.New("client is nil")

// Client talks to the form backend over HTTP.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	logger    *slog.Logger
}

// Options configure a Client. Zero values use defaults.
type Options struct {
	Timeout    time.Duration
	UserAgent  string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

const (
	defaultBaseURL   = "127.0.0.1:8000"
	defaultUserAgent = "formstate/0.1"
	requestTimeout   = 5 * time.Second
	maxResponseBytes = 4 << 20
	requestIDHeader  = "X-Request-ID"
)

// NewClient builds a Client rooted at baseURL. Relative request URLs are
// resolved against it.
func NewClient(baseURL string, opts Options) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = requestTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	userAgent := strings.TrimSpace(opts.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:   base,
		http:      httpClient,
		userAgent: userAgent,
		logger:    logger,
	}, nil
}

// BaseURL returns the normalized base URL requests are resolved against.
func (c *Client) BaseURL() string {
	if c == nil {
		return ""
	}
	return c.baseURL.String()
}

// Do sends req and returns the decoded response. Responses with a status of
// 400 or above are returned as a *ResponseError that still carries the
// response.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	if c == nil {
		return nil, ErrNilClient
	}

	method, err := ParseMethod(string(req.Method))
	if err != nil {
		return nil, err
	}

	target, err := c.resolve(req.URL)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if method == MethodGet {
		query := target.Query()
		for key, value := range req.Payload {
			for _, encoded := range encodeQueryValue(value) {
				query.Add(key, encoded)
			}
		}
		target.RawQuery = query.Encode()
	} else {
		encoded, err := json.Marshal(req.Payload)
		if err != nil {
			return nil, fmt.Errorf("encode payload: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	httpReq, err := http.NewRequestWithContext(ctx, string(method), target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	requestID := uuid.NewString()
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set(requestIDHeader, requestID)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	c.logger.DebugContext(ctx, "form request completed",
		"method", string(method),
		"url", target.String(),
		"status", resp.StatusCode,
		"request_id", requestID,
		"elapsed", time.Since(start),
	)

	out := &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       raw,
		Data:       decodeData(raw),
	}

	if resp.StatusCode >= 400 {
		return nil, &ResponseError{
			Method:   method,
			URL:      target.String(),
			Response: out,
		}
	}
	return out, nil
}

func (c *Client) resolve(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	rel, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse request url %q: %w", raw, err)
	}
	if rel.IsAbs() {
		return rel, nil
	}
	return c.baseURL.ResolveReference(rel), nil
}

// decodeData returns the JSON value held in raw, or nil when raw is empty or
// not JSON.
func decodeData(raw []byte) any {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil
	}
	return data
}

// encodeQueryValue flattens a field value into query string values. Scalars
// are formatted directly, lists repeat the key, and anything nested is sent
// as JSON.
func encodeQueryValue(value any) []string {
	switch v := value.(type) {
	case nil:
		return []string{""}
	case string:
		return []string{v}
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return []string{fmt.Sprint(v)}
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			switch item.(type) {
			case map[string]any, []any:
				out = append(out, encodeJSON(item))
			default:
				out = append(out, encodeQueryValue(item)...)
			}
		}
		return out
	default:
		return []string{encodeJSON(v)}
	}
}

func encodeJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

func parseBaseURL(baseURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse base_url %q: %w", baseURL, err)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
