// Package client provides the HTTP transport used to submit forms.
//
// # Overview
//
// A Client resolves request URLs against a configured base URL, encodes the
// field record, and decodes the backend's JSON response. It implements the
// Requester interface consumed by the form package, so tests can swap in a
// stub without a network.
//
// # Encoding
//
//   - GET: fields become query parameters. Scalars are formatted with
//     fmt.Sprint, lists repeat the key, nested values are JSON encoded.
//   - POST, PUT, PATCH, DELETE: fields are sent as a JSON object body with
//     Content-Type: application/json.
//
// Every request carries Accept: application/json, a User-Agent header and a
// random X-Request-ID.
//
// # Errors
//
//   - Client initialization errors: invalid base URL
//   - Network errors: "execute request: dial tcp: connection refused"
//   - HTTP errors: *ResponseError, e.g. "api POST http://host/register
//     returned status 422"
//
// A *ResponseError keeps the full Response. Backends that reject a submission
// with field messages use the shape
//
//	{"errors": {"email": ["The email has already been taken."]}}
//
// which ValidationErrors decodes. Any other body shape reports ok == false so
// callers can degrade gracefully.
//
// # URL Construction
//
// The base URL accepts the same loose forms as the rest of the configuration:
//
//   - "127.0.0.1:8000" → http://127.0.0.1:8000/
//   - "https://example.com/api" → https://example.com/api/
//
// Relative request URLs ("register", "/users/1") are resolved against it;
// absolute request URLs are used verbatim.
//
// # Design Rationale
//
// The client is intentionally minimal: no retries, no caching, no response
// mutation. The form layer owns state; the client only moves bytes.
package client
