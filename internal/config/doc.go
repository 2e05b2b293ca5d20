// Package config loads formstate's client configuration and form definition
// files.
//
// # Client Configuration
//
// Load reads ~/.config/formstate/config.toml (or an explicit path). A missing
// file is not an error; defaults are used instead:
//
//	base_url     = "http://127.0.0.1:8000"
//	timeout      = "5s"
//	user_agent   = "formstate/0.1"
//	log_level    = "info"
//	log_json     = false
//	log_file     = "~/.local/state/formstate/formstate.log"
//	metrics_addr = ""   # e.g. "127.0.0.1:9464"; empty disables /metrics
//
// Empty values fall back to their defaults. Tilde expansion is applied to
// the config path and log_file.
//
// # Form Definitions
//
// LoadDefinition reads a form from TOML, YAML or JSON, picking the codec from
// the file extension (CodecFor):
//
//	title  = "Register"
//	method = "post"
//	action = "/register"
//
//	[[fields]]
//	name  = "email"
//	label = "Email"
//	kind  = "text"
//
//	[[fields]]
//	name    = "remember"
//	kind    = "bool"
//	default = true
//
// method defaults to post and kind to text. Every default is coerced to its
// kind's Go type (string, bool or float64) so the initial field record
// compares equal to values the UI writes back. Definitions without fields,
// with duplicate or empty names, unknown kinds or ill-typed defaults are
// rejected with ErrNoFields or ErrInvalidField.
package config
