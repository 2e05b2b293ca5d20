// Package app wires formstate together.
//
// Run loads the client configuration, sends logs to the configured file,
// resolves the form definition (the given path or the last one used), builds
// the HTTP client and the form.Form, optionally serves Prometheus metrics,
// installs audit hooks on the form's signals and then either starts the
// terminal UI or, with Options.Submit, sends the form once and prints the
// outcome.
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       ├─> config.Load()            client settings
//	       ├─> logging.Configure()      slog to log_file
//	       ├─> config.LoadDefinition()  fields, method, action
//	       ├─> client.NewClient()       HTTP requester
//	       ├─> metrics.Serve()          when metrics_addr is set
//	       ├─> form.New()
//	       └─> ui.Run() / submitOnce()
package app
