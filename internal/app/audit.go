package app

import (
	"context"
	"log/slog"
	"sync"

	"github.com/zoobzio/capitan"

	"github.com/five82/formstate/internal/form"
)

var auditOnce sync.Once

// installAudit mirrors form lifecycle signals into the default logger at the
// time each event is handled. Hooks are process-wide, so they are installed
// once.
func installAudit() {
	auditOnce.Do(func() {
		capitan.Hook(form.FormSubmitSucceeded, func(ctx context.Context, e *capitan.Event) {
			name, _ := form.KeyForm.From(e)
			id, _ := form.KeySubmission.From(e)
			status, _ := form.KeyStatus.From(e)
			elapsed, _ := form.KeyDuration.From(e)
			auditLogger().InfoContext(ctx, "audit: submission accepted",
				"form", name, "submission", id, "status", status, "duration", elapsed)
		})

		capitan.Hook(form.FormSubmitFailed, func(ctx context.Context, e *capitan.Event) {
			name, _ := form.KeyForm.From(e)
			id, _ := form.KeySubmission.From(e)
			status, _ := form.KeyStatus.From(e)
			fieldErrors, _ := form.KeyFieldErrors.From(e)
			errMsg, _ := form.KeyError.From(e)
			auditLogger().WarnContext(ctx, "audit: submission rejected",
				"form", name, "submission", id, "status", status,
				"field_errors", fieldErrors, "error", errMsg)
		})

		capitan.Hook(form.FormSubmitMalformed, func(ctx context.Context, e *capitan.Event) {
			name, _ := form.KeyForm.From(e)
			errMsg, _ := form.KeyError.From(e)
			auditLogger().ErrorContext(ctx, "audit: backend response had no field errors",
				"form", name, "error", errMsg)
		})

		capitan.Hook(form.FormReset, func(ctx context.Context, e *capitan.Event) {
			name, _ := form.KeyForm.From(e)
			fields, _ := form.KeyFields.From(e)
			auditLogger().DebugContext(ctx, "audit: form reset", "form", name, "fields", fields)
		})
	})
}

func auditLogger() *slog.Logger {
	return slog.Default().With("component", "audit")
}
