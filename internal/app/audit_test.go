package app

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/zoobzio/capitan"

	"github.com/five82/formstate/internal/form"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestInstallAudit_LogsSignals(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var out syncBuffer
	slog.SetDefault(slog.New(slog.NewTextHandler(&out, &slog.HandlerOptions{Level: slog.LevelDebug})))

	installAudit()
	installAudit()

	capitan.Emit(context.Background(), form.FormSubmitFailed,
		form.KeyForm.Field("audit-test"),
		form.KeySubmission.Field("sub-1"),
		form.KeyStatus.Field(422),
		form.KeyFieldErrors.Field(2),
		form.KeyError.Field("rejected"),
		form.KeyDuration.Field(time.Second),
	)

	deadline := time.Now().Add(2 * time.Second)
	for !strings.Contains(out.String(), "form=audit-test") {
		if time.Now().After(deadline) {
			t.Fatalf("audit log missing record, got:\n%s", out.String())
		}
		time.Sleep(10 * time.Millisecond)
	}

	got := out.String()
	if strings.Count(got, "form=audit-test") != 1 {
		t.Fatalf("audit log = %q, want exactly one record for the form", got)
	}
	for _, want := range []string{"audit: submission rejected", "component=audit", "status=422", "field_errors=2"} {
		if !strings.Contains(got, want) {
			t.Fatalf("audit log = %q, want it to contain %q", got, want)
		}
	}
}
