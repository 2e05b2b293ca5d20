package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/five82/formstate/internal/client"
	"github.com/five82/formstate/internal/config"
	"github.com/five82/formstate/internal/form"
)

// ErrRejected is returned by a headless submit the backend did not accept.
var ErrRejected = errors.New("submission rejected")

// submitOnce applies name=value overrides, submits with the definition's
// method and prints the outcome.
func submitOnce(ctx context.Context, f *form.Form, def config.Definition, values []string, out io.Writer) error {
	for _, kv := range values {
		name, raw, ok := strings.Cut(kv, "=")
		if !ok {
			return fmt.Errorf("value %q: want name=value", kv)
		}
		field, known := def.Field(strings.TrimSpace(name))
		if !known {
			return fmt.Errorf("value %q: %w", kv, form.ErrUnknownField)
		}
		value, err := config.Coerce(field.Kind, raw)
		if err != nil {
			return fmt.Errorf("value %q: %w", kv, err)
		}
		if err := f.Set(field.Name, value); err != nil {
			return err
		}
	}

	var (
		status  int
		failure error
	)
	f.Submit(ctx, def.Method, def.Action, form.Hooks{
		OnSuccess: func(_ context.Context, resp *client.Response) {
			if resp != nil {
				status = resp.StatusCode
			}
		},
		OnError: func(_ context.Context, err error) {
			failure = err
		},
	})

	if failure == nil {
		fmt.Fprintf(out, "%s %s: accepted (%d)\n", strings.ToUpper(def.Method.String()), def.Action, status)
		return nil
	}

	errs := f.Errors()
	if len(errs) == 0 {
		fmt.Fprintf(out, "%s %s: failed: %v\n", strings.ToUpper(def.Method.String()), def.Action, failure)
		return fmt.Errorf("%w: %w", ErrRejected, failure)
	}

	names := make([]string, 0, len(errs))
	for name := range errs {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintf(out, "%s %s: rejected\n", strings.ToUpper(def.Method.String()), def.Action)
	for _, name := range names {
		fmt.Fprintf(out, "  %s: %s\n", name, errs[name])
	}
	return fmt.Errorf("%w: %d field error(s)", ErrRejected, len(errs))
}
