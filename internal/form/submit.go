package form

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/zoobzio/capitan"

	"github.com/five82/formstate/internal/client"
)

// ErrNoRequester is passed to OnError when a Form without a requester is
// submitted.
var ErrNoRequester = errors.New("form has no requester")

// Hooks are optional callbacks fired during a submission. Each runs on the
// submitting goroutine and is waited for before the next step; their
// outcomes are not inspected.
type Hooks struct {
	// OnBefore runs after processing is set and before the request is sent.
	OnBefore func(ctx context.Context)

	// OnSuccess receives the backend response after the baseline is committed.
	OnSuccess func(ctx context.Context, resp *client.Response)

	// OnError receives the raw error after field errors are recorded.
	OnError func(ctx context.Context, err error)

	// OnFinish runs after processing is cleared, whatever the outcome.
	OnFinish func(ctx context.Context)
}

// Submit sends the form and blocks until it settles.
//
// The payload is the field record at the moment the request is issued, after
// OnBefore returns, not at the moment Submit is called. Fields changed while
// OnBefore runs are sent.
//
// On success the baseline becomes a copy of the current fields, errors are
// cleared and WasSuccessful is true. On failure errors are replaced by the
// first message per field from the backend's validation payload; failures
// without that payload leave errors empty and are logged. Processing is
// cleared and OnFinish runs in every case, including when a hook panics.
//
// Concurrent submissions are not serialized: the state reflects whichever
// settles last.
func (f *Form) Submit(ctx context.Context, method Method, url string, hooks Hooks) {
	s := &submission{
		form:   f,
		id:     uuid.NewString(),
		method: method,
		url:    url,
		hooks:  hooks,
		start:  f.clock.Now(),
	}
	s.begin(ctx)
	defer s.finish(ctx)

	if hooks.OnBefore != nil {
		hooks.OnBefore(ctx)
	}

	if f.requester == nil {
		s.fail(ctx, ErrNoRequester)
		return
	}

	resp, err := f.requester.Do(ctx, client.Request{
		Method:  method,
		URL:     url,
		Payload: f.Fields(),
	})
	if err != nil {
		s.fail(ctx, err)
		return
	}
	s.succeed(ctx, resp)
}

// Dispatch runs Submit on a new goroutine and returns a channel that is
// closed once the submission settles. A panic in a hook is recovered and
// logged.
func (f *Form) Dispatch(ctx context.Context, method Method, url string, hooks Hooks) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer func() {
			if r := recover(); r != nil {
				f.logger.ErrorContext(ctx, "form submission panicked",
					"form", f.name,
					"method", method.String(),
					"url", url,
					"panic", r,
				)
			}
		}()
		f.Submit(ctx, method, url, hooks)
	}()
	return done
}

// Get submits the form with GET without waiting for it to settle.
func (f *Form) Get(ctx context.Context, url string, hooks Hooks) {
	f.Dispatch(ctx, MethodGet, url, hooks)
}

// Post submits the form with POST without waiting for it to settle.
func (f *Form) Post(ctx context.Context, url string, hooks Hooks) {
	f.Dispatch(ctx, MethodPost, url, hooks)
}

// Put submits the form with PUT without waiting for it to settle.
func (f *Form) Put(ctx context.Context, url string, hooks Hooks) {
	f.Dispatch(ctx, MethodPut, url, hooks)
}

// Patch submits the form with PATCH without waiting for it to settle.
func (f *Form) Patch(ctx context.Context, url string, hooks Hooks) {
	f.Dispatch(ctx, MethodPatch, url, hooks)
}

// Delete submits the form with DELETE without waiting for it to settle.
func (f *Form) Delete(ctx context.Context, url string, hooks Hooks) {
	f.Dispatch(ctx, MethodDelete, url, hooks)
}

// submission carries one Submit call through its steps.
type submission struct {
	form   *Form
	id     string
	method Method
	url    string
	hooks  Hooks
	start  time.Time
	status int
}

func (s *submission) begin(ctx context.Context) {
	f := s.form
	f.mutate(func() {
		f.processing = true
	})
	capitan.Emit(ctx, FormSubmitStarted,
		KeyForm.Field(f.name),
		KeySubmission.Field(s.id),
		KeyMethod.Field(s.method.String()),
		KeyURL.Field(s.url),
	)
	f.metrics.OnSubmitStart(f.name, s.method)
}

func (s *submission) succeed(ctx context.Context, resp *client.Response) {
	f := s.form
	if resp != nil {
		s.status = resp.StatusCode
	}
	f.mutate(func() {
		f.wasSuccessful = true
		f.clearErrorsLocked()
		f.defaults = f.clone(f.fields)
	})

	elapsed := f.clock.Since(s.start)
	f.logger.InfoContext(ctx, "form submitted",
		"form", f.name,
		"submission", s.id,
		"method", s.method.String(),
		"url", s.url,
		"status", s.status,
	)
	capitan.Emit(ctx, FormSubmitSucceeded,
		KeyForm.Field(f.name),
		KeySubmission.Field(s.id),
		KeyStatus.Field(s.status),
		KeyDuration.Field(elapsed),
	)
	f.metrics.OnSubmitSuccess(f.name, s.method, elapsed)

	if s.hooks.OnSuccess != nil {
		s.hooks.OnSuccess(ctx, resp)
	}
}

func (s *submission) fail(ctx context.Context, err error) {
	f := s.form
	var respErr *client.ResponseError
	if errors.As(err, &respErr) && respErr.Response != nil {
		s.status = respErr.Response.StatusCode
	}
	fieldErrors, ok := client.ValidationErrors(err)

	var recorded int
	var ignored []string
	f.mutate(func() {
		f.wasSuccessful = false
		f.clearErrorsLocked()
		for field, messages := range fieldErrors {
			if len(messages) == 0 {
				continue
			}
			if _, known := f.keys[field]; !known {
				ignored = append(ignored, field)
				continue
			}
			f.errors[field] = messages[0]
			recorded++
		}
	})

	elapsed := f.clock.Since(s.start)
	kind := FailureValidation
	if !ok {
		kind = FailureMalformed
		f.logger.WarnContext(ctx, "form submission failed without field errors",
			"form", f.name,
			"submission", s.id,
			"method", s.method.String(),
			"url", s.url,
			"status", s.status,
			"error", err,
		)
		capitan.Emit(ctx, FormSubmitMalformed,
			KeyForm.Field(f.name),
			KeySubmission.Field(s.id),
			KeyError.Field(err.Error()),
		)
	} else {
		f.logger.InfoContext(ctx, "form rejected",
			"form", f.name,
			"submission", s.id,
			"status", s.status,
			"field_errors", recorded,
		)
	}
	if len(ignored) > 0 {
		sort.Strings(ignored)
		f.logger.DebugContext(ctx, "ignored errors for unknown fields", "form", f.name, "fields", ignored)
	}

	capitan.Emit(ctx, FormSubmitFailed,
		KeyForm.Field(f.name),
		KeySubmission.Field(s.id),
		KeyStatus.Field(s.status),
		KeyFieldErrors.Field(recorded),
		KeyError.Field(err.Error()),
		KeyDuration.Field(elapsed),
	)
	f.metrics.OnSubmitFailure(f.name, s.method, kind, elapsed)

	if s.hooks.OnError != nil {
		s.hooks.OnError(ctx, err)
	}
}

func (s *submission) finish(ctx context.Context) {
	f := s.form
	f.mutate(func() {
		f.processing = false
	})
	f.metrics.OnSubmitFinish(f.name)
	capitan.Emit(ctx, FormSubmitFinished,
		KeyForm.Field(f.name),
		KeySubmission.Field(s.id),
	)
	if s.hooks.OnFinish != nil {
		s.hooks.OnFinish(ctx)
	}
}
