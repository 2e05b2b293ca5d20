package form

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"

	"github.com/five82/formstate/internal/client"
)

// Fields is a form's field record: field name to value. The key set is fixed
// when the Form is created.
type Fields map[string]any

// Method is the HTTP verb a form is submitted with.
type Method = client.Method

// Supported submission verbs.
const (
	MethodGet    = client.MethodGet
	MethodPost   = client.MethodPost
	MethodPut    = client.MethodPut
	MethodPatch  = client.MethodPatch
	MethodDelete = client.MethodDelete
)

// ErrUnknownField is returned when a field name is outside the form's key set.
var ErrUnknownField = errors.New("unknown field")

// Form tracks field values, dirtiness, validation errors and the submission
// lifecycle of one logical form.
//
// All methods are safe for concurrent use. Fields are only changed through
// Set, Update, Reset and successful submissions, so dirtiness is recomputed
// on every change rather than on read.
type Form struct {
	name      string
	requester client.Requester
	clone     Cloner
	equal     Comparer
	logger    *slog.Logger
	metrics   MetricsProvider
	clock     clockz.Clock

	mu            sync.RWMutex
	keys          map[string]struct{}
	fields        Fields
	defaults      Fields
	errors        map[string]string
	isDirty       bool
	processing    bool
	wasSuccessful bool

	// notifyMu is held from snapshot capture to delivery so watchers see
	// snapshots in mutation order.
	notifyMu sync.Mutex
	watchMu  sync.Mutex
	watchers []watcher
	nextID   uint64
}

// New creates a Form from initial. initial is deep-cloned into both the
// current fields and the baseline, so the caller's map is never aliased.
func New(initial Fields, opts ...Option) *Form {
	f := &Form{
		name:    "form",
		clone:   DeepCopy,
		equal:   DeepEqual,
		logger:  slog.Default(),
		metrics: NoOpMetricsProvider{},
		clock:   clockz.RealClock,
		errors:  map[string]string{},
	}
	for _, opt := range opts {
		opt(f)
	}

	f.keys = make(map[string]struct{}, len(initial))
	for key := range initial {
		f.keys[key] = struct{}{}
	}
	f.defaults = f.clone(initial)
	f.fields = f.clone(f.defaults)
	f.isDirty = !f.equal(f.fields, f.defaults)
	return f
}

// Name returns the label given with WithName.
func (f *Form) Name() string {
	return f.name
}

// Keys returns the form's field names in sorted order.
func (f *Form) Keys() []string {
	keys := make([]string, 0, len(f.keys))
	for key := range f.keys {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Has reports whether field belongs to the form's key set.
func (f *Form) Has(field string) bool {
	_, ok := f.keys[field]
	return ok
}

// Fields returns a deep copy of the current field values.
func (f *Form) Fields() Fields {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.clone(f.fields)
}

// Value returns a deep copy of one field's current value.
func (f *Form) Value(field string) (any, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.fields[field]
	if !ok {
		return nil, false
	}
	return f.clone(Fields{field: v})[field], true
}

// Defaults returns a deep copy of the baseline that dirtiness is measured
// against.
func (f *Form) Defaults() Fields {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.clone(f.defaults)
}

// Errors returns a copy of the active field errors.
func (f *Form) Errors() map[string]string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return copyErrors(f.errors)
}

// Error returns the active error for field, if any.
func (f *Form) Error(field string) (string, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	msg, ok := f.errors[field]
	return msg, ok
}

// HasErrors reports whether any field has an active error.
func (f *Form) HasErrors() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.errors) > 0
}

// IsDirty reports whether the fields differ from the last committed baseline.
func (f *Form) IsDirty() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.isDirty
}

// Processing reports whether a submission is in flight.
func (f *Form) Processing() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.processing
}

// WasSuccessful reports the outcome of the most recently settled submission.
func (f *Form) WasSuccessful() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.wasSuccessful
}

// Snapshot returns a consistent copy of the whole form state.
func (f *Form) Snapshot() Snapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.snapshotLocked()
}

// Set replaces one field's value. The value is deep-cloned.
func (f *Form) Set(field string, value any) error {
	if !f.Has(field) {
		return fmt.Errorf("set %q: %w", field, ErrUnknownField)
	}
	copied := f.clone(Fields{field: value})[field]
	f.mutate(func() {
		f.fields[field] = copied
	})
	return nil
}

// Update mutates the live field record in place. fn runs under the form's
// lock and must not call back into the Form. Keys fn adds outside the form's
// key set are dropped.
func (f *Form) Update(fn func(Fields)) {
	var dropped []string
	f.mutate(func() {
		fn(f.fields)
		for key := range f.fields {
			if _, ok := f.keys[key]; !ok {
				delete(f.fields, key)
				dropped = append(dropped, key)
			}
		}
	})
	if len(dropped) > 0 {
		sort.Strings(dropped)
		f.logger.Debug("dropped unknown fields from update", "form", f.name, "fields", dropped)
	}
}

// Reset restores fields from the baseline. With no names every field is
// replaced by a fresh copy of the baseline; otherwise only the named fields
// are restored and unknown names are ignored. The baseline itself is not
// moved.
func (f *Form) Reset(names ...string) {
	f.mutate(func() {
		if len(names) == 0 {
			f.fields = f.clone(f.defaults)
			f.defaults = f.clone(f.defaults)
			return
		}
		restored := f.clone(f.defaults)
		for _, name := range names {
			if v, ok := restored[name]; ok {
				f.fields[name] = v
			}
		}
	})
	capitan.Emit(context.Background(), FormReset,
		KeyForm.Field(f.name),
		KeyFields.Field(strings.Join(names, ",")),
	)
}

// SetError records message as field's error, replacing any previous one.
func (f *Form) SetError(field, message string) {
	f.SetErrors(map[string]string{field: message})
}

// SetErrors merges messages into the active errors. Fields not mentioned keep
// their current error.
func (f *Form) SetErrors(messages map[string]string) {
	var ignored []string
	f.mutate(func() {
		for field, message := range messages {
			if _, ok := f.keys[field]; !ok {
				ignored = append(ignored, field)
				continue
			}
			f.errors[field] = message
		}
	})
	if len(ignored) > 0 {
		sort.Strings(ignored)
		f.logger.Debug("ignored errors for unknown fields", "form", f.name, "fields", ignored)
	}
}

// ClearErrors removes errors. With no names every error is removed;
// otherwise exactly the named fields are cleared and the rest are kept.
func (f *Form) ClearErrors(names ...string) {
	f.mutate(func() {
		f.clearErrorsLocked(names...)
	})
}

func (f *Form) clearErrorsLocked(names ...string) {
	if len(names) == 0 {
		f.errors = map[string]string{}
		return
	}
	kept := make(map[string]string, len(f.errors))
	for field, message := range f.errors {
		if !contains(names, field) {
			kept[field] = message
		}
	}
	f.errors = kept
}

// mutate applies fn under the write lock, recomputes dirtiness and notifies
// watchers with the resulting snapshot.
func (f *Form) mutate(fn func()) {
	f.notifyMu.Lock()
	defer f.notifyMu.Unlock()

	f.mu.Lock()
	fn()
	f.isDirty = !f.equal(f.fields, f.defaults)
	var snap Snapshot
	watched := f.watched()
	if watched {
		snap = f.snapshotLocked()
	}
	f.mu.Unlock()

	if watched {
		f.notify(snap)
	}
}

func (f *Form) snapshotLocked() Snapshot {
	return Snapshot{
		Fields:        f.clone(f.fields),
		Errors:        copyErrors(f.errors),
		IsDirty:       f.isDirty,
		Processing:    f.processing,
		WasSuccessful: f.wasSuccessful,
	}
}

func copyErrors(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
