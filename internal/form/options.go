package form

import (
	"log/slog"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/mohae/deepcopy"
	"github.com/zoobzio/clockz"

	"github.com/five82/formstate/internal/client"
)

// Cloner returns a structurally independent copy of a field record. The copy
// must share no mutable sub-structure with its input.
type Cloner func(Fields) Fields

// Comparer reports whether two field records are structurally equal.
type Comparer func(a, b Fields) bool

// DeepCopy is the default Cloner. It copies nested maps, slices and pointers.
func DeepCopy(f Fields) Fields {
	if f == nil {
		return Fields{}
	}
	return deepcopy.Copy(f).(Fields)
}

// DeepEqual is the default Comparer. Nil and empty collections compare equal
// so an untouched list field does not read as dirty after a round trip.
func DeepEqual(a, b Fields) bool {
	return cmp.Equal(a, b, cmpopts.EquateEmpty())
}

// Option configures a Form at construction.
type Option func(*Form)

// WithName labels the form in logs, signals and metrics.
func WithName(name string) Option {
	return func(f *Form) {
		f.name = name
	}
}

// WithRequester sets the HTTP collaborator used by Submit.
func WithRequester(r client.Requester) Option {
	return func(f *Form) {
		f.requester = r
	}
}

// WithCloner replaces the deep-clone collaborator.
func WithCloner(c Cloner) Option {
	return func(f *Form) {
		if c != nil {
			f.clone = c
		}
	}
}

// WithComparer replaces the deep-equality collaborator used for dirtiness.
func WithComparer(c Comparer) Option {
	return func(f *Form) {
		if c != nil {
			f.equal = c
		}
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(f *Form) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithMetrics sets a metrics provider for submission outcomes.
func WithMetrics(m MetricsProvider) Option {
	return func(f *Form) {
		if m != nil {
			f.metrics = m
		}
	}
}

// WithClock sets the clock used to time submissions.
// Use clockz.NewFakeClock() for deterministic tests.
func WithClock(c clockz.Clock) Option {
	return func(f *Form) {
		if c != nil {
			f.clock = c
		}
	}
}
