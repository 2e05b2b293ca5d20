// Package form provides reactive state for a single client-side form.
//
// # Overview
//
// A Form wraps a field record (Fields) and tracks four pieces of derived
// state alongside it:
//
//   - IsDirty: the fields differ structurally from the last committed baseline
//   - Errors: sparse field name → message map, usually filled by the backend
//   - Processing: a submission is in flight
//   - WasSuccessful: outcome of the most recently settled submission
//
// The baseline starts as a deep copy of the constructor argument and moves
// only when a submission succeeds. Reset restores fields from it.
//
// # Collaborators
//
// A Form is assembled from replaceable parts:
//
//   - Cloner (default DeepCopy, github.com/mohae/deepcopy)
//   - Comparer (default DeepEqual, github.com/google/go-cmp)
//   - client.Requester (usually *client.Client)
//   - MetricsProvider (default no-op)
//
// # Reactivity
//
// Fields are never handed out by reference. Callers change them through Set,
// Update and Reset, and every change recomputes IsDirty and notifies Watch
// subscribers with a fresh Snapshot. Subscribers see snapshots in the order
// the changes were made; they hold up other writers while they run and must
// not modify the form:
//
//	cancel := f.Watch(func(s form.Snapshot) {
//		select {
//		case updates <- s:
//		default:
//		}
//	})
//	defer cancel()
//
// # Submission
//
// Submit blocks until the request settles. Dispatch and the verb shortcuts
// (Get, Post, Put, Patch, Delete) run it on a separate goroutine and return
// immediately:
//
//	f.Post(ctx, "/register", form.Hooks{
//		OnSuccess: func(ctx context.Context, resp *client.Response) { ... },
//		OnError:   func(ctx context.Context, err error) { ... },
//	})
//
// A backend that rejects a submission with
//
//	{"errors": {"email": ["The email has already been taken."]}}
//
// populates Errors with the first message per field. Failures without that
// shape (network errors, 500s) leave Errors empty, are logged at warn level
// and emit FormSubmitMalformed; OnError and OnFinish still run.
//
// # Signals
//
// Submission lifecycle events are emitted through capitan (FormSubmitStarted,
// FormSubmitSucceeded, FormSubmitFailed, FormSubmitMalformed,
// FormSubmitFinished, FormReset) with the field keys in keys.go.
package form
