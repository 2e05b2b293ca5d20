// Package ui provides the terminal form editor built on Bubble Tea.
//
// # Layout
//
// The editor shows the form title and target, one block per field (label,
// input or checkbox, and the field's error) and a status bar with the
// form's dirty, in-flight and error state plus the outcome of the last
// submission.
//
// # Data Flow
//
// The Model owns no field values. Each edit is parsed to the field's kind
// and written to the form.Form with Set; toggles, resets and error clearing
// go through the Form as well. The Model subscribes with Form.Watch and
// receives snapshots through a one-slot feed that keeps only the newest
// snapshot, so the goroutine running a submission never waits on the UI.
//
// Submissions use the Form's fire-and-forget verb methods with the
// definition's method and action. Outcomes arrive through hooks as
// submitResultMsg values.
//
// # Key Bindings
//
//	tab/down, shift+tab/up   move between fields
//	space                    toggle a checkbox
//	ctrl+s, enter            submit
//	ctrl+r                   reset the whole form
//	ctrl+f                   reset the focused field
//	ctrl+e                   clear errors
//	ctrl+t                   cycle theme (saved to prefs)
//	f1, ctrl+g               help
//	esc, ctrl+c              quit
package ui
