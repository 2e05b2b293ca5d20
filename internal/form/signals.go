package form

import "github.com/zoobzio/capitan"

// Submission lifecycle signals.
var (
	// FormSubmitStarted is emitted when a submission sets processing.
	FormSubmitStarted = capitan.NewSignal(
		"formstate.form.submit.started",
		"Form submission started",
	)

	// FormSubmitSucceeded is emitted when the backend accepted a submission.
	FormSubmitSucceeded = capitan.NewSignal(
		"formstate.form.submit.succeeded",
		"Form submission accepted",
	)

	// FormSubmitFailed is emitted when the backend rejected a submission or
	// the request failed.
	FormSubmitFailed = capitan.NewSignal(
		"formstate.form.submit.failed",
		"Form submission failed",
	)

	// FormSubmitMalformed is emitted when a failure carried no field errors,
	// e.g. a network outage or a 500 with an unexpected body.
	FormSubmitMalformed = capitan.NewSignal(
		"formstate.form.submit.malformed",
		"Form submission failed without field errors",
	)

	// FormSubmitFinished is emitted after every submission settles.
	FormSubmitFinished = capitan.NewSignal(
		"formstate.form.submit.finished",
		"Form submission settled",
	)
)

// State signals.
var (
	// FormReset is emitted when fields are restored from the baseline.
	FormReset = capitan.NewSignal(
		"formstate.form.reset",
		"Form fields reset to baseline",
	)
)
