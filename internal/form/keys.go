package form

import "github.com/zoobzio/capitan"

// Field keys for Form events.
var (
	// KeyForm is the form name given with WithName.
	KeyForm = capitan.NewStringKey("form")

	// KeySubmission identifies a single submission across its signals.
	KeySubmission = capitan.NewStringKey("submission")

	// KeyMethod is the lowercase HTTP verb.
	KeyMethod = capitan.NewStringKey("method")

	// KeyURL is the request URL as given by the caller.
	KeyURL = capitan.NewStringKey("url")

	// KeyError is the error message when a submission fails.
	KeyError = capitan.NewStringKey("error")

	// KeyStatus is the HTTP status code of a settled request, 0 if none.
	KeyStatus = capitan.NewIntKey("status")

	// KeyFieldErrors is the number of field errors recorded by a failure.
	KeyFieldErrors = capitan.NewIntKey("field_errors")

	// KeyFields is a comma-separated list of fields that were reset, empty
	// for a full reset.
	KeyFields = capitan.NewStringKey("fields")

	// KeyDuration is the elapsed submission time.
	KeyDuration = capitan.NewDurationKey("duration")
)
