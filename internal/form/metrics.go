package form

import (
	"time"

	"github.com/five82/formstate/internal/client"
)

// Failure kinds reported to MetricsProvider.OnSubmitFailure.
const (
	FailureValidation = "validation"
	FailureMalformed  = "malformed"
)

// MetricsProvider allows integration with metrics systems like Prometheus.
// Implement this interface to receive callbacks on submission events.
type MetricsProvider interface {
	// OnSubmitStart is called when a submission begins.
	OnSubmitStart(form string, method client.Method)

	// OnSubmitSuccess is called when the backend accepted the submission.
	// Duration covers the OnBefore hook and the request.
	OnSubmitSuccess(form string, method client.Method, duration time.Duration)

	// OnSubmitFailure is called when the submission failed. Kind is
	// FailureValidation when the backend returned field errors and
	// FailureMalformed for every other failure.
	OnSubmitFailure(form string, method client.Method, kind string, duration time.Duration)

	// OnSubmitFinish is called once per submission after it settles,
	// including when a hook panicked before an outcome was reached.
	OnSubmitFinish(form string)
}

// NoOpMetricsProvider is a no-op implementation of MetricsProvider.
// Use this as an embedded type to implement only the methods you need.
type NoOpMetricsProvider struct{}

func (NoOpMetricsProvider) OnSubmitStart(_ string, _ client.Method)                              {}
func (NoOpMetricsProvider) OnSubmitSuccess(_ string, _ client.Method, _ time.Duration)           {}
func (NoOpMetricsProvider) OnSubmitFailure(_ string, _ client.Method, _ string, _ time.Duration) {}
func (NoOpMetricsProvider) OnSubmitFinish(_ string)                                              {}
