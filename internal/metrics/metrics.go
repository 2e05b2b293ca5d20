// Package metrics records form submissions as Prometheus metrics.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/five82/formstate/internal/client"
	"github.com/five82/formstate/internal/form"
)

const namespace = "formstate"

// Provider implements form.MetricsProvider on a Prometheus registry.
type Provider struct {
	registry *prometheus.Registry

	started   *prometheus.CounterVec
	succeeded *prometheus.CounterVec
	failed    *prometheus.CounterVec
	inFlight  *prometheus.GaugeVec
	duration  *prometheus.HistogramVec
}

var _ form.MetricsProvider = (*Provider)(nil)

// NewProvider registers the submission metrics on a fresh registry. When
// withRuntime is set the Go and process collectors are registered too.
func NewProvider(withRuntime bool) *Provider {
	reg := prometheus.NewRegistry()
	if withRuntime {
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	factory := promauto.With(reg)

	return &Provider{
		registry: reg,
		started: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_started_total",
			Help:      "The total number of form submissions started",
		}, []string{"form", "method"}),
		succeeded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_succeeded_total",
			Help:      "The total number of form submissions the backend accepted",
		}, []string{"form", "method"}),
		failed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_failed_total",
			Help:      "The total number of failed form submissions by failure kind",
		}, []string{"form", "method", "kind"}),
		inFlight: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "submissions_in_flight",
			Help:      "The number of form submissions waiting for the backend",
		}, []string{"form"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "submission_duration_seconds",
			Help:      "The time from submit to settle",
			Buckets: []float64{
				0.01, // 10ms
				0.05, // 50ms
				0.1,  // 100ms
				0.25, // 250ms
				0.5,  // 500ms
				1,    // 1s
				2.5,  // 2.5s
				5,    // 5s
				10,   // 10s
			},
		}, []string{"form", "method", "outcome"}),
	}
}

// OnSubmitStart implements form.MetricsProvider.
func (p *Provider) OnSubmitStart(name string, method client.Method) {
	p.started.WithLabelValues(name, method.String()).Inc()
	p.inFlight.WithLabelValues(name).Inc()
}

// OnSubmitSuccess implements form.MetricsProvider.
func (p *Provider) OnSubmitSuccess(name string, method client.Method, d time.Duration) {
	p.succeeded.WithLabelValues(name, method.String()).Inc()
	p.duration.WithLabelValues(name, method.String(), "success").Observe(d.Seconds())
}

// OnSubmitFailure implements form.MetricsProvider.
func (p *Provider) OnSubmitFailure(name string, method client.Method, kind string, d time.Duration) {
	p.failed.WithLabelValues(name, method.String(), kind).Inc()
	p.duration.WithLabelValues(name, method.String(), kind).Observe(d.Seconds())
}

// OnSubmitFinish implements form.MetricsProvider.
func (p *Provider) OnSubmitFinish(name string) {
	p.inFlight.WithLabelValues(name).Dec()
}

// Registry returns the registry the metrics live on.
func (p *Provider) Registry() *prometheus.Registry {
	return p.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Serve exposes Handler on addr at /metrics until ctx is done.
func (p *Provider) Serve(ctx context.Context, addr string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", p.Handler())
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("serving metrics", "addr", ln.Addr().String())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
