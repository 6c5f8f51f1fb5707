// Package metrics exposes Prometheus metrics for AI calls and stage transitions.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const namespace = "career_boost"

// Recorder records workflow metrics into a Prometheus registry.
type Recorder struct {
	callsTotal       *prometheus.CounterVec
	callDuration     *prometheus.HistogramVec
	transitionsTotal *prometheus.CounterVec
}

// NewRecorder registers the metrics with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)

	return &Recorder{
		callsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ai_calls_total",
				Help:      "Total number of AI calls by call site and outcome",
			},
			[]string{"site", "outcome"},
		),
		callDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "ai_call_duration_seconds",
				Help:      "Duration of AI calls in seconds",
				Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
			},
			[]string{"site"},
		),
		transitionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stage_transitions_total",
				Help:      "Total number of workflow stage transitions",
			},
			[]string{"from", "to"},
		),
	}
}

func (r *Recorder) ObserveCall(site, outcome string, elapsed time.Duration) {
	r.callsTotal.WithLabelValues(site, outcome).Inc()
	r.callDuration.WithLabelValues(site).Observe(elapsed.Seconds())
}

func (r *Recorder) ObserveTransition(from, to string) {
	r.transitionsTotal.WithLabelValues(from, to).Inc()
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	return mux
}

// Serve exposes /metrics on addr until ctx is done.
func Serve(ctx context.Context, addr string, g prometheus.Gatherer, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           Handler(g),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("metrics listener started", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("metrics listener: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown metrics listener: %w", err)
	}
	return nil
}
