// Package metrics exposes Prometheus metrics of the client session.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Operation outcomes.
const (
	OutcomeSuccess    = "success"
	OutcomeFailure    = "failure"
	OutcomeSuperseded = "superseded"
	OutcomeSkipped    = "skipped"
)

// Collector records session activity. A nil *Collector is valid and records nothing.
type Collector struct {
	operations  *prometheus.CounterVec
	transitions *prometheus.CounterVec
	loggedIn    prometheus.Gauge
	online      prometheus.Gauge
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notehub_session_operations_total",
				Help: "Session operations by name and outcome",
			},
			[]string{"operation", "outcome"},
		),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notehub_network_transitions_total",
				Help: "Observed connectivity transitions",
			},
			[]string{"state"},
		),
		loggedIn: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "notehub_session_logged_in",
			Help: "1 while a user session is active",
		}),
		online: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "notehub_session_online",
			Help: "1 while the API is reachable",
		}),
	}
	reg.MustRegister(c.operations, c.transitions, c.loggedIn, c.online)
	return c
}

func (c *Collector) ObserveOperation(operation, outcome string) {
	if c == nil {
		return
	}
	c.operations.WithLabelValues(operation, outcome).Inc()
}

func (c *Collector) ObserveNetwork(online bool) {
	if c == nil {
		return
	}
	state := "offline"
	if online {
		state = "online"
	}
	c.transitions.WithLabelValues(state).Inc()
}

func (c *Collector) SetSession(loggedIn, online bool) {
	if c == nil {
		return
	}
	c.loggedIn.Set(boolToFloat(loggedIn))
	c.online.Set(boolToFloat(online))
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// Serve exposes g on addr at /metrics until ctx is done.
func Serve(ctx context.Context, addr string, g prometheus.Gatherer) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
