// Package metrics exports server and game counters in the Prometheus text
// format.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tetrawell"

// Metrics holds the collectors for one server. It is safe for concurrent use
// and satisfies game.Recorder.
type Metrics struct {
	registry *prometheus.Registry

	sessions        prometheus.Gauge
	sessionsTotal   prometheus.Counter
	sessionsRefused prometheus.Counter
	gamesStarted    prometheus.Counter
	gamesOver       prometheus.Counter
	rowsCleared     prometheus.Counter
	scores          prometheus.Histogram
}

// New creates the collectors on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "SSH sessions currently playing.",
		}),
		sessionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_total",
			Help:      "SSH sessions accepted.",
		}),
		sessionsRefused: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_refused_total",
			Help:      "SSH sessions turned away because the server was full.",
		}),
		gamesStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_started_total",
			Help:      "Games started, restarts included.",
		}),
		gamesOver: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_over_total",
			Help:      "Games that ended with a blocked spawn.",
		}),
		rowsCleared: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_cleared_total",
			Help:      "Rows removed from all wells.",
		}),
		scores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "final_score",
			Help:      "Score at game over.",
			Buckets:   prometheus.ExponentialBuckets(100, 4, 8),
		}),
	}
	m.registry.MustRegister(
		m.sessions, m.sessionsTotal, m.sessionsRefused,
		m.gamesStarted, m.gamesOver, m.rowsCleared, m.scores,
	)
	return m
}

// Registry exposes the registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) SessionOpened() {
	m.sessions.Inc()
	m.sessionsTotal.Inc()
}

func (m *Metrics) SessionClosed()  { m.sessions.Dec() }
func (m *Metrics) SessionRefused() { m.sessionsRefused.Inc() }

func (m *Metrics) GameStarted()      { m.gamesStarted.Inc() }
func (m *Metrics) RowsCleared(n int) { m.rowsCleared.Add(float64(n)) }

func (m *Metrics) GameOver(score int) {
	m.gamesOver.Inc()
	m.scores.Observe(float64(score))
}

// Handler serves the registry at any path.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("metrics listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
