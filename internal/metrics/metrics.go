// Package metrics exports what the bot learns from RCON status replies.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"srcdsbot/internal/logx"
	"srcdsbot/internal/status"
)

const namespace = "srcdsbot"

type Recorder struct {
	registry *prometheus.Registry

	parses     *prometheus.CounterVec
	failures   *prometheus.CounterVec
	players    prometheus.Gauge
	maxPlayers prometheus.Gauge
	ping       prometheus.Histogram
	loss       prometheus.Histogram
}

func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		parses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "status_parses_total",
				Help:      "RCON status replies handled, by result (ok, rcon_error, parse_error)",
			},
			[]string{"result"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "status_field_failures_total",
				Help:      "Status parse failures by the field that could not be extracted",
			},
			[]string{"field"},
		),
		players: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "server_players",
			Help:      "Player count reported by the last parsed status",
		}),
		maxPlayers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "server_max_players",
			Help:      "Max player count reported by the last parsed status",
		}),
		ping: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "player_ping_ms",
			Help:      "Player round-trip latency from status rows",
			Buckets:   []float64{10, 25, 50, 75, 100, 150, 250, 500},
		}),
		loss: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "player_loss",
			Help:      "Player packet loss from status rows",
			Buckets:   []float64{0, 1, 2, 5, 10, 25},
		}),
	}
	r.registry.MustRegister(r.parses, r.failures, r.players, r.maxPlayers, r.ping, r.loss)
	return r
}

// ObserveStatus records a successful parse.
func (r *Recorder) ObserveStatus(st status.ServerStatus) {
	r.parses.WithLabelValues("ok").Inc()
	r.players.Set(float64(st.PlayerCount))
	r.maxPlayers.Set(float64(st.MaxPlayerCount))
	for _, p := range st.Players {
		r.ping.Observe(float64(p.Ping))
		r.loss.Observe(float64(p.Loss))
	}
}

// ObserveError records a failed status query. Parse failures are also counted
// by field.
func (r *Recorder) ObserveError(err error) {
	field, ok := status.FailedField(err)
	if !ok {
		r.parses.WithLabelValues("rcon_error").Inc()
		return
	}
	r.parses.WithLabelValues("parse_error").Inc()
	r.failures.WithLabelValues(string(field)).Inc()
}

func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Serve exposes /metrics on addr until ctx is done.
func (r *Recorder) Serve(ctx context.Context, addr string, logger *logx.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("metrics listener started", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
