package admin

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the server's Prometheus collectors. Labels are bounded:
// opcode names, phase names and disconnect reasons only, never player data.
// A nil *Metrics records nothing.
type Metrics struct {
	reg *prometheus.Registry

	tickDuration  prometheus.Histogram
	phaseDuration *prometheus.HistogramVec
	players       prometheus.Gauge
	enemies       prometheus.Gauge
	messages      *prometheus.CounterVec
	disconnects   *prometheus.CounterVec
	snapshots     prometheus.Counter
	kills         prometheus.Counter
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	f := promauto.With(reg)
	return &Metrics{
		reg: reg,
		tickDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "sphered_tick_duration_seconds",
			Help:    "Time spent in one server tick",
			Buckets: []float64{0.0005, 0.001, 0.002, 0.004, 0.008, 0.016, 0.05},
		}),
		phaseDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sphered_phase_duration_seconds",
			Help:    "Time spent in each tick phase",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.002, 0.004, 0.008},
		}, []string{"phase"}),
		players: f.NewGauge(prometheus.GaugeOpts{
			Name: "sphered_players",
			Help: "Connected players",
		}),
		enemies: f.NewGauge(prometheus.GaugeOpts{
			Name: "sphered_enemies",
			Help: "Living enemies in the current region",
		}),
		messages: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sphered_messages_total",
			Help: "Client messages dispatched",
		}, []string{"opcode"}),
		disconnects: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sphered_disconnects_total",
			Help: "Player disconnects",
		}, []string{"reason"}), // closed, timeout, malformed, rate_limit, left
		snapshots: f.NewCounter(prometheus.CounterOpts{
			Name: "sphered_snapshots_total",
			Help: "World snapshots broadcast",
		}),
		kills: f.NewCounter(prometheus.CounterOpts{
			Name: "sphered_enemy_kills_total",
			Help: "Enemies killed",
		}),
	}
}

// Registry is the collector registry served on /metrics.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

func (m *Metrics) ObserveTick(d time.Duration) {
	if m == nil {
		return
	}
	m.tickDuration.Observe(d.Seconds())
}

func (m *Metrics) ObservePhase(phase string, d time.Duration) {
	if m == nil {
		return
	}
	m.phaseDuration.WithLabelValues(phase).Observe(d.Seconds())
}

func (m *Metrics) SetPlayers(n int) {
	if m == nil {
		return
	}
	m.players.Set(float64(n))
}

func (m *Metrics) SetEnemies(n int) {
	if m == nil {
		return
	}
	m.enemies.Set(float64(n))
}

func (m *Metrics) MessageHandled(opcode string) {
	if m == nil {
		return
	}
	m.messages.WithLabelValues(opcode).Inc()
}

func (m *Metrics) Disconnected(reason string) {
	if m == nil {
		return
	}
	m.disconnects.WithLabelValues(reason).Inc()
}

func (m *Metrics) SnapshotSent() {
	if m == nil {
		return
	}
	m.snapshots.Inc()
}

func (m *Metrics) EnemyKilled() {
	if m == nil {
		return
	}
	m.kills.Inc()
}
