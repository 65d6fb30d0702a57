// Package metrics exposes Prometheus collectors for subscription spend and
// the scheduled pause trigger.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"subtrack/internal/core"
)

const namespace = "subtrack"

type Metrics struct {
	scheduledPausesApplied prometheus.Counter
	pauseCheckFailures     *prometheus.CounterVec
	monthlySpend           prometheus.Gauge
	activeSubscriptions    prometheus.Gauge
	categorySpend          *prometheus.GaugeVec
}

// MustNewMetrics registers the collectors with reg and panics on a
// registration error other than a duplicate. A nil reg uses the default
// registerer.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		scheduledPausesApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scheduled_pauses_applied_total",
			Help:      "Number of pause-at-renewal transitions applied.",
		}),
		pauseCheckFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pause_check_failures_total",
			Help:      "Number of failures while applying scheduled pauses.",
		}, []string{"stage"}),
		monthlySpend: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "monthly_spend",
			Help:      "Monthly equivalent of all active subscriptions.",
		}),
		activeSubscriptions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_subscriptions",
			Help:      "Number of active subscriptions.",
		}),
		categorySpend: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "category_monthly_spend",
			Help:      "Monthly equivalent per category.",
		}, []string{"category"}),
	}

	m.scheduledPausesApplied = register(reg, m.scheduledPausesApplied)
	m.pauseCheckFailures = register(reg, m.pauseCheckFailures)
	m.monthlySpend = register(reg, m.monthlySpend)
	m.activeSubscriptions = register(reg, m.activeSubscriptions)
	m.categorySpend = register(reg, m.categorySpend)
	return m
}

// register reuses an already registered collector of the same type.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

// IncScheduledPauseApplied counts one applied scheduled pause.
func (m *Metrics) IncScheduledPauseApplied() {
	if m == nil {
		return
	}
	m.scheduledPausesApplied.Inc()
}

// IncPauseCheckFailure counts a failure at the given stage (list, apply, reload).
func (m *Metrics) IncPauseCheckFailure(stage string) {
	if m == nil {
		return
	}
	m.pauseCheckFailures.WithLabelValues(stage).Inc()
}

// ObserveSnapshot sets the spend gauges from a snapshot.
func (m *Metrics) ObserveSnapshot(subs []core.Subscription, totals core.Totals) {
	if m == nil {
		return
	}
	active := 0
	for _, s := range subs {
		if s.Status == core.Active {
			active++
		}
	}
	m.activeSubscriptions.Set(float64(active))
	m.monthlySpend.Set(totals.Monthly)

	m.categorySpend.Reset()
	for cat, v := range totals.ByCategory {
		m.categorySpend.WithLabelValues(cat).Set(v)
	}
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
