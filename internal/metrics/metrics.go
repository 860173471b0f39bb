// Package metrics exposes the engine's Prometheus counters. A nil *Metrics is
// valid and records nothing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry            *prometheus.Registry
	shiftSaves          *prometheus.CounterVec
	loadFallbacks       prometheus.Counter
	cashbackRedemptions *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		shiftSaves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "caixa_shift_saves_total",
			Help: "Shift save attempts by result (saved, not_reconciled, error).",
		}, []string{"result"}),
		loadFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "caixa_snapshot_load_fallbacks_total",
			Help: "Stored values that were unreadable and replaced by defaults.",
		}),
		cashbackRedemptions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "caixa_cashback_redemptions_total",
			Help: "Cashback redemption attempts by result (accepted, refused).",
		}, []string{"result"}),
	}
	reg.MustRegister(
		m.shiftSaves,
		m.loadFallbacks,
		m.cashbackRedemptions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) ShiftSave(result string) {
	if m == nil {
		return
	}
	m.shiftSaves.WithLabelValues(result).Inc()
}

func (m *Metrics) SnapshotLoadFallback() {
	if m == nil {
		return
	}
	m.loadFallbacks.Inc()
}

func (m *Metrics) CashbackRedemption(accepted bool) {
	if m == nil {
		return
	}
	result := "refused"
	if accepted {
		result = "accepted"
	}
	m.cashbackRedemptions.WithLabelValues(result).Inc()
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
