// Package metrics exposes Prometheus collectors for widget activity.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	mutations      *prometheus.CounterVec
	dialogMessages *prometheus.CounterVec
	dialogOpens    *prometheus.CounterVec
	importFailures prometheus.Counter
	flushes        *prometheus.CounterVec
}

// MustNew registers the collectors with reg (the default registerer when nil).
// Registering twice reuses the existing collectors.
func MustNew(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "persona",
			Subsystem: "widget",
			Name:      "mutations_total",
			Help:      "Mutations applied to the widget state.",
		}, []string{"op"}),
		dialogMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "persona",
			Subsystem: "dialog",
			Name:      "messages_total",
			Help:      "Inbound dialog messages by type and outcome.",
		}, []string{"type", "outcome"}),
		dialogOpens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "persona",
			Subsystem: "dialog",
			Name:      "opens_total",
			Help:      "Dialogs opened by kind.",
		}, []string{"kind"}),
		importFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "persona",
			Subsystem: "transfer",
			Name:      "import_failures_total",
			Help:      "Imports rejected as malformed.",
		}),
		flushes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "persona",
			Subsystem: "store",
			Name:      "flushes_total",
			Help:      "Document flushes by outcome.",
		}, []string{"outcome"}),
	}
	m.mutations = register(reg, m.mutations)
	m.dialogMessages = register(reg, m.dialogMessages)
	m.dialogOpens = register(reg, m.dialogOpens)
	m.importFailures = register(reg, m.importFailures)
	m.flushes = register(reg, m.flushes)
	return m
}

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

func (m *Metrics) Mutation(op string) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(op).Inc()
}

func (m *Metrics) DialogMessage(msgType, outcome string) {
	if m == nil {
		return
	}
	m.dialogMessages.WithLabelValues(msgType, outcome).Inc()
}

func (m *Metrics) DialogOpened(kind string) {
	if m == nil {
		return
	}
	m.dialogOpens.WithLabelValues(kind).Inc()
}

func (m *Metrics) ImportFailed() {
	if m == nil {
		return
	}
	m.importFailures.Inc()
}

func (m *Metrics) Flush(err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.flushes.WithLabelValues(outcome).Inc()
}
