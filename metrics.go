// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package simcir

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors updated by the propagation engine.
// A nil *Metrics is valid and records nothing.
//
type Metrics struct {
	ValueChanges     *prometheus.CounterVec
	Cascades         prometheus.Counter
	CascadeSteps     prometheus.Histogram
	LoopsDetected    prometheus.Counter
	Devices          prometheus.Gauge
	DroppedConnector prometheus.Counter
	TimerFires       prometheus.Counter
}

// NewMetrics creates the engine collectors and registers them with reg.
//
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ValueChanges: f.NewCounterVec(prometheus.CounterOpts{
			Name: "simcir_value_changes_total",
			Help: "Number of node value changes, by node kind.",
		}, []string{"kind"}),
		Cascades: f.NewCounter(prometheus.CounterOpts{
			Name: "simcir_cascades_total",
			Help: "Number of propagation cascades run to completion or aborted.",
		}),
		CascadeSteps: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "simcir_cascade_steps",
			Help:    "Device evaluations per propagation cascade.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
		LoopsDetected: f.NewCounter(prometheus.CounterOpts{
			Name: "simcir_loops_detected_total",
			Help: "Number of cascades aborted because they did not settle.",
		}),
		Devices: f.NewGauge(prometheus.GaugeOpts{
			Name: "simcir_devices",
			Help: "Number of live devices, composite internals included.",
		}),
		DroppedConnector: f.NewCounter(prometheus.CounterOpts{
			Name: "simcir_connectors_dropped_total",
			Help: "Number of definition connectors skipped because they could not be resolved.",
		}),
		TimerFires: f.NewCounter(prometheus.CounterOpts{
			Name: "simcir_timer_fires_total",
			Help: "Number of device timer callbacks run.",
		}),
	}
}

func (m *Metrics) valueChanged(k NodeKind) {
	if m == nil {
		return
	}
	m.ValueChanges.WithLabelValues(k.String()).Inc()
}

func (m *Metrics) cascade(steps int, loop bool) {
	if m == nil {
		return
	}
	m.Cascades.Inc()
	m.CascadeSteps.Observe(float64(steps))
	if loop {
		m.LoopsDetected.Inc()
	}
}

func (m *Metrics) deviceCount(delta int) {
	if m == nil {
		return
	}
	m.Devices.Add(float64(delta))
}

func (m *Metrics) dropped(n int) {
	if m == nil || n == 0 {
		return
	}
	m.DroppedConnector.Add(float64(n))
}

func (m *Metrics) timerFired() {
	if m == nil {
		return
	}
	m.TimerFires.Inc()
}
