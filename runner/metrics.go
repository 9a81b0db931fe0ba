// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package runner

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	executions *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	retries    prometheus.Counter
}

// newMetrics builds the runner's collectors and registers them with reg
// when it is not nil.
func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		executions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storeio",
			Subsystem: "runner",
			Name:      "executions_total",
			Help:      "Computations executed, by effect and outcome.",
		}, []string{"effect", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "storeio",
			Subsystem: "runner",
			Name:      "execution_seconds",
			Help:      "Wall time of computations including retries, by effect.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"effect"}),
		retries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storeio",
			Subsystem: "runner",
			Name:      "write_retries_total",
			Help:      "Write executions re-run after a commit conflict.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.executions, m.duration, m.retries)
	}
	return m
}

func (m *metrics) observe(effect string, err error, elapsed time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.executions.WithLabelValues(effect, outcome).Inc()
	m.duration.WithLabelValues(effect).Observe(elapsed.Seconds())
}
