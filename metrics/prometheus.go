package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	promNamespace = "throttlify"

	promCommandSubsystem  = "command"
	promThrottleSubsystem = "throttle"
)

type prometheusRec struct {
	// Metrics.
	cmdExecutionDuration  *prometheus.HistogramVec
	throttleAdmissionWait *prometheus.HistogramVec
	throttleQueued        *prometheus.CounterVec
	throttleReleased      *prometheus.CounterVec
	throttleSlotsInUse    *prometheus.GaugeVec

	id  string
	reg prometheus.Registerer
}

// NewPrometheusRecorder returns a new Recorder that knows how to measure
// using Prometheus kind metrics.
func NewPrometheusRecorder(reg prometheus.Registerer) Recorder {
	p := &prometheusRec{
		reg: reg,
	}

	p.registerMetrics()
	return p
}

func (p prometheusRec) WithID(id string) Recorder {
	return &prometheusRec{
		cmdExecutionDuration:  p.cmdExecutionDuration,
		throttleAdmissionWait: p.throttleAdmissionWait,
		throttleQueued:        p.throttleQueued,
		throttleReleased:      p.throttleReleased,
		throttleSlotsInUse:    p.throttleSlotsInUse,

		id:  id,
		reg: p.reg,
	}
}

func (p *prometheusRec) registerMetrics() {
	p.cmdExecutionDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: promNamespace,
		Subsystem: promCommandSubsystem,
		Name:      "execution_duration_seconds",
		Help:      "The duration of the command execution in seconds.",
	}, []string{"id", "success"})

	p.throttleAdmissionWait = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: promNamespace,
		Subsystem: promThrottleSubsystem,
		Name:      "admission_wait_duration_seconds",
		Help:      "The time a call waited on the throttle gates before being admitted.",
	}, []string{"id"})

	p.throttleQueued = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: promNamespace,
		Subsystem: promThrottleSubsystem,
		Name:      "queued_total",
		Help:      "Total number of calls queued on a throttle gate.",
	}, []string{"id", "gate"})

	p.throttleReleased = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: promNamespace,
		Subsystem: promThrottleSubsystem,
		Name:      "released_total",
		Help:      "Total number of slots released on a throttle gate.",
	}, []string{"id", "gate"})

	p.throttleSlotsInUse = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: promNamespace,
		Subsystem: promThrottleSubsystem,
		Name:      "slots_in_use",
		Help:      "The number of slots currently held on a throttle gate.",
	}, []string{"id", "gate"})

	p.reg.MustRegister(p.cmdExecutionDuration,
		p.throttleAdmissionWait,
		p.throttleQueued,
		p.throttleReleased,
		p.throttleSlotsInUse,
	)
}

func (p prometheusRec) ObserveCommandExecution(start time.Time, success bool) {
	secs := time.Since(start).Seconds()
	p.cmdExecutionDuration.WithLabelValues(p.id, fmt.Sprintf("%t", success)).Observe(secs)
}

func (p prometheusRec) ObserveThrottleAdmissionWait(start time.Time) {
	p.throttleAdmissionWait.WithLabelValues(p.id).Observe(time.Since(start).Seconds())
}

func (p prometheusRec) IncThrottleQueued(gate string) {
	p.throttleQueued.WithLabelValues(p.id, gate).Inc()
}

func (p prometheusRec) IncThrottleReleased(gate string) {
	p.throttleReleased.WithLabelValues(p.id, gate).Inc()
}

func (p prometheusRec) SetThrottleSlotsInUse(gate string, quantity int) {
	p.throttleSlotsInUse.WithLabelValues(p.id, gate).Set(float64(quantity))
}
