package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"

	"github.com/throttlify/throttlify/metrics"
)

func TestPrometheus(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name          string
		recordMetrics func(metrics.Recorder)
		expMetrics    []string
	}{
		{
			name: "Recording command metrics should expose the metrics.",
			recordMetrics: func(m metrics.Recorder) {
				m1 := m.WithID("test")
				m2 := m.WithID("test2")
				m1.ObserveCommandExecution(now.Add(-450*time.Millisecond), true)
				m1.ObserveCommandExecution(now.Add(-50*time.Millisecond), false)
				m1.ObserveCommandExecution(now.Add(-2*time.Second), true)
				m2.ObserveCommandExecution(now.Add(-1200*time.Millisecond), false)
			},
			expMetrics: []string{
				`throttlify_command_execution_duration_seconds_bucket{id="test",success="false",le="0.05"} 0`,
				`throttlify_command_execution_duration_seconds_bucket{id="test",success="false",le="0.1"} 1`,
				`throttlify_command_execution_duration_seconds_count{id="test",success="false"} 1`,
				`throttlify_command_execution_duration_seconds_bucket{id="test",success="true",le="0.25"} 0`,
				`throttlify_command_execution_duration_seconds_bucket{id="test",success="true",le="0.5"} 1`,
				`throttlify_command_execution_duration_seconds_bucket{id="test",success="true",le="2.5"} 2`,
				`throttlify_command_execution_duration_seconds_count{id="test",success="true"} 2`,
				`throttlify_command_execution_duration_seconds_bucket{id="test2",success="false",le="1"} 0`,
				`throttlify_command_execution_duration_seconds_bucket{id="test2",success="false",le="2.5"} 1`,
				`throttlify_command_execution_duration_seconds_count{id="test2",success="false"} 1`,
			},
		},
		{
			name: "Recording throttle admission waits should expose the metrics.",
			recordMetrics: func(m metrics.Recorder) {
				m1 := m.WithID("test")
				m1.ObserveThrottleAdmissionWait(now.Add(-700 * time.Millisecond))
				m1.ObserveThrottleAdmissionWait(now.Add(-3 * time.Second))
			},
			expMetrics: []string{
				`throttlify_throttle_admission_wait_duration_seconds_bucket{id="test",le="0.5"} 0`,
				`throttlify_throttle_admission_wait_duration_seconds_bucket{id="test",le="1"} 1`,
				`throttlify_throttle_admission_wait_duration_seconds_bucket{id="test",le="5"} 2`,
				`throttlify_throttle_admission_wait_duration_seconds_count{id="test"} 2`,
			},
		},
		{
			name: "Recording throttle gate metrics should expose the metrics.",
			recordMetrics: func(m metrics.Recorder) {
				m1 := m.WithID("test")
				m2 := m.WithID("test2")
				m1.IncThrottleQueued("window")
				m1.IncThrottleQueued("window")
				m1.IncThrottleQueued("concurrency")
				m2.IncThrottleReleased("window")
				m1.SetThrottleSlotsInUse("window", 7)
				m1.SetThrottleSlotsInUse("window", 4)
				m2.SetThrottleSlotsInUse("concurrency", 2)
			},
			expMetrics: []string{
				`throttlify_throttle_queued_total{gate="concurrency",id="test"} 1`,
				`throttlify_throttle_queued_total{gate="window",id="test"} 2`,
				`throttlify_throttle_released_total{gate="window",id="test2"} 1`,
				`throttlify_throttle_slots_in_use{gate="window",id="test"} 4`,
				`throttlify_throttle_slots_in_use{gate="concurrency",id="test2"} 2`,
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert := assert.New(t)

			reg := prometheus.NewRegistry()
			p := metrics.NewPrometheusRecorder(reg)

			test.recordMetrics(p)

			// Get the metrics handler and serve.
			h := promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
			rec := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/metrics", nil)
			h.ServeHTTP(rec, req)

			resp := rec.Result()

			// Check all metrics are present.
			if assert.Equal(http.StatusOK, resp.StatusCode) {
				body, _ := io.ReadAll(resp.Body)
				for _, expMetric := range test.expMetrics {
					assert.Contains(string(body), expMetric, "metric not present on the result of metrics service")
				}
			}
		})
	}
}
