package prometheus

import (
	"testing"
	"time"

	"github.com/Layr-Labs/txguard/internal/metrics/metricsTypes"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func Test_PrometheusMetricsClient(t *testing.T) {
	l := zap.NewNop()

	t.Run("Should register every configured metric with a valid name", func(t *testing.T) {
		client, err := NewPrometheusMetricsClient(&PrometheusMetricsConfig{
			Metrics: metricsTypes.MetricTypes,
		}, l)
		assert.Nil(t, err)

		err = client.Incr(metricsTypes.Metric_Incr_Verdict, []metricsTypes.MetricsLabel{
			{Name: "stage", Value: "rules"},
			{Name: "approved", Value: "false"},
		}, 2)
		assert.Nil(t, err)

		counter := client.counters[metricsTypes.Metric_Incr_Verdict].WithLabelValues("rules", "false")
		assert.Equal(t, float64(2), testutil.ToFloat64(counter))

		assert.Nil(t, client.Gauge(metricsTypes.Metric_Gauge_SupportedChains, 4, nil))
		assert.Equal(t, float64(4), testutil.ToFloat64(client.gauges[metricsTypes.Metric_Gauge_SupportedChains].WithLabelValues()))

		assert.Nil(t, client.Timing(metricsTypes.Metric_Timing_SimulationDuration, 20*time.Millisecond, nil))
	})

	t.Run("Should report mismatched labels as an error", func(t *testing.T) {
		client, err := NewPrometheusMetricsClient(&PrometheusMetricsConfig{
			Metrics: metricsTypes.MetricTypes,
		}, l)
		assert.Nil(t, err)

		err = client.Incr(metricsTypes.Metric_Incr_Verdict, []metricsTypes.MetricsLabel{
			{Name: "unknown", Value: "x"},
		}, 1)
		assert.NotNil(t, err)
	})

	t.Run("Should ignore metrics that were never configured", func(t *testing.T) {
		client, err := NewPrometheusMetricsClient(&PrometheusMetricsConfig{}, l)
		assert.Nil(t, err)
		assert.Nil(t, client.Incr("missing", nil, 1))
	})

	t.Run("Should format statsd style names", func(t *testing.T) {
		assert.Equal(t, "txguard_rpc_http_request", formatMetricName(metricsTypes.Metric_Incr_HttpRequest))
	})
}
