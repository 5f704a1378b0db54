package metricsTypes

import "time"

type IMetricsClient interface {
	Incr(name string, labels []MetricsLabel, value float64) error
	Gauge(name string, value float64, labels []MetricsLabel) error
	Timing(name string, value time.Duration, labels []MetricsLabel) error
}

type MetricsLabel struct {
	Name  string
	Value string
}

type MetricsType string

var (
	MetricsType_Incr   MetricsType = "incr"
	MetricsType_Gauge  MetricsType = "gauge"
	MetricsType_Timing MetricsType = "timing"
)

type MetricsTypeConfig struct {
	Name   string
	Labels []string
}

var (
	Metric_Incr_Verdict          = "verdict"
	Metric_Incr_DecodeResult     = "decode.result"
	Metric_Incr_SimulationResult = "simulation.result"
	Metric_Incr_HttpRequest      = "rpc.http.request"

	Metric_Gauge_SupportedChains = "addressBook.supportedChains"

	Metric_Timing_AuthorizeDuration  = "authorize.duration"
	Metric_Timing_SimulationDuration = "simulation.duration"
	Metric_Timing_HttpDuration       = "rpc.http.duration"
)

var MetricTypes = map[MetricsType][]MetricsTypeConfig{
	MetricsType_Incr: {
		MetricsTypeConfig{
			Name:   Metric_Incr_Verdict,
			Labels: []string{"stage", "approved"},
		},
		MetricsTypeConfig{
			Name:   Metric_Incr_DecodeResult,
			Labels: []string{"classification"},
		},
		MetricsTypeConfig{
			Name:   Metric_Incr_SimulationResult,
			Labels: []string{"status"},
		},
		MetricsTypeConfig{
			Name:   Metric_Incr_HttpRequest,
			Labels: []string{"path", "status"},
		},
	},
	MetricsType_Gauge: {
		MetricsTypeConfig{
			Name:   Metric_Gauge_SupportedChains,
			Labels: []string{},
		},
	},
	MetricsType_Timing: {
		MetricsTypeConfig{
			Name:   Metric_Timing_AuthorizeDuration,
			Labels: []string{"stage"},
		},
		MetricsTypeConfig{
			Name:   Metric_Timing_SimulationDuration,
			Labels: []string{},
		},
		MetricsTypeConfig{
			Name:   Metric_Timing_HttpDuration,
			Labels: []string{"path"},
		},
	},
}
