package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricPrefix = "solarlog_"

// Agent holds the agent's collectors on its own registry.
type Agent struct {
	Registry *prometheus.Registry

	reports       *prometheus.CounterVec
	reportLatency prometheus.Histogram
	skipped       prometheus.Counter
	reconnects    prometheus.Counter
	linkUp        prometheus.Gauge
	lastReport    prometheus.Gauge
}

func NewAgent() *Agent {
	m := &Agent{
		Registry: prometheus.NewRegistry(),
		reports: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "reports_total",
				Help: "Report attempts by reason, none means delivered",
			},
			[]string{"reason"},
		),
		reportLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    metricPrefix + "report_latency_seconds",
			Help:    "Report exchange latency in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "reports_skipped_total",
			Help: "Due reports skipped because the link was down",
		}),
		reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "reconnect_attempts_total",
			Help: "Link reconnect attempts",
		}),
		linkUp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "link_up",
			Help: "1 when the link is connected",
		}),
		lastReport: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "last_report_timestamp_seconds",
			Help: "Unix time of the last report attempt",
		}),
	}
	m.Registry.MustRegister(m.reports, m.reportLatency, m.skipped, m.reconnects, m.linkUp, m.lastReport)
	return m
}

func (m *Agent) ObserveReport(reason string, latency time.Duration, at time.Time) {
	m.reports.WithLabelValues(reason).Inc()
	m.reportLatency.Observe(latency.Seconds())
	m.lastReport.Set(float64(at.Unix()))
}

func (m *Agent) ReportSkipped() { m.skipped.Inc() }

func (m *Agent) ReconnectAttempt() { m.reconnects.Inc() }

func (m *Agent) SetLinkUp(up bool) {
	if up {
		m.linkUp.Set(1)
	} else {
		m.linkUp.Set(0)
	}
}

// Collector holds the collector's collectors.
type Collector struct {
	Registry *prometheus.Registry

	received *prometheus.CounterVec
}

func NewCollector() *Collector {
	m := &Collector{
		Registry: prometheus.NewRegistry(),
		received: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "collector_entries_total",
				Help: "Received log posts by result",
			},
			[]string{"result"},
		),
	}
	m.Registry.MustRegister(m.received)
	return m
}

func (m *Collector) Received(result string) { m.received.WithLabelValues(result).Inc() }
