package koop

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const metricsNamespace = "koop"

// Metrics - метрики сервиса в отдельном реестре.
type Metrics struct {
	registry *prometheus.Registry

	bootTime       prometheus.Gauge
	editorSessions prometheus.Gauge
	editorExports  *prometheus.CounterVec
	captchaReplays prometheus.Counter
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		bootTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "boot_time",
			Help:      "Server startup time",
		}),
		editorSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "editor_sessions",
			Help:      "Open live editor sessions",
		}),
		editorExports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "editor_exports_total",
			Help:      "Editor exports by result",
		}, []string{"result"}),
		captchaReplays: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "captcha_replica_attacks_total",
			Help:      "Total count of duplicated signatures in requests with captcha",
		}),
	}
	m.bootTime.Set(float64(time.Now().UnixMilli()))

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.bootTime,
		m.editorSessions,
		m.editorExports,
		m.captchaReplays,
	)
	return m
}

func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  metricsNamespace,
		Registerer: m.registry,
	})
}

func (m *Metrics) Handler() echo.HandlerFunc {
	return echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: m.registry,
	})
}

func (m *Metrics) exportResult(err error) {
	if err != nil {
		m.editorExports.WithLabelValues("error").Inc()
		return
	}
	m.editorExports.WithLabelValues("ok").Inc()
}
