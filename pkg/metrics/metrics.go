// Package metrics 提供基于 Prometheus 的指标采集
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wyfcoding/riskanalytics/pkg/logger"
)

// Metrics 指标集合
type Metrics struct {
	// HTTP 指标
	HTTPRequestTotal    *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// 业务指标
	VaRCalculationTotal    *prometheus.CounterVec
	ScenarioRunTotal       *prometheus.CounterVec
	RiskAlertTotal         *prometheus.CounterVec
	SimulationDuration     prometheus.Histogram
	ImpliedVolFailureTotal prometheus.Counter
}

// New 创建指标集合
func New(namespace string) *Metrics {
	return &Metrics{
		HTTPRequestTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		VaRCalculationTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "var_calculations_total",
				Help:      "Total number of VaR calculations by method",
			},
			[]string{"method"},
		),
		ScenarioRunTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "scenario_runs_total",
				Help:      "Total number of stress scenario runs by type",
			},
			[]string{"type"},
		),
		RiskAlertTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "risk_alerts_total",
				Help:      "Total number of risk limit alerts by severity",
			},
			[]string{"severity"},
		),
		SimulationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "monte_carlo_simulation_duration_seconds",
				Help:      "Monte Carlo simulation duration in seconds",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
		),
		ImpliedVolFailureTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "implied_vol_failures_total",
				Help:      "Total number of implied volatility solver failures",
			},
		),
	}
}

// Register 注册所有指标
func (m *Metrics) Register() error {
	collectors := []prometheus.Collector{
		m.HTTPRequestTotal,
		m.HTTPRequestDuration,
		m.VaRCalculationTotal,
		m.ScenarioRunTotal,
		m.RiskAlertTotal,
		m.SimulationDuration,
		m.ImpliedVolFailureTotal,
	}
	for _, c := range collectors {
		if err := prometheus.Register(c); err != nil {
			return fmt.Errorf("failed to register collector: %w", err)
		}
	}
	return nil
}

// ObserveHTTPRequest 记录一次 HTTP 请求
func (m *Metrics) ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	m.HTTPRequestTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// StartHTTPServer 启动指标 HTTP 服务
func StartHTTPServer(port int) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info(context.Background(), "Metrics server starting", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error(context.Background(), "Metrics server failed", "error", err)
		}
	}()

	return srv
}
