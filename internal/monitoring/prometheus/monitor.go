// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package prometheus

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/datasektionen/hive/internal/logging"
	"github.com/datasektionen/hive/internal/monitoring"
)

// Monitor is the prometheus-backed implementation of monitoring.MonitorInterface.
// It exposes a single response-time histogram with a fixed label set
// (method, path, status), registered once in NewMonitor; the series for a
// given combination of label values is created on first use.
type Monitor struct {
	service string

	responseTime *prometheus.HistogramVec

	logger logging.LoggerInterface
}

func (m *Monitor) GetService() string {
	return m.service
}

func (m *Monitor) GetResponseTimeMetric(labels map[string]string) (monitoring.MetricInterface, error) {
	names := make([]string, 0, len(labels))
	values := make(prometheus.Labels, len(labels))

	for k, v := range labels {
		names = append(names, k)
		values[k] = v
	}

	observer, err := m.responseTime.GetMetricWith(values)
	if err != nil {
		return nil, fmt.Errorf("unable to get response time metric: %w", err)
	}

	return &metric{observer: observer}, nil
}

type metric struct {
	observer prometheus.Observer
}

func (m *metric) Observe(v float64) {
	m.observer.Observe(v)
}

// NewMonitor registers a fresh histogram under the `hive` namespace and
// returns a Monitor wired to it.
func NewMonitor(service string, logger logging.LoggerInterface) *Monitor {
	m := new(Monitor)

	m.service = service
	m.logger = logger

	m.responseTime = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hive",
			Name:      "http_response_time_seconds",
			Help:      "Response time of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	if err := prometheus.Register(m.responseTime); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			m.responseTime = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			logger.Errorf("unable to register response time metric: %v", err)
		}
	}

	return m
}
