// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package indexer

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// metricsNamespace prefixes every metric of the client.
	metricsNamespace = "bchsweep"

	// metricsSubsystem groups the indexer metrics.
	metricsSubsystem = "indexer"

	// statusError labels requests that received no HTTP response.
	statusError = "error"
)

// metrics holds the request collectors of a client. A nil *metrics records
// nothing.
type metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// newMetrics creates the request collectors and registers them with reg. If
// the collectors are already registered, for example by another client
// sharing the registry, the registered ones are reused.
func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: metricsSubsystem,
		Name:      "requests_total",
		Help:      "Number of indexer requests by operation and status.",
	}, []string{"op", "status"})

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Subsystem: metricsSubsystem,
		Name:      "request_duration_seconds",
		Help:      "Latency of indexer requests by operation.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"op"})

	var err error
	if requests, err = register(reg, requests); err != nil {
		return nil, err
	}
	if duration, err = register(reg, duration); err != nil {
		return nil, err
	}

	return &metrics{requests: requests, duration: duration}, nil
}

// register registers c with reg, returning the already registered collector
// if an equal one exists.
func register[C prometheus.Collector](reg prometheus.Registerer,
	c C) (C, error) {

	err := reg.Register(c)
	if err == nil {
		return c, nil
	}

	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing, nil
		}
	}

	return c, err
}

// observe records a finished request. A status of zero means no response was
// received.
func (m *metrics) observe(op string, status int, start time.Time) {
	if m == nil {
		return
	}

	label := statusError
	if status != 0 {
		label = strconv.Itoa(status)
	}

	m.requests.WithLabelValues(op, label).Inc()
	m.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
