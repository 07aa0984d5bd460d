// Copyright 2025 Author(s) of MCP Any
// SPDX-License-Identifier: Apache-2.0

// Package metrics records call counts and latencies through armon/go-metrics
// with an in-memory or Prometheus sink.
package metrics

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/armon/go-metrics"
	"github.com/armon/go-metrics/prometheus"
	"github.com/mcpany/fdaclient/pkg/appconsts"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Sink names accepted by Initialize.
const (
	SinkNone       = "none"
	SinkInmem      = "inmem"
	SinkPrometheus = "prometheus"
)

var (
	mu    sync.Mutex
	inmem *metrics.InmemSink

	promOnce sync.Once
	promSink *prometheus.PrometheusSink
	promErr  error
)

// NewPrometheusSink returns the process-wide Prometheus sink. The sink
// registers itself with the default registry, so it is created only once.
func NewPrometheusSink() (*prometheus.PrometheusSink, error) {
	promOnce.Do(func() {
		promSink, promErr = prometheus.NewPrometheusSink()
	})
	return promSink, promErr
}

// Initialize installs the global metrics collector backed by the named sink.
// It may be called again to switch sinks.
func Initialize(sink string) error {
	var s metrics.MetricSink
	var mem *metrics.InmemSink
	switch sink {
	case "", SinkNone:
		s = &metrics.BlackholeSink{}
	case SinkInmem:
		mem = metrics.NewInmemSink(10*time.Second, time.Minute)
		s = mem
	case SinkPrometheus:
		p, err := NewPrometheusSink()
		if err != nil {
			return fmt.Errorf("failed to create prometheus sink: %w", err)
		}
		s = p
	default:
		return fmt.Errorf("unknown metrics sink %q", sink)
	}

	conf := metrics.DefaultConfig(appconsts.Name)
	conf.EnableHostname = false
	conf.EnableRuntimeMetrics = false
	if _, err := metrics.NewGlobal(conf, s); err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}

	mu.Lock()
	inmem = mem
	mu.Unlock()
	return nil
}

// Handler returns an http.Handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// StartServer serves /metrics on addr in the background. The listener is
// opened before returning so address errors surface immediately.
func StartServer(addr string) (*http.Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	server := &http.Server{
		Addr:              ln.Addr().String(),
		Handler:           mux,
		ReadHeaderTimeout: 3 * time.Second,
	}
	go func() {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Printf("metrics server stopped: %v\n", err)
		}
	}()
	return server, nil
}

// SetGauge sets the value of a gauge labelled with the endpoint it
// describes.
func SetGauge(name string, val float32, endpoint string) {
	metrics.SetGaugeWithLabels([]string{name}, val, []metrics.Label{
		{Name: "endpoint", Value: endpoint},
	})
}

// IncrCounter increments a counter.
func IncrCounter(name []string, val float32, labels ...metrics.Label) {
	metrics.IncrCounterWithLabels(name, val, labels)
}

// MeasureSince measures the time since a given start time and records it.
func MeasureSince(name []string, start time.Time, labels ...metrics.Label) {
	metrics.MeasureSinceWithLabels(name, start, labels)
}

// ObserveCall records the outcome and latency of one tool call.
func ObserveCall(tool string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	IncrCounter([]string{"tool_call", "total"}, 1,
		metrics.Label{Name: "tool", Value: tool},
		metrics.Label{Name: "outcome", Value: outcome})
	MeasureSince([]string{"tool_call", "latency"}, start, metrics.Label{Name: "tool", Value: tool})
}

// WriteSummary prints the counters and timers held by the in-memory sink.
// It writes nothing when another sink is installed.
func WriteSummary(w io.Writer) {
	mu.Lock()
	mem := inmem
	mu.Unlock()
	if mem == nil {
		return
	}

	type line struct{ key, text string }
	var lines []line
	for _, interval := range mem.Data() {
		interval.RLock()
		for k, c := range interval.Counters {
			lines = append(lines, line{k, fmt.Sprintf("%s count=%d", k, c.AggregateSample.Count)})
		}
		for k, s := range interval.Samples {
			lines = append(lines, line{k, fmt.Sprintf("%s count=%d mean=%.2fms max=%.2fms", k, s.AggregateSample.Count, s.AggregateSample.Mean(), s.AggregateSample.Max)})
		}
		for k, g := range interval.Gauges {
			lines = append(lines, line{k, fmt.Sprintf("%s value=%g", k, g.Value)})
		}
		interval.RUnlock()
	}
	if len(lines) == 0 {
		return
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].text < lines[j].text })

	_, _ = fmt.Fprintln(w, "Metrics:")
	for _, l := range lines {
		_, _ = fmt.Fprintf(w, "   %s\n", l.text)
	}
}
