// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

// ============================================================================
// Test Helper: Create isolated metrics for testing
// ============================================================================

// newTestMetrics creates a QueryMetrics instance with a custom registry.
// This avoids conflicts with the global Prometheus registry and allows
// parallel testing.
func newTestMetrics(t *testing.T) *QueryMetrics {
	t.Helper()

	reg := prometheus.NewRegistry()

	m := &QueryMetrics{
		QueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: querySubsystem,
				Name:      "queries_total",
				Help:      "Total queries by terminal state",
			},
			[]string{"state"},
		),
		ModelCallsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: querySubsystem,
				Name:      "model_calls_total",
				Help:      "Total LLM invocations by backend",
			},
			[]string{"backend"},
		),
		ToolExecutionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: querySubsystem,
				Name:      "tool_executions_total",
				Help:      "Total tool dispatches by tool name and outcome",
			},
			[]string{"tool", "status"},
		),
		ToolRoundsPerQuery: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: querySubsystem,
				Name:      "tool_rounds_per_query",
				Help:      "Tool batches executed per query",
				Buckets:   []float64{0, 1, 2},
			},
		),
		QueryDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: querySubsystem,
				Name:      "duration_seconds",
				Help:      "End-to-end query duration in seconds",
				Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"state"},
		),
		IngestedChunksTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "ingest",
				Name:      "chunks_total",
				Help:      "Total content chunks written to the index",
			},
		),
	}

	reg.MustRegister(m.QueriesTotal, m.ModelCallsTotal, m.ToolExecutionsTotal,
		m.ToolRoundsPerQuery, m.QueryDurationSeconds, m.IngestedChunksTotal)
	return m
}

// withMetrics swaps DefaultMetrics for the test and restores it after.
func withMetrics(t *testing.T, m *QueryMetrics) {
	t.Helper()
	old := DefaultMetrics
	DefaultMetrics = m
	t.Cleanup(func() { DefaultMetrics = old })
}

func TestRecordQuery(t *testing.T) {
	withMetrics(t, newTestMetrics(t))

	RecordQuery("answered", 1.2, 2)
	RecordQuery("answered", 0.4, 0)
	RecordQuery("round_cap_reached", 3.0, 2)

	assert.Equal(t, 2.0, testutil.ToFloat64(
		DefaultMetrics.QueriesTotal.WithLabelValues("answered")))
	assert.Equal(t, 1.0, testutil.ToFloat64(
		DefaultMetrics.QueriesTotal.WithLabelValues("round_cap_reached")))
}

func TestRecordToolExecution(t *testing.T) {
	withMetrics(t, newTestMetrics(t))

	RecordToolExecution("search_course_content", true)
	RecordToolExecution("search_course_content", true)
	RecordToolExecution("bogus_tool", false)

	assert.Equal(t, 2.0, testutil.ToFloat64(
		DefaultMetrics.ToolExecutionsTotal.WithLabelValues("search_course_content", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(
		DefaultMetrics.ToolExecutionsTotal.WithLabelValues("bogus_tool", "unknown")))
}

func TestRecordingWithoutInitIsNoOp(t *testing.T) {
	withMetrics(t, nil)

	// Must not panic when metrics were never initialized.
	RecordQuery("answered", 1.0, 1)
	RecordModelCall("anthropic")
	RecordToolExecution("search_course_content", true)
	RecordIngestedChunks(10)
}
