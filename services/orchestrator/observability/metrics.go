// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package observability provides metrics and instrumentation for the orchestrator.
//
// # Description
//
// This package implements Prometheus metrics for monitoring query
// orchestration. Metrics include:
//   - Query counters (by terminal state)
//   - Model call counters (by backend)
//   - Tool execution counters (by tool, status)
//   - Round-count and latency histograms
//
// # Integration
//
// Metrics are exposed via /metrics endpoint. Use with Prometheus + Grafana
// for dashboards and alerting.
//
// # Thread Safety
//
// All metric operations are thread-safe via Prometheus's internal locking.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// Metric Definitions
// =============================================================================

// Namespace for all metrics
const metricsNamespace = "coursecompass"

// Subsystem for query orchestration metrics
const querySubsystem = "query"

// QueryMetrics holds all Prometheus metrics for query orchestration.
//
// # Description
//
// Provides counters and histograms for monitoring the tool-calling loop and
// retrieval performance. Initialize once at startup via InitMetrics().
//
// # Thread Safety
//
// All operations are thread-safe.
type QueryMetrics struct {
	// QueriesTotal counts queries by terminal state.
	// Labels: state (answered, round_cap_reached, failed)
	QueriesTotal *prometheus.CounterVec

	// ModelCallsTotal counts LLM invocations by backend.
	// Labels: backend (anthropic, openai)
	ModelCallsTotal *prometheus.CounterVec

	// ToolExecutionsTotal counts tool dispatches by tool name and outcome.
	// Labels: tool, status (ok, unknown)
	ToolExecutionsTotal *prometheus.CounterVec

	// ToolRoundsPerQuery measures tool batches executed per query.
	ToolRoundsPerQuery prometheus.Histogram

	// QueryDurationSeconds measures end-to-end query duration.
	// Labels: state (answered, round_cap_reached, failed)
	QueryDurationSeconds *prometheus.HistogramVec

	// IngestedChunksTotal counts content chunks written to the index.
	IngestedChunksTotal prometheus.Counter
}

// DefaultMetrics is the singleton instance of QueryMetrics.
// Initialized by InitMetrics(); nil until then, and the package-level
// recording helpers treat nil as a no-op so library code and tests never
// need the registry.
var DefaultMetrics *QueryMetrics

// InitMetrics initializes the default metrics instance.
//
// # Description
//
// Creates and registers all Prometheus metrics. Should be called once
// at application startup, after Prometheus registry is available.
//
// # Limitations
//
//   - Panics if called twice (duplicate registration).
func InitMetrics() *QueryMetrics {
	DefaultMetrics = &QueryMetrics{
		QueriesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: querySubsystem,
				Name:      "queries_total",
				Help:      "Total queries by terminal state",
			},
			[]string{"state"},
		),

		ModelCallsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: querySubsystem,
				Name:      "model_calls_total",
				Help:      "Total LLM invocations by backend",
			},
			[]string{"backend"},
		),

		ToolExecutionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: querySubsystem,
				Name:      "tool_executions_total",
				Help:      "Total tool dispatches by tool name and outcome",
			},
			[]string{"tool", "status"},
		),

		ToolRoundsPerQuery: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: querySubsystem,
				Name:      "tool_rounds_per_query",
				Help:      "Tool batches executed per query",
				Buckets:   []float64{0, 1, 2},
			},
		),

		QueryDurationSeconds: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: querySubsystem,
				Name:      "duration_seconds",
				Help:      "End-to-end query duration in seconds",
				Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"state"},
		),

		IngestedChunksTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "ingest",
				Name:      "chunks_total",
				Help:      "Total content chunks written to the index",
			},
		),
	}

	return DefaultMetrics
}

// =============================================================================
// Recording Helpers
// =============================================================================

// RecordQuery records a completed query.
//
// # Inputs
//
//   - state: Terminal state label (answered, round_cap_reached, failed).
//   - seconds: End-to-end duration.
//   - toolRounds: Number of tool batches executed.
func RecordQuery(state string, seconds float64, toolRounds int) {
	if DefaultMetrics == nil {
		return
	}
	DefaultMetrics.QueriesTotal.WithLabelValues(state).Inc()
	DefaultMetrics.QueryDurationSeconds.WithLabelValues(state).Observe(seconds)
	DefaultMetrics.ToolRoundsPerQuery.Observe(float64(toolRounds))
}

// RecordModelCall counts one LLM invocation.
func RecordModelCall(backend string) {
	if DefaultMetrics == nil {
		return
	}
	DefaultMetrics.ModelCallsTotal.WithLabelValues(backend).Inc()
}

// RecordToolExecution counts one tool dispatch. known is false for
// dispatches to names no tool declared.
func RecordToolExecution(tool string, known bool) {
	if DefaultMetrics == nil {
		return
	}
	status := "ok"
	if !known {
		status = "unknown"
	}
	DefaultMetrics.ToolExecutionsTotal.WithLabelValues(tool, status).Inc()
}

// RecordIngestedChunks counts chunks written during ingestion.
func RecordIngestedChunks(n int) {
	if DefaultMetrics == nil {
		return
	}
	DefaultMetrics.IngestedChunksTotal.Add(float64(n))
}
