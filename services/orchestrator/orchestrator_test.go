// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package orchestrator

import (
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// =============================================================================
// Test Setup
// =============================================================================

func init() {
	// Set Gin to test mode to reduce noise in test output
	gin.SetMode(gin.TestMode)
}

// =============================================================================
// Config Tests
// =============================================================================

// TestApplyConfigDefaults_AllDefaults verifies default values are applied.
func TestApplyConfigDefaults_AllDefaults(t *testing.T) {
	cfg := Config{}

	result := applyConfigDefaults(cfg)

	assert.Equal(t, 12210, result.Port, "default port should be 12210")
	assert.Equal(t, "anthropic", result.LLMBackend, "default LLM backend should be anthropic")
	assert.Equal(t, "coursecompass-otel-collector:4317", result.OTelEndpoint,
		"default OTel endpoint should be coursecompass-otel-collector:4317")
	assert.False(t, result.DisableMetrics, "metrics should be enabled by default")
	assert.Equal(t, 2, result.MaxHistory, "default history cap should be 2 exchanges")
	assert.Equal(t, 10*time.Minute, result.SessionSweepInterval)
	assert.Equal(t, 2*time.Hour, result.SessionMaxIdle)
}

// TestApplyConfigDefaults_PreservesCustomValues verifies custom values are not overwritten.
func TestApplyConfigDefaults_PreservesCustomValues(t *testing.T) {
	cfg := Config{
		Port:          8080,
		LLMBackend:    "openai",
		OTelEndpoint:  "custom-collector:4317",
		WeaviateURL:   "http://weaviate:8080",
		MaxResults:    10,
		MaxHistory:    5,
		CourseDocsDir: "/data/courses",
	}

	result := applyConfigDefaults(cfg)

	assert.Equal(t, 8080, result.Port, "custom port should be preserved")
	assert.Equal(t, "openai", result.LLMBackend, "custom LLM backend should be preserved")
	assert.Equal(t, "custom-collector:4317", result.OTelEndpoint,
		"custom OTel endpoint should be preserved")
	assert.Equal(t, "http://weaviate:8080", result.WeaviateURL,
		"custom Weaviate URL should be preserved")
	assert.Equal(t, 10, result.MaxResults, "custom result cap should be preserved")
	assert.Equal(t, 5, result.MaxHistory, "custom history cap should be preserved")
	assert.Equal(t, "/data/courses", result.CourseDocsDir)
}

// TestApplyConfigDefaults_MaxResultsZeroSurvives verifies that an explicit
// zero result cap is not replaced by the default. Searches against such a
// store report a configuration error, and that surface must stay reachable.
func TestApplyConfigDefaults_MaxResultsZeroSurvives(t *testing.T) {
	result := applyConfigDefaults(Config{MaxResults: 0})
	assert.Equal(t, 0, result.MaxResults, "explicit zero must not be defaulted away")

	result = applyConfigDefaults(Config{MaxResults: -3})
	assert.Equal(t, 5, result.MaxResults, "negative values fall back to the default")
}

// =============================================================================
// Table-Driven Tests
// =============================================================================

// TestApplyConfigDefaults_TableDriven tests multiple config scenarios.
func TestApplyConfigDefaults_TableDriven(t *testing.T) {
	tests := []struct {
		name     string
		input    Config
		expected Config
	}{
		{
			name:  "empty config gets all defaults",
			input: Config{},
			expected: Config{
				Port:         12210,
				LLMBackend:   "anthropic",
				OTelEndpoint: "coursecompass-otel-collector:4317",
			},
		},
		{
			name: "custom port preserved",
			input: Config{
				Port: 8080,
			},
			expected: Config{
				Port:         8080,
				LLMBackend:   "anthropic",
				OTelEndpoint: "coursecompass-otel-collector:4317",
			},
		},
		{
			name: "custom backend preserved",
			input: Config{
				LLMBackend: "openai",
			},
			expected: Config{
				Port:         12210,
				LLMBackend:   "openai",
				OTelEndpoint: "coursecompass-otel-collector:4317",
			},
		},
		{
			name: "weaviate URL preserved (no default)",
			input: Config{
				WeaviateURL: "http://localhost:8080",
			},
			expected: Config{
				Port:         12210,
				LLMBackend:   "anthropic",
				WeaviateURL:  "http://localhost:8080",
				OTelEndpoint: "coursecompass-otel-collector:4317",
			},
		},
		{
			name: "metrics opt-out survives defaulting",
			input: Config{
				DisableMetrics: true,
			},
			expected: Config{
				Port:           12210,
				LLMBackend:     "anthropic",
				OTelEndpoint:   "coursecompass-otel-collector:4317",
				DisableMetrics: true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := applyConfigDefaults(tt.input)

			assert.Equal(t, tt.expected.Port, result.Port)
			assert.Equal(t, tt.expected.LLMBackend, result.LLMBackend)
			assert.Equal(t, tt.expected.WeaviateURL, result.WeaviateURL)
			assert.Equal(t, tt.expected.OTelEndpoint, result.OTelEndpoint)
			assert.Equal(t, tt.expected.DisableMetrics, result.DisableMetrics)
		})
	}
}

// =============================================================================
// Error Case Tests
// =============================================================================

// TestConfig_InvalidValues tests behavior with edge case values.
func TestConfig_InvalidValues(t *testing.T) {
	t.Run("negative port is preserved", func(t *testing.T) {
		cfg := Config{Port: -1}

		result := applyConfigDefaults(cfg)

		assert.Equal(t, -1, result.Port,
			"negative port should be preserved (validation is caller's responsibility)")
	})

	t.Run("empty string backend uses default", func(t *testing.T) {
		cfg := Config{LLMBackend: ""}

		result := applyConfigDefaults(cfg)

		assert.Equal(t, "anthropic", result.LLMBackend,
			"empty backend should default to anthropic")
	})
}

// =============================================================================
// Integration Test (Skipped without services)
// =============================================================================

// TestNew_Integration tests the full constructor (requires services).
//
// # Description
//
// This test is skipped unless the OTel collector and an LLM provider key
// are available. It tests the full New() constructor with a real Config.
func TestNew_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	t.Skip("skipping: requires external services (OTel collector, LLM API key)")
}

// =============================================================================
// Benchmark Tests
// =============================================================================

// BenchmarkApplyConfigDefaults measures config default application performance.
func BenchmarkApplyConfigDefaults(b *testing.B) {
	cfg := Config{Port: 8080}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = applyConfigDefaults(cfg)
	}
}
