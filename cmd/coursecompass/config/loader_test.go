// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "http://localhost:12210", cfg.Orchestrator.URL)
	assert.Equal(t, 120, cfg.Orchestrator.TimeoutSeconds)
	assert.False(t, cfg.Output.Plain)
}

func TestConfigRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Orchestrator.URL = "http://compass.internal:9000"
	cfg.Output.Plain = true

	data, err := yaml.Marshal(cfg)
	require.NoError(t, err)

	var loaded CompassConfig
	require.NoError(t, yaml.Unmarshal(data, &loaded))
	assert.Equal(t, cfg, loaded)
}

func TestApplyFallbacks(t *testing.T) {
	var cfg CompassConfig
	require.NoError(t, yaml.Unmarshal([]byte("orchestrator:\n  url: \"\"\n"), &cfg))

	applyFallbacks(&cfg)

	assert.Equal(t, "http://localhost:12210", cfg.Orchestrator.URL)
	assert.Equal(t, 120, cfg.Orchestrator.TimeoutSeconds)
}
