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

// CompassConfig is the CLI's persisted configuration.
type CompassConfig struct {
	// Orchestrator: how to reach the query server
	Orchestrator OrchestratorConfig `yaml:"orchestrator"`

	// Output: terminal presentation preferences
	Output OutputConfig `yaml:"output"`
}

type OrchestratorConfig struct {
	// URL of the orchestrator, e.g. http://localhost:12210
	URL string `yaml:"url"`
	// TimeoutSeconds bounds each request. Queries can take a while when
	// the model chains tool calls, so keep this generous.
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

type OutputConfig struct {
	// Plain disables colors and spinners even on a terminal.
	Plain bool `yaml:"plain"`
}

func DefaultConfig() CompassConfig {
	return CompassConfig{
		Orchestrator: OrchestratorConfig{
			URL:            "http://localhost:12210",
			TimeoutSeconds: 120,
		},
		Output: OutputConfig{
			Plain: false,
		},
	}
}
