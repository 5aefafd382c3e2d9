// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/CourseCompass/pkg/ux"
)

func runStatus(cmd *cobra.Command, args []string) {
	client := NewCompassClient()

	status, courses, err := client.Health()
	if err != nil {
		ux.Error(fmt.Sprintf("Orchestrator unreachable: %v", err))
		return
	}

	switch status {
	case "ok":
		ux.Success(fmt.Sprintf("Orchestrator healthy (%d courses indexed)", courses))
	case "degraded":
		ux.Warning("Orchestrator is up but the course index is unreachable")
	default:
		ux.Warning(fmt.Sprintf("Orchestrator reports status %q", status))
	}
	ux.Muted(fmt.Sprintf("endpoint: %s", getOrchestratorBaseURL()))
}
