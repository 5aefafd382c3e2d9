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
	"log"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/CourseCompass/pkg/ux"
	"github.com/AleutianAI/CourseCompass/services/orchestrator/datatypes"
)

func runAskCommand(cmd *cobra.Command, args []string) {
	question := strings.Join(args, " ")
	client := NewCompassClient()

	var resp *datatypes.QueryResponse
	err := ux.WithSpinner("Consulting the course catalog...", func() error {
		var askErr error
		resp, askErr = client.Ask(question, sessionID)
		return askErr
	})
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	fmt.Printf("\n%s\n", resp.Answer)
	printSources(resp.Sources)

	if resp.State == "round_cap_reached" {
		ux.Muted("(the assistant hit its tool-call limit; the answer may be partial)")
	}
	ux.Muted(fmt.Sprintf("session: %s", resp.SessionID))
}

func printSources(sources []datatypes.Source) {
	if len(sources) == 0 {
		return
	}
	fmt.Println()
	lines := make([]ux.SourceLine, 0, len(sources))
	for _, s := range sources {
		lines = append(lines, ux.SourceLine{Label: s.Label, Link: s.Link})
	}
	ux.SourceList(lines)
}
