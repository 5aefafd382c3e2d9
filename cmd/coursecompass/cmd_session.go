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

	"github.com/spf13/cobra"

	"github.com/AleutianAI/CourseCompass/pkg/ux"
)

func runNewSession(cmd *cobra.Command, args []string) {
	client := NewCompassClient()

	id, err := client.NewSession()
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	ux.Success("Created session")
	fmt.Println(id)
	ux.Muted("pass it to `coursecompass ask --session` or `coursecompass chat --session`")
}

func runClearSession(cmd *cobra.Command, args []string) {
	client := NewCompassClient()

	if err := client.ClearSession(args[0]); err != nil {
		log.Fatalf("Error: %v", err)
	}
	ux.Success(fmt.Sprintf("Cleared session %s", args[0]))
}
