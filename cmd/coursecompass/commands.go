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
	"log"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/CourseCompass/cmd/coursecompass/config"
	"github.com/AleutianAI/CourseCompass/pkg/ux"
)

// --- Global Command Variables ---
var (
	sessionID   string
	plainOutput bool

	rootCmd = &cobra.Command{
		Use:   "coursecompass",
		Short: "A cli for the CourseCompass course-materials assistant",
		Long: `CourseCompass answers questions about your course catalog by
				searching ingested course documents and asking an LLM to
				synthesize a grounded answer with sources.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if err := config.Load(); err != nil {
				log.Fatalf("Error loading config: %v", err)
			}
			if plainOutput || config.Global.Output.Plain {
				ux.SetPlain(true)
			}
		},
	}

	// --- Ask / Chat ---
	askCmd = &cobra.Command{
		Use:   "ask [question]",
		Short: "Asks a single question about the course catalog",
		Args:  cobra.MinimumNArgs(1),
		Run:   runAskCommand, // Defined in cmd_ask.go
	}

	chatCmd = &cobra.Command{
		Use:   "chat",
		Short: "Starts an interactive chat session",
		Run:   runChatCommand, // Defined in cmd_chat.go
	}

	// --- Catalog ---
	coursesCmd = &cobra.Command{
		Use:   "courses",
		Short: "Lists the courses the assistant knows about",
		Run:   runCoursesCommand, // Defined in cmd_courses.go
	}

	// --- Sessions ---
	sessionCmd = &cobra.Command{
		Use:   "session",
		Short: "Manage conversation sessions",
	}
	newSessionCmd = &cobra.Command{
		Use:   "new",
		Short: "Create a new conversation session",
		Run:   runNewSession, // Defined in cmd_session.go
	}
	clearSessionCmd = &cobra.Command{
		Use:   "clear [session_id]",
		Short: "Clear a conversation session's history",
		Args:  cobra.ExactArgs(1),
		Run:   runClearSession, // Defined in cmd_session.go
	}

	// --- Utilities ---
	statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show orchestrator health and catalog size",
		Run:   runStatus, // Defined in cmd_status.go
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVar(&plainOutput, "plain", false,
		"disable colors and spinners")

	askCmd.Flags().StringVarP(&sessionID, "session", "s", "",
		"session id to continue an earlier conversation")
	chatCmd.Flags().StringVarP(&sessionID, "session", "s", "",
		"session id to resume")

	sessionCmd.AddCommand(newSessionCmd, clearSessionCmd)
	rootCmd.AddCommand(askCmd, chatCmd, coursesCmd, sessionCmd, statusCmd)
}
