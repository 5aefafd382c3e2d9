// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command orchestrator starts the CourseCompass query server.
//
// This is the main entry point for the containerized orchestrator service.
// It reads configuration from environment variables and starts the server.
//
// # Environment Variables
//
//   - ORCHESTRATOR_PORT: HTTP server port (default: 12210)
//   - LLM_BACKEND_TYPE: LLM provider - anthropic, openai (default: anthropic)
//   - WEAVIATE_SERVICE_URL: Weaviate vector DB URL (optional; in-memory store when unset)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OpenTelemetry collector (default: coursecompass-otel-collector:4317)
//   - MAX_RESULTS: Search result cap per tool call (default: 5)
//   - MAX_HISTORY: Conversation exchanges retained per session (default: 2)
//   - COURSE_DOCS_DIR: Folder of course documents loaded at startup (optional)
//   - WATCH_COURSE_DOCS: Set to "true" to re-ingest documents written to the folder
//   - LOG_LEVEL: debug, info, warn, error (default: info)
//   - LOG_DIR: Directory for the JSON log file (optional; console-only when unset)
//
// # Usage
//
//	# Build
//	go build -o orchestrator ./cmd/orchestrator
//
//	# Run
//	./orchestrator
//
//	# Or via container
//	podman-compose up orchestrator
package main

import (
	"log"
	"log/slog"
	"os"
	"strconv"

	"github.com/AleutianAI/CourseCompass/pkg/logging"
	"github.com/AleutianAI/CourseCompass/services/orchestrator"
)

func main() {
	// Setup structured logging
	logger := logging.New(logging.Config{
		Service: "orchestrator",
		Level:   logging.ParseLevel(os.Getenv("LOG_LEVEL")),
		LogDir:  os.Getenv("LOG_DIR"),
		Console: true,
	})
	defer logger.Close()
	slog.SetDefault(logger.Slog())

	// Build configuration from environment variables
	cfg := orchestrator.Config{
		Port:            getEnvInt("ORCHESTRATOR_PORT", 12210),
		LLMBackend:      getEnvString("LLM_BACKEND_TYPE", "anthropic"),
		WeaviateURL:     os.Getenv("WEAVIATE_SERVICE_URL"),
		OTelEndpoint:    getEnvString("OTEL_EXPORTER_OTLP_ENDPOINT", "coursecompass-otel-collector:4317"),
		MaxResults:      getEnvInt("MAX_RESULTS", 5),
		MaxHistory:      getEnvInt("MAX_HISTORY", 2),
		CourseDocsDir:   os.Getenv("COURSE_DOCS_DIR"),
		WatchCourseDocs: os.Getenv("WATCH_COURSE_DOCS") == "true",
	}

	slog.Info("Starting orchestrator",
		"port", cfg.Port,
		"llm_backend", cfg.LLMBackend,
		"weaviate_url", cfg.WeaviateURL,
		"course_docs_dir", cfg.CourseDocsDir,
	)

	svc, err := orchestrator.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create orchestrator: %v", err)
	}

	// Run the server (blocks until shutdown)
	if err := svc.Run(); err != nil {
		log.Fatalf("Orchestrator error: %v", err)
	}
}

// getEnvString returns the environment variable value or a default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the environment variable as int or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
