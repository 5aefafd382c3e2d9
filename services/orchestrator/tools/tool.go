// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package tools provides the retrieval tools the model can call and the
// registry that dispatches them.
//
// # Description
//
// Tools are read-only lookups over the course index. Each tool declares a
// JSON-schema definition for the model, executes with loosely-typed
// arguments, and records provenance (Source records) as a side effect of a
// successful lookup. Execution failures are returned as text so the model
// can react to them; tools never panic the query.
package tools

import (
	"context"

	"github.com/AleutianAI/CourseCompass/services/llm"
	"github.com/AleutianAI/CourseCompass/services/orchestrator/datatypes"
)

// ToolSchema describes a tool to the model.
type ToolSchema struct {
	Name        string
	Description string
	InputSchema map[string]any
}

// Definition converts the schema into the LLM wire representation.
func (s ToolSchema) Definition() llm.ToolDefinition {
	return llm.ToolDefinition{
		Name:        s.Name,
		Description: s.Description,
		InputSchema: s.InputSchema,
	}
}

// Tool is a callable capability exposed to the model.
//
// # Thread Safety
//
// Execute and the source accessors are called from a single query goroutine;
// implementations are not required to be concurrency-safe across queries
// that share a registry. Use one registry per server and serialize access,
// or one per query.
type Tool interface {
	// Definition returns the schema advertised to the model.
	Definition() ToolSchema

	// Execute runs the tool. Failures that the model should see (unknown
	// course, misconfiguration, bad arguments) come back as the result
	// string, not an error.
	Execute(ctx context.Context, args map[string]any) string

	// LastSources returns the provenance recorded by the most recent
	// Execute. Overwritten, not appended, on each call.
	LastSources() []datatypes.Source

	// ResetSources clears the recorded provenance.
	ResetSources()
}

// intArg extracts an optional integer argument. JSON unmarshals numbers as
// float64, so both forms are accepted.
func intArg(args map[string]any, key string) *int {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil
	}
	switch v := raw.(type) {
	case float64:
		n := int(v)
		return &n
	case int:
		n := v
		return &n
	}
	return nil
}

// stringArg extracts an optional string argument.
func stringArg(args map[string]any, key string) string {
	if raw, ok := args[key]; ok {
		if s, ok := raw.(string); ok {
			return s
		}
	}
	return ""
}
