// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/AleutianAI/CourseCompass/services/llm"
	"github.com/AleutianAI/CourseCompass/services/orchestrator/datatypes"
	"github.com/AleutianAI/CourseCompass/services/orchestrator/observability"
)

// ErrUnknownTool indicates a dispatch to a name no registered tool declared.
var ErrUnknownTool = errors.New("unknown tool")

// IsUnknownTool reports whether err wraps ErrUnknownTool.
func IsUnknownTool(err error) bool {
	return errors.Is(err, ErrUnknownTool)
}

// Registry holds the tools exposed to the model for one query pipeline.
//
// # Description
//
// Tools are keyed by their declared name and kept in registration order,
// which fixes both the order of Definitions sent to the model and the order
// CollectSources concatenates provenance in. The registry carries no state
// beyond its tools.
type Registry struct {
	byName map[string]Tool
	order  []Tool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Tool)}
}

// Register adds a tool under its declared name. Duplicate names are
// rejected.
func (r *Registry) Register(tool Tool) error {
	name := tool.Definition().Name
	if name == "" {
		return fmt.Errorf("tool has no name")
	}
	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("tool %q already registered", name)
	}
	r.byName[name] = tool
	r.order = append(r.order, tool)
	return nil
}

// Definitions returns the tool definitions in registration order, in the
// LLM wire form.
func (r *Registry) Definitions() []llm.ToolDefinition {
	defs := make([]llm.ToolDefinition, 0, len(r.order))
	for _, tool := range r.order {
		defs = append(defs, tool.Definition().Definition())
	}
	return defs
}

// Execute dispatches by name. An unregistered name returns ErrUnknownTool;
// callers surface it as tool-result text so the model can recover.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) (string, error) {
	tool, ok := r.byName[name]
	if !ok {
		observability.RecordToolExecution(name, false)
		return "", fmt.Errorf("tool '%s' not found: %w", name, ErrUnknownTool)
	}
	result := tool.Execute(ctx, args)
	observability.RecordToolExecution(name, true)
	return result, nil
}

// CollectSources concatenates every tool's LastSources in registration
// order.
func (r *Registry) CollectSources() []datatypes.Source {
	var sources []datatypes.Source
	for _, tool := range r.order {
		sources = append(sources, tool.LastSources()...)
	}
	return sources
}

// ResetSources clears provenance on every registered tool.
func (r *Registry) ResetSources() {
	for _, tool := range r.order {
		tool.ResetSources()
	}
}
