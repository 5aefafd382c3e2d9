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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/CourseCompass/services/orchestrator/datatypes"
)

// stubTool is a minimal Tool for registry tests.
type stubTool struct {
	name    string
	result  string
	sources []datatypes.Source
	calls   int
}

func (s *stubTool) Definition() ToolSchema {
	return ToolSchema{
		Name:        s.name,
		Description: "stub",
		InputSchema: map[string]any{"type": "object"},
	}
}

func (s *stubTool) Execute(_ context.Context, _ map[string]any) string {
	s.calls++
	return s.result
}

func (s *stubTool) LastSources() []datatypes.Source { return s.sources }
func (s *stubTool) ResetSources()                   { s.sources = nil }

func TestRegistry_RegisterAndDispatch(t *testing.T) {
	reg := NewRegistry()
	tool := &stubTool{name: "alpha", result: "alpha result"}
	require.NoError(t, reg.Register(tool))

	result, err := reg.Execute(context.Background(), "alpha", nil)
	require.NoError(t, err)
	assert.Equal(t, "alpha result", result)
	assert.Equal(t, 1, tool.calls)
}

func TestRegistry_DuplicateNameRejected(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(&stubTool{name: "alpha"}))

	err := reg.Register(&stubTool{name: "alpha"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestRegistry_UnknownTool(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.Execute(context.Background(), "ghost", nil)
	require.Error(t, err)
	assert.True(t, IsUnknownTool(err))
	assert.Contains(t, err.Error(), "ghost")
}

func TestRegistry_DefinitionsInRegistrationOrder(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(&stubTool{name: "beta"}))
	require.NoError(t, reg.Register(&stubTool{name: "alpha"}))

	defs := reg.Definitions()
	require.Len(t, defs, 2)
	assert.Equal(t, "beta", defs[0].Name)
	assert.Equal(t, "alpha", defs[1].Name)
}

func TestRegistry_CollectAndResetSources(t *testing.T) {
	reg := NewRegistry()
	first := &stubTool{name: "first", sources: []datatypes.Source{{Label: "a"}}}
	second := &stubTool{name: "second", sources: []datatypes.Source{{Label: "b"}, {Label: "c"}}}
	require.NoError(t, reg.Register(first))
	require.NoError(t, reg.Register(second))

	collected := reg.CollectSources()
	require.Len(t, collected, 3)
	assert.Equal(t, "a", collected[0].Label)
	assert.Equal(t, "b", collected[1].Label)
	assert.Equal(t, "c", collected[2].Label)

	reg.ResetSources()
	assert.Empty(t, reg.CollectSources())
}
