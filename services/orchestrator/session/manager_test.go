// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package session

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSession_Prefix(t *testing.T) {
	m := NewManager(2)

	id := m.CreateSession()
	assert.True(t, strings.HasPrefix(id, "sess_"), "session ids carry the sess_ prefix")
	assert.NotEqual(t, id, m.CreateSession(), "ids must be unique")
}

func TestHistory_RendersAlternatingRoles(t *testing.T) {
	m := NewManager(2)
	id := m.CreateSession()

	m.AppendExchange(id, "What is MCP?", "Model Context Protocol.")

	history := m.History(id)
	assert.Equal(t, "User: What is MCP?\nAssistant: Model Context Protocol.", history)
}

func TestHistory_EmptyForUnknownSession(t *testing.T) {
	m := NewManager(2)
	assert.Equal(t, "", m.History("sess_nope"))
}

func TestHistory_NeverExceedsMaxHistory(t *testing.T) {
	m := NewManager(2)
	id := m.CreateSession()

	for i := 0; i < 10; i++ {
		m.AppendExchange(id, fmt.Sprintf("question %d", i), fmt.Sprintf("answer %d", i))
	}

	history := m.History(id)
	lines := strings.Split(history, "\n")
	assert.Len(t, lines, 4, "2 exchanges = 4 rendered lines")
	assert.Contains(t, history, "question 8")
	assert.Contains(t, history, "question 9")
	assert.NotContains(t, history, "question 7", "oldest exchanges are evicted first")
}

func TestAppend_ImplicitSessionCreation(t *testing.T) {
	m := NewManager(2)

	m.Append("sess_external", RoleUser, "hello")
	assert.Equal(t, "User: hello", m.History("sess_external"))
}

func TestClear_DropsHistoryKeepsSession(t *testing.T) {
	m := NewManager(2)
	id := m.CreateSession()
	m.AppendExchange(id, "q", "a")
	require.NotEmpty(t, m.History(id))

	m.Clear(id)
	assert.Empty(t, m.History(id))

	m.AppendExchange(id, "q2", "a2")
	assert.Contains(t, m.History(id), "q2")
}
