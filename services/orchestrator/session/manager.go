// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package session keeps per-conversation history in memory.
//
// # Description
//
// Each session is a capped FIFO of exchanges. History is handed to the
// generator as rendered text, not structured messages; only the most recent
// MaxHistory exchanges survive. Sessions are lost on restart; idle sessions
// are reclaimed by the Sweeper.
package session

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultMaxHistory is the exchange cap applied when the configured value
// is not positive.
const DefaultMaxHistory = 2

// RoleUser and RoleAssistant label the two sides of an exchange.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type turn struct {
	role string
	text string
}

// Manager owns all sessions for one server.
//
// # Thread Safety
//
// Safe for concurrent use.
type Manager struct {
	mu         sync.Mutex
	maxHistory int
	sessions   map[string][]turn
	lastActive map[string]time.Time
	now        func() time.Time
}

// NewManager builds a Manager capping each session at maxHistory exchanges
// (one exchange = one user turn plus one assistant turn).
func NewManager(maxHistory int) *Manager {
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}
	return &Manager{
		maxHistory: maxHistory,
		sessions:   make(map[string][]turn),
		lastActive: make(map[string]time.Time),
		now:        time.Now,
	}
}

// CreateSession registers a new empty session and returns its id.
func (m *Manager) CreateSession() string {
	id := "sess_" + uuid.NewString()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = nil
	m.lastActive[id] = m.now()
	return id
}

// Append records one turn. Unknown sessions are created implicitly so a
// caller-supplied id survives a restart without a 404 dance. Turns beyond
// the cap are evicted oldest-first.
func (m *Manager) Append(sessionID, role, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	turns := append(m.sessions[sessionID], turn{role: role, text: text})
	if max := m.maxHistory * 2; len(turns) > max {
		turns = turns[len(turns)-max:]
	}
	m.sessions[sessionID] = turns
	m.lastActive[sessionID] = m.now()
}

// AppendExchange records a user turn and its assistant reply together.
func (m *Manager) AppendExchange(sessionID, userText, assistantText string) {
	m.Append(sessionID, RoleUser, userText)
	m.Append(sessionID, RoleAssistant, assistantText)
}

// History renders the retained turns as alternating "User:"/"Assistant:"
// lines. Returns "" for unknown or empty sessions.
func (m *Manager) History(sessionID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	turns := m.sessions[sessionID]
	if len(turns) == 0 {
		return ""
	}

	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		label := "User"
		if t.role == RoleAssistant {
			label = "Assistant"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", label, t.text))
	}
	return strings.Join(lines, "\n")
}

// Clear drops a session's history but keeps the session alive.
func (m *Manager) Clear(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sessionID] = nil
	m.lastActive[sessionID] = m.now()
}

// SessionCount reports how many sessions are currently held.
func (m *Manager) SessionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// ExpireIdle deletes every session whose last activity is older than maxIdle
// and returns how many were removed. A non-positive maxIdle removes nothing.
func (m *Manager) ExpireIdle(maxIdle time.Duration) int {
	if maxIdle <= 0 {
		return 0
	}
	cutoff := m.now().Add(-maxIdle)

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, last := range m.lastActive {
		if last.Before(cutoff) {
			delete(m.sessions, id)
			delete(m.lastActive, id)
			removed++
		}
	}
	return removed
}
