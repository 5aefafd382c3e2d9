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
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpireIdle_RemovesOnlyStaleSessions(t *testing.T) {
	m := NewManager(2)
	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }

	stale := m.CreateSession()
	clock = clock.Add(3 * time.Hour)
	fresh := m.CreateSession()
	m.AppendExchange(fresh, "hi", "hello")

	removed := m.ExpireIdle(2 * time.Hour)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, m.SessionCount())
	assert.Empty(t, m.History(stale))
	assert.NotEmpty(t, m.History(fresh))
}

func TestExpireIdle_ActivityResetsTheClock(t *testing.T) {
	m := NewManager(2)
	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }

	id := m.CreateSession()
	clock = clock.Add(90 * time.Minute)
	m.AppendExchange(id, "still here", "ok")
	clock = clock.Add(90 * time.Minute)

	// 3h since creation but only 90m since the last exchange.
	assert.Equal(t, 0, m.ExpireIdle(2*time.Hour))
	assert.Equal(t, 1, m.SessionCount())
}

func TestExpireIdle_NonPositiveMaxIdleIsANoOp(t *testing.T) {
	m := NewManager(2)
	m.CreateSession()
	assert.Equal(t, 0, m.ExpireIdle(0))
	assert.Equal(t, 1, m.SessionCount())
}

func TestSweeper_StartTwiceFails(t *testing.T) {
	s := NewSweeper(NewManager(2), SweeperConfig{Interval: time.Hour, MaxIdle: time.Hour})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, s.Start(ctx))
	assert.Error(t, s.Start(ctx))
	s.Stop()
	s.Stop() // idempotent
}

func TestSweeper_DefaultsApplied(t *testing.T) {
	s := NewSweeper(NewManager(2), SweeperConfig{})
	assert.Equal(t, DefaultSweeperConfig().Interval, s.config.Interval)
	assert.Equal(t, DefaultSweeperConfig().MaxIdle, s.config.MaxIdle)
}
