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
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// =============================================================================
// Idle Session Sweeper
// =============================================================================

// SweeperConfig holds configuration for the background session sweeper.
//
// # Fields
//
//   - Interval: How often to run a sweep cycle. Default: 10 minutes.
//   - MaxIdle: Sessions untouched for longer than this are deleted.
//     Default: 2 hours.
type SweeperConfig struct {
	Interval time.Duration
	MaxIdle  time.Duration
}

// DefaultSweeperConfig returns production defaults for the sweeper.
func DefaultSweeperConfig() SweeperConfig {
	return SweeperConfig{
		Interval: 10 * time.Minute,
		MaxIdle:  2 * time.Hour,
	}
}

// Sweeper periodically reclaims idle sessions from a Manager.
//
// # Description
//
// Sweeper runs a background goroutine on a ticker and calls ExpireIdle on
// each cycle. Uses the ticker + done channel pattern for graceful shutdown.
//
// # Thread Safety
//
// All public methods are thread-safe. Start may be called at most once
// between Stops.
type Sweeper struct {
	manager *Manager
	config  SweeperConfig
	done    chan struct{}
	mu      sync.Mutex
	running bool
}

// NewSweeper creates a sweeper over the given manager.
func NewSweeper(manager *Manager, config SweeperConfig) *Sweeper {
	if config.Interval <= 0 {
		config.Interval = DefaultSweeperConfig().Interval
	}
	if config.MaxIdle <= 0 {
		config.MaxIdle = DefaultSweeperConfig().MaxIdle
	}
	return &Sweeper{
		manager: manager,
		config:  config,
	}
}

// Start launches the background sweep loop.
//
// # Outputs
//
//   - error: Non-nil if the sweeper is already running.
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("session sweeper already running")
	}
	s.done = make(chan struct{})
	s.running = true

	go s.run(ctx, s.done)

	slog.Info("Session sweeper started",
		"interval", s.config.Interval.String(),
		"max_idle", s.config.MaxIdle.String(),
	)
	return nil
}

// Stop signals the sweep loop to exit. Safe to call when not running.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	close(s.done)
	s.running = false
}

func (s *Sweeper) run(ctx context.Context, done chan struct{}) {
	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if removed := s.manager.ExpireIdle(s.config.MaxIdle); removed > 0 {
				slog.Info("Reclaimed idle sessions",
					"removed", removed,
					"remaining", s.manager.SessionCount(),
				)
			}
		case <-done:
			return
		case <-ctx.Done():
			return
		}
	}
}
