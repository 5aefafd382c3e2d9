// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ingest

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// FolderWatcher watches the course docs folder for new or changed documents.
//
// # Description
//
// Fires the callback with the document path when a .txt or .md file is
// created or written under the watched folder. The callback performs the
// re-ingestion; the watcher itself stays dumb.
//
// # Thread Safety
//
// Safe for concurrent use. Start should only be called once.
type FolderWatcher struct {
	dir      string
	watcher  *fsnotify.Watcher
	callback func(path string)
}

// NewFolderWatcher creates a watcher over one docs folder.
//
// # Inputs
//
//   - dir: Folder to watch (not recursive).
//   - callback: Invoked with the path of each created or modified document.
//
// # Outputs
//
//   - *FolderWatcher: Ready-to-start watcher.
//   - error: Non-nil if watcher creation fails.
func NewFolderWatcher(dir string, callback func(path string)) (*FolderWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &FolderWatcher{
		dir:      dir,
		watcher:  watcher,
		callback: callback,
	}, nil
}

// Start begins watching. Blocks until the context is cancelled; run it in a
// goroutine.
//
// # Example
//
//	watcher, _ := ingest.NewFolderWatcher(docsDir, reingest)
//	go watcher.Start(ctx)
func (w *FolderWatcher) Start(ctx context.Context) {
	if err := w.watcher.Add(w.dir); err != nil {
		slog.Warn("Failed to watch course docs folder",
			"path", w.dir,
			"error", err)
		return
	}
	slog.Debug("Started watching course docs folder", "dir", w.dir)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("Course docs watcher error", "error", err)

		case <-ctx.Done():
			slog.Debug("Course docs watcher stopping")
			return
		}
	}
}

// handleEvent processes a single fsnotify event.
func (w *FolderWatcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}
	switch strings.ToLower(filepath.Ext(event.Name)) {
	case ".txt", ".md":
	default:
		return
	}

	slog.Info("Course document changed, re-ingesting", "path", event.Name)
	if w.callback != nil {
		w.callback(event.Name)
	}
}

// Stop stops the watcher. Safe to call multiple times.
func (w *FolderWatcher) Stop() error {
	return w.watcher.Close()
}
