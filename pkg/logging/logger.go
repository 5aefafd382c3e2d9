// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package logging provides structured logging for CourseCompass components.
//
// # Description
//
// Wraps log/slog with a service-scoped logger that can write JSON lines to
// both the console and a per-service log file, and optionally mirror every
// entry to a LogExporter for shipping elsewhere.
//
// # Usage
//
//	logger := logging.New(logging.Config{
//	    Service: "orchestrator",
//	    Level:   logging.LevelInfo,
//	    LogDir:  "~/.coursecompass/logs", // Supports ~ expansion
//	})
//	defer logger.Close()
//	logger.Info("server started", "port", 12210)
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// =============================================================================
// Levels
// =============================================================================

// Level is the logging severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

func (l Level) toSlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseLevel maps a string to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// =============================================================================
// Configuration
// =============================================================================

// Config controls logger construction.
type Config struct {
	// Service names the component; it is attached to every entry and used
	// for the log file name. Default: "coursecompass".
	Service string

	// Level is the minimum severity emitted. Default: LevelInfo.
	Level Level

	// LogDir, when set, enables file output to <LogDir>/<Service>.log.
	// A leading ~ expands to the user's home directory.
	LogDir string

	// Console disables stdout output when false and LogDir is set.
	// When both are unset, console output is always on.
	Console bool

	// Exporter receives a copy of every entry. May be nil.
	Exporter LogExporter
}

// =============================================================================
// Exporters
// =============================================================================

// LogEntry is the exporter-facing view of one log record.
type LogEntry struct {
	Time    time.Time
	Level   Level
	Service string
	Message string
	Attrs   map[string]any
}

// LogExporter ships log entries to an external sink.
type LogExporter interface {
	Export(ctx context.Context, entry LogEntry) error
	Flush(ctx context.Context) error
	Close() error
}

// NopExporter discards everything.
type NopExporter struct{}

func (e *NopExporter) Export(ctx context.Context, entry LogEntry) error { return nil }
func (e *NopExporter) Flush(ctx context.Context) error                  { return nil }
func (e *NopExporter) Close() error                                     { return nil }

var _ LogExporter = (*NopExporter)(nil)

// BufferedExporter keeps entries in memory; used by tests.
type BufferedExporter struct {
	mu      sync.Mutex
	entries []LogEntry
}

func NewBufferedExporter() *BufferedExporter {
	return &BufferedExporter{}
}

func (e *BufferedExporter) Export(ctx context.Context, entry LogEntry) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.entries = append(e.entries, entry)
	return nil
}

func (e *BufferedExporter) Flush(ctx context.Context) error { return nil }
func (e *BufferedExporter) Close() error                    { return nil }

// Entries returns a copy of everything exported so far.
func (e *BufferedExporter) Entries() []LogEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]LogEntry, len(e.entries))
	copy(out, e.entries)
	return out
}

var _ LogExporter = (*BufferedExporter)(nil)

// =============================================================================
// Logger
// =============================================================================

// Logger is a service-scoped structured logger.
//
// # Thread Safety
//
// Safe for concurrent use.
type Logger struct {
	slogger  *slog.Logger
	service  string
	level    Level
	exporter LogExporter
	file     *os.File
}

// New builds a Logger from config. File-open failures degrade to
// console-only logging rather than failing construction.
func New(config Config) *Logger {
	service := config.Service
	if service == "" {
		service = "coursecompass"
	}

	var writers []io.Writer
	var file *os.File

	if config.LogDir != "" {
		dir := expandPath(config.LogDir)
		if err := os.MkdirAll(dir, 0o755); err == nil {
			path := filepath.Join(dir, service+".log")
			f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
			if err == nil {
				file = f
				writers = append(writers, f)
			}
		}
		if config.Console {
			writers = append(writers, os.Stdout)
		}
	}
	if len(writers) == 0 {
		writers = append(writers, os.Stdout)
	}

	handler := slog.NewJSONHandler(io.MultiWriter(writers...), &slog.HandlerOptions{
		Level: config.Level.toSlogLevel(),
	})

	return &Logger{
		slogger:  slog.New(handler).With("service", service),
		service:  service,
		level:    config.Level,
		exporter: config.Exporter,
		file:     file,
	}
}

var (
	defaultOnce   sync.Once
	defaultLogger *Logger
)

// Default returns the shared console logger.
func Default() *Logger {
	defaultOnce.Do(func() {
		defaultLogger = New(Config{Service: "coursecompass"})
	})
	return defaultLogger
}

// Debug logs at debug level.
func (l *Logger) Debug(msg string, args ...any) { l.log(LevelDebug, msg, args...) }

// Info logs at info level.
func (l *Logger) Info(msg string, args ...any) { l.log(LevelInfo, msg, args...) }

// Warn logs at warn level.
func (l *Logger) Warn(msg string, args ...any) { l.log(LevelWarn, msg, args...) }

// Error logs at error level.
func (l *Logger) Error(msg string, args ...any) { l.log(LevelError, msg, args...) }

// With returns a child logger carrying extra key-value attributes.
func (l *Logger) With(args ...any) *Logger {
	child := *l
	child.slogger = l.slogger.With(args...)
	return &child
}

// Slog exposes the underlying slog.Logger for libraries that want one.
func (l *Logger) Slog() *slog.Logger {
	return l.slogger
}

// Close flushes the exporter and closes the log file, if any.
func (l *Logger) Close() error {
	var firstErr error
	if l.exporter != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := l.exporter.Flush(ctx); err != nil {
			firstErr = err
		}
		if err := l.exporter.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if l.file != nil {
		if err := l.file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (l *Logger) log(level Level, msg string, args ...any) {
	if level < l.level {
		return
	}
	switch level {
	case LevelDebug:
		l.slogger.Debug(msg, args...)
	case LevelWarn:
		l.slogger.Warn(msg, args...)
	case LevelError:
		l.slogger.Error(msg, args...)
	default:
		l.slogger.Info(msg, args...)
	}

	if l.exporter != nil {
		entry := LogEntry{
			Time:    time.Now(),
			Level:   level,
			Service: l.service,
			Message: msg,
			Attrs:   argsToMap(args),
		}
		if err := l.exporter.Export(context.Background(), entry); err != nil {
			l.slogger.Warn("log export failed", "error", err)
		}
	}
}

// expandPath resolves a leading ~ to the user's home directory.
func expandPath(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// argsToMap folds alternating key-value args into a map. Odd trailing
// values are kept under a positional key so nothing is silently dropped.
func argsToMap(args []any) map[string]any {
	if len(args) == 0 {
		return nil
	}
	m := make(map[string]any, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok || i+1 >= len(args) {
			m[fmt.Sprintf("arg%d", i)] = args[i]
			continue
		}
		m[key] = args[i+1]
	}
	return m
}
