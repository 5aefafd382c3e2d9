// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package services wires the retrieval index, tools, generator, and sessions
// into the query boundary the handlers and CLI talk to.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/CourseCompass/services/ingest"
	"github.com/AleutianAI/CourseCompass/services/llm"
	"github.com/AleutianAI/CourseCompass/services/orchestrator/datatypes"
	"github.com/AleutianAI/CourseCompass/services/orchestrator/generator"
	"github.com/AleutianAI/CourseCompass/services/orchestrator/observability"
	"github.com/AleutianAI/CourseCompass/services/orchestrator/session"
	"github.com/AleutianAI/CourseCompass/services/orchestrator/tools"
	"github.com/AleutianAI/CourseCompass/services/orchestrator/vectorstore"
)

var tracer = otel.Tracer("coursecompass.orchestrator.services")

// ingestConcurrency bounds parallel document processing during folder
// ingestion.
const ingestConcurrency = 4

// QueryOutcome is what one answered query hands back to the surface layer.
type QueryOutcome struct {
	Answer    string
	SessionID string
	Sources   []datatypes.Source
	State     generator.State
}

// RAGSystem is the query boundary.
//
// # Description
//
// Owns one tool registry, one generator, the session manager, and the
// ingestion glue. Queries are serialized through a mutex because the tools
// record per-query provenance that must not interleave across concurrent
// requests.
type RAGSystem struct {
	store     vectorstore.Store
	registry  *tools.Registry
	generator *generator.Generator
	sessions  *session.Manager
	processor *ingest.Processor

	queryMu sync.Mutex
}

// NewRAGSystem assembles the pipeline over a store and an LLM backend.
// backend is the metrics label for the client (anthropic, openai).
func NewRAGSystem(store vectorstore.Store, client llm.LLMClient, backend string, maxHistory int) (*RAGSystem, error) {
	registry := tools.NewRegistry()
	if err := registry.Register(tools.NewSearchCourseContentTool(store)); err != nil {
		return nil, fmt.Errorf("failed to register search tool: %w", err)
	}
	if err := registry.Register(tools.NewGetCourseOutlineTool(store)); err != nil {
		return nil, fmt.Errorf("failed to register outline tool: %w", err)
	}

	return &RAGSystem{
		store:     store,
		registry:  registry,
		generator: generator.New(client, registry, backend),
		sessions:  session.NewManager(maxHistory),
		processor: ingest.NewProcessor(),
	}, nil
}

// AnswerQuery runs one query end to end.
//
// # Description
//
// Fetches the session history, runs the generator, collects and resets the
// provenance recorded by the tools, and records the exchange back into the
// session. A blank sessionID starts a new session; the id actually used is
// returned on the outcome.
func (r *RAGSystem) AnswerQuery(ctx context.Context, query string, sessionID string) (*QueryOutcome, error) {
	ctx, span := tracer.Start(ctx, "AnswerQuery")
	defer span.End()
	start := time.Now()

	if sessionID == "" {
		sessionID = r.sessions.CreateSession()
	}
	span.SetAttributes(attribute.String("session.id", sessionID))
	history := r.sessions.History(sessionID)

	r.queryMu.Lock()
	result, err := r.generator.Generate(ctx, query, history)
	if err != nil {
		r.registry.ResetSources()
		r.queryMu.Unlock()
		span.RecordError(err)
		observability.RecordQuery("failed", time.Since(start).Seconds(), 0)
		return nil, fmt.Errorf("query failed: %w", err)
	}
	sources := r.registry.CollectSources()
	r.registry.ResetSources()
	r.queryMu.Unlock()

	r.sessions.AppendExchange(sessionID, query, result.Answer)
	observability.RecordQuery(string(result.State), time.Since(start).Seconds(), result.ToolRounds)

	slog.Info("Query answered",
		"sessionID", sessionID,
		"state", result.State,
		"modelCalls", result.ModelCalls,
		"toolRounds", result.ToolRounds,
		"sources", len(sources))

	return &QueryOutcome{
		Answer:    result.Answer,
		SessionID: sessionID,
		Sources:   sources,
		State:     result.State,
	}, nil
}

// GetCatalogStats returns the course count and title list.
func (r *RAGSystem) GetCatalogStats(ctx context.Context) (*datatypes.CourseStatsResponse, error) {
	ctx, span := tracer.Start(ctx, "GetCatalogStats")
	defer span.End()

	count, err := r.store.CourseCount(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count courses: %w", err)
	}
	titles, err := r.store.CourseTitles(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list course titles: %w", err)
	}
	return &datatypes.CourseStatsResponse{
		TotalCourses: count,
		CourseTitles: titles,
	}, nil
}

// Sessions exposes the session manager so callers can run maintenance
// such as idle-session sweeps.
func (r *RAGSystem) Sessions() *session.Manager {
	return r.sessions
}

// CreateSession starts a new empty conversation.
func (r *RAGSystem) CreateSession() string {
	return r.sessions.CreateSession()
}

// ClearSession drops a conversation's history.
func (r *RAGSystem) ClearSession(sessionID string) {
	r.sessions.Clear(sessionID)
}

// AddCourseDocument ingests one document. Returns the parsed course and the
// number of chunks stored. Re-ingesting a document for an existing title
// replaces that course's chunks; the watcher path relies on this so a write
// event never duplicates content in the index.
func (r *RAGSystem) AddCourseDocument(ctx context.Context, path string) (*datatypes.Course, int, error) {
	ctx, span := tracer.Start(ctx, "AddCourseDocument")
	defer span.End()
	span.SetAttributes(attribute.String("ingest.path", path))

	course, chunks, err := r.processor.ProcessFile(path)
	if err != nil {
		span.RecordError(err)
		return nil, 0, err
	}
	if err := r.store.UpsertCourseMetadata(ctx, course); err != nil {
		span.RecordError(err)
		return nil, 0, err
	}
	if err := r.store.DeleteCourseContent(ctx, course.Title); err != nil {
		span.RecordError(err)
		return nil, 0, err
	}
	if err := r.store.UpsertCourseContent(ctx, chunks); err != nil {
		span.RecordError(err)
		return nil, 0, err
	}

	observability.RecordIngestedChunks(len(chunks))
	return course, len(chunks), nil
}

// AddCourseFolder ingests every document in a folder, skipping courses whose
// titles already exist in the index. Duplicate titles are skipped whole, not
// merged.
//
// # Outputs
//
//   - int: Courses added.
//   - int: Chunks stored.
//   - error: First ingestion failure, if any.
func (r *RAGSystem) AddCourseFolder(ctx context.Context, dir string) (int, int, error) {
	ctx, span := tracer.Start(ctx, "AddCourseFolder")
	defer span.End()
	span.SetAttributes(attribute.String("ingest.dir", dir))

	paths, err := ingest.CourseFiles(dir)
	if err != nil {
		span.RecordError(err)
		return 0, 0, err
	}

	existingTitles, err := r.store.CourseTitles(ctx)
	if err != nil {
		span.RecordError(err)
		return 0, 0, fmt.Errorf("failed to list existing courses: %w", err)
	}
	existing := make(map[string]bool, len(existingTitles))
	for _, title := range existingTitles {
		existing[title] = true
	}

	var mu sync.Mutex
	coursesAdded, chunksAdded := 0, 0

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(ingestConcurrency)
	for _, path := range paths {
		g.Go(func() error {
			course, chunks, err := r.processor.ProcessFile(path)
			if err != nil {
				return err
			}

			mu.Lock()
			if existing[course.Title] {
				mu.Unlock()
				slog.Info("Skipping existing course", "title", course.Title, "path", path)
				return nil
			}
			existing[course.Title] = true
			mu.Unlock()

			if err := r.store.UpsertCourseMetadata(ctx, course); err != nil {
				return err
			}
			if err := r.store.UpsertCourseContent(ctx, chunks); err != nil {
				return err
			}

			mu.Lock()
			coursesAdded++
			chunksAdded += len(chunks)
			mu.Unlock()
			observability.RecordIngestedChunks(len(chunks))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return coursesAdded, chunksAdded, err
	}

	slog.Info("Folder ingestion complete",
		"dir", dir, "courses", coursesAdded, "chunks", chunksAdded)
	return coursesAdded, chunksAdded, nil
}
