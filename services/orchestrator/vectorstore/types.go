// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package vectorstore provides the course retrieval index.
//
// # Description
//
// This package defines the Store contract used by the retrieval tools and the
// ingestion pipeline, together with two implementations: WeaviateStore for
// production deployments and MemoryStore for lightweight mode and tests.
//
// The index holds two kinds of records: course metadata (title, link,
// instructor, lesson list) used for fuzzy course-name resolution and outline
// lookups, and content chunks used for semantic search.
//
// # Thread Safety
//
// Both implementations are safe for concurrent use.
package vectorstore

import (
	"context"
	"errors"

	"github.com/AleutianAI/CourseCompass/services/orchestrator/datatypes"
)

// =============================================================================
// Errors
// =============================================================================

// ErrCourseNotFound indicates that course-name resolution could not produce a
// title. This only happens when the catalog is empty or the index query
// itself fails; any non-empty catalog resolves to its nearest title.
var ErrCourseNotFound = errors.New("course not found")

// ErrMisconfigured indicates the store was constructed with MaxResults == 0,
// which would make every search an empty set regardless of the index
// contents.
var ErrMisconfigured = errors.New("max results is set to 0")

// MisconfiguredMessage is the user-facing text a SearchResults carries when
// the store refuses to search because of ErrMisconfigured. It names the
// setting so an operator can fix it without reading code.
const MisconfiguredMessage = "Configuration error: MAX_RESULTS is set to 0 - " +
	"no search results can be returned. Set MAX_RESULTS to a positive value."

// IsCourseNotFound reports whether err wraps ErrCourseNotFound.
func IsCourseNotFound(err error) bool {
	return errors.Is(err, ErrCourseNotFound)
}

// IsMisconfigured reports whether err wraps ErrMisconfigured.
func IsMisconfigured(err error) bool {
	return errors.Is(err, ErrMisconfigured)
}

// =============================================================================
// Results
// =============================================================================

// SearchResult is a single matched chunk with its provenance metadata.
//
// LessonNumber is nil for chunks that were not attributed to a lesson
// (course-level preamble text).
type SearchResult struct {
	Content      string
	CourseTitle  string
	LessonNumber *int
	ChunkIndex   int
}

// SearchResults is the envelope returned by Store.Search.
//
// Err carries a user-facing failure description (currently only the
// MaxResults misconfiguration). A successful search over an index with no
// matches has Err == "" and no documents; the two states must never be
// conflated.
type SearchResults struct {
	Documents []SearchResult
	Err       string
}

// IsEmpty reports whether the search succeeded but matched nothing.
func (r *SearchResults) IsEmpty() bool {
	return r.Err == "" && len(r.Documents) == 0
}

// =============================================================================
// Contracts
// =============================================================================

// EmbeddingProvider computes a vector embedding for a piece of text.
//
// Implementations must be safe for concurrent use.
type EmbeddingProvider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Store is the retrieval index contract.
//
// # Description
//
// UpsertCourseMetadata and UpsertCourseContent feed the index during
// ingestion. Search, ResolveCourseName, and the catalog accessors serve the
// retrieval tools and the stats endpoint.
//
// # Thread Safety
//
// Implementations must be safe for concurrent use.
type Store interface {
	// UpsertCourseMetadata stores a course's title, link, instructor, and
	// lesson list for resolution and outline lookups. Re-upserting the same
	// title replaces the previous entry.
	UpsertCourseMetadata(ctx context.Context, course *datatypes.Course) error

	// UpsertCourseContent embeds and stores content chunks.
	UpsertCourseContent(ctx context.Context, chunks []datatypes.CourseChunk) error

	// DeleteCourseContent removes every stored chunk for an exact course
	// title. Ingestion calls this before re-upserting a course's chunks so
	// re-ingesting a document replaces its content instead of duplicating
	// it.
	DeleteCourseContent(ctx context.Context, courseTitle string) error

	// Search returns up to MaxResults chunks nearest to query. courseTitle,
	// when non-empty, must be an exact stored title (resolve first) and
	// restricts matches to that course; lessonNumber additionally restricts
	// to one lesson. A MaxResults of 0 yields a SearchResults whose Err is
	// MisconfiguredMessage, never a silent empty set.
	Search(ctx context.Context, query string, courseTitle string, lessonNumber *int) (*SearchResults, error)

	// ResolveCourseName maps a partial or fuzzy name to the nearest stored
	// course title. The nearest title wins whenever the catalog is
	// non-empty; ErrCourseNotFound is returned only for an empty catalog or
	// a failed index query.
	ResolveCourseName(ctx context.Context, name string) (string, error)

	// GetCourseOutline returns the stored metadata for an exact title, or
	// ErrCourseNotFound.
	GetCourseOutline(ctx context.Context, title string) (*datatypes.Course, error)

	// CourseCount returns the number of courses in the catalog.
	CourseCount(ctx context.Context) (int, error)

	// CourseTitles returns all stored course titles.
	CourseTitles(ctx context.Context) ([]string, error)
}
