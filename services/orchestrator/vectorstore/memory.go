// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package vectorstore

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/AleutianAI/CourseCompass/services/orchestrator/datatypes"
)

// MemoryStore is an in-process Store for lightweight mode and tests.
//
// # Description
//
// Holds the catalog and chunk vectors in maps guarded by a mutex and ranks
// by cosine similarity. Construct with NewHashEmbedder when no embedding
// service is available; the contract is identical to WeaviateStore apart
// from durability.
//
// # Thread Safety
//
// Safe for concurrent use.
type MemoryStore struct {
	mu         sync.RWMutex
	embedder   EmbeddingProvider
	maxResults int

	courses      map[string]*datatypes.Course
	titleVectors map[string][]float32
	chunks       []storedChunk
}

type storedChunk struct {
	chunk  datatypes.CourseChunk
	vector []float32
}

// NewMemoryStore builds a MemoryStore. maxResults semantics match
// NewWeaviateStore: non-positive values are tolerated but searches report a
// configuration error.
func NewMemoryStore(embedder EmbeddingProvider, maxResults int) *MemoryStore {
	return &MemoryStore{
		embedder:     embedder,
		maxResults:   maxResults,
		courses:      make(map[string]*datatypes.Course),
		titleVectors: make(map[string][]float32),
	}
}

// UpsertCourseMetadata stores or replaces a course entry keyed by title.
func (s *MemoryStore) UpsertCourseMetadata(ctx context.Context, course *datatypes.Course) error {
	vector, err := s.embedder.Embed(ctx, course.Title)
	if err != nil {
		return fmt.Errorf("failed to embed course title %q: %w", course.Title, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.courses[course.Title] = course
	s.titleVectors[course.Title] = vector
	return nil
}

// UpsertCourseContent embeds and appends content chunks.
func (s *MemoryStore) UpsertCourseContent(ctx context.Context, chunks []datatypes.CourseChunk) error {
	stored := make([]storedChunk, 0, len(chunks))
	for i := range chunks {
		vector, err := s.embedder.Embed(ctx, chunks[i].Content)
		if err != nil {
			return fmt.Errorf("failed to embed chunk %s: %w", chunks[i].ID(), err)
		}
		stored = append(stored, storedChunk{chunk: chunks[i], vector: vector})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = append(s.chunks, stored...)
	return nil
}

// DeleteCourseContent drops every chunk stored under an exact title.
func (s *MemoryStore) DeleteCourseContent(_ context.Context, courseTitle string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.chunks[:0]
	for _, sc := range s.chunks {
		if sc.chunk.CourseTitle != courseTitle {
			kept = append(kept, sc)
		}
	}
	s.chunks = kept
	return nil
}

// Search ranks stored chunks by cosine similarity to the query.
func (s *MemoryStore) Search(ctx context.Context, query string, courseTitle string, lessonNumber *int) (*SearchResults, error) {
	if s.maxResults <= 0 {
		return &SearchResults{Err: MisconfiguredMessage}, nil
	}

	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	type scored struct {
		chunk datatypes.CourseChunk
		score float32
	}
	var candidates []scored
	for _, sc := range s.chunks {
		if courseTitle != "" && sc.chunk.CourseTitle != courseTitle {
			continue
		}
		if lessonNumber != nil && sc.chunk.LessonNumber != *lessonNumber {
			continue
		}
		candidates = append(candidates, scored{chunk: sc.chunk, score: cosine(queryVec, sc.vector)})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if len(candidates) > s.maxResults {
		candidates = candidates[:s.maxResults]
	}

	results := &SearchResults{}
	for _, c := range candidates {
		doc := SearchResult{
			Content:     c.chunk.Content,
			CourseTitle: c.chunk.CourseTitle,
			ChunkIndex:  c.chunk.ChunkIndex,
		}
		if c.chunk.LessonNumber >= 0 {
			n := c.chunk.LessonNumber
			doc.LessonNumber = &n
		}
		results.Documents = append(results.Documents, doc)
	}
	return results, nil
}

// ResolveCourseName returns the stored title whose embedding is nearest to
// name. The nearest title always wins on a non-empty catalog.
func (s *MemoryStore) ResolveCourseName(ctx context.Context, name string) (string, error) {
	queryVec, err := s.embedder.Embed(ctx, name)
	if err != nil {
		return "", fmt.Errorf("failed to embed course name: %w: %v", ErrCourseNotFound, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.courses) == 0 {
		return "", fmt.Errorf("no courses in catalog for %q: %w", name, ErrCourseNotFound)
	}

	best := ""
	var bestScore float32 = -2
	for title, vec := range s.titleVectors {
		score := cosine(queryVec, vec)
		if score > bestScore || (score == bestScore && title < best) {
			best = title
			bestScore = score
		}
	}
	return best, nil
}

// GetCourseOutline returns the stored metadata for an exact title.
func (s *MemoryStore) GetCourseOutline(_ context.Context, title string) (*datatypes.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	course, ok := s.courses[title]
	if !ok {
		return nil, fmt.Errorf("no catalog entry for %q: %w", title, ErrCourseNotFound)
	}
	return course, nil
}

// CourseCount returns the number of stored courses.
func (s *MemoryStore) CourseCount(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.courses), nil
}

// CourseTitles lists stored titles in sorted order.
func (s *MemoryStore) CourseTitles(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	titles := make([]string, 0, len(s.courses))
	for title := range s.courses {
		titles = append(titles, title)
	}
	sort.Strings(titles)
	return titles, nil
}

func cosine(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float32
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (sqrt32(normA) * sqrt32(normB))
}

func sqrt32(v float32) float32 {
	return float32(math.Sqrt(float64(v)))
}
