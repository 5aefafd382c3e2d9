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
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/AleutianAI/CourseCompass/services/orchestrator/datatypes"
)

var tracer = otel.Tracer("coursecompass.orchestrator.vectorstore")

const (
	catalogClass = "CourseCatalog"
	contentClass = "CourseContent"
)

// WeaviateStore is the production Store backed by a Weaviate instance.
//
// # Description
//
// Course metadata lives in the CourseCatalog class, vectorized by the course
// title so ResolveCourseName can nearest-neighbor over titles. Content chunks
// live in the CourseContent class, vectorized by chunk text, with
// where-filters on course_title and lesson_number for scoped searches.
//
// # Thread Safety
//
// Safe for concurrent use.
type WeaviateStore struct {
	client     *weaviate.Client
	embedder   EmbeddingProvider
	maxResults int
}

// NewWeaviateStore builds a WeaviateStore.
//
// # Inputs
//
//   - client: Connected Weaviate client. Schema must already exist (see
//     datatypes.EnsureWeaviateSchema).
//   - embedder: Provider for query and chunk embeddings.
//   - maxResults: Cap on documents per search. Non-positive values are
//     tolerated at construction but every Search will report a configuration
//     error.
func NewWeaviateStore(client *weaviate.Client, embedder EmbeddingProvider, maxResults int) *WeaviateStore {
	if maxResults <= 0 {
		slog.Warn("WeaviateStore constructed with maxResults=0, all searches will fail",
			"hint", "set MAX_RESULTS to a positive value")
	}
	return &WeaviateStore{
		client:     client,
		embedder:   embedder,
		maxResults: maxResults,
	}
}

// UpsertCourseMetadata stores or replaces a course's catalog entry.
//
// The entry is vectorized by the course title. Replacement is delete-then-
// create on the stored title, so re-ingesting a course does not duplicate it.
func (s *WeaviateStore) UpsertCourseMetadata(ctx context.Context, course *datatypes.Course) error {
	ctx, span := tracer.Start(ctx, "UpsertCourseMetadata")
	defer span.End()
	span.SetAttributes(attribute.String("course.title", course.Title))

	existing, err := s.findCatalogIDByTitle(ctx, course.Title)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if existing != "" {
		if err := s.client.Data().Deleter().
			WithClassName(catalogClass).
			WithID(existing).
			Do(ctx); err != nil {
			span.RecordError(err)
			return fmt.Errorf("failed to delete existing catalog entry for %q: %w", course.Title, err)
		}
	}

	vector, err := s.embedder.Embed(ctx, course.Title)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to embed course title %q: %w", course.Title, err)
	}

	props, err := datatypes.CatalogProperties(course)
	if err != nil {
		span.RecordError(err)
		return err
	}

	_, err = s.client.Data().Creator().
		WithClassName(catalogClass).
		WithProperties(props).
		WithVector(vector).
		Do(ctx)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to store catalog entry for %q: %w", course.Title, err)
	}

	slog.Info("Stored course metadata", "title", course.Title, "lessons", len(course.Lessons))
	return nil
}

// UpsertCourseContent embeds and stores content chunks using the client's
// batcher.
func (s *WeaviateStore) UpsertCourseContent(ctx context.Context, chunks []datatypes.CourseChunk) error {
	ctx, span := tracer.Start(ctx, "UpsertCourseContent")
	defer span.End()
	span.SetAttributes(attribute.Int("chunk.count", len(chunks)))

	if len(chunks) == 0 {
		return nil
	}

	batcher := s.client.Batch().ObjectsBatcher()
	for i := range chunks {
		chunk := &chunks[i]
		vector, err := s.embedder.Embed(ctx, chunk.Content)
		if err != nil {
			span.RecordError(err)
			return fmt.Errorf("failed to embed chunk %s: %w", chunk.ID(), err)
		}
		obj := &models.Object{
			Class:      contentClass,
			Properties: datatypes.ContentProperties(chunk),
			Vector:     vector,
		}
		batcher = batcher.WithObjects(obj)
	}

	resp, err := batcher.Do(ctx)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to batch-store %d chunks: %w", len(chunks), err)
	}
	for _, obj := range resp {
		if obj.Result != nil && obj.Result.Errors != nil && len(obj.Result.Errors.Error) > 0 {
			err := fmt.Errorf("batch item failed: %s", obj.Result.Errors.Error[0].Message)
			span.RecordError(err)
			return err
		}
	}

	slog.Info("Stored course content", "chunks", len(chunks),
		"course", chunks[0].CourseTitle)
	return nil
}

// DeleteCourseContent batch-deletes every chunk whose course_title matches
// exactly.
func (s *WeaviateStore) DeleteCourseContent(ctx context.Context, courseTitle string) error {
	ctx, span := tracer.Start(ctx, "DeleteCourseContent")
	defer span.End()
	span.SetAttributes(attribute.String("course.title", courseTitle))

	where := filters.Where().
		WithPath([]string{"course_title"}).
		WithOperator(filters.Equal).
		WithValueText(courseTitle)

	resp, err := s.client.Batch().ObjectsBatchDeleter().
		WithClassName(contentClass).
		WithWhere(where).
		WithOutput("minimal").
		Do(ctx)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete content for %q: %w", courseTitle, err)
	}

	if resp != nil && resp.Results != nil && resp.Results.Successful > 0 {
		slog.Info("Removed stale course content", "course", courseTitle,
			"chunks", resp.Results.Successful)
	}
	return nil
}

// Search runs a nearVector query over CourseContent.
//
// # Description
//
// Embeds the query, applies where-filters for the exact course title and
// lesson number when given, and returns up to maxResults chunks ordered by
// distance. A non-positive maxResults short-circuits into a SearchResults
// carrying MisconfiguredMessage.
//
// # Limitations
//
//   - courseTitle must be an exact stored title; call ResolveCourseName
//     first for fuzzy input.
func (s *WeaviateStore) Search(ctx context.Context, query string, courseTitle string, lessonNumber *int) (*SearchResults, error) {
	ctx, span := tracer.Start(ctx, "Search")
	defer span.End()
	span.SetAttributes(
		attribute.String("search.course", courseTitle),
		attribute.Int("search.limit", s.maxResults),
	)

	if s.maxResults <= 0 {
		span.SetStatus(codes.Error, "max results misconfigured")
		return &SearchResults{Err: MisconfiguredMessage}, nil
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	var operands []*filters.WhereBuilder
	if courseTitle != "" {
		operands = append(operands, filters.Where().
			WithPath([]string{"course_title"}).
			WithOperator(filters.Equal).
			WithValueString(courseTitle))
	}
	if lessonNumber != nil {
		operands = append(operands, filters.Where().
			WithPath([]string{"lesson_number"}).
			WithOperator(filters.Equal).
			WithValueInt(int64(*lessonNumber)))
	}

	nearVector := s.client.GraphQL().NearVectorArgBuilder().WithVector(vector)

	fields := []graphql.Field{
		{Name: "content"},
		{Name: "course_title"},
		{Name: "lesson_number"},
		{Name: "chunk_index"},
		{Name: "_additional", Fields: []graphql.Field{
			{Name: "distance"},
		}},
	}

	getter := s.client.GraphQL().Get().
		WithClassName(contentClass).
		WithFields(fields...).
		WithNearVector(nearVector).
		WithLimit(s.maxResults)
	if len(operands) == 1 {
		getter = getter.WithWhere(operands[0])
	} else if len(operands) > 1 {
		getter = getter.WithWhere(filters.Where().
			WithOperator(filters.And).
			WithOperands(operands))
	}

	result, err := getter.Do(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("weaviate search failed: %w", err)
	}

	parsed, err := datatypes.ParseGraphQLResponse[datatypes.ContentQueryResponse](result)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to parse search results: %w", err)
	}

	results := &SearchResults{}
	for _, item := range parsed.Get.CourseContent {
		doc := SearchResult{
			Content:     item.Content,
			CourseTitle: item.CourseTitle,
			ChunkIndex:  item.ChunkIndex,
		}
		if item.LessonNumber >= 0 {
			n := item.LessonNumber
			doc.LessonNumber = &n
		}
		results.Documents = append(results.Documents, doc)
	}

	slog.Debug("Content search complete", "matches", len(results.Documents),
		"course", courseTitle)
	return results, nil
}

// ResolveCourseName maps a fuzzy name to the nearest stored title.
//
// # Description
//
// Embeds the name and takes the single nearest CourseCatalog entry. Whenever
// at least one course exists, some title is returned; there is no distance
// cutoff. ErrCourseNotFound means the catalog is empty or the query failed.
func (s *WeaviateStore) ResolveCourseName(ctx context.Context, name string) (string, error) {
	ctx, span := tracer.Start(ctx, "ResolveCourseName")
	defer span.End()
	span.SetAttributes(attribute.String("course.query", name))

	vector, err := s.embedder.Embed(ctx, name)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to embed course name: %w: %v", ErrCourseNotFound, err)
	}

	nearVector := s.client.GraphQL().NearVectorArgBuilder().WithVector(vector)
	result, err := s.client.GraphQL().Get().
		WithClassName(catalogClass).
		WithFields(graphql.Field{Name: "course_title"}).
		WithNearVector(nearVector).
		WithLimit(1).
		Do(ctx)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("catalog query failed: %w: %v", ErrCourseNotFound, err)
	}

	parsed, err := datatypes.ParseGraphQLResponse[datatypes.CatalogQueryResponse](result)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to parse catalog results: %w: %v", ErrCourseNotFound, err)
	}
	if len(parsed.Get.CourseCatalog) == 0 {
		return "", fmt.Errorf("no courses in catalog for %q: %w", name, ErrCourseNotFound)
	}

	title := parsed.Get.CourseCatalog[0].CourseTitle
	slog.Debug("Resolved course name", "query", name, "resolved", title)
	return title, nil
}

// GetCourseOutline returns the full stored metadata for an exact title.
func (s *WeaviateStore) GetCourseOutline(ctx context.Context, title string) (*datatypes.Course, error) {
	ctx, span := tracer.Start(ctx, "GetCourseOutline")
	defer span.End()

	entry, err := s.findCatalogByTitle(ctx, title)
	if err != nil {
		return nil, err
	}
	return entry.Course()
}

// CourseCount returns the number of catalog entries.
func (s *WeaviateStore) CourseCount(ctx context.Context) (int, error) {
	titles, err := s.CourseTitles(ctx)
	if err != nil {
		return 0, err
	}
	return len(titles), nil
}

// CourseTitles lists every stored course title.
func (s *WeaviateStore) CourseTitles(ctx context.Context) ([]string, error) {
	ctx, span := tracer.Start(ctx, "CourseTitles")
	defer span.End()

	result, err := s.client.GraphQL().Get().
		WithClassName(catalogClass).
		WithFields(graphql.Field{Name: "course_title"}).
		WithLimit(catalogListLimit).
		Do(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list course titles: %w", err)
	}

	parsed, err := datatypes.ParseGraphQLResponse[datatypes.CatalogQueryResponse](result)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to parse catalog listing: %w", err)
	}

	titles := make([]string, 0, len(parsed.Get.CourseCatalog))
	for _, entry := range parsed.Get.CourseCatalog {
		titles = append(titles, entry.CourseTitle)
	}
	return titles, nil
}

// catalogListLimit bounds full-catalog listings. Course catalogs are small;
// this is a sanity cap, not pagination.
const catalogListLimit = 10000

func (s *WeaviateStore) findCatalogByTitle(ctx context.Context, title string) (*datatypes.CatalogResult, error) {
	where := filters.Where().
		WithPath([]string{"course_title"}).
		WithOperator(filters.Equal).
		WithValueString(title)

	result, err := s.client.GraphQL().Get().
		WithClassName(catalogClass).
		WithFields(
			graphql.Field{Name: "course_title"},
			graphql.Field{Name: "course_link"},
			graphql.Field{Name: "instructor"},
			graphql.Field{Name: "lessons_json"},
			graphql.Field{Name: "_additional", Fields: []graphql.Field{{Name: "id"}}},
		).
		WithWhere(where).
		WithLimit(1).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog lookup failed for %q: %w", title, err)
	}

	parsed, err := datatypes.ParseGraphQLResponse[datatypes.CatalogQueryResponse](result)
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog lookup: %w", err)
	}
	if len(parsed.Get.CourseCatalog) == 0 {
		return nil, fmt.Errorf("no catalog entry for %q: %w", title, ErrCourseNotFound)
	}
	return &parsed.Get.CourseCatalog[0], nil
}

func (s *WeaviateStore) findCatalogIDByTitle(ctx context.Context, title string) (string, error) {
	entry, err := s.findCatalogByTitle(ctx, title)
	if err != nil {
		if IsCourseNotFound(err) {
			return "", nil
		}
		return "", err
	}
	return entry.Additional.ID, nil
}
