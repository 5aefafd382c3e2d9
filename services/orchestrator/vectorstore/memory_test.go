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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/CourseCompass/services/orchestrator/datatypes"
)

func newTestStore(t *testing.T, maxResults int) *MemoryStore {
	t.Helper()
	return NewMemoryStore(NewHashEmbedder(), maxResults)
}

func seedTestCourse(t *testing.T, store *MemoryStore) {
	t.Helper()
	ctx := context.Background()

	course := &datatypes.Course{
		Title:      "Introduction to Testing",
		CourseLink: "https://example.com/testing",
		Instructor: "Jane Doe",
		Lessons: []datatypes.Lesson{
			{LessonNumber: 0, Title: "Getting Started", LessonLink: "https://example.com/testing/0"},
			{LessonNumber: 1, Title: "Writing Assertions", LessonLink: "https://example.com/testing/1"},
			{LessonNumber: 2, Title: "Mocks and Fixtures", LessonLink: "https://example.com/testing/2"},
		},
	}
	require.NoError(t, store.UpsertCourseMetadata(ctx, course))

	chunks := []datatypes.CourseChunk{
		{Content: "Lesson 0 content: installing the test framework", CourseTitle: course.Title, LessonNumber: 0, ChunkIndex: 0},
		{Content: "Lesson 1 content: assertions compare expected and actual values", CourseTitle: course.Title, LessonNumber: 1, ChunkIndex: 1},
		{Content: "Lesson 2 content: mocks replace collaborators with fakes", CourseTitle: course.Title, LessonNumber: 2, ChunkIndex: 2},
	}
	require.NoError(t, store.UpsertCourseContent(ctx, chunks))
}

func TestDeleteCourseContent_RemovesOnlyThatCourse(t *testing.T) {
	store := newTestStore(t, 10)
	seedTestCourse(t, store)
	ctx := context.Background()

	require.NoError(t, store.UpsertCourseMetadata(ctx, &datatypes.Course{
		Title: "Advanced Compilers",
	}))
	require.NoError(t, store.UpsertCourseContent(ctx, []datatypes.CourseChunk{
		{Content: "parsing turns tokens into syntax trees", CourseTitle: "Advanced Compilers", LessonNumber: 0, ChunkIndex: 0},
	}))

	require.NoError(t, store.DeleteCourseContent(ctx, "Introduction to Testing"))

	results, err := store.Search(ctx, "assertions", "Introduction to Testing", nil)
	require.NoError(t, err)
	assert.Empty(t, results.Documents, "deleted course must have no chunks left")

	results, err = store.Search(ctx, "parsing", "Advanced Compilers", nil)
	require.NoError(t, err)
	assert.Len(t, results.Documents, 1, "other courses must keep their chunks")
}

func TestResolveCourseName_PartialMatch(t *testing.T) {
	store := newTestStore(t, 5)
	seedTestCourse(t, store)

	title, err := store.ResolveCourseName(context.Background(), "Testing")
	require.NoError(t, err)
	assert.Equal(t, "Introduction to Testing", title,
		"partial name should resolve to the nearest stored title")
}

func TestResolveCourseName_NearestWinsAmongSeveral(t *testing.T) {
	store := newTestStore(t, 5)
	seedTestCourse(t, store)
	require.NoError(t, store.UpsertCourseMetadata(context.Background(), &datatypes.Course{
		Title: "Advanced Compilers",
	}))

	title, err := store.ResolveCourseName(context.Background(), "intro testing")
	require.NoError(t, err)
	assert.Equal(t, "Introduction to Testing", title)
}

func TestResolveCourseName_EmptyCatalog(t *testing.T) {
	store := newTestStore(t, 5)

	_, err := store.ResolveCourseName(context.Background(), "Testing")
	require.Error(t, err)
	assert.True(t, IsCourseNotFound(err), "empty catalog must yield ErrCourseNotFound")
}

func TestSearch_MaxResultsZeroIsMisconfiguration(t *testing.T) {
	store := newTestStore(t, 0)
	seedTestCourse(t, store)

	results, err := store.Search(context.Background(), "assertions", "", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, results.Err, "misconfiguration must surface an error string")
	assert.Contains(t, results.Err, "MAX_RESULTS")
	assert.False(t, results.IsEmpty(),
		"misconfigured search must be distinguishable from an empty result")
}

// TestSearch_NegativeMaxResultsIsMisconfiguration covers direct construction
// with a negative cap, which bypasses the service-level config defaulting.
func TestSearch_NegativeMaxResultsIsMisconfiguration(t *testing.T) {
	store := newTestStore(t, -1)
	seedTestCourse(t, store)

	results, err := store.Search(context.Background(), "assertions", "", nil)
	require.NoError(t, err)
	assert.Contains(t, results.Err, "MAX_RESULTS")
	assert.Empty(t, results.Documents)
}

func TestSearch_EmptyButSuccessful(t *testing.T) {
	store := newTestStore(t, 5)

	results, err := store.Search(context.Background(), "anything", "", nil)
	require.NoError(t, err)
	assert.Empty(t, results.Err)
	assert.True(t, results.IsEmpty())
}

func TestSearch_LessonFilter(t *testing.T) {
	store := newTestStore(t, 5)
	seedTestCourse(t, store)

	lesson := 2
	results, err := store.Search(context.Background(), "content", "Introduction to Testing", &lesson)
	require.NoError(t, err)
	require.Len(t, results.Documents, 1)
	require.NotNil(t, results.Documents[0].LessonNumber)
	assert.Equal(t, 2, *results.Documents[0].LessonNumber)
	assert.Contains(t, results.Documents[0].Content, "mocks")
}

func TestSearch_CourseFilterExcludesOtherCourses(t *testing.T) {
	store := newTestStore(t, 10)
	seedTestCourse(t, store)
	ctx := context.Background()
	require.NoError(t, store.UpsertCourseMetadata(ctx, &datatypes.Course{Title: "Other Course"}))
	require.NoError(t, store.UpsertCourseContent(ctx, []datatypes.CourseChunk{
		{Content: "unrelated content about compilers", CourseTitle: "Other Course", LessonNumber: 0, ChunkIndex: 0},
	}))

	results, err := store.Search(ctx, "content", "Introduction to Testing", nil)
	require.NoError(t, err)
	require.NotEmpty(t, results.Documents)
	for _, doc := range results.Documents {
		assert.Equal(t, "Introduction to Testing", doc.CourseTitle)
	}
}

func TestSearch_RespectsMaxResults(t *testing.T) {
	store := newTestStore(t, 2)
	seedTestCourse(t, store)

	results, err := store.Search(context.Background(), "content", "", nil)
	require.NoError(t, err)
	assert.Len(t, results.Documents, 2)
}

func TestSearch_LessonlessChunkHasNilLessonNumber(t *testing.T) {
	store := newTestStore(t, 5)
	ctx := context.Background()
	require.NoError(t, store.UpsertCourseMetadata(ctx, &datatypes.Course{Title: "Preamble Course"}))
	require.NoError(t, store.UpsertCourseContent(ctx, []datatypes.CourseChunk{
		{Content: "course overview before any lesson", CourseTitle: "Preamble Course", LessonNumber: -1, ChunkIndex: 0},
	}))

	results, err := store.Search(ctx, "overview", "", nil)
	require.NoError(t, err)
	require.Len(t, results.Documents, 1)
	assert.Nil(t, results.Documents[0].LessonNumber)
}

func TestGetCourseOutline(t *testing.T) {
	store := newTestStore(t, 5)
	seedTestCourse(t, store)

	course, err := store.GetCourseOutline(context.Background(), "Introduction to Testing")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/testing", course.CourseLink)
	require.Len(t, course.Lessons, 3)
	assert.Equal(t, "Writing Assertions", course.Lessons[1].Title)

	_, err = store.GetCourseOutline(context.Background(), "Nope")
	assert.True(t, IsCourseNotFound(err))
}

func TestUpsertCourseMetadata_ReplacesByTitle(t *testing.T) {
	store := newTestStore(t, 5)
	ctx := context.Background()
	seedTestCourse(t, store)
	require.NoError(t, store.UpsertCourseMetadata(ctx, &datatypes.Course{
		Title:      "Introduction to Testing",
		Instructor: "New Instructor",
	}))

	count, err := store.CourseCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	course, err := store.GetCourseOutline(ctx, "Introduction to Testing")
	require.NoError(t, err)
	assert.Equal(t, "New Instructor", course.Instructor)
}

func TestCourseTitles_Sorted(t *testing.T) {
	store := newTestStore(t, 5)
	ctx := context.Background()
	require.NoError(t, store.UpsertCourseMetadata(ctx, &datatypes.Course{Title: "Zeta"}))
	require.NoError(t, store.UpsertCourseMetadata(ctx, &datatypes.Course{Title: "Alpha"}))

	titles, err := store.CourseTitles(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha", "Zeta"}, titles)
}

func TestHashEmbedder_Deterministic(t *testing.T) {
	embedder := NewHashEmbedder()
	a, err := embedder.Embed(context.Background(), "Introduction to Testing")
	require.NoError(t, err)
	b, err := embedder.Embed(context.Background(), "Introduction to Testing")
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := embedder.Embed(context.Background(), "something else entirely")
	require.NoError(t, err)
	assert.Greater(t, cosine(a, b), cosine(a, c),
		"identical text should score higher than unrelated text")
}
