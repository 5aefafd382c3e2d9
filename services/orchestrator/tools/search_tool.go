// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package tools

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/AleutianAI/CourseCompass/services/orchestrator/datatypes"
	"github.com/AleutianAI/CourseCompass/services/orchestrator/vectorstore"
)

// SearchToolName is the name the model uses to invoke content search.
const SearchToolName = "search_course_content"

// SearchCourseContentTool searches course materials with optional course and
// lesson scoping.
//
// # Description
//
// The model supplies a query, optionally a fuzzy course name and a lesson
// number. The course name is resolved against the catalog before searching;
// an unresolvable name short-circuits with a "No course found" message and
// no search is performed. Matched chunks are formatted as
// "[<course> - Lesson <n>]" blocks and recorded as one Source each.
type SearchCourseContentTool struct {
	store   vectorstore.Store
	sources []datatypes.Source
}

// NewSearchCourseContentTool builds the search tool over a store.
func NewSearchCourseContentTool(store vectorstore.Store) *SearchCourseContentTool {
	return &SearchCourseContentTool{store: store}
}

// Definition returns the advertised schema.
func (t *SearchCourseContentTool) Definition() ToolSchema {
	return ToolSchema{
		Name: SearchToolName,
		Description: "Search course materials with smart course name matching " +
			"and lesson filtering",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "What to search for in course content",
				},
				"course_name": map[string]any{
					"type":        "string",
					"description": "Course title (partial matches work, e.g. 'MCP', 'Introduction')",
				},
				"lesson_number": map[string]any{
					"type":        "integer",
					"description": "Specific lesson number to search within (e.g. 1, 2, 3)",
				},
			},
			"required": []string{"query"},
		},
	}
}

// Execute resolves the course scope, searches, and formats the results.
func (t *SearchCourseContentTool) Execute(ctx context.Context, args map[string]any) string {
	query := stringArg(args, "query")
	if query == "" {
		return "Error: 'query' parameter is required"
	}
	courseName := stringArg(args, "course_name")
	lessonNumber := intArg(args, "lesson_number")

	resolvedTitle := ""
	if courseName != "" {
		title, err := t.store.ResolveCourseName(ctx, courseName)
		if err != nil {
			slog.Debug("Course name resolution failed", "name", courseName, "error", err)
			return fmt.Sprintf("No course found matching '%s'", courseName)
		}
		resolvedTitle = title
	}

	results, err := t.store.Search(ctx, query, resolvedTitle, lessonNumber)
	if err != nil {
		slog.Error("Content search failed", "query", query, "error", err)
		return fmt.Sprintf("Search error: %v", err)
	}
	if results.Err != "" {
		return results.Err
	}
	if results.IsEmpty() {
		return t.emptyMessage(resolvedTitle, lessonNumber)
	}

	return t.format(ctx, results)
}

// LastSources returns the provenance from the most recent Execute.
func (t *SearchCourseContentTool) LastSources() []datatypes.Source {
	return t.sources
}

// ResetSources clears the recorded provenance.
func (t *SearchCourseContentTool) ResetSources() {
	t.sources = nil
}

func (t *SearchCourseContentTool) emptyMessage(courseTitle string, lessonNumber *int) string {
	var b strings.Builder
	b.WriteString("No relevant content found")
	if courseTitle != "" {
		fmt.Fprintf(&b, " in course '%s'", courseTitle)
	}
	if lessonNumber != nil {
		fmt.Fprintf(&b, " in lesson %d", *lessonNumber)
	}
	b.WriteString(".")
	return b.String()
}

// format renders result blocks and records sources. Outline lookups for
// links are cached per call; a failed lookup degrades to a link-less source.
func (t *SearchCourseContentTool) format(ctx context.Context, results *vectorstore.SearchResults) string {
	outlines := make(map[string]*datatypes.Course)
	courseFor := func(title string) *datatypes.Course {
		if course, ok := outlines[title]; ok {
			return course
		}
		course, err := t.store.GetCourseOutline(ctx, title)
		if err != nil {
			slog.Debug("No outline for search result course", "title", title, "error", err)
			course = nil
		}
		outlines[title] = course
		return course
	}

	blocks := make([]string, 0, len(results.Documents))
	sources := make([]datatypes.Source, 0, len(results.Documents))
	for _, doc := range results.Documents {
		header := fmt.Sprintf("[%s]", doc.CourseTitle)
		label := doc.CourseTitle
		if doc.LessonNumber != nil {
			header = fmt.Sprintf("[%s - Lesson %d]", doc.CourseTitle, *doc.LessonNumber)
			label = fmt.Sprintf("%s - Lesson %d", doc.CourseTitle, *doc.LessonNumber)
		}
		blocks = append(blocks, header+"\n"+doc.Content)

		link := ""
		if course := courseFor(doc.CourseTitle); course != nil {
			if doc.LessonNumber != nil {
				link = course.LessonLink(*doc.LessonNumber)
			}
			if link == "" {
				link = course.CourseLink
			}
		}
		sources = append(sources, datatypes.Source{Label: label, Link: link})
	}

	t.sources = sources
	return strings.Join(blocks, "\n\n")
}
