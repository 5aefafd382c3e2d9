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

// OutlineToolName is the name the model uses to fetch a course outline.
const OutlineToolName = "get_course_outline"

// GetCourseOutlineTool returns a course's title, link, and ordered lesson
// list from a fuzzy course name. It records the course itself as a single
// provenance entry.
type GetCourseOutlineTool struct {
	store   vectorstore.Store
	sources []datatypes.Source
}

// NewGetCourseOutlineTool builds the outline tool over a store.
func NewGetCourseOutlineTool(store vectorstore.Store) *GetCourseOutlineTool {
	return &GetCourseOutlineTool{store: store}
}

// Definition returns the advertised schema.
func (t *GetCourseOutlineTool) Definition() ToolSchema {
	return ToolSchema{
		Name: OutlineToolName,
		Description: "Get the complete outline of a course including its " +
			"title, link, and full lesson list",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"course_name": map[string]any{
					"type":        "string",
					"description": "Course title (partial matches work, e.g. 'MCP', 'Introduction')",
				},
			},
			"required": []string{"course_name"},
		},
	}
}

// Execute resolves the name and renders the outline.
func (t *GetCourseOutlineTool) Execute(ctx context.Context, args map[string]any) string {
	courseName := stringArg(args, "course_name")
	if courseName == "" {
		return "Error: 'course_name' parameter is required"
	}

	title, err := t.store.ResolveCourseName(ctx, courseName)
	if err != nil {
		slog.Debug("Course name resolution failed", "name", courseName, "error", err)
		return fmt.Sprintf("No course found matching '%s'", courseName)
	}

	course, err := t.store.GetCourseOutline(ctx, title)
	if err != nil {
		slog.Error("Outline lookup failed after resolution", "title", title, "error", err)
		return fmt.Sprintf("No course found matching '%s'", courseName)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Course Title: %s\n", course.Title)
	if course.CourseLink != "" {
		fmt.Fprintf(&b, "Course Link: %s\n", course.CourseLink)
	}
	if course.Instructor != "" {
		fmt.Fprintf(&b, "Instructor: %s\n", course.Instructor)
	}
	fmt.Fprintf(&b, "Lessons (%d):\n", len(course.Lessons))
	for _, lesson := range course.Lessons {
		fmt.Fprintf(&b, "Lesson %d: %s\n", lesson.LessonNumber, lesson.Title)
	}

	t.sources = []datatypes.Source{{Label: course.Title, Link: course.CourseLink}}
	return strings.TrimRight(b.String(), "\n")
}

// LastSources returns the provenance from the most recent Execute.
func (t *GetCourseOutlineTool) LastSources() []datatypes.Source {
	return t.sources
}

// ResetSources clears the recorded provenance.
func (t *GetCourseOutlineTool) ResetSources() {
	t.sources = nil
}
