// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package datatypes provides data structures for the orchestrator service.
//
// This file contains the catalog entities: courses, lessons, content chunks,
// and the provenance records produced by tool executions. Request/response
// types for the HTTP surface live in query.go; Weaviate schema bootstrap and
// response parsing live in weaviate_schemas.go and weaviate_query.go.
package datatypes

import "fmt"

// Lesson is one ordered unit of a course. Lesson numbers start at zero and
// are unique within their course.
type Lesson struct {
	LessonNumber int    `json:"lesson_number"`
	Title        string `json:"title"`
	LessonLink   string `json:"lesson_link,omitempty"`
}

// Course is one catalog entry. The title is the unique identifier across the
// whole catalog; ingestion skips documents whose title already exists rather
// than merging them. A Course is immutable once ingested.
type Course struct {
	Title      string   `json:"title"`
	CourseLink string   `json:"course_link,omitempty"`
	Instructor string   `json:"instructor,omitempty"`
	Lessons    []Lesson `json:"lessons"`
}

// LessonLink returns the link of the numbered lesson, or "" if the lesson has
// no link or does not exist.
func (c *Course) LessonLink(lessonNumber int) string {
	for _, lesson := range c.Lessons {
		if lesson.LessonNumber == lessonNumber {
			return lesson.LessonLink
		}
	}
	return ""
}

// CourseChunk is a bounded span of course text prepared for retrieval.
// ChunkIndex is monotonic per course across all lessons. LessonNumber is -1
// for course-level text that precedes the first lesson. Chunks are immutable
// once stored.
type CourseChunk struct {
	Content      string `json:"content"`
	CourseTitle  string `json:"course_title"`
	LessonNumber int    `json:"lesson_number"`
	ChunkIndex   int    `json:"chunk_index"`
}

// ID returns the stable identity of the chunk within the index.
func (c *CourseChunk) ID() string {
	return fmt.Sprintf("%s_%d", c.CourseTitle, c.ChunkIndex)
}

// Source is a provenance record: a citation produced as a side effect of a
// tool execution. Sources are valid only for the lifetime of one query; the
// registry hands them to the caller once and then clears them.
type Source struct {
	Label string `json:"text"`
	Link  string `json:"url,omitempty"`
}
