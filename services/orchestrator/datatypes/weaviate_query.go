// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package datatypes

import (
	"encoding/json"
	"fmt"

	"github.com/weaviate/weaviate/entities/models"
)

// =============================================================================
// Generic GraphQL Response Parser
// =============================================================================

// ParseGraphQLResponse parses a Weaviate GraphQL response into the target
// type. It encapsulates the marshal/unmarshal round trip required to convert
// Weaviate's dynamic response (map[string]models.JSONObject) into a
// strongly-typed struct; the target type T must have json tags matching the
// expected response shape. Type mismatches yield zero values, not errors.
func ParseGraphQLResponse[T any](resp *models.GraphQLResponse) (*T, error) {
	if resp == nil {
		return nil, fmt.Errorf("nil GraphQL response")
	}

	respBytes, err := json.Marshal(resp.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal GraphQL response data: %w", err)
	}

	var result T
	if err := json.Unmarshal(respBytes, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal into target type: %w", err)
	}

	return &result, nil
}

// =============================================================================
// Common Weaviate Response Types
// =============================================================================

// CatalogQueryResponse represents the response from querying the
// CourseCatalog class.
type CatalogQueryResponse struct {
	Get struct {
		CourseCatalog []CatalogResult `json:"CourseCatalog"`
	} `json:"Get"`
}

// CatalogResult represents a single course entry from a catalog query.
type CatalogResult struct {
	CourseTitle string `json:"course_title"`
	CourseLink  string `json:"course_link"`
	Instructor  string `json:"instructor"`
	LessonsJSON string `json:"lessons_json"`
	Additional  struct {
		ID       string   `json:"id"`
		Distance *float32 `json:"distance"`
	} `json:"_additional"`
}

// Course reconstructs the full Course entity from the stored properties.
func (r *CatalogResult) Course() (*Course, error) {
	course := &Course{
		Title:      r.CourseTitle,
		CourseLink: r.CourseLink,
		Instructor: r.Instructor,
	}
	if r.LessonsJSON != "" {
		if err := json.Unmarshal([]byte(r.LessonsJSON), &course.Lessons); err != nil {
			return nil, fmt.Errorf("failed to decode lessons for course %q: %w", r.CourseTitle, err)
		}
	}
	return course, nil
}

// ContentQueryResponse represents the response from querying the
// CourseContent class.
type ContentQueryResponse struct {
	Get struct {
		CourseContent []ContentResult `json:"CourseContent"`
	} `json:"Get"`
}

// ContentResult represents a single chunk from a content query.
type ContentResult struct {
	Content      string `json:"content"`
	CourseTitle  string `json:"course_title"`
	LessonNumber int    `json:"lesson_number"`
	ChunkIndex   int    `json:"chunk_index"`
	Additional   struct {
		ID        string   `json:"id"`
		Distance  *float32 `json:"distance"`
		Certainty *float32 `json:"certainty"`
	} `json:"_additional"`
}

// =============================================================================
// Property Maps
// =============================================================================

// CatalogProperties converts a Course into the map Weaviate's Creator wants.
// Lessons are serialized to JSON; they are only ever read back whole.
func CatalogProperties(course *Course) (map[string]interface{}, error) {
	lessonsJSON, err := json.Marshal(course.Lessons)
	if err != nil {
		return nil, fmt.Errorf("failed to encode lessons for course %q: %w", course.Title, err)
	}
	return map[string]interface{}{
		"course_title": course.Title,
		"course_link":  course.CourseLink,
		"instructor":   course.Instructor,
		"lessons_json": string(lessonsJSON),
	}, nil
}

// ContentProperties converts a CourseChunk into a Weaviate property map.
func ContentProperties(chunk *CourseChunk) map[string]interface{} {
	return map[string]interface{}{
		"content":       chunk.Content,
		"course_title":  chunk.CourseTitle,
		"lesson_number": chunk.LessonNumber,
		"chunk_index":   chunk.ChunkIndex,
	}
}
