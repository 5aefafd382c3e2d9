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
	"context"
	"log"
	"log/slog"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate/entities/models"
)

// GetCourseCatalogSchema returns the class holding one object per course.
// The title is embedded so free-text course names can be resolved against it
// by vector similarity; lessons travel as a JSON blob since they are only
// ever read back whole.
func GetCourseCatalogSchema() *models.Class {
	indexFilterable := new(bool)
	*indexFilterable = true

	return &models.Class{
		Class:       "CourseCatalog",
		Description: "One entry per course: title, links, instructor, and the ordered lesson list.",
		Vectorizer:  "none",
		Properties: []*models.Property{
			{
				Name:         "course_title",
				DataType:     []string{"text"},
				Description:  "The course title. Unique across the catalog.",
				Tokenization: "word",
			},
			{
				Name:            "course_link",
				DataType:        []string{"text"},
				Description:     "Link to the course landing page.",
				IndexFilterable: indexFilterable,
				Tokenization:    "field",
			},
			{
				Name:         "instructor",
				DataType:     []string{"text"},
				Description:  "The course instructor, if known.",
				Tokenization: "word",
			},
			{
				Name:        "lessons_json",
				DataType:    []string{"text"},
				Description: "The ordered lesson list (number, title, link) serialized as JSON.",
			},
		},
	}
}

// GetCourseContentSchema returns the class holding embedded text chunks.
func GetCourseContentSchema() *models.Class {
	indexFilterable := new(bool)
	*indexFilterable = true

	return &models.Class{
		Class:       "CourseContent",
		Description: "A chunk of course text with its owning course, lesson, and position.",
		Vectorizer:  "none",
		Properties: []*models.Property{
			{
				Name:         "content",
				DataType:     []string{"text"},
				Description:  "The chunk text.",
				Tokenization: "word",
			},
			{
				Name:            "course_title",
				DataType:        []string{"text"},
				Description:     "Title of the owning course.",
				IndexFilterable: indexFilterable,
				Tokenization:    "field",
			},
			{
				Name:            "lesson_number",
				DataType:        []string{"int"},
				Description:     "Lesson the chunk belongs to.",
				IndexFilterable: indexFilterable,
			},
			{
				Name:            "chunk_index",
				DataType:        []string{"int"},
				Description:     "Monotonic position of the chunk within its course.",
				IndexFilterable: indexFilterable,
			},
		},
	}
}

// EnsureWeaviateSchema creates the catalog and content classes if they do not
// exist yet. Failure to create a class is fatal: the service cannot answer
// queries without its index.
func EnsureWeaviateSchema(client *weaviate.Client) {
	schemaGetters := []func() *models.Class{
		GetCourseCatalogSchema,
		GetCourseContentSchema,
	}

	for _, getSchema := range schemaGetters {
		class := getSchema()
		slog.Info("Checking schema", "class", class.Class)

		_, err := client.Schema().ClassGetter().WithClassName(class.Class).Do(context.Background())
		if err != nil {
			slog.Info("Schema not found, creating it...", "class", class.Class)
			err := client.Schema().ClassCreator().WithClass(class).Do(context.Background())
			if err != nil {
				log.Fatalf("Failed to create schema for class %s: %v", class.Class, err)
			}
			slog.Info("Successfully created schema", "class", class.Class)
		} else {
			slog.Info("Schema already exists", "class", class.Class)
		}
	}
}
