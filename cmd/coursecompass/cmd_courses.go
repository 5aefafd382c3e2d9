// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/CourseCompass/pkg/ux"
)

func runCoursesCommand(cmd *cobra.Command, args []string) {
	client := NewCompassClient()

	stats, err := client.Courses()
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	ux.Title(fmt.Sprintf("Course Catalog (%d courses)", stats.TotalCourses))
	for i, title := range stats.CourseTitles {
		fmt.Printf("%d. %s\n", i+1, title)
	}
	if stats.TotalCourses == 0 {
		ux.Info("No courses ingested yet. Point COURSE_DOCS_DIR at your course documents.")
	}
}
