// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/CourseCompass/services/orchestrator/services"
)

// HandleCourseStats answers GET /v1/courses with the catalog's course count
// and title list.
func HandleCourseStats(rag *services.RAGSystem) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := rag.GetCatalogStats(c.Request.Context())
		if err != nil {
			slog.Error("Failed to read catalog stats", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read catalog"})
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}
