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
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/CourseCompass/services/orchestrator/services"
)

const healthTimeout = 2 * time.Second

// HandleHealth answers GET /health. The index is probed with a short
// timeout; a failing index degrades the status instead of failing the
// endpoint so load balancers can tell "slow" from "gone".
func HandleHealth(rag *services.RAGSystem) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()

		stats, err := rag.GetCatalogStats(ctx)
		if err != nil {
			c.JSON(http.StatusOK, gin.H{"status": "degraded", "index": "unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "courses": stats.TotalCourses})
	}
}
