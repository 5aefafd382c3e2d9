// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AleutianAI/CourseCompass/services/orchestrator/handlers"
	"github.com/AleutianAI/CourseCompass/services/orchestrator/services"
	"github.com/AleutianAI/CourseCompass/services/policy_engine"
)

func SetupRoutes(router *gin.Engine, rag *services.RAGSystem,
	policyEngine *policy_engine.PolicyEngine) {

	router.GET("/health", handlers.HandleHealth(rag))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API version 1 group
	v1 := router.Group("/v1")
	{
		v1.POST("/query", handlers.HandleQuery(rag, policyEngine))
		v1.GET("/courses", handlers.HandleCourseStats(rag))
		// Session administration routes
		sessions := v1.Group("/sessions")
		{
			sessions.POST("", handlers.HandleNewSession(rag))
			sessions.DELETE("/:sessionId", handlers.HandleClearSession(rag))
		}
	}
}
