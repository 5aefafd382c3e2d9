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

	"github.com/AleutianAI/CourseCompass/services/orchestrator/datatypes"
	"github.com/AleutianAI/CourseCompass/services/orchestrator/services"
)

// HandleNewSession answers POST /v1/sessions with a fresh session id.
func HandleNewSession(rag *services.RAGSystem) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := rag.CreateSession()
		slog.Info("Created session", "sessionId", id)
		c.JSON(http.StatusOK, datatypes.NewSessionResponse{SessionID: id})
	}
}

// HandleClearSession answers DELETE /v1/sessions/:sessionId by dropping the
// session's history. The session id stays usable afterwards.
func HandleClearSession(rag *services.RAGSystem) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.Param("sessionId")
		slog.Info("Received a request to clear a session", "sessionId", sessionID)

		rag.ClearSession(sessionID)
		c.JSON(http.StatusOK, gin.H{"status": "success", "cleared_session_id": sessionID})
	}
}
