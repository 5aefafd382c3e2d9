// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package handlers holds the gin handlers for the orchestrator's HTTP API.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/AleutianAI/CourseCompass/services/orchestrator/datatypes"
	"github.com/AleutianAI/CourseCompass/services/orchestrator/services"
	"github.com/AleutianAI/CourseCompass/services/policy_engine"
)

var tracer = otel.Tracer("coursecompass.orchestrator.handlers")

// HandleQuery answers POST /v1/query.
//
// # Description
//
// Validates the request, scans the query against the outbound data policy,
// and runs it through the RAG pipeline. The response carries the answer, the
// session id in use, the provenance sources, and the loop's terminal state.
func HandleQuery(rag *services.RAGSystem, pe *policy_engine.PolicyEngine) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracer.Start(c.Request.Context(), "HandleQuery")
		defer span.End()

		var req datatypes.QueryRequest
		if err := c.BindJSON(&req); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Error("Failed to parse the query request", "error", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		req.EnsureDefaults()
		if err := req.Validate(); err != nil {
			span.RecordError(err)
			slog.Warn("Rejected invalid query request", "error", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if pe != nil {
			if findings := pe.ScanQuery(req.Query); len(findings) > 0 {
				slog.Warn("Blocked query due to policy violation",
					"requestID", req.RequestID, "findings", len(findings))
				c.JSON(http.StatusForbidden, gin.H{
					"error":    "Policy Violation: Query contains sensitive data.",
					"findings": findings,
				})
				return
			}
		}

		outcome, err := rag.AnswerQuery(ctx, req.Query, req.SessionID)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Error("Query pipeline failed", "requestID", req.RequestID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
			return
		}

		c.JSON(http.StatusOK, datatypes.QueryResponse{
			Answer:    outcome.Answer,
			SessionID: outcome.SessionID,
			Sources:   outcome.Sources,
			State:     string(outcome.State),
		})
	}
}
