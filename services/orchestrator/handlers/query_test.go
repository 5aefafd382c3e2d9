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
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/CourseCompass/services/llm"
	"github.com/AleutianAI/CourseCompass/services/orchestrator/datatypes"
	"github.com/AleutianAI/CourseCompass/services/orchestrator/services"
	"github.com/AleutianAI/CourseCompass/services/orchestrator/vectorstore"
	"github.com/AleutianAI/CourseCompass/services/policy_engine"
)

// scriptedClient replays canned responses for handler tests.
type scriptedClient struct {
	responses []*llm.ChatResponse
	calls     int
}

func (c *scriptedClient) Chat(_ context.Context, _ string, _ []llm.Message, _ llm.GenerationParams) (*llm.ChatResponse, error) {
	c.calls++
	if c.calls > len(c.responses) {
		return c.responses[len(c.responses)-1], nil
	}
	return c.responses[c.calls-1], nil
}

func textResponse(text string) *llm.ChatResponse {
	return &llm.ChatResponse{
		StopReason: llm.StopEndTurn,
		Content:    []llm.ContentBlock{llm.TextBlock{Text: text}},
	}
}

func newTestRouter(t *testing.T, responses ...*llm.ChatResponse) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := vectorstore.NewMemoryStore(vectorstore.NewHashEmbedder(), 3)
	require.NoError(t, store.UpsertCourseMetadata(context.Background(), &datatypes.Course{
		Title: "Introduction to Testing",
	}))

	rag, err := services.NewRAGSystem(store, &scriptedClient{responses: responses}, "test", 2)
	require.NoError(t, err)

	pe, err := policy_engine.NewPolicyEngine()
	require.NoError(t, err)

	router := gin.New()
	router.GET("/health", HandleHealth(rag))
	router.POST("/v1/query", HandleQuery(rag, pe))
	router.GET("/v1/courses", HandleCourseStats(rag))
	router.POST("/v1/sessions", HandleNewSession(rag))
	router.DELETE("/v1/sessions/:sessionId", HandleClearSession(rag))
	return router
}

func postJSON(t *testing.T, router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandleQuery_Success(t *testing.T) {
	router := newTestRouter(t, textResponse("The answer."))

	w := postJSON(t, router, "/v1/query", datatypes.QueryRequest{Query: "what is testing?"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp datatypes.QueryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "The answer.", resp.Answer)
	assert.NotEmpty(t, resp.SessionID, "a session is assigned when the client omits one")
	assert.Equal(t, "answered", resp.State)
}

func TestHandleQuery_ReusesSession(t *testing.T) {
	router := newTestRouter(t, textResponse("one"), textResponse("two"))

	first := postJSON(t, router, "/v1/query", datatypes.QueryRequest{Query: "first"})
	var resp datatypes.QueryResponse
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &resp))

	second := postJSON(t, router, "/v1/query", datatypes.QueryRequest{
		Query:     "second",
		SessionID: resp.SessionID,
	})
	require.Equal(t, http.StatusOK, second.Code)

	var resp2 datatypes.QueryResponse
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &resp2))
	assert.Equal(t, resp.SessionID, resp2.SessionID)
}

func TestHandleQuery_InvalidBody(t *testing.T) {
	router := newTestRouter(t, textResponse("x"))

	req := httptest.NewRequest(http.MethodPost, "/v1/query", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleQuery_EmptyQueryRejected(t *testing.T) {
	router := newTestRouter(t, textResponse("x"))

	w := postJSON(t, router, "/v1/query", datatypes.QueryRequest{Query: ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleQuery_PolicyViolationBlocked(t *testing.T) {
	router := newTestRouter(t, textResponse("x"))

	w := postJSON(t, router, "/v1/query", datatypes.QueryRequest{
		Query: "why does AKIA1234567890123456 not work as my key?",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Policy Violation")
}

func TestHandleCourseStats(t *testing.T) {
	router := newTestRouter(t, textResponse("x"))

	req := httptest.NewRequest(http.MethodGet, "/v1/courses", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var stats datatypes.CourseStatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.TotalCourses)
	assert.Equal(t, []string{"Introduction to Testing"}, stats.CourseTitles)
}

func TestSessionLifecycle(t *testing.T) {
	router := newTestRouter(t, textResponse("x"))

	w := postJSON(t, router, "/v1/sessions", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp datatypes.NewSessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.SessionID)

	req := httptest.NewRequest(http.MethodDelete, "/v1/sessions/"+resp.SessionID, nil)
	del := httptest.NewRecorder()
	router.ServeHTTP(del, req)
	assert.Equal(t, http.StatusOK, del.Code)
	assert.Contains(t, del.Body.String(), resp.SessionID)
}

func TestHandleHealth(t *testing.T) {
	router := newTestRouter(t, textResponse("x"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}
