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
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/CourseCompass/services/orchestrator/datatypes"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *CompassClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	t.Setenv("COURSECOMPASS_ORCHESTRATOR_URL", srv.URL)
	return NewCompassClient()
}

func TestAsk_SendsQueryAndDecodesAnswer(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/query", r.URL.Path)

		var req datatypes.QueryRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "what is lesson 2 about?", req.Query)
		assert.Equal(t, "sess_abc", req.SessionID)
		assert.NotEmpty(t, req.RequestID, "client fills request defaults before sending")

		json.NewEncoder(w).Encode(datatypes.QueryResponse{
			Answer:    "Lesson 2 covers testing.",
			SessionID: "sess_abc",
			State:     "answered",
			Sources: []datatypes.Source{
				{Label: "Intro to Go - Lesson 2", Link: "https://example.com/l2"},
			},
		})
	})

	resp, err := client.Ask("what is lesson 2 about?", "sess_abc")
	require.NoError(t, err)
	assert.Equal(t, "Lesson 2 covers testing.", resp.Answer)
	assert.Equal(t, "answered", resp.State)
	require.Len(t, resp.Sources, 1)
	assert.Equal(t, "Intro to Go - Lesson 2", resp.Sources[0].Label)
}

func TestAsk_SurfacesServerErrorBody(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "Policy Violation: Query contains sensitive data.",
		})
	})

	_, err := client.Ask("here is my key sk-ant-xyz", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.Contains(t, err.Error(), "Policy Violation")
}

func TestCourses(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/courses", r.URL.Path)
		json.NewEncoder(w).Encode(datatypes.CourseStatsResponse{
			TotalCourses: 2,
			CourseTitles: []string{"Intro to Go", "Intro to Testing"},
		})
	})

	stats, err := client.Courses()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalCourses)
	assert.Equal(t, []string{"Intro to Go", "Intro to Testing"}, stats.CourseTitles)
}

func TestSessionLifecycle(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1/sessions":
			json.NewEncoder(w).Encode(datatypes.NewSessionResponse{SessionID: "sess_new"})
		case r.Method == http.MethodDelete && r.URL.Path == "/v1/sessions/sess_new":
			json.NewEncoder(w).Encode(map[string]string{
				"status": "success", "cleared_session_id": "sess_new",
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	id, err := client.NewSession()
	require.NoError(t, err)
	assert.Equal(t, "sess_new", id)

	assert.NoError(t, client.ClearSession(id))
}

func TestHealth(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/health", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{"status": "ok", "courses": 3})
	})

	status, courses, err := client.Health()
	require.NoError(t, err)
	assert.Equal(t, "ok", status)
	assert.Equal(t, 3, courses)
}

func TestGetOrchestratorBaseURL_EnvWins(t *testing.T) {
	t.Setenv("COURSECOMPASS_ORCHESTRATOR_URL", "http://override:9999")
	assert.Equal(t, "http://override:9999", getOrchestratorBaseURL())
}
