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
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/AleutianAI/CourseCompass/cmd/coursecompass/config"
	"github.com/AleutianAI/CourseCompass/services/orchestrator/datatypes"
)

// getOrchestratorBaseURL resolves the server address.
func getOrchestratorBaseURL() string {
	// 1. Priority: Environment Variable (Used by Tests & Docker overrides)
	if url := os.Getenv("COURSECOMPASS_ORCHESTRATOR_URL"); url != "" {
		return url
	}
	// 2. Config file value (defaults applied at load time)
	return config.Global.Orchestrator.URL
}

// CompassClient talks to the orchestrator HTTP API.
type CompassClient struct {
	baseURL string
	http    *http.Client
}

// NewCompassClient builds a client against the resolved base URL.
func NewCompassClient() *CompassClient {
	timeout := time.Duration(config.Global.Orchestrator.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &CompassClient{
		baseURL: getOrchestratorBaseURL(),
		http:    &http.Client{Timeout: timeout},
	}
}

// apiError is the {"error": ...} body every failure path returns.
type apiError struct {
	Error string `json:"error"`
}

func (c *CompassClient) postJSON(path string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	resp, err := c.http.Post(c.baseURL+path, "application/json", bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("orchestrator unreachable at %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()
	return decodeResponse(resp, out)
}

func (c *CompassClient) getJSON(path string, out any) error {
	resp, err := c.http.Get(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("orchestrator unreachable at %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()
	return decodeResponse(resp, out)
}

func decodeResponse(resp *http.Response, out any) error {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("server returned %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Ask sends one question, reusing sessionID when non-empty.
func (c *CompassClient) Ask(question, sessionID string) (*datatypes.QueryResponse, error) {
	req := datatypes.QueryRequest{
		Query:     question,
		SessionID: sessionID,
	}
	req.EnsureDefaults()

	var out datatypes.QueryResponse
	if err := c.postJSON("/v1/query", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Courses fetches the catalog summary.
func (c *CompassClient) Courses() (*datatypes.CourseStatsResponse, error) {
	var out datatypes.CourseStatsResponse
	if err := c.getJSON("/v1/courses", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// NewSession asks the server for a fresh conversation.
func (c *CompassClient) NewSession() (string, error) {
	var out datatypes.NewSessionResponse
	if err := c.postJSON("/v1/sessions", nil, &out); err != nil {
		return "", err
	}
	return out.SessionID, nil
}

// ClearSession drops a conversation's history on the server.
func (c *CompassClient) ClearSession(sessionID string) error {
	req, err := http.NewRequest(http.MethodDelete, c.baseURL+"/v1/sessions/"+sessionID, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("orchestrator unreachable at %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()
	return decodeResponse(resp, nil)
}

// Health probes the server and returns its status string.
func (c *CompassClient) Health() (string, int, error) {
	var out struct {
		Status  string `json:"status"`
		Courses int    `json:"courses"`
	}
	if err := c.getJSON("/health", &out); err != nil {
		return "", 0, err
	}
	return out.Status, out.Courses, nil
}
