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
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// =============================================================================
// Constants for Security Compliance
// =============================================================================

const (
	// MaxQueryContentBytes is the maximum size of a single query. Byte
	// length, not rune count, to bound memory on hostile payloads.
	MaxQueryContentBytes = 32 * 1024 // 32KB
)

// =============================================================================
// Shared Validator Instance
// =============================================================================

// queryValidate is the validator instance for query datatypes.
var queryValidate *validator.Validate

func init() {
	queryValidate = validator.New()
	_ = queryValidate.RegisterValidation("maxbytes", validateMaxBytes)
}

// validateMaxBytes enforces the MaxQueryContentBytes limit on string fields.
func validateMaxBytes(fl validator.FieldLevel) bool {
	return len(fl.Field().String()) <= MaxQueryContentBytes
}

// =============================================================================
// Query Request/Response Types
// =============================================================================

// QueryRequest is the body of POST /v1/query.
//
// SessionID is optional: when empty the server creates a fresh session and
// returns its id so the client can continue the conversation.
type QueryRequest struct {
	RequestID string `json:"request_id" validate:"omitempty,uuid4"`
	Timestamp int64  `json:"timestamp" validate:"gte=0"`
	Query     string `json:"query" validate:"required,maxbytes"`
	SessionID string `json:"session_id"`
}

// Validate checks the request after JSON binding.
func (r *QueryRequest) Validate() error {
	return queryValidate.Struct(r)
}

// EnsureDefaults populates RequestID and Timestamp when the client omitted
// them, so every request is traceable end to end.
func (r *QueryRequest) EnsureDefaults() {
	if r.RequestID == "" {
		r.RequestID = uuid.NewString()
	}
	if r.Timestamp == 0 {
		r.Timestamp = time.Now().UnixMilli()
	}
}

// QueryResponse is the answer to one query.
//
// State reports how the tool-calling loop terminated: "answered" for a
// normal completion, "round_cap_reached" when the model was still requesting
// tools at the cap and the returned answer may be partial.
type QueryResponse struct {
	Answer    string   `json:"answer"`
	SessionID string   `json:"session_id"`
	Sources   []Source `json:"sources,omitempty"`
	State     string   `json:"state"`
}

// CourseStatsResponse is the body of GET /v1/courses.
type CourseStatsResponse struct {
	TotalCourses int      `json:"total_courses"`
	CourseTitles []string `json:"course_titles"`
}

// NewSessionResponse is the body of POST /v1/sessions.
type NewSessionResponse struct {
	SessionID string `json:"session_id"`
}
