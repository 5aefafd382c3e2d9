// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"log/slog"
	"math"
	"net/http"
	"os"
	"strings"
	"time"
)

// =============================================================================
// Service Embedder (HTTP)
// =============================================================================

type embeddingRequest struct {
	Text string `json:"text"`
}

type embeddingResponse struct {
	Id        string    `json:"id"`
	Timestamp int       `json:"timestamp"`
	Text      string    `json:"text"`
	Vector    []float32 `json:"vector"`
	Dim       int       `json:"dim"`
}

// ServiceEmbedder calls the embedding sidecar's /embed endpoint.
//
// # Description
//
// The sidecar accepts {"text": "..."} and returns the vector with its
// dimensionality. The URL comes from EMBEDDING_SERVICE_URL when the zero
// value is constructed via NewServiceEmbedder.
//
// # Thread Safety
//
// Safe for concurrent use; the underlying http.Client handles concurrency.
type ServiceEmbedder struct {
	url        string
	httpClient *http.Client
}

// NewServiceEmbedder builds a ServiceEmbedder from EMBEDDING_SERVICE_URL.
func NewServiceEmbedder() *ServiceEmbedder {
	url := os.Getenv("EMBEDDING_SERVICE_URL")
	if url == "" {
		url = "http://localhost:8000/embed"
		slog.Warn("EMBEDDING_SERVICE_URL not set, using default", "url", url)
	}
	return &ServiceEmbedder{
		url:        url,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Embed posts text to the embedding service and returns its vector.
func (e *ServiceEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	reqBody, err := json.Marshal(embeddingRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal the embedding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to setup a new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cache-Control", "no-cache, no-store, must-revalidate")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make the request to the embedding service: %w", err)
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			slog.Warn("Failed to close embedding response body", "error", err)
		}
	}(resp.Body)

	bodyBytes, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("the response was not a 200 OK from the embedding service: %s, %d",
			string(bodyBytes), resp.StatusCode)
	}

	var embResp embeddingResponse
	if err := json.Unmarshal(bodyBytes, &embResp); err != nil {
		return nil, fmt.Errorf("failed to parse the response from the embedding service: %w", err)
	}
	if len(embResp.Vector) == 0 {
		return nil, fmt.Errorf("embedding service returned an empty vector for text of length %d", len(text))
	}
	return embResp.Vector, nil
}

// =============================================================================
// Hash Embedder (deterministic fallback)
// =============================================================================

const hashEmbedderDim = 256

// HashEmbedder is a deterministic, dependency-free embedding provider.
//
// # Description
//
// Tokenizes on whitespace, lowercases, and folds each token into a fixed-size
// bag-of-words vector via FNV-1a hashing, then L2-normalizes. Nearest
// neighbors under this embedding are texts sharing tokens, which is enough
// for course-title resolution and for exercising search paths without a
// model-backed embedding service.
//
// # Limitations
//
//   - No semantic similarity beyond shared tokens.
//   - Hash collisions fold unrelated tokens into the same dimension.
type HashEmbedder struct{}

// NewHashEmbedder returns the deterministic fallback provider.
func NewHashEmbedder() *HashEmbedder {
	return &HashEmbedder{}
}

// Embed returns the normalized bag-of-tokens vector for text. It never fails.
func (e *HashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, hashEmbedderDim)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		token = strings.Trim(token, ".,;:!?\"'()[]")
		if token == "" {
			continue
		}
		h := fnv.New32a()
		_, _ = h.Write([]byte(token))
		vec[h.Sum32()%hashEmbedderDim]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		inv := float32(1.0 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= inv
		}
	}
	return vec, nil
}
