// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package llm provides clients for hosted language model backends.
//
// The package models the Messages-style API shape shared by the supported
// backends: a request carries a system prompt, an ordered message transcript,
// and optionally a set of tool definitions; a response carries a stop reason
// and a list of content blocks. Content blocks are a closed union of
// TextBlock, ToolUseBlock, and ToolResultBlock so callers can switch on the
// concrete type instead of inspecting a "type" string at runtime.
package llm

import "context"

// =============================================================================
// Content Blocks
// =============================================================================

// ContentBlock is one element of a message's content. Exactly three types
// implement it: TextBlock, ToolUseBlock, and ToolResultBlock.
type ContentBlock interface {
	isContentBlock()
}

// TextBlock is plain assistant or user text.
type TextBlock struct {
	Text string
}

// ToolUseBlock is a model request to invoke a named tool. The ID keys the
// matching ToolResultBlock in the follow-up message.
type ToolUseBlock struct {
	ID    string
	Name  string
	Input map[string]any
}

// ToolResultBlock carries the output of one tool execution back to the model.
// IsError marks results that contain failure text rather than tool output;
// the model sees the text either way and can adapt.
type ToolResultBlock struct {
	ToolUseID string
	Content   string
	IsError   bool
}

func (TextBlock) isContentBlock()       {}
func (ToolUseBlock) isContentBlock()    {}
func (ToolResultBlock) isContentBlock() {}

// =============================================================================
// Messages
// =============================================================================

// Message is one turn of the transcript sent to the model.
type Message struct {
	Role    string
	Content []ContentBlock
}

// UserText builds a user message containing a single text block.
func UserText(text string) Message {
	return Message{Role: "user", Content: []ContentBlock{TextBlock{Text: text}}}
}

// AssistantMessage builds an assistant message from the given blocks. Used to
// append the model's own tool-use turn back onto the transcript.
func AssistantMessage(blocks ...ContentBlock) Message {
	return Message{Role: "assistant", Content: blocks}
}

// ToolResults builds the user message that answers a batch of tool-use
// requests. All results for one round travel in a single message.
func ToolResults(results ...ToolResultBlock) Message {
	blocks := make([]ContentBlock, len(results))
	for i, r := range results {
		blocks[i] = r
	}
	return Message{Role: "user", Content: blocks}
}

// =============================================================================
// Responses
// =============================================================================

// StopReason is the model's reason for ending its turn.
type StopReason string

const (
	// StopEndTurn means the model produced a final answer.
	StopEndTurn StopReason = "end_turn"
	// StopToolUse means the model is requesting one or more tool invocations.
	StopToolUse StopReason = "tool_use"
	// StopMaxTokens means the model hit its output token ceiling.
	StopMaxTokens StopReason = "max_tokens"
)

// ChatResponse is the parsed model response.
type ChatResponse struct {
	StopReason StopReason
	Content    []ContentBlock
}

// Text concatenates all text blocks of the response. Returns "" when the
// response holds only tool-use blocks.
func (r *ChatResponse) Text() string {
	var out string
	for _, block := range r.Content {
		if tb, ok := block.(TextBlock); ok {
			out += tb.Text
		}
	}
	return out
}

// ToolUses returns the tool-use blocks of the response in request order.
func (r *ChatResponse) ToolUses() []ToolUseBlock {
	var uses []ToolUseBlock
	for _, block := range r.Content {
		if tu, ok := block.(ToolUseBlock); ok {
			uses = append(uses, tu)
		}
	}
	return uses
}

// =============================================================================
// Requests
// =============================================================================

// ToolDefinition is the callable schema for a single tool, serialized into
// the backend's tool declaration format.
type ToolDefinition struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	InputSchema any    `json:"input_schema"`
}

// GenerationParams carries sampling parameters and the tool surface for one
// model call. When Tools is non-empty the backend attaches them with
// tool-choice "auto": the model may answer directly or request invocations.
type GenerationParams struct {
	Temperature *float32 `json:"temperature"`
	TopK        *int     `json:"top_k"`
	TopP        *float32 `json:"top_p"`
	MaxTokens   *int     `json:"max_tokens"`
	Stop        []string `json:"stop"`

	Tools []ToolDefinition `json:"tools,omitempty"`
}

// LLMClient defines the standard interface for any hosted LLM backend.
type LLMClient interface {
	// Chat sends the system prompt and transcript to the model and returns
	// the parsed response. Transport and API errors are returned as-is;
	// callers treat them as upstream failures and do not retry.
	Chat(ctx context.Context, system string, messages []Message, params GenerationParams) (*ChatResponse, error)
}
