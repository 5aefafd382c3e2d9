// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// OpenAIClient is the alternate hosted backend. OpenAI expresses tool use as
// tool_calls on the assistant message and role "tool" result messages, so the
// client translates to and from the block union at the boundary.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient builds a client from OPENAI_API_KEY (or the Podman secret
// file) and OPENAI_MODEL.
func NewOpenAIClient() (*OpenAIClient, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	model := os.Getenv("OPENAI_MODEL")
	if apiKey == "" {
		secretPath := "/run/secrets/openai_api_key"
		apiKeyBytes, err := os.ReadFile(secretPath)
		if err == nil {
			apiKey = strings.TrimSpace(string(apiKeyBytes))
			slog.Info("Read the OpenAI API Key from Podman Secrets")
		} else {
			slog.Error("OPENAI_API_KEY environment variable not set and secret not found", "path", secretPath)
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	}
	if model == "" {
		model = "gpt-4o-mini"
		slog.Warn("OPENAI_MODEL not set, defaulting to gpt-4o-mini")
	}
	slog.Info("Initializing OpenAI client", "model", model)
	return &OpenAIClient{
		client: openai.NewClient(apiKey),
		model:  model,
	}, nil
}

// Chat implements the LLMClient interface.
func (o *OpenAIClient) Chat(ctx context.Context, system string, messages []Message, params GenerationParams) (*ChatResponse, error) {
	apiMessages := make([]openai.ChatCompletionMessage, 0, len(messages)+1)
	if system != "" {
		apiMessages = append(apiMessages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	for _, msg := range messages {
		apiMessages = append(apiMessages, toOpenAIMessages(msg)...)
	}

	req := openai.ChatCompletionRequest{
		Model:    o.model,
		Messages: apiMessages,
	}
	if params.Temperature != nil {
		req.Temperature = *params.Temperature
	}
	if params.MaxTokens != nil {
		req.MaxCompletionTokens = *params.MaxTokens
	}
	if params.TopP != nil {
		req.TopP = *params.TopP
	}
	if len(params.Stop) > 0 {
		req.Stop = params.Stop
	}
	if len(params.Tools) > 0 {
		tools := make([]openai.Tool, 0, len(params.Tools))
		for _, t := range params.Tools {
			tools = append(tools, openai.Tool{
				Type: openai.ToolTypeFunction,
				Function: &openai.FunctionDefinition{
					Name:        t.Name,
					Description: t.Description,
					Parameters:  t.InputSchema,
				},
			})
		}
		req.Tools = tools
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		slog.Error("OpenAI API call failed", "error", err)
		return nil, fmt.Errorf("OpenAI API call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		slog.Warn("OpenAI returned no choices or empty content")
		return nil, fmt.Errorf("OpenAI returned no choices")
	}

	choice := resp.Choices[0]
	var blocks []ContentBlock
	if choice.Message.Content != "" {
		blocks = append(blocks, TextBlock{Text: choice.Message.Content})
	}
	for _, call := range choice.Message.ToolCalls {
		input := map[string]any{}
		if call.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(call.Function.Arguments), &input); err != nil {
				slog.Warn("Failed to decode tool call arguments", "tool", call.Function.Name, "error", err)
			}
		}
		blocks = append(blocks, ToolUseBlock{
			ID:    call.ID,
			Name:  call.Function.Name,
			Input: input,
		})
	}

	stop := StopEndTurn
	switch choice.FinishReason {
	case openai.FinishReasonToolCalls:
		stop = StopToolUse
	case openai.FinishReasonLength:
		stop = StopMaxTokens
	}

	return &ChatResponse{StopReason: stop, Content: blocks}, nil
}

// toOpenAIMessages flattens one union message into the OpenAI message list.
// Tool results cannot ride inside a user message; each becomes its own
// role "tool" message keyed by the originating call ID.
func toOpenAIMessages(msg Message) []openai.ChatCompletionMessage {
	var out []openai.ChatCompletionMessage
	var text string
	var toolCalls []openai.ToolCall

	for _, block := range msg.Content {
		switch b := block.(type) {
		case TextBlock:
			text += b.Text
		case ToolUseBlock:
			args, _ := json.Marshal(b.Input)
			toolCalls = append(toolCalls, openai.ToolCall{
				ID:   b.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      b.Name,
					Arguments: string(args),
				},
			})
		case ToolResultBlock:
			out = append(out, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    b.Content,
				ToolCallID: b.ToolUseID,
			})
		}
	}

	if text != "" || len(toolCalls) > 0 {
		m := openai.ChatCompletionMessage{
			Role:      msg.Role,
			Content:   text,
			ToolCalls: toolCalls,
		}
		// Tool result messages were already emitted; prepend the carrier
		// message so transcript order is preserved.
		out = append([]openai.ChatCompletionMessage{m}, out...)
	}
	return out
}
