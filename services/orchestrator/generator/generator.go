// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package generator runs the bounded tool-calling loop between the model and
// the retrieval tools.
//
// # Description
//
// A query moves through an explicit state machine: the model is invoked with
// the full tool surface attached; if it requests tools, each invocation is
// executed in order and the results are fed back as a single user message,
// with the tools still attached; the loop re-invokes the model until it
// answers directly or the round cap is hit. The cap makes termination
// deterministic: at most RoundCap tool batches and RoundCap+1 model calls
// per query.
//
// # Thread Safety
//
// A Generator is stateless between calls and safe for concurrent use as long
// as its executor is (the default registry is used from one query at a time;
// give each server a single serialized pipeline or a registry per query).
package generator

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/AleutianAI/CourseCompass/services/llm"
	"github.com/AleutianAI/CourseCompass/services/orchestrator/observability"
)

var tracer = otel.Tracer("coursecompass.orchestrator.generator")

// RoundCap is the maximum number of tool batches per query.
const RoundCap = 2

const defaultMaxTokens = 800

// systemPrompt is the static instruction block sent on every model call.
// Conversation history, when present, is appended under a
// "Previous conversation:" header rather than interpolated into the
// transcript.
const systemPrompt = `You are an AI assistant specialized in course materials and educational content, with tools for searching course content and retrieving course outlines.

Tool Usage:
- Use the content search tool for questions about specific course content or detailed educational materials
- Use the outline tool for questions about a course's structure, lesson list, or course link
- You may make up to 2 tool calls in sequence when the first result is needed to form the second (e.g. fetch an outline, then search a lesson it names)
- Synthesize tool results into accurate, fact-based responses
- If a tool yields no results, state this clearly without offering alternatives

Response requirements:
- Brief and focused; educational and clear
- No meta-commentary: do not describe your reasoning process or mention the tools
- For general knowledge questions, answer from your own knowledge without tools`

// State labels a position in the query loop. Answered and RoundCapReached
// are terminal.
type State string

const (
	// StateAwaitingModel means the next step is a model invocation.
	StateAwaitingModel State = "awaiting_model"
	// StateToolRequested means the model asked for tool invocations that
	// have not run yet.
	StateToolRequested State = "tool_requested"
	// StateToolsExecuting means the requested batch is being dispatched.
	StateToolsExecuting State = "tools_executing"
	// StateAnswered means the model produced a final answer.
	StateAnswered State = "answered"
	// StateRoundCapReached means the model was still requesting tools when
	// the batch budget ran out; the last text is returned as-is.
	StateRoundCapReached State = "round_cap_reached"
)

// ToolExecutor is the seam the generator dispatches tool calls through.
// *tools.Registry satisfies it.
type ToolExecutor interface {
	Definitions() []llm.ToolDefinition
	Execute(ctx context.Context, name string, args map[string]any) (string, error)
}

// Result is the terminal outcome of one query.
type Result struct {
	// Answer is the model's final text. Under RoundCapReached this may be
	// preamble the model emitted alongside its unfulfilled tool request.
	Answer string
	// State is StateAnswered or StateRoundCapReached.
	State State
	// ModelCalls and ToolRounds report what the loop actually spent.
	ModelCalls int
	ToolRounds int
}

// Generator drives the loop for one backend and one tool surface.
type Generator struct {
	client   llm.LLMClient
	executor ToolExecutor
	backend  string
	roundCap int
}

// New builds a Generator. backend is a metrics label (anthropic, openai).
func New(client llm.LLMClient, executor ToolExecutor, backend string) *Generator {
	return &Generator{
		client:   client,
		executor: executor,
		backend:  backend,
		roundCap: RoundCap,
	}
}

// Generate answers one query.
//
// # Description
//
// Sends the static system prompt (plus prior conversation, when given) and
// the query, then walks the state machine until a terminal state. Tool
// failures become tool-result text the model can react to; only transport
// and API errors abort the query.
//
// # Inputs
//
//   - ctx: Context for cancellation and timeout.
//   - query: The user's question.
//   - history: Rendered prior turns, or "" for a fresh conversation.
//
// # Outputs
//
//   - *Result: Terminal state, answer text, and loop accounting.
//   - error: Non-nil only for upstream failures.
func (g *Generator) Generate(ctx context.Context, query string, history string) (*Result, error) {
	ctx, span := tracer.Start(ctx, "Generate")
	defer span.End()

	system := systemPrompt
	if history != "" {
		system += "\n\nPrevious conversation:\n" + history
	}

	maxTokens := defaultMaxTokens
	temperature := float32(0)
	params := llm.GenerationParams{
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
		Tools:       g.executor.Definitions(),
	}

	messages := []llm.Message{llm.UserText(query)}
	result := &Result{}
	state := StateAwaitingModel
	var resp *llm.ChatResponse

	for {
		switch state {
		case StateAwaitingModel:
			r, err := g.client.Chat(ctx, system, messages, params)
			if err != nil {
				span.RecordError(err)
				return nil, fmt.Errorf("model call failed: %w", err)
			}
			resp = r
			result.ModelCalls++
			observability.RecordModelCall(g.backend)

			if resp.StopReason == llm.StopToolUse && len(resp.ToolUses()) > 0 {
				state = StateToolRequested
			} else {
				state = StateAnswered
			}

		case StateToolRequested:
			if result.ToolRounds >= g.roundCap {
				state = StateRoundCapReached
			} else {
				state = StateToolsExecuting
			}

		case StateToolsExecuting:
			messages = append(messages, llm.AssistantMessage(resp.Content...))

			uses := resp.ToolUses()
			results := make([]llm.ToolResultBlock, 0, len(uses))
			for _, use := range uses {
				text, err := g.executor.Execute(ctx, use.Name, use.Input)
				isError := false
				if err != nil {
					// The model sees the failure and can retry with a
					// different tool or answer without it.
					text = err.Error()
					isError = true
					slog.Warn("Tool execution failed", "tool", use.Name, "error", err)
				}
				results = append(results, llm.ToolResultBlock{
					ToolUseID: use.ID,
					Content:   text,
					IsError:   isError,
				})
			}
			messages = append(messages, llm.ToolResults(results...))
			result.ToolRounds++
			state = StateAwaitingModel

		case StateAnswered, StateRoundCapReached:
			result.State = state
			result.Answer = resp.Text()
			span.SetAttributes(
				attribute.String("query.state", string(state)),
				attribute.Int("query.model_calls", result.ModelCalls),
				attribute.Int("query.tool_rounds", result.ToolRounds),
			)
			if state == StateRoundCapReached {
				slog.Info("Round cap reached, returning last text",
					"modelCalls", result.ModelCalls, "toolRounds", result.ToolRounds)
			}
			return result, nil
		}
	}
}
