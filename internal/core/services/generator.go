package services

import (
	"context"
	"fmt"

	"github.com/lectern-labs/lectern-cli/internal/core/ports/driven"
	"github.com/lectern-labs/lectern-cli/internal/logger"
)

// DefaultMaxTokens caps answer length per completion request.
const DefaultMaxTokens = 800

// AnswerGenerator runs the fixed tool-calling loop against the completion
// service: one request with tools declared, and when the model stops for
// tool use, exactly one follow-up request carrying the tool results with
// tools disabled. The model never gets a second chance to call tools.
type AnswerGenerator struct {
	completion driven.CompletionService
	registry   *ToolRegistry
	maxTokens  int
}

// NewAnswerGenerator creates a generator over the given completion service
// and tool registry.
func NewAnswerGenerator(completion driven.CompletionService, registry *ToolRegistry) *AnswerGenerator {
	return &AnswerGenerator{
		completion: completion,
		registry:   registry,
		maxTokens:  DefaultMaxTokens,
	}
}

// SetMaxTokens overrides the per-request output cap.
func (g *AnswerGenerator) SetMaxTokens(n int) {
	if n > 0 {
		g.maxTokens = n
	}
}

// Generate produces an answer for the query. The system prompt already
// carries any rendered conversation history.
func (g *AnswerGenerator) Generate(ctx context.Context, system, query string) (string, error) {
	messages := []driven.ChatMessage{
		{Role: "user", Content: query},
	}

	logger.Section("Answer Generation")
	logger.Debug("Model: %s", g.completion.ModelName())

	first, err := g.completion.Complete(ctx, driven.CompletionRequest{
		System:    system,
		Messages:  messages,
		Tools:     g.registry.Definitions(),
		MaxTokens: g.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("completion: %w", err)
	}

	if first.StopReason != driven.StopToolUse {
		logger.Debug("No tool use, returning direct answer")
		return first.Text, nil
	}

	logger.Debug("Model requested %d tool invocation(s)", len(first.ToolUses))

	// Echo the assistant turn back, then answer every invocation in one
	// user turn. A failed execution becomes an error result for the model
	// rather than a failed query.
	messages = append(messages, driven.ChatMessage{
		Role:     "assistant",
		Content:  first.Text,
		ToolUses: first.ToolUses,
	})

	results := make([]driven.ToolResult, 0, len(first.ToolUses))
	for _, use := range first.ToolUses {
		logger.Info("Executing tool: %s", use.Name)
		output, execErr := g.registry.Execute(ctx, use.Name, use.Input)
		if execErr != nil {
			logger.Warn("Tool %s failed: %v", use.Name, execErr)
			results = append(results, driven.ToolResult{
				ToolUseID: use.ID,
				Content:   fmt.Sprintf("Tool execution failed: %v", execErr),
				IsError:   true,
			})
			continue
		}
		results = append(results, driven.ToolResult{
			ToolUseID: use.ID,
			Content:   output,
		})
	}

	messages = append(messages, driven.ChatMessage{
		Role:        "user",
		ToolResults: results,
	})

	// Tools deliberately omitted: this is the final round.
	second, err := g.completion.Complete(ctx, driven.CompletionRequest{
		System:    system,
		Messages:  messages,
		MaxTokens: g.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("completion after tool round: %w", err)
	}

	return second.Text, nil
}
