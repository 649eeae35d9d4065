package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lectern-labs/lectern-cli/internal/core/ports/driven"
)

func TestAnswerGenerator_DirectAnswer(t *testing.T) {
	completion := &mockCompletion{
		replies: []*driven.Completion{
			{Text: "Paris is the capital of France.", StopReason: driven.StopEndTurn},
		},
	}
	registry := NewToolRegistry()
	registry.Register(&echoTool{name: "echo"})

	gen := NewAnswerGenerator(completion, registry)
	text, err := gen.Generate(context.Background(), "system", "capital of France?")
	require.NoError(t, err)
	assert.Equal(t, "Paris is the capital of France.", text)

	// A direct answer ends the loop after one request, with tools declared.
	require.Len(t, completion.requests, 1)
	assert.Len(t, completion.requests[0].Tools, 1)
	assert.Equal(t, "system", completion.requests[0].System)
}

func TestAnswerGenerator_SingleToolRound(t *testing.T) {
	completion := &mockCompletion{
		replies: []*driven.Completion{
			{
				StopReason: driven.StopToolUse,
				ToolUses: []driven.ToolUse{
					{ID: "tu-1", Name: "echo", Input: map[string]any{"text": "hello"}},
				},
			},
			{Text: "final answer", StopReason: driven.StopEndTurn},
		},
	}
	registry := NewToolRegistry()
	registry.Register(&echoTool{name: "echo"})

	gen := NewAnswerGenerator(completion, registry)
	text, err := gen.Generate(context.Background(), "system", "query")
	require.NoError(t, err)
	assert.Equal(t, "final answer", text)

	require.Len(t, completion.requests, 2)

	// Second round carries the tool result and disables tools.
	second := completion.requests[1]
	assert.Empty(t, second.Tools)
	require.Len(t, second.Messages, 3)
	assert.Equal(t, "assistant", second.Messages[1].Role)
	require.Len(t, second.Messages[2].ToolResults, 1)
	assert.Equal(t, "tu-1", second.Messages[2].ToolResults[0].ToolUseID)
	assert.Equal(t, "echo: hello", second.Messages[2].ToolResults[0].Content)
	assert.False(t, second.Messages[2].ToolResults[0].IsError)
}

func TestAnswerGenerator_ToolFailureBecomesErrorResult(t *testing.T) {
	completion := &mockCompletion{
		replies: []*driven.Completion{
			{
				StopReason: driven.StopToolUse,
				ToolUses: []driven.ToolUse{
					{ID: "tu-1", Name: "broken", Input: map[string]any{}},
				},
			},
			{Text: "answered anyway", StopReason: driven.StopEndTurn},
		},
	}
	registry := NewToolRegistry()
	registry.Register(&echoTool{name: "broken", err: errors.New("boom")})

	gen := NewAnswerGenerator(completion, registry)
	text, err := gen.Generate(context.Background(), "system", "query")
	require.NoError(t, err)
	assert.Equal(t, "answered anyway", text)

	require.Len(t, completion.requests, 2)
	results := completion.requests[1].Messages[2].ToolResults
	require.Len(t, results, 1)
	assert.True(t, results[0].IsError)
	assert.Contains(t, results[0].Content, "boom")
}

func TestAnswerGenerator_UnknownToolBecomesErrorResult(t *testing.T) {
	completion := &mockCompletion{
		replies: []*driven.Completion{
			{
				StopReason: driven.StopToolUse,
				ToolUses: []driven.ToolUse{
					{ID: "tu-1", Name: "nonexistent", Input: map[string]any{}},
				},
			},
			{Text: "done", StopReason: driven.StopEndTurn},
		},
	}
	registry := NewToolRegistry()

	gen := NewAnswerGenerator(completion, registry)
	_, err := gen.Generate(context.Background(), "system", "query")
	require.NoError(t, err)

	results := completion.requests[1].Messages[2].ToolResults
	require.Len(t, results, 1)
	assert.True(t, results[0].IsError)
}

func TestAnswerGenerator_CompletionError(t *testing.T) {
	completion := &mockCompletion{err: errors.New("upstream down")}
	gen := NewAnswerGenerator(completion, NewToolRegistry())

	_, err := gen.Generate(context.Background(), "system", "query")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream down")
}
