package driven

import "context"

// CompletionService produces text completions, optionally invoking declared
// tools. The answer generator drives it through a fixed two-round loop:
// one request with tools declared, and when the model stops for tool use,
// one follow-up request carrying the tool results with tools disabled.
//
// Implementations may include:
//   - Anthropic (Claude messages API)
type CompletionService interface {
	// Complete sends one request and returns the model's turn.
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test
	// request. Used at startup to verify the API key before answering.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// CompletionRequest is a single request to the completion service.
type CompletionRequest struct {
	// System is the system prompt, including any rendered conversation
	// history.
	System string

	// Messages is the conversation so far, oldest first.
	Messages []ChatMessage

	// Tools declares the tools the model may invoke. Empty means tool use
	// is disabled for this request.
	Tools []ToolDefinition

	// MaxTokens caps the generated output. Zero means the adapter default.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64
}

// ChatMessage is one turn in the conversation. A message carries plain text,
// tool invocations (assistant turns), or tool results (user turns).
type ChatMessage struct {
	// Role is "user" or "assistant".
	Role string

	// Content is the message text, if any.
	Content string

	// ToolUses are tool invocations issued by the assistant in this turn.
	ToolUses []ToolUse

	// ToolResults are results for previously issued tool invocations.
	ToolResults []ToolResult
}

// ToolDefinition declares a tool the model may invoke.
type ToolDefinition struct {
	// Name is the tool's unique name.
	Name string

	// Description tells the model when to use the tool.
	Description string

	// InputSchema is the JSON Schema for the tool's parameters.
	InputSchema map[string]any
}

// ToolUse is a single tool invocation requested by the model.
type ToolUse struct {
	// ID correlates the invocation with its result.
	ID string

	// Name is the tool to invoke.
	Name string

	// Input holds the tool parameters as decoded JSON.
	Input map[string]any
}

// ToolResult carries the outcome of one tool invocation back to the model.
type ToolResult struct {
	// ToolUseID is the ID of the invocation this result answers.
	ToolUseID string

	// Content is the formatted tool output.
	Content string

	// IsError marks the result as a tool failure.
	IsError bool
}

// Completion stop reasons.
const (
	// StopEndTurn means the model finished with a plain text reply.
	StopEndTurn = "end_turn"

	// StopToolUse means the model stopped to invoke one or more tools.
	StopToolUse = "tool_use"
)

// Completion is the model's reply to one request.
type Completion struct {
	// Text is the concatenated text content of the reply.
	Text string

	// ToolUses lists requested tool invocations when StopReason is
	// StopToolUse.
	ToolUses []ToolUse

	// StopReason is why the model stopped (StopEndTurn, StopToolUse, ...).
	StopReason string
}
