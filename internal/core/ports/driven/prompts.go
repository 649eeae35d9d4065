package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Falls back to a sensible default when the prompt is not found.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names used throughout the application.
const (
	// PromptAssistantSystem is the system prompt for the course assistant.
	// It instructs the model when to answer from general knowledge and when
	// to reach for the search tool. No format placeholders.
	PromptAssistantSystem = "assistant_system"
)
