package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/lectern-labs/lectern-cli/internal/core/domain"
	"github.com/lectern-labs/lectern-cli/internal/core/ports/driven"
	"github.com/lectern-labs/lectern-cli/internal/core/ports/driving"
	"github.com/lectern-labs/lectern-cli/internal/logger"
)

// Ensure AssistantService implements the interface.
var _ driving.AssistantService = (*AssistantService)(nil)

// AssistantService answers questions about indexed course material through
// the tool-calling generator, keeping per-session conversation history.
type AssistantService struct {
	generator    *AnswerGenerator
	registry     *ToolRegistry
	vectorStore  driven.VectorStore
	sessionStore driven.SessionStore
	promptStore  driven.PromptStore
}

// NewAssistantService creates an assistant service.
func NewAssistantService(
	generator *AnswerGenerator,
	registry *ToolRegistry,
	vectorStore driven.VectorStore,
	sessionStore driven.SessionStore,
	promptStore driven.PromptStore,
) *AssistantService {
	return &AssistantService{
		generator:    generator,
		registry:     registry,
		vectorStore:  vectorStore,
		sessionStore: sessionStore,
		promptStore:  promptStore,
	}
}

// Answer runs one query: render history into the system prompt, generate
// (at most one tool round), record the exchange, return text plus sources.
// An empty sessionID starts a new session; the assigned id comes back on
// the answer.
func (s *AssistantService) Answer(ctx context.Context, sessionID, query string) (*domain.Answer, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrInvalidInput
	}

	if sessionID == "" {
		sessionID = uuid.NewString()
		logger.Debug("New session: %s", sessionID)
	}

	system, err := s.systemPrompt(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	// Sources accumulate per query, never across queries.
	s.registry.ResetSources()

	text, err := s.generator.Generate(ctx, system, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCompletionUnavailable, err)
	}

	if err := s.sessionStore.Append(ctx, sessionID, domain.Exchange{
		Query:  query,
		Answer: text,
	}); err != nil {
		logger.Warn("Recording exchange failed: %v", err)
	}

	return &domain.Answer{
		SessionID: sessionID,
		Text:      text,
		Sources:   s.registry.LastSources(),
	}, nil
}

// systemPrompt loads the base prompt and appends the rendered session
// transcript, when any.
func (s *AssistantService) systemPrompt(ctx context.Context, sessionID string) (string, error) {
	base, err := s.promptStore.Load(driven.PromptAssistantSystem)
	if err != nil {
		return "", fmt.Errorf("load system prompt: %w", err)
	}

	exchanges, err := s.sessionStore.Exchanges(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("load session history: %w", err)
	}
	if len(exchanges) == 0 {
		return base, nil
	}

	var b strings.Builder
	b.WriteString(base)
	b.WriteString("\n\nPrevious conversation:\n")
	for _, ex := range exchanges {
		fmt.Fprintf(&b, "User: %s\nAssistant: %s\n", ex.Query, ex.Answer)
	}
	return b.String(), nil
}

// Stats returns the catalog read-through: course count and titles.
func (s *AssistantService) Stats(ctx context.Context) (*domain.CatalogStats, error) {
	return s.vectorStore.Stats(ctx)
}

// Outline returns the full catalog metadata for a (possibly partial)
// course name.
func (s *AssistantService) Outline(ctx context.Context, courseName string) (*domain.Course, error) {
	title, err := s.vectorStore.ResolveCourseTitle(ctx, courseName)
	if err != nil {
		return nil, err
	}
	return s.vectorStore.GetCourse(ctx, title)
}
