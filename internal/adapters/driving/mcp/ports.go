package mcp

import (
	"github.com/lectern-labs/lectern-cli/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search provides direct content search.
	Search driving.SearchService

	// Assistant provides catalog stats and course outlines.
	Assistant driving.AssistantService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	if p.Assistant == nil {
		return ErrMissingAssistantService
	}
	return nil
}
