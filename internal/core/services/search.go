package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/lectern-labs/lectern-cli/internal/core/domain"
	"github.com/lectern-labs/lectern-cli/internal/core/ports/driven"
	"github.com/lectern-labs/lectern-cli/internal/core/ports/driving"
	"github.com/lectern-labs/lectern-cli/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// SearchService exposes direct content search without the completion loop.
type SearchService struct {
	vectorStore driven.VectorStore
}

// NewSearchService creates a new search service.
func NewSearchService(vectorStore driven.VectorStore) *SearchService {
	return &SearchService{vectorStore: vectorStore}
}

// Search runs a filtered nearest-neighbour search over course content.
func (s *SearchService) Search(
	ctx context.Context, query string, opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	logger.Section("Search Execution")
	logger.Debug("Query: %q", query)

	query = strings.TrimSpace(query)
	if query == "" {
		logger.Debug("Empty query, returning no results")
		return []domain.SearchResult{}, nil
	}

	if opts.CourseName != "" {
		logger.Debug("Course filter: %q", opts.CourseName)
	}
	if opts.LessonNumber != nil {
		logger.Debug("Lesson filter: %d", *opts.LessonNumber)
	}

	results, err := s.vectorStore.Search(ctx, query, opts)
	if err != nil {
		logger.Warn("Search failed: %v", err)
		return nil, fmt.Errorf("search: %w", err)
	}

	logger.Info("Results: %d", len(results))
	return results, nil
}
