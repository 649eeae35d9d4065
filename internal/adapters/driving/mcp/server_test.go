package mcp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lectern-labs/lectern-cli/internal/core/domain"
)

type stubSearch struct{}

func (stubSearch) Search(_ context.Context, _ string, _ domain.SearchOptions) ([]domain.SearchResult, error) {
	return nil, nil
}

type stubAssistant struct{}

func (stubAssistant) Answer(_ context.Context, _, _ string) (*domain.Answer, error) {
	return &domain.Answer{}, nil
}

func (stubAssistant) Stats(_ context.Context) (*domain.CatalogStats, error) {
	return &domain.CatalogStats{}, nil
}

func (stubAssistant) Outline(_ context.Context, _ string) (*domain.Course, error) {
	return &domain.Course{}, nil
}

func testPorts() *Ports {
	return &Ports{Search: stubSearch{}, Assistant: stubAssistant{}}
}

func TestNewServer_ValidatesPorts(t *testing.T) {
	_, err := NewServer(&Ports{Search: stubSearch{}}, "1.0.0", Config{})
	assert.ErrorIs(t, err, ErrMissingAssistantService)

	_, err = NewServer(&Ports{Assistant: stubAssistant{}}, "1.0.0", Config{})
	assert.ErrorIs(t, err, ErrMissingSearchService)
}

func TestNewServer_ConfigDefaults(t *testing.T) {
	server, err := NewServer(testPorts(), "", Config{})
	require.NoError(t, err)

	assert.Equal(t, DefaultReadHeaderTimeout, server.cfg.ReadHeaderTimeout)
	assert.Equal(t, DefaultShutdownTimeout, server.cfg.ShutdownTimeout)
}

func TestNewServer_ConfigOverrides(t *testing.T) {
	server, err := NewServer(testPorts(), "1.2.3", Config{
		ReadHeaderTimeout: 2 * time.Second,
		ShutdownTimeout:   30 * time.Second,
	})
	require.NoError(t, err)

	assert.Equal(t, 2*time.Second, server.cfg.ReadHeaderTimeout)
	assert.Equal(t, 30*time.Second, server.cfg.ShutdownTimeout)
}
