// Package tui provides an interactive terminal chat for Lectern.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import "errors"

// ErrMissingAssistantService is returned when the assistant service is not provided.
var ErrMissingAssistantService = errors.New("tui: assistant service is required")
