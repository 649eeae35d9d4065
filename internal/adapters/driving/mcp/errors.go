// Package mcp provides an MCP (Model Context Protocol) server adapter for
// Lectern. It lets AI assistants search indexed course material and fetch
// course outlines directly.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")

// ErrMissingAssistantService is returned when the assistant service is not provided.
var ErrMissingAssistantService = errors.New("mcp: assistant service is required")
