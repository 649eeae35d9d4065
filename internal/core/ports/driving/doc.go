// Package driving provides interfaces for primary/inbound ports.
// CLI, TUI, and MCP adapters drive the core through these interfaces.
package driving
