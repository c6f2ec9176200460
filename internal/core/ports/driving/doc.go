// Package driving declares what the CLI, the chat TUI and the MCP server
// may ask of the core. internal/core/services provides the implementations.
package driving
