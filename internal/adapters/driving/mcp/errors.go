// Package mcp provides an MCP (Model Context Protocol) server adapter for
// lectern. It lets AI assistants ask grounded questions about indexed course
// documents and manage their chunk index.
package mcp

import "errors"

var (
	// ErrMissingAskService is returned when the ask service is not provided.
	ErrMissingAskService = errors.New("mcp: ask service is required")

	// ErrMissingIndexService is returned when the index service is not provided.
	ErrMissingIndexService = errors.New("mcp: index service is required")
)
