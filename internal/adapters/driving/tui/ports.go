// Package tui provides an interactive terminal user interface for lectern.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/lectern/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Ask answers questions against the chat document.
	Ask driving.AskService

	// Document resolves the document title. Optional.
	Document driving.DocumentService

	// Index reports the chunk count. Optional.
	Index driving.IndexService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Ask == nil {
		return ErrMissingAskService
	}
	return nil
}
