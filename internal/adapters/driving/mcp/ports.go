package mcp

import (
	"github.com/custodia-labs/lectern/internal/core/ports/driving"
)

// Ports are the core services the MCP tools and resources call.
// Ask and Index are required.
type Ports struct {
	Ask   driving.AskService
	Index driving.IndexService

	// Document lists stored documents. Optional: without it the
	// list_documents tool and document resources return nothing.
	Document driving.DocumentService
}

// Validate reports the first missing required port.
func (p *Ports) Validate() error {
	if p.Ask == nil {
		return ErrMissingAskService
	}
	if p.Index == nil {
		return ErrMissingIndexService
	}
	return nil
}
