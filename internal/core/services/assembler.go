package services

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

// Assembler builds grounded prompts from ranked chunks.
type Assembler struct {
	guardrail string
}

// NewAssembler creates an assembler with the given guardrail instruction.
// An empty guardrail uses domain.DefaultAskGuardrail.
func NewAssembler(guardrail string) *Assembler {
	if strings.TrimSpace(guardrail) == "" {
		guardrail = domain.DefaultAskGuardrail
	}
	return &Assembler{guardrail: strings.TrimSpace(guardrail)}
}

// Assemble returns the prompt for the generator and the citations for the caller.
// Citation ids are 1-based and follow the ranking order.
func (a *Assembler) Assemble(question string, ranked []domain.ScoredChunk) (string, []domain.Citation) {
	citations := make([]domain.Citation, 0, len(ranked))
	for i, sc := range ranked {
		citations = append(citations, domain.Citation{
			ID:         i + 1,
			ChunkIndex: sc.Chunk.Index,
			Score:      sc.Score,
		})
	}

	var b strings.Builder
	b.WriteString(a.guardrail)
	b.WriteString("\n\nContext:\n")
	b.WriteString(FormatContext(ranked))
	b.WriteString("\n\nQuestion: ")
	b.WriteString(strings.TrimSpace(question))
	b.WriteString("\n\nAnswer:")

	return b.String(), citations
}

// FormatContext labels each chunk with its citation id and chunk index
// and joins the entries with blank lines.
func FormatContext(ranked []domain.ScoredChunk) string {
	entries := make([]string, 0, len(ranked))
	for i, sc := range ranked {
		entries = append(entries, fmt.Sprintf("[#%d | chunk %d]\n%s", i+1, sc.Chunk.Index, sc.Chunk.Text))
	}
	return strings.Join(entries, "\n\n")
}
