package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	DocumentID string `json:"document_id" jsonschema:"the document to answer from"`
	Question   string `json:"question" jsonschema:"the question to answer"`
	TopK       int    `json:"top_k,omitempty" jsonschema:"number of chunks to ground the answer on (1-8, default 4)"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer    string            `json:"answer"`
	Citations []domain.Citation `json:"citations"`
	TopK      int               `json:"topK"`
	Model     string            `json:"model,omitempty"`
	Method    string            `json:"method"`
	Note      string            `json:"note,omitempty"`
}

// ReindexInput is the input schema for the reindex tool.
type ReindexInput struct {
	DocumentID   string  `json:"document_id" jsonschema:"the document to rebuild the chunk index for"`
	MaxChars     int     `json:"max_chars,omitempty" jsonschema:"hard upper bound on chunk length (default 1200)"`
	MinChars     int     `json:"min_chars,omitempty" jsonschema:"soft lower bound on chunk length (default 400)"`
	OverlapRatio float64 `json:"overlap_ratio,omitempty" jsonschema:"fraction of max_chars carried into the next chunk, between 0 and 1 exclusive; 0 or omitted uses the default 0.1"`
}

// ReindexOutput is the output schema for the reindex tool.
type ReindexOutput struct {
	DocumentID string `json:"document_id"`
	Chunks     int    `json:"chunks"`
}

// ChunkCountInput is the input schema for the chunk_count tool.
type ChunkCountInput struct {
	DocumentID string `json:"document_id" jsonschema:"the document to count chunks for"`
}

// ChunkCountOutput is the output schema for the chunk_count tool.
type ChunkCountOutput struct {
	DocumentID string `json:"document_id"`
	Count      int    `json:"count"`
}

// ListDocumentsInput is the (empty) input schema for the list_documents tool.
type ListDocumentsInput struct{}

// ListDocumentsOutput is the output schema for the list_documents tool.
type ListDocumentsOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

// DocumentOutput summarises a stored document.
type DocumentOutput struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	URI      string `json:"uri,omitempty"`
	MIMEType string `json:"mime_type,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question using only the content of one indexed course document, with chunk citations",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "reindex",
		Description: "Rebuild the chunk and embedding index of a document",
	}, s.handleReindex)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "chunk_count",
		Description: "Report how many chunks are indexed for a document",
	}, s.handleChunkCount)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List all stored course documents",
	}, s.handleListDocuments)
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	answer, err := s.ports.Ask.Ask(ctx, domain.AskRequest{
		DocumentID: input.DocumentID,
		Question:   input.Question,
		TopK:       input.TopK,
	})
	if err != nil {
		return nil, AskOutput{}, err
	}

	citations := answer.Citations
	if citations == nil {
		citations = []domain.Citation{}
	}

	return nil, AskOutput{
		Answer:    answer.Answer,
		Citations: citations,
		TopK:      answer.TopK,
		Model:     answer.Model,
		Method:    answer.Method.String(),
		Note:      answer.Note,
	}, nil
}

// handleReindex handles the reindex tool invocation.
func (s *Server) handleReindex(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ReindexInput,
) (*mcp.CallToolResult, ReindexOutput, error) {
	if input.OverlapRatio != 0 && !domain.ValidOverlapRatio(input.OverlapRatio) {
		return nil, ReindexOutput{}, fmt.Errorf("%w: overlap_ratio must be greater than 0 and less than 1", domain.ErrInvalidInput)
	}

	opts := domain.ChunkOptions{
		MaxChars:     input.MaxChars,
		MinChars:     input.MinChars,
		OverlapRatio: input.OverlapRatio,
	}

	n, err := s.ports.Index.Reindex(ctx, input.DocumentID, opts)
	if err != nil {
		return nil, ReindexOutput{}, err
	}

	return nil, ReindexOutput{DocumentID: input.DocumentID, Chunks: n}, nil
}

// handleChunkCount handles the chunk_count tool invocation.
func (s *Server) handleChunkCount(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ChunkCountInput,
) (*mcp.CallToolResult, ChunkCountOutput, error) {
	n, err := s.ports.Index.ChunkCount(ctx, input.DocumentID)
	if err != nil {
		return nil, ChunkCountOutput{}, err
	}
	return nil, ChunkCountOutput{DocumentID: input.DocumentID, Count: n}, nil
}

// handleListDocuments handles the list_documents tool invocation.
func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	output := ListDocumentsOutput{Documents: []DocumentOutput{}}
	if s.ports.Document == nil {
		return nil, output, nil
	}

	docs, err := s.ports.Document.List(ctx)
	if err != nil {
		return nil, ListDocumentsOutput{}, err
	}

	for i := range docs {
		output.Documents = append(output.Documents, DocumentOutput{
			ID:       docs[i].ID,
			Title:    docs[i].Title,
			URI:      docs[i].URI,
			MIMEType: docs[i].MIMEType,
		})
	}
	output.Count = len(output.Documents)

	return nil, output, nil
}
