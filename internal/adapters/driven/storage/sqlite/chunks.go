package sqlite

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driven"
)

// chunkStore implements driven.ChunkStore.
type chunkStore struct {
	store *Store
}

var _ driven.ChunkStore = (*chunkStore)(nil)

// ReplaceAll deletes the document's chunks and inserts the new set in one transaction.
func (s *chunkStore) ReplaceAll(ctx context.Context, documentID string, chunks []domain.Chunk) (int, error) {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE document_id = ?", documentID); err != nil {
		return 0, fmt.Errorf("deleting chunks: %w", err)
	}

	if len(chunks) > 0 {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO chunks (document_id, chunk_index, text, tokens_approx, embedding)
			VALUES (?, ?, ?, ?, ?)
		`)
		if err != nil {
			return 0, fmt.Errorf("preparing statement: %w", err)
		}
		defer stmt.Close()

		for i, chunk := range chunks {
			if _, err := stmt.ExecContext(ctx, documentID, i, chunk.Text,
				chunk.TokensApprox, float32SliceToBytes(chunk.Embedding)); err != nil {
				return 0, fmt.Errorf("saving chunk %d: %w", i, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}
	return len(chunks), nil
}

// ListByDocument returns the document's chunks ordered by index.
func (s *chunkStore) ListByDocument(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT document_id, chunk_index, text, tokens_approx, embedding
		FROM chunks WHERE document_id = ?
		ORDER BY chunk_index
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	chunks := []domain.Chunk{}
	for rows.Next() {
		var chunk domain.Chunk
		var embeddingBlob []byte
		if err := rows.Scan(&chunk.DocumentID, &chunk.Index, &chunk.Text,
			&chunk.TokensApprox, &embeddingBlob); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		chunk.Embedding = bytesToFloat32Slice(embeddingBlob)
		chunks = append(chunks, chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	return chunks, nil
}

// CountByDocument returns the number of stored chunks for the document.
func (s *chunkStore) CountByDocument(ctx context.Context, documentID string) (int, error) {
	var n int
	row := s.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks WHERE document_id = ?", documentID)
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return n, nil
}

// DeleteByDocument removes all chunks of the document.
func (s *chunkStore) DeleteByDocument(ctx context.Context, documentID string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM chunks WHERE document_id = ?", documentID)
	if err != nil {
		return fmt.Errorf("deleting chunks: %w", err)
	}
	return nil
}

// Close is a no-op; the owning Store closes the connection.
func (s *chunkStore) Close() error {
	return nil
}

// float32SliceToBytes encodes a vector as little-endian IEEE 754 floats.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
