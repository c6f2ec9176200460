// Package qdrant provides a driven.ChunkStore backed by a Qdrant collection.
//
// Each chunk is one point. The point ID is a name-based UUID derived from
// (document ID, chunk index), the vector is the chunk embedding and the payload
// carries the document ID, index, text and token estimate. The collection is
// created on first write with cosine distance and the dimensionality of the
// first vector seen.
package qdrant

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	qdrant "github.com/qdrant/go-client/qdrant"

	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driven"
	"github.com/custodia-labs/lectern/internal/logger"
)

// Payload keys.
const (
	fieldDocumentID   = "document_id"
	fieldChunkIndex   = "chunk_index"
	fieldText         = "text"
	fieldTokensApprox = "tokens_approx"
)

// DefaultPort is the Qdrant gRPC port.
const DefaultPort = 6334

// upsertBatchSize bounds the number of points per upsert request.
const upsertBatchSize = 200

// pointNamespace scopes chunk point IDs.
var pointNamespace = uuid.MustParse("6f1c1a52-7f0e-4c4e-9d0b-2b0a6f6c1e55")

// ErrMissingEmbedding is returned when a chunk without a vector is written.
var ErrMissingEmbedding = errors.New("qdrant: chunk has no embedding")

// pointsAPI is the subset of *qdrant.Client used by the store.
type pointsAPI interface {
	CollectionExists(ctx context.Context, collectionName string) (bool, error)
	CreateCollection(ctx context.Context, request *qdrant.CreateCollection) error
	Upsert(ctx context.Context, request *qdrant.UpsertPoints) (*qdrant.UpdateResult, error)
	Delete(ctx context.Context, request *qdrant.DeletePoints) (*qdrant.UpdateResult, error)
	Scroll(ctx context.Context, request *qdrant.ScrollPoints) ([]*qdrant.RetrievedPoint, error)
	Count(ctx context.Context, request *qdrant.CountPoints) (uint64, error)
	HealthCheck(ctx context.Context) (*qdrant.HealthCheckReply, error)
	Close() error
}

// Config holds the connection settings.
type Config struct {
	Host       string
	Port       int
	APIKey     string
	UseTLS     bool
	Collection string
}

// ChunkStore implements driven.ChunkStore over a Qdrant collection.
type ChunkStore struct {
	api        pointsAPI
	collection string

	mu     sync.Mutex
	exists bool
}

var _ driven.ChunkStore = (*ChunkStore)(nil)

// NewChunkStore connects to Qdrant. The connection is lazy; use Ping to
// verify the server is reachable.
func NewChunkStore(cfg Config) (*ChunkStore, error) {
	if cfg.Collection == "" {
		return nil, fmt.Errorf("%w: qdrant collection name is empty", domain.ErrInvalidInput)
	}
	port := cfg.Port
	if port == 0 {
		port = DefaultPort
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("creating qdrant client: %w", err)
	}

	logger.Debug("Qdrant chunk store: %s:%d collection=%s", cfg.Host, port, cfg.Collection)
	return newChunkStore(client, cfg.Collection), nil
}

func newChunkStore(api pointsAPI, collection string) *ChunkStore {
	return &ChunkStore{api: api, collection: collection}
}

// Ping checks that the Qdrant server answers.
func (s *ChunkStore) Ping(ctx context.Context) error {
	if _, err := s.api.HealthCheck(ctx); err != nil {
		return fmt.Errorf("qdrant health check: %w", err)
	}
	return nil
}

// ReplaceAll deletes the document's points, then upserts the new set.
// Every chunk must carry an embedding.
func (s *ChunkStore) ReplaceAll(ctx context.Context, documentID string, chunks []domain.Chunk) (int, error) {
	for i, c := range chunks {
		if !c.HasEmbedding() {
			return 0, fmt.Errorf("chunk %d: %w", i, ErrMissingEmbedding)
		}
	}

	if len(chunks) > 0 {
		if err := s.ensureCollection(ctx, len(chunks[0].Embedding)); err != nil {
			return 0, err
		}
	}

	if err := s.DeleteByDocument(ctx, documentID); err != nil {
		return 0, err
	}

	for start := 0; start < len(chunks); start += upsertBatchSize {
		end := min(start+upsertBatchSize, len(chunks))

		points := make([]*qdrant.PointStruct, 0, end-start)
		for i := start; i < end; i++ {
			points = append(points, &qdrant.PointStruct{
				Id:      qdrant.NewID(PointID(documentID, i)),
				Vectors: denseVectors(chunks[i].Embedding),
				Payload: qdrant.NewValueMap(map[string]any{
					fieldDocumentID:   documentID,
					fieldChunkIndex:   int64(i),
					fieldText:         chunks[i].Text,
					fieldTokensApprox: int64(chunks[i].TokensApprox),
				}),
			})
		}

		if _, err := s.api.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: s.collection,
			Points:         points,
			Wait:           qdrant.PtrOf(true),
		}); err != nil {
			return 0, fmt.Errorf("upserting chunks [%d:%d]: %w", start, end, err)
		}
	}

	logger.Debug("Qdrant: stored %d chunks for %s", len(chunks), documentID)
	return len(chunks), nil
}

// ListByDocument returns the document's chunks ordered by index.
func (s *ChunkStore) ListByDocument(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	n, err := s.CountByDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return []domain.Chunk{}, nil
	}

	points, err := s.api.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: s.collection,
		Filter:         documentFilter(documentID),
		Limit:          qdrant.PtrOf(uint32(n)),
		WithPayload:    qdrant.NewWithPayload(true),
		WithVectors:    qdrant.NewWithVectors(true),
	})
	if err != nil {
		return nil, fmt.Errorf("scrolling chunks: %w", err)
	}

	chunks := make([]domain.Chunk, 0, len(points))
	for _, p := range points {
		payload := p.GetPayload()
		chunks = append(chunks, domain.Chunk{
			DocumentID:   payload[fieldDocumentID].GetStringValue(),
			Index:        int(payload[fieldChunkIndex].GetIntegerValue()),
			Text:         payload[fieldText].GetStringValue(),
			TokensApprox: int(payload[fieldTokensApprox].GetIntegerValue()),
			Embedding:    p.GetVectors().GetVector().GetData(),
		})
	}
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].Index < chunks[j].Index })

	return chunks, nil
}

// CountByDocument returns the number of stored chunks for the document.
func (s *ChunkStore) CountByDocument(ctx context.Context, documentID string) (int, error) {
	ok, err := s.collectionExists(ctx)
	if err != nil || !ok {
		return 0, err
	}

	n, err := s.api.Count(ctx, &qdrant.CountPoints{
		CollectionName: s.collection,
		Filter:         documentFilter(documentID),
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return int(n), nil
}

// DeleteByDocument removes all points of the document.
func (s *ChunkStore) DeleteByDocument(ctx context.Context, documentID string) error {
	ok, err := s.collectionExists(ctx)
	if err != nil || !ok {
		return err
	}

	if _, err := s.api.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collection,
		Points:         qdrant.NewPointsSelectorFilter(documentFilter(documentID)),
		Wait:           qdrant.PtrOf(true),
	}); err != nil {
		return fmt.Errorf("deleting chunks: %w", err)
	}
	return nil
}

// Close closes the gRPC connection.
func (s *ChunkStore) Close() error {
	return s.api.Close()
}

// PointID returns the stable point ID of a chunk.
func PointID(documentID string, index int) string {
	return uuid.NewSHA1(pointNamespace, []byte(fmt.Sprintf("%s/%d", documentID, index))).String()
}

// denseVectors wraps a single unnamed dense vector.
func denseVectors(v []float32) *qdrant.Vectors {
	return &qdrant.Vectors{
		VectorsOptions: &qdrant.Vectors_Vector{Vector: &qdrant.Vector{Data: v}},
	}
}

func documentFilter(documentID string) *qdrant.Filter {
	return &qdrant.Filter{
		Must: []*qdrant.Condition{qdrant.NewMatch(fieldDocumentID, documentID)},
	}
}

func (s *ChunkStore) collectionExists(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.exists {
		return true, nil
	}

	ok, err := s.api.CollectionExists(ctx, s.collection)
	if err != nil {
		return false, fmt.Errorf("checking collection %s: %w", s.collection, err)
	}
	s.exists = ok
	return ok, nil
}

func (s *ChunkStore) ensureCollection(ctx context.Context, dims int) error {
	ok, err := s.collectionExists(ctx)
	if err != nil || ok {
		return err
	}

	logger.Info("Creating Qdrant collection %s (%d dimensions)", s.collection, dims)
	err = s.api.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dims),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("creating collection %s: %w", s.collection, err)
	}

	s.mu.Lock()
	s.exists = true
	s.mu.Unlock()
	return nil
}
