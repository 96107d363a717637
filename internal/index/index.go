// Package index defines the vector index contract for regulation chunks:
// typed filter predicates, upsert-by-id storage, and filtered
// nearest-neighbour queries. The production adapter is Postgres with
// pgvector; retrieval code depends only on the VectorIndex interface.
package index

import (
	"context"
	"fmt"

	"github.com/Rishi-Bethi-007/FIA-regulations-RAG-base-system/internal/docmeta"
)

// ChunkMeta is the metadata stored alongside every chunk: the inferred
// document attributes plus the chunk's position within its source.
type ChunkMeta struct {
	docmeta.Metadata
	DocID      string
	Source     string
	Page       int
	ChunkIndex int
}

// Key identifies an evidence item regardless of which query variant
// retrieved it.
func (m ChunkMeta) Key() string {
	return fmt.Sprintf("%s|%d|%d", m.Source, m.Page, m.ChunkIndex)
}

// ChunkRecord is one chunk ready for upsert.
type ChunkRecord struct {
	ID     string
	Text   string
	Vector []float32
	Meta   ChunkMeta
}

// Hit is a retrieved chunk: text, metadata, the index-assigned distance, and
// the relevance score attached later by the reranker. Hits are transient and
// constructed fresh per query.
type Hit struct {
	Text     string
	Meta     ChunkMeta
	Distance float64
	Score    int
}

// VectorIndex is the storage contract the retrieval pipeline depends on.
type VectorIndex interface {
	// Upsert inserts or replaces chunks by id.
	Upsert(ctx context.Context, records []ChunkRecord) error
	// Query returns up to k chunks nearest to vector, restricted by the
	// optional predicate, ordered by ascending distance.
	Query(ctx context.Context, vector []float32, k int, where Predicate) ([]Hit, error)
}
