package index

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"log"

	"github.com/Rishi-Bethi-007/FIA-regulations-RAG-base-system/internal/docmeta"
	"github.com/Rishi-Bethi-007/FIA-regulations-RAG-base-system/internal/segment"
)

// embedBatchSize bounds how many chunk texts go to the embedding service per
// request.
const embedBatchSize = 96

// Page is one page of cleaned text from a source document. Extraction and
// cleaning are owned by the page source, not this package.
type Page struct {
	Source string // stable filename
	Number int
	Text   string
}

// PageSource yields the ordered pages of a corpus.
type PageSource interface {
	Pages(ctx context.Context) ([]Page, error)
}

// Embedder maps texts to fixed-length vectors.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// IngestStats summarises one ingestion run.
type IngestStats struct {
	Documents     int
	Chunks        int
	MissingSeason []string
}

// Ingestor builds the chunk index: metadata inference once per source,
// segmentation per page, batched embedding, upsert.
type Ingestor struct {
	index        VectorIndex
	embedder     Embedder
	dataset      string
	chunkSize    int
	overlapUnits int
	logger       *log.Logger
}

// NewIngestor wires an ingestion run. All collaborators are injected; the
// ingestor owns no connections.
func NewIngestor(idx VectorIndex, embedder Embedder, dataset string, chunkSize, overlapUnits int, logger *log.Logger) *Ingestor {
	if logger == nil {
		logger = log.New(log.Writer(), "[INGEST] ", log.LstdFlags)
	}
	return &Ingestor{
		index:        idx,
		embedder:     embedder,
		dataset:      dataset,
		chunkSize:    chunkSize,
		overlapUnits: overlapUnits,
		logger:       logger,
	}
}

// Run ingests every page from the source into the vector index.
func (ing *Ingestor) Run(ctx context.Context, src PageSource) (IngestStats, error) {
	pages, err := src.Pages(ctx)
	if err != nil {
		return IngestStats{}, fmt.Errorf("load pages: %w", err)
	}

	metaBySource := make(map[string]docmeta.Metadata)
	missingSeason := make(map[string]struct{})
	var records []ChunkRecord

	for _, p := range pages {
		meta, seen := metaBySource[p.Source]
		if !seen {
			meta = docmeta.Infer(p.Source, ing.dataset)
			metaBySource[p.Source] = meta
			if meta.Season == 0 {
				missingSeason[p.Source] = struct{}{}
			}
			if docmeta.Ambiguous(p.Source) {
				ing.logger.Printf("warn: ambiguous category in %s, indexing without category filter", p.Source)
			}
		}

		docID := stableDocID(p.Source)
		for ci, text := range segment.Segment(p.Text, ing.chunkSize, ing.overlapUnits) {
			records = append(records, ChunkRecord{
				ID:   fmt.Sprintf("%s-p%d-c%d", docID, p.Number, ci),
				Text: text,
				Meta: ChunkMeta{
					Metadata:   meta,
					DocID:      docID,
					Source:     p.Source,
					Page:       p.Number,
					ChunkIndex: ci,
				},
			})
		}
	}

	for start := 0; start < len(records); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(records) {
			end = len(records)
		}
		batch := records[start:end]
		texts := make([]string, len(batch))
		for i, rec := range batch {
			texts[i] = rec.Text
		}
		vectors, err := ing.embedder.Embed(ctx, texts)
		if err != nil {
			return IngestStats{}, fmt.Errorf("embed batch at %d: %w", start, err)
		}
		if len(vectors) != len(batch) {
			return IngestStats{}, fmt.Errorf("embedding count mismatch: %d texts, %d vectors", len(batch), len(vectors))
		}
		for i := range batch {
			batch[i].Vector = vectors[i]
		}
		if err := ing.index.Upsert(ctx, batch); err != nil {
			return IngestStats{}, fmt.Errorf("upsert batch at %d: %w", start, err)
		}
	}

	stats := IngestStats{Documents: len(metaBySource), Chunks: len(records)}
	for source := range missingSeason {
		stats.MissingSeason = append(stats.MissingSeason, source)
	}
	if len(stats.MissingSeason) > 0 {
		ing.logger.Printf("warn: %d sources missing inferred season", len(stats.MissingSeason))
	}
	ing.logger.Printf("indexed %d chunks from %d documents", stats.Chunks, stats.Documents)
	return stats, nil
}

func stableDocID(source string) string {
	sum := sha1.Sum([]byte(source))
	return hex.EncodeToString(sum[:])[:12]
}
