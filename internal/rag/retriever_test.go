package rag

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/Rishi-Bethi-007/FIA-regulations-RAG-base-system/internal/index"
)

type fakeIndex struct {
	mu      sync.Mutex
	queries []fakeQuery
	hits    []index.Hit
	err     error
}

type fakeQuery struct {
	k     int
	where index.Predicate
}

func (f *fakeIndex) Upsert(ctx context.Context, recs []index.ChunkRecord) error { return nil }

func (f *fakeIndex) Query(ctx context.Context, vector []float32, k int, where index.Predicate) ([]index.Hit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, fakeQuery{k: k, where: where})
	if f.err != nil {
		return nil, f.err
	}
	return f.hits, nil
}

type fakeEmbedder struct {
	calls int
	fail  bool
}

func (f *fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.fail {
		return nil, fmt.Errorf("embedding service down")
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{0.1, 0.2}
	}
	return out, nil
}

type mapCache struct {
	mu   sync.Mutex
	data map[string][]float32
}

func newMapCache() *mapCache { return &mapCache{data: make(map[string][]float32)} }

func (m *mapCache) Get(ctx context.Context, text string) ([]float32, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[text]
	return v, ok
}

func (m *mapCache) Put(ctx context.Context, text string, vector []float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[text] = vector
}

func TestPerSeasonBudget(t *testing.T) {
	cases := []struct {
		budget, seasons, want int
	}{
		{40, 2, 20},
		{40, 3, 13},
		{40, 5, 10},
		{40, 8, 10},
		{40, 0, 40},
	}
	for _, c := range cases {
		if got := PerSeasonBudget(c.budget, c.seasons); got != c.want {
			t.Fatalf("PerSeasonBudget(%d, %d) = %d, want %d", c.budget, c.seasons, got, c.want)
		}
	}
}

func TestRetrieveComparisonFanOut(t *testing.T) {
	idx := &fakeIndex{hits: []index.Hit{{Text: "hit"}}}
	r := NewRetriever(idx, &fakeEmbedder{}, nil, nil, nil)

	p := NewPlanner("fia", 2018, 2026)
	plan, err := p.Plan("compare 2023 vs 2024 vs 2025 rules")
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	variants := []string{"a", "b"}
	hits := r.Retrieve(context.Background(), variants, plan, 40)

	// 3 seasons x 2 variants, no dedup of results.
	if len(idx.queries) != 6 {
		t.Fatalf("expected 6 index queries, got %d", len(idx.queries))
	}
	if len(hits) != 6 {
		t.Fatalf("expected 6 hits concatenated, got %d", len(hits))
	}
	for _, q := range idx.queries {
		if q.k != 13 {
			t.Fatalf("per-season budget = %d, want 13", q.k)
		}
	}
}

func TestRetrieveSingleQueryPerVariant(t *testing.T) {
	idx := &fakeIndex{hits: []index.Hit{{Text: "hit"}}}
	r := NewRetriever(idx, &fakeEmbedder{}, nil, nil, nil)

	p := NewPlanner("fia", 2018, 2026)
	plan, err := p.Plan("driver penalties in 2022")
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	hits := r.Retrieve(context.Background(), Rewrite("driver penalties in 2022"), plan, 40)
	if len(idx.queries) != 7 {
		t.Fatalf("expected one query per variant, got %d", len(idx.queries))
	}
	for _, q := range idx.queries {
		if q.k != 40 {
			t.Fatalf("single-plan budget = %d, want full recall budget", q.k)
		}
	}
	if len(hits) != 7 {
		t.Fatalf("expected 7 hits, got %d", len(hits))
	}
}

func TestRetrieveIndexErrorContributesZeroHits(t *testing.T) {
	idx := &fakeIndex{err: fmt.Errorf("connection refused")}
	r := NewRetriever(idx, &fakeEmbedder{}, nil, nil, nil)

	p := NewPlanner("fia", 2018, 2026)
	plan, _ := p.Plan("driver penalties in 2022")
	hits := r.Retrieve(context.Background(), []string{"q"}, plan, 40)
	if len(hits) != 0 {
		t.Fatalf("failed queries must contribute zero hits, got %d", len(hits))
	}
}

func TestRetrieveEmbeddingFailureYieldsNoQueries(t *testing.T) {
	idx := &fakeIndex{hits: []index.Hit{{Text: "hit"}}}
	r := NewRetriever(idx, &fakeEmbedder{fail: true}, nil, nil, nil)

	p := NewPlanner("fia", 2018, 2026)
	plan, _ := p.Plan("driver penalties in 2022")
	hits := r.Retrieve(context.Background(), []string{"q"}, plan, 40)
	if len(idx.queries) != 0 {
		t.Fatalf("no vectors means no queries, got %d", len(idx.queries))
	}
	if len(hits) != 0 {
		t.Fatalf("expected no hits, got %d", len(hits))
	}
}

func TestRetrieveUsesEmbeddingCache(t *testing.T) {
	idx := &fakeIndex{hits: []index.Hit{{Text: "hit"}}}
	emb := &fakeEmbedder{}
	cache := newMapCache()
	r := NewRetriever(idx, emb, cache, nil, nil)

	p := NewPlanner("fia", 2018, 2026)
	plan, _ := p.Plan("driver penalties in 2022")

	r.Retrieve(context.Background(), []string{"q"}, plan, 40)
	r.Retrieve(context.Background(), []string{"q"}, plan, 40)
	if emb.calls != 1 {
		t.Fatalf("second retrieve should hit the cache, embedder called %d times", emb.calls)
	}
}
