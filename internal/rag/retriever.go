package rag

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/Rishi-Bethi-007/FIA-regulations-RAG-base-system/internal/index"
	"github.com/Rishi-Bethi-007/FIA-regulations-RAG-base-system/internal/telemetry"
)

// minPerSeasonBudget is the floor on per-season recall when a comparison
// plan splits the budget across many seasons.
const minPerSeasonBudget = 10

// EmbeddingCache avoids re-embedding identical query variants. A nil cache
// is valid and always misses.
type EmbeddingCache interface {
	Get(ctx context.Context, text string) ([]float32, bool)
	Put(ctx context.Context, text string, vector []float32)
}

// Retriever executes the recall stage against the vector index.
type Retriever struct {
	index    index.VectorIndex
	embedder index.Embedder
	cache    EmbeddingCache
	tele     *telemetry.Telemetry
	logger   *log.Logger
}

// NewRetriever wires the recall stage. cache and tele may be nil.
func NewRetriever(idx index.VectorIndex, embedder index.Embedder, cache EmbeddingCache, tele *telemetry.Telemetry, logger *log.Logger) *Retriever {
	if logger == nil {
		logger = log.New(log.Writer(), "[RETRIEVE] ", log.LstdFlags)
	}
	return &Retriever{index: idx, embedder: embedder, cache: cache, tele: tele, logger: logger}
}

// PerSeasonBudget splits the recall budget across seasons without starving
// any of them.
func PerSeasonBudget(recallBudget, seasons int) int {
	if seasons <= 0 {
		return recallBudget
	}
	budget := recallBudget / seasons
	if budget < minPerSeasonBudget {
		budget = minPerSeasonBudget
	}
	return budget
}

type recallJob struct {
	vector []float32
	k      int
	where  index.Predicate
}

// Retrieve fans the query variants out against the vector index. Comparison
// plans issue one query per (variant, season) with the per-season budget;
// other plans issue one query per variant with the full predicate. Results
// are concatenated without deduplication; the rerank and selection stages
// resolve duplicates. A failing query contributes zero hits.
func (r *Retriever) Retrieve(ctx context.Context, variants []string, plan QueryPlan, recallBudget int) []index.Hit {
	start := time.Now()
	defer func() { r.tele.ObserveRetrieval(time.Since(start)) }()

	vectors := r.embedVariants(ctx, variants)

	var jobs []recallJob
	if plan.IsComparison && len(plan.Seasons) > 0 {
		perSeason := PerSeasonBudget(recallBudget, len(plan.Seasons))
		for _, season := range plan.Seasons {
			where := plan.SeasonPredicate(season)
			for _, vec := range vectors {
				if vec == nil {
					continue
				}
				jobs = append(jobs, recallJob{vector: vec, k: perSeason, where: where})
			}
		}
	} else {
		for _, vec := range vectors {
			if vec == nil {
				continue
			}
			jobs = append(jobs, recallJob{vector: vec, k: recallBudget, where: plan.Where})
		}
	}

	// The fan-out is independent read-only requests; dispatch concurrently
	// and concatenate. Order among jobs carries no meaning downstream.
	results := make([][]index.Hit, len(jobs))
	var wg sync.WaitGroup
	for i, job := range jobs {
		wg.Add(1)
		go func(i int, job recallJob) {
			defer wg.Done()
			hits, err := r.index.Query(ctx, job.vector, job.k, job.where)
			if err != nil {
				r.tele.RecordIndexError()
				r.logger.Printf("warn: index query failed, contributing zero hits: %v", err)
				return
			}
			results[i] = hits
		}(i, job)
	}
	wg.Wait()

	var all []index.Hit
	for _, hits := range results {
		all = append(all, hits...)
	}
	return all
}

// embedVariants returns one vector per variant, nil where embedding failed.
func (r *Retriever) embedVariants(ctx context.Context, variants []string) [][]float32 {
	vectors := make([][]float32, len(variants))
	var misses []string
	var missIdx []int
	for i, v := range variants {
		if r.cache != nil {
			if vec, ok := r.cache.Get(ctx, v); ok {
				vectors[i] = vec
				continue
			}
		}
		misses = append(misses, v)
		missIdx = append(missIdx, i)
	}
	if len(misses) == 0 {
		return vectors
	}

	embedded, err := r.embedder.Embed(ctx, misses)
	if err != nil || len(embedded) != len(misses) {
		r.logger.Printf("warn: embedding %d query variants failed: %v", len(misses), err)
		return vectors
	}
	for j, vec := range embedded {
		vectors[missIdx[j]] = vec
		if r.cache != nil {
			r.cache.Put(ctx, misses[j], vec)
		}
	}
	return vectors
}
