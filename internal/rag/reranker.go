package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/Rishi-Bethi-007/FIA-regulations-RAG-base-system/internal/index"
	"github.com/Rishi-Bethi-007/FIA-regulations-RAG-base-system/internal/telemetry"
	"github.com/Rishi-Bethi-007/FIA-regulations-RAG-base-system/provider"
)

// Reranker orders recall candidates by LLM-judged relevance. Any failure of
// the LLM call or of parsing its output degrades to recall order with zero
// scores; the pipeline never fails because of the reranker.
type Reranker struct {
	llm      provider.LLMProvider
	model    string
	maxChars int
	tele     *telemetry.Telemetry
	logger   *log.Logger
}

// NewReranker builds a reranker using the given model. maxChars bounds how
// much of each candidate is shown to the judge.
func NewReranker(llm provider.LLMProvider, model string, maxChars int, tele *telemetry.Telemetry, logger *log.Logger) *Reranker {
	if logger == nil {
		logger = log.New(log.Writer(), "[RERANK] ", log.LstdFlags)
	}
	return &Reranker{llm: llm, model: model, maxChars: maxChars, tele: tele, logger: logger}
}

type rerankCandidate struct {
	I      int    `json:"i"`
	Season int    `json:"season"`
	Source string `json:"source"`
	Page   int    `json:"page"`
	Text   string `json:"text"`
}

type rerankResult struct {
	Ranking []struct {
		I     int `json:"i"`
		Score int `json:"score"`
	} `json:"ranking"`
}

// Rerank scores the hits against the question and returns the top
// finalBudget by descending score. Ties keep recall order.
func (r *Reranker) Rerank(ctx context.Context, question string, hits []index.Hit, finalBudget int) []index.Hit {
	if len(hits) == 0 {
		return nil
	}

	// Candidate positions are 1-based in the oracle contract.
	candidates := make([]rerankCandidate, len(hits))
	for i, h := range hits {
		candidates[i] = rerankCandidate{
			I:      i + 1,
			Season: h.Meta.Season,
			Source: h.Meta.Source,
			Page:   h.Meta.Page,
			Text:   clip(h.Text, r.maxChars),
		}
	}

	payload, err := json.Marshal(candidates)
	if err != nil {
		r.logger.Printf("warn: marshaling rerank candidates: %v", err)
		return r.fallback(hits, finalBudget)
	}

	prompt := fmt.Sprintf(`You are ranking regulation excerpts by how well they answer a question.

Question: %s

Candidates (JSON array, each with 1-based position "i"):
%s

Score each candidate from 0 (irrelevant) to 100 (directly answers the question).
Return ONLY a JSON object of the form {"ranking": [{"i": N, "score": S}, ...]} covering every candidate.`, question, payload)

	raw, err := r.llm.Generate(ctx, r.model, prompt)
	if err != nil {
		r.logger.Printf("warn: rerank generation failed, keeping recall order: %v", err)
		return r.fallback(hits, finalBudget)
	}

	result, err := parseRerankResult(raw)
	if err != nil {
		r.logger.Printf("warn: unparseable rerank response, keeping recall order: %v", err)
		return r.fallback(hits, finalBudget)
	}

	scores := make(map[int]int, len(result.Ranking))
	for _, entry := range result.Ranking {
		idx := entry.I - 1
		if idx < 0 || idx >= len(hits) {
			continue
		}
		scores[idx] = entry.Score
	}

	ranked := make([]index.Hit, len(hits))
	copy(ranked, hits)
	for i := range ranked {
		ranked[i].Score = scores[i]
	}
	sort.SliceStable(ranked, func(a, b int) bool { return ranked[a].Score > ranked[b].Score })

	if finalBudget > 0 && len(ranked) > finalBudget {
		ranked = ranked[:finalBudget]
	}
	return ranked
}

// fallback returns the hits in recall order with zero scores.
func (r *Reranker) fallback(hits []index.Hit, finalBudget int) []index.Hit {
	r.tele.RecordRerankFallback()
	out := make([]index.Hit, len(hits))
	copy(out, hits)
	for i := range out {
		out[i].Score = 0
	}
	if finalBudget > 0 && len(out) > finalBudget {
		out = out[:finalBudget]
	}
	return out
}

// parseRerankResult tolerates prose around the JSON object: if the raw text
// does not unmarshal directly, the substring from the first '{' to the last
// '}' is tried.
func parseRerankResult(raw string) (rerankResult, error) {
	var result rerankResult
	if err := json.Unmarshal([]byte(raw), &result); err == nil {
		return result, nil
	}
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return result, fmt.Errorf("no JSON object in response")
	}
	if err := json.Unmarshal([]byte(raw[start:end+1]), &result); err != nil {
		return result, fmt.Errorf("failed to parse ranking: %w", err)
	}
	return result, nil
}

// clip truncates to at most maxChars bytes without splitting a rune.
func clip(text string, maxChars int) string {
	if maxChars <= 0 || len(text) <= maxChars {
		return text
	}
	cut := maxChars
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return strings.TrimRight(text[:cut], " \t\r\n") + "…"
}
