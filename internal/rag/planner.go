// Package rag implements the retrieval decision pipeline: question planning,
// query rewriting, recall fan-out, relevance reranking, and evidence
// selection. The vector index, embedding service, and LLM are injected
// collaborators; nothing in this package owns a connection.
package rag

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Rishi-Bethi-007/FIA-regulations-RAG-base-system/internal/docmeta"
	"github.com/Rishi-Bethi-007/FIA-regulations-RAG-base-system/internal/index"
)

// QueryPlan describes how a question should be retrieved: whether it
// compares seasons, which seasons it targets, and the metadata filter for
// the recall stage. Plans are built once per question and never mutated.
type QueryPlan struct {
	IsComparison bool             `json:"is_comparison"`
	Seasons      []int            `json:"seasons,omitempty"`
	Category     docmeta.Category `json:"category,omitempty"`
	DocType      string           `json:"doc_type"`
	Where        index.Predicate  `json:"-"`
}

// comparison intent markers, matched case-insensitively as substrings
var comparisonMarkers = []string{
	"compare", " vs ", "versus", "difference", "different", "changed", "change", "between",
}

var yearRe = regexp.MustCompile(`\b20\d{2}\b`)

// Planner turns a free-text question into a QueryPlan.
type Planner struct {
	docType   string
	minSeason int
	maxSeason int
}

// NewPlanner builds a planner for the given dataset and valid season range.
func NewPlanner(dataset string, minSeason, maxSeason int) *Planner {
	return &Planner{
		docType:   fmt.Sprintf("%s_f1_regulations", dataset),
		minSeason: minSeason,
		maxSeason: maxSeason,
	}
}

// Plan parses the question into seasons, comparison intent, and a retrieval
// predicate. The predicate always carries the dataset doc-type constraint;
// season and category constraints are added only when inferred.
func (p *Planner) Plan(question string) (QueryPlan, error) {
	if strings.TrimSpace(question) == "" {
		return QueryPlan{}, fmt.Errorf("question must not be empty")
	}

	years := p.extractYears(question)
	isComparison := hasComparisonIntent(question)
	category := detectCategory(question)

	plan := QueryPlan{
		Category: category,
		DocType:  p.docType,
	}

	base := []index.Predicate{index.Equals{Field: "doc_type", Value: p.docType}}
	if category != docmeta.CategoryUnspecified {
		base = append(base, index.Equals{Field: "category", Value: string(category)})
	}

	switch {
	case len(years) == 1:
		plan.IsComparison = false
		plan.Seasons = years
		plan.Where = index.And{Preds: append(base, index.Equals{Field: "season", Value: years[0]})}
	case len(years) >= 2:
		plan.IsComparison = true
		plan.Seasons = years
		values := make([]interface{}, len(years))
		for i, y := range years {
			values[i] = y
		}
		plan.Where = index.And{Preds: append(base, index.In{Field: "season", Values: values})}
	case isComparison:
		// No explicit years but comparison intent: default to the two most
		// recent seasons in the valid range.
		plan.IsComparison = true
		plan.Seasons = []int{p.maxSeason - 1, p.maxSeason}
		values := []interface{}{p.maxSeason - 1, p.maxSeason}
		plan.Where = index.And{Preds: append(base, index.In{Field: "season", Values: values})}
	default:
		plan.IsComparison = false
		plan.Seasons = nil
		plan.Where = index.And{Preds: base}
	}

	return plan, nil
}

// SeasonPredicate builds the fan-out predicate for a single season:
// doc-type ∧ category-if-any ∧ season.
func (plan QueryPlan) SeasonPredicate(season int) index.Predicate {
	preds := []index.Predicate{index.Equals{Field: "doc_type", Value: plan.DocType}}
	if plan.Category != docmeta.CategoryUnspecified {
		preds = append(preds, index.Equals{Field: "category", Value: string(plan.Category)})
	}
	preds = append(preds, index.Equals{Field: "season", Value: season})
	return index.And{Preds: preds}
}

func (p *Planner) extractYears(question string) []int {
	seen := make(map[int]struct{})
	var years []int
	for _, tok := range yearRe.FindAllString(question, -1) {
		y, err := strconv.Atoi(tok)
		if err != nil || y < p.minSeason || y > p.maxSeason {
			continue
		}
		if _, ok := seen[y]; ok {
			continue
		}
		seen[y] = struct{}{}
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

func hasComparisonIntent(question string) bool {
	q := strings.ToLower(question)
	for _, marker := range comparisonMarkers {
		if strings.Contains(q, marker) {
			return true
		}
	}
	return false
}

// detectCategory returns the requested regulation category, or unspecified
// when the question mentions neither or both; callers must not filter by
// category in either case.
func detectCategory(question string) docmeta.Category {
	q := strings.ToLower(question)
	sporting := strings.Contains(q, "sporting")
	technical := strings.Contains(q, "technical")
	switch {
	case sporting && !technical:
		return docmeta.CategorySporting
	case technical && !sporting:
		return docmeta.CategoryTechnical
	default:
		return docmeta.CategoryUnspecified
	}
}
