package rag

import "strings"

// Domain-aware expansions: when a question mentions a trigger term, a fixed
// set of concrete regulation phrasings is appended to widen recall. Kept as
// an ordered list so variant order is stable across runs.
var expansions = []struct {
	trigger string
	phrases []string
}{
	{"driver", []string{
		"driver shall",
		"driver must",
		"competitor or driver",
		"driver responsibilities",
		"driver penalties",
		"driver conduct",
	}},
	{"sprint", []string{
		"sprint session",
		"sprint qualifying",
		"sprint race",
		"sprint classification",
		"sprint grid",
	}},
}

// Rewrite expands an abstract question into concrete retrieval queries. The
// original question is always first; duplicates are removed preserving
// first-occurrence order.
func Rewrite(question string) []string {
	q := strings.ToLower(question)
	rewrites := []string{question}

	for _, exp := range expansions {
		if strings.Contains(q, exp.trigger) {
			rewrites = append(rewrites, exp.phrases...)
		}
	}

	seen := make(map[string]struct{}, len(rewrites))
	out := make([]string, 0, len(rewrites))
	for _, r := range rewrites {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}
