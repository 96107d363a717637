package rag

import (
	"fmt"
	"testing"

	"github.com/Rishi-Bethi-007/FIA-regulations-RAG-base-system/internal/index"
)

func hitWithSeason(season, page, score int) index.Hit {
	h := index.Hit{
		Text:  fmt.Sprintf("s%d-p%d", season, page),
		Score: score,
		Meta: index.ChunkMeta{
			Source:     fmt.Sprintf("fia_%d.pdf", season),
			Page:       page,
			ChunkIndex: 0,
		},
	}
	h.Meta.Season = season
	return h
}

func TestSelectEvidenceMinPerSeason(t *testing.T) {
	// All top-ranked hits come from 2024; 2023 only appears lower down.
	var ranked []index.Hit
	for p := 1; p <= 5; p++ {
		ranked = append(ranked, hitWithSeason(2024, p, 100-p))
	}
	for p := 1; p <= 5; p++ {
		ranked = append(ranked, hitWithSeason(2023, p, 50-p))
	}

	got := SelectEvidence(ranked, []int{2023, 2024}, 6, 2)
	if len(got) != 6 {
		t.Fatalf("expected 6 evidence chunks, got %d", len(got))
	}
	counts := map[int]int{}
	for _, h := range got {
		counts[h.Meta.Season]++
	}
	if counts[2023] < 2 {
		t.Fatalf("2023 got %d chunks, want at least 2", counts[2023])
	}
	if counts[2024] < 2 {
		t.Fatalf("2024 got %d chunks, want at least 2", counts[2024])
	}
}

func TestSelectEvidenceDeduplicates(t *testing.T) {
	a := hitWithSeason(2024, 3, 90)
	b := hitWithSeason(2024, 3, 10) // same source, page, chunk index
	got := SelectEvidence([]index.Hit{a, b}, []int{2024}, 6, 1)
	if len(got) != 1 {
		t.Fatalf("duplicates must collapse, got %d", len(got))
	}
	if got[0].Score != 90 {
		t.Fatalf("highest-ranked copy must win, got score %d", got[0].Score)
	}
}

func TestSelectEvidenceSeasonMissingFromRecall(t *testing.T) {
	// 2023 has no hits at all; the guarantee degrades gracefully.
	var ranked []index.Hit
	for p := 1; p <= 4; p++ {
		ranked = append(ranked, hitWithSeason(2024, p, 100-p))
	}
	got := SelectEvidence(ranked, []int{2023, 2024}, 4, 2)
	if len(got) != 4 {
		t.Fatalf("expected 4 chunks from the available season, got %d", len(got))
	}
	for _, h := range got {
		if h.Meta.Season != 2024 {
			t.Fatalf("unexpected season %d", h.Meta.Season)
		}
	}
}

func TestSelectEvidenceNoSeasonsTruncates(t *testing.T) {
	var ranked []index.Hit
	for p := 1; p <= 10; p++ {
		ranked = append(ranked, hitWithSeason(2024, p, 100-p))
	}
	got := SelectEvidence(ranked, nil, 6, 0)
	if len(got) != 6 {
		t.Fatalf("expected truncation to 6, got %d", len(got))
	}
	if got[0].Text != "s2024-p1" {
		t.Fatalf("rank order must be preserved, got %q first", got[0].Text)
	}
}

func TestSelectEvidenceBudgetSmallerThanGuarantee(t *testing.T) {
	ranked := []index.Hit{
		hitWithSeason(2023, 1, 90),
		hitWithSeason(2023, 2, 80),
		hitWithSeason(2024, 1, 70),
		hitWithSeason(2024, 2, 60),
	}
	got := SelectEvidence(ranked, []int{2023, 2024}, 3, 2)
	if len(got) != 3 {
		t.Fatalf("budget is a hard cap, got %d", len(got))
	}
}

func TestSelectEvidenceFillPassIgnoresSeason(t *testing.T) {
	// A hit from outside the requested seasons still fills a free slot.
	ranked := []index.Hit{
		hitWithSeason(2023, 1, 90),
		hitWithSeason(2024, 1, 80),
		hitWithSeason(2022, 1, 70),
		hitWithSeason(2023, 2, 60),
	}
	got := SelectEvidence(ranked, []int{2023, 2024}, 4, 1)
	if len(got) != 4 {
		t.Fatalf("expected all 4 hits selected, got %d", len(got))
	}
	seasons := map[int]int{}
	for _, h := range got {
		seasons[h.Meta.Season]++
	}
	if seasons[2022] != 1 {
		t.Fatalf("off-season hit must fill the spare slot, got %v", seasons)
	}
}

func TestSelectEvidenceZeroBudget(t *testing.T) {
	if got := SelectEvidence([]index.Hit{hitWithSeason(2024, 1, 1)}, nil, 0, 0); got != nil {
		t.Fatalf("zero budget returns nothing, got %v", got)
	}
}
