package rag

import (
	"reflect"
	"testing"

	"github.com/Rishi-Bethi-007/FIA-regulations-RAG-base-system/internal/docmeta"
	"github.com/Rishi-Bethi-007/FIA-regulations-RAG-base-system/internal/index"
)

func TestPlanEmptyQuestion(t *testing.T) {
	p := NewPlanner("fia", 2018, 2026)
	if _, err := p.Plan("   "); err == nil {
		t.Fatalf("expected error for blank question")
	}
}

func TestPlanComparisonTwoYears(t *testing.T) {
	p := NewPlanner("fia", 2018, 2026)
	plan, err := p.Plan("Compare 2023 vs 2024 sporting regulations")
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if !plan.IsComparison {
		t.Fatalf("expected comparison plan")
	}
	if !reflect.DeepEqual(plan.Seasons, []int{2023, 2024}) {
		t.Fatalf("seasons = %v, want [2023 2024]", plan.Seasons)
	}
	if plan.Category != docmeta.CategorySporting {
		t.Fatalf("category = %q, want sporting", plan.Category)
	}
}

func TestPlanSingleYear(t *testing.T) {
	p := NewPlanner("fia", 2018, 2026)
	plan, err := p.Plan("driver penalties in 2022")
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if plan.IsComparison {
		t.Fatalf("expected non-comparison plan")
	}
	if !reflect.DeepEqual(plan.Seasons, []int{2022}) {
		t.Fatalf("seasons = %v, want [2022]", plan.Seasons)
	}
	if plan.Category != docmeta.CategoryUnspecified {
		t.Fatalf("category = %q, want unspecified", plan.Category)
	}
}

func TestPlanComparisonNoYears(t *testing.T) {
	p := NewPlanner("fia", 2018, 2026)
	plan, err := p.Plan("what changed recently?")
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if !plan.IsComparison {
		t.Fatalf("expected comparison plan")
	}
	if !reflect.DeepEqual(plan.Seasons, []int{2025, 2026}) {
		t.Fatalf("seasons = %v, want [2025 2026]", plan.Seasons)
	}
}

func TestPlanNoSignals(t *testing.T) {
	p := NewPlanner("fia", 2018, 2026)
	plan, err := p.Plan("what is parc fermé?")
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if plan.IsComparison || plan.Seasons != nil {
		t.Fatalf("expected unconstrained plan, got %+v", plan)
	}
	sql, args, err := index.ToSQL(plan.Where, 1)
	if err != nil {
		t.Fatalf("ToSQL: %v", err)
	}
	if sql != "(doc_type = $1)" {
		t.Fatalf("sql = %q", sql)
	}
	if len(args) != 1 || args[0] != "fia_f1_regulations" {
		t.Fatalf("args = %v", args)
	}
}

func TestPlanYearsOutOfRangeIgnored(t *testing.T) {
	p := NewPlanner("fia", 2018, 2026)
	plan, err := p.Plan("regulations in 2012 and 2040")
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(plan.Seasons) != 0 {
		t.Fatalf("out-of-range years should be dropped, got %v", plan.Seasons)
	}
}

func TestPlanDuplicateYearsDeduped(t *testing.T) {
	p := NewPlanner("fia", 2018, 2026)
	plan, err := p.Plan("2024 rules versus 2024 rules")
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if !reflect.DeepEqual(plan.Seasons, []int{2024}) {
		t.Fatalf("seasons = %v, want [2024]", plan.Seasons)
	}
	// One distinct year: single-season plan even with comparison wording.
	if plan.IsComparison {
		t.Fatalf("single distinct year should not be a comparison plan")
	}
}

func TestPlanBothCategoriesUnspecified(t *testing.T) {
	p := NewPlanner("fia", 2018, 2026)
	plan, err := p.Plan("sporting and technical regulations for 2023")
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if plan.Category != docmeta.CategoryUnspecified {
		t.Fatalf("ambiguous category must stay unspecified, got %q", plan.Category)
	}
}

func TestSeasonPredicateIncludesCategory(t *testing.T) {
	p := NewPlanner("fia", 2018, 2026)
	plan, err := p.Plan("compare 2023 vs 2024 technical regulations")
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	sql, args, err := index.ToSQL(plan.SeasonPredicate(2023), 1)
	if err != nil {
		t.Fatalf("ToSQL: %v", err)
	}
	want := "(doc_type = $1 AND category = $2 AND season = $3)"
	if sql != want {
		t.Fatalf("sql = %q, want %q", sql, want)
	}
	if args[2] != 2023 {
		t.Fatalf("season arg = %v", args[2])
	}
}
