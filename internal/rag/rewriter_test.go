package rag

import "testing"

func TestRewriteOriginalFirst(t *testing.T) {
	got := Rewrite("What is parc fermé?")
	if len(got) != 1 || got[0] != "What is parc fermé?" {
		t.Fatalf("untriggered question should pass through unchanged, got %v", got)
	}
}

func TestRewriteDriverTrigger(t *testing.T) {
	got := Rewrite("Driver penalties in 2022")
	if got[0] != "Driver penalties in 2022" {
		t.Fatalf("original must stay first, got %q", got[0])
	}
	if len(got) != 7 {
		t.Fatalf("expected original plus 6 driver expansions, got %d: %v", len(got), got)
	}
}

func TestRewriteMultipleTriggers(t *testing.T) {
	got := Rewrite("driver conduct during a sprint race")
	if len(got) != 12 {
		t.Fatalf("expected 1 + 6 + 5 variants, got %d", len(got))
	}
	seen := make(map[string]int)
	for _, v := range got {
		seen[v]++
	}
	for v, n := range seen {
		if n > 1 {
			t.Fatalf("variant %q appears %d times", v, n)
		}
	}
}

func TestRewriteStableOrder(t *testing.T) {
	a := Rewrite("driver sprint")
	b := Rewrite("driver sprint")
	if len(a) != len(b) {
		t.Fatalf("variant counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("variant order unstable at %d: %q vs %q", i, a[i], b[i])
		}
	}
}
