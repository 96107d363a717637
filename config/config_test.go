package config

import "testing"

func TestChunkingNormalize(t *testing.T) {
	cfg := ChunkingConfig{ChunkSize: 0, OverlapUnits: -3}
	norm := cfg.Normalize()
	if norm.ChunkSize != 900 {
		t.Fatalf("expected default chunk size 900, got %d", norm.ChunkSize)
	}
	if norm.OverlapUnits != 0 {
		t.Fatalf("expected overlap to clamp to 0, got %d", norm.OverlapUnits)
	}

	kept := ChunkingConfig{ChunkSize: 500, OverlapUnits: 2}.Normalize()
	if kept.ChunkSize != 500 || kept.OverlapUnits != 2 {
		t.Fatalf("expected explicit values to survive, got %+v", kept)
	}
}

func TestRetrievalNormalize(t *testing.T) {
	norm := RetrievalConfig{}.Normalize()
	if norm.Dataset != "fia" {
		t.Fatalf("expected default dataset fia, got %q", norm.Dataset)
	}
	if norm.RecallK != 40 || norm.TopK != 6 || norm.MinPerSeason != 2 {
		t.Fatalf("unexpected retrieval defaults: %+v", norm)
	}
	if norm.MinSeason != 2018 || norm.MaxSeason != 2026 {
		t.Fatalf("unexpected season range defaults: %d-%d", norm.MinSeason, norm.MaxSeason)
	}
	if norm.RerankMaxChars != 900 {
		t.Fatalf("expected rerank clip default 900, got %d", norm.RerankMaxChars)
	}
}

func TestRetrievalValidate(t *testing.T) {
	good := RetrievalConfig{}.Normalize()
	if err := good.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}

	bad := good
	bad.MinSeason = 2030
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected error for inverted season range")
	}

	bad = good
	bad.TopK = 100
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected error for top_k > recall_k")
	}
}

func TestPostgresValidateAndDSN(t *testing.T) {
	withURL := PostgresConfig{URL: "postgres://u:p@h:5432/db?sslmode=disable"}
	if err := withURL.Validate(); err != nil {
		t.Fatalf("unexpected error with url: %v", err)
	}
	if withURL.DSN() != withURL.URL {
		t.Fatalf("expected DSN to pass through url")
	}

	fields := PostgresConfig{Host: "localhost", User: "reg", Password: "pw", DBName: "regs"}
	if err := fields.Validate(); err != nil {
		t.Fatalf("unexpected error with fields: %v", err)
	}
	want := "postgres://reg:pw@localhost:5432/regs?sslmode=disable"
	if got := fields.DSN(); got != want {
		t.Fatalf("DSN mismatch: got %q want %q", got, want)
	}

	if err := (PostgresConfig{}).Validate(); err == nil {
		t.Fatalf("expected error for empty postgres config")
	}
}
