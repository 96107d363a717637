package index

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestTextDirSourcePages(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	write("b 2024 sporting.txt", "page one\fpage two")
	write("a 2023 technical.txt", "only page")
	write("notes.md", "ignored")
	write("empty.txt", "\f  \f")

	pages, err := TextDirSource{Dir: dir}.Pages(context.Background())
	if err != nil {
		t.Fatalf("Pages: %v", err)
	}
	if len(pages) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(pages))
	}
	// Files come back in name order.
	if pages[0].Source != "a 2023 technical.txt" || pages[0].Number != 1 {
		t.Fatalf("first page = %+v", pages[0])
	}
	if pages[1].Source != "b 2024 sporting.txt" || pages[1].Text != "page one" {
		t.Fatalf("second page = %+v", pages[1])
	}
	if pages[2].Number != 2 || pages[2].Text != "page two" {
		t.Fatalf("third page = %+v", pages[2])
	}
}

func TestTextDirSourceMissingDir(t *testing.T) {
	_, err := TextDirSource{Dir: "/nonexistent/regs"}.Pages(context.Background())
	if err == nil {
		t.Fatalf("expected error for missing directory")
	}
}
