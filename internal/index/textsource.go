package index

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// TextDirSource reads extracted regulation text from a directory. Each .txt
// file is one document; pages are separated by form feeds, the layout
// pdftotext emits. A file without form feeds is a single page.
type TextDirSource struct {
	Dir string
}

func (s TextDirSource) Pages(ctx context.Context) ([]Page, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, fmt.Errorf("reading source directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".txt") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	var pages []Page
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(filepath.Join(s.Dir, name))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		for i, pageText := range strings.Split(string(data), "\f") {
			if strings.TrimSpace(pageText) == "" {
				continue
			}
			pages = append(pages, Page{
				Source: name,
				Number: i + 1,
				Text:   pageText,
			})
		}
	}
	return pages, nil
}
