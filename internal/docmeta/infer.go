// Package docmeta derives document-level attributes (season, regulation
// category, issue, publication date) from a source filename. Inference is
// best effort and never fails: absent fields mean "no constraint" to callers.
package docmeta

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Category is the regulation category inferred from a filename.
type Category string

const (
	CategorySporting    Category = "sporting"
	CategoryTechnical   Category = "technical"
	CategoryOperational Category = "operational"
	// CategoryUnspecified covers both "not mentioned" and "ambiguous"
	// filenames; callers must not filter by category in either case.
	CategoryUnspecified Category = ""
)

// Metadata holds inferred document attributes. Season 0 and empty strings
// mean the field could not be inferred.
type Metadata struct {
	Dataset   string
	DocType   string
	Season    int
	Category  Category
	Issue     int
	Published string // ISO yyyy-mm-dd
}

var (
	yearRe      = regexp.MustCompile(`20\d{2}`)
	issueRe     = regexp.MustCompile(`(?i)\bissue[\s_-]*(\d{1,2})\b`)
	publishedRe = regexp.MustCompile(`\b(20\d{2})[-_/](\d{1,2})[-_/](\d{1,2})\b`)
)

// Infer derives metadata from a filename (which may include path segments).
// The season is the maximum 20xx token found: editions routinely reference
// the prior year, and the edition year is assumed to be the larger token.
func Infer(filename, dataset string) Metadata {
	name := filename
	if i := strings.LastIndexAny(filename, "/\\"); i >= 0 {
		name = filename[i+1:]
	}
	low := strings.ToLower(filename)

	meta := Metadata{
		Dataset: dataset,
		DocType: fmt.Sprintf("%s_f1_regulations", dataset),
	}

	for _, y := range yearRe.FindAllString(name, -1) {
		if v, err := strconv.Atoi(y); err == nil && v > meta.Season {
			meta.Season = v
		}
	}

	sporting := strings.Contains(low, "sporting")
	technical := strings.Contains(low, "technical")
	operational := strings.Contains(low, "operational")
	switch {
	case sporting && !technical:
		meta.Category = CategorySporting
	case technical && !sporting:
		meta.Category = CategoryTechnical
	case operational && !sporting && !technical:
		meta.Category = CategoryOperational
	}

	if m := issueRe.FindStringSubmatch(name); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			meta.Issue = v
		}
	}

	if m := publishedRe.FindStringSubmatch(name); m != nil {
		mm := m[2]
		if len(mm) == 1 {
			mm = "0" + mm
		}
		dd := m[3]
		if len(dd) == 1 {
			dd = "0" + dd
		}
		meta.Published = fmt.Sprintf("%s-%s-%s", m[1], mm, dd)
	}

	return meta
}

// Ambiguous reports whether the filename names more than one category, which
// leaves the category unspecified so retrieval stays broad.
func Ambiguous(filename string) bool {
	low := strings.ToLower(filename)
	return strings.Contains(low, "sporting") && strings.Contains(low, "technical")
}
