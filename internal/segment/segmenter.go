// Package segment turns raw page text into size-bounded, citation-friendly
// chunks. Regulatory text is split clause-first (numbered/lettered sub-rules),
// falling back to sentences, then greedily packed up to the chunk size with a
// small sentence-level overlap between neighbouring chunks.
package segment

import (
	"regexp"
	"strings"
)

var (
	paragraphRe  = regexp.MustCompile(`\n{2,}`)
	horizontalRe = regexp.MustCompile(`[ \t]+`)

	// Clause markers common in regulations: "1)", "1.", "(a)", "a)".
	// Anchored to a whitespace boundary (or block start) and followed by
	// whitespace so decimals like "42.3" are left alone.
	clauseRe = regexp.MustCompile(`(^|\s)(\(?[a-zA-Z]\)|[0-9]{1,3}\.|[0-9]{1,3}\))\s+`)

	// Sentence boundary: terminator, whitespace, then a capital, digit,
	// quote or opening parenthesis. Go's regexp has no lookaround, so the
	// boundary is located via submatch indexes instead.
	sentenceRe = regexp.MustCompile(`([.!?])\s+([A-Z0-9"'(])`)
)

func normalizeWhitespace(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = horizontalRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// splitSentences splits on sentence boundaries, keeping the terminator with
// the preceding sentence.
func splitSentences(text string) []string {
	matches := sentenceRe.FindAllStringSubmatchIndex(text, -1)
	var out []string
	start := 0
	for _, m := range matches {
		// m[3] is the end of the terminator group, m[4] the start of the
		// next sentence's first character.
		end := m[3]
		if s := strings.TrimSpace(text[start:end]); s != "" {
			out = append(out, s)
		}
		start = m[4]
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		out = append(out, s)
	}
	return out
}

// splitClauses removes clause markers and returns the content between them.
func splitClauses(text string) []string {
	matches := clauseRe.FindAllStringSubmatchIndex(text, -1)
	var out []string
	start := 0
	for _, m := range matches {
		// m[2]..m[3] is the leading boundary (whitespace or block start);
		// the marker itself spans from there to the full-match end.
		if s := strings.TrimSpace(text[start:m[3]]); s != "" {
			out = append(out, s)
		}
		start = m[1]
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		out = append(out, s)
	}
	return out
}

// splitUnits breaks text into meaning units: paragraph blocks first, then
// clauses within each block, with a sentence split as the fallback. A block
// producing fewer than two clause parts is sentence-split instead, so a lone
// marker never yields one giant unit.
func splitUnits(text string) []string {
	text = normalizeWhitespace(text)
	if text == "" {
		return nil
	}

	var units []string
	for _, block := range paragraphRe.Split(text, -1) {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		parts := splitClauses(block)
		if len(parts) >= 2 {
			units = append(units, parts...)
		} else {
			units = append(units, splitSentences(block)...)
		}
	}
	return units
}

// Segment chunks page text for indexing. Every returned chunk is at most
// chunkSize characters; a single unit longer than chunkSize is hard-split
// into consecutive fixed-size slices rather than dropped. When overlapUnits
// is positive, each chunk after the first is prefixed with the last
// overlapUnits sentence-equivalents of its predecessor.
func Segment(text string, chunkSize, overlapUnits int) []string {
	units := splitUnits(text)
	if len(units) == 0 {
		return nil
	}

	var chunks []string
	var current []string
	currentLen := 0

	flush := func() {
		if len(current) > 0 {
			chunks = append(chunks, strings.TrimSpace(strings.Join(current, " ")))
		}
		current = nil
		currentLen = 0
	}

	for _, u := range units {
		uLen := len(u)
		if uLen > chunkSize {
			flush()
			for i := 0; i < uLen; i += chunkSize {
				end := i + chunkSize
				if end > uLen {
					end = uLen
				}
				if part := strings.TrimSpace(u[i:end]); part != "" {
					chunks = append(chunks, part)
				}
			}
			continue
		}

		sep := 0
		if len(current) > 0 {
			sep = 1
		}
		if currentLen+uLen+sep <= chunkSize {
			current = append(current, u)
			currentLen += uLen + sep
		} else {
			flush()
			current = append(current, u)
			currentLen = uLen
		}
	}
	flush()

	if overlapUnits > 0 && len(chunks) > 1 {
		overlapped := make([]string, 0, len(chunks))
		overlapped = append(overlapped, chunks[0])
		for i := 1; i < len(chunks); i++ {
			// Resegment the previous chunk's text by sentence boundaries
			// rather than reusing stored units; packing may have merged them.
			tail := splitSentences(chunks[i-1])
			if len(tail) > overlapUnits {
				tail = tail[len(tail)-overlapUnits:]
			}
			prefix := strings.Join(tail, " ")
			if prefix != "" {
				overlapped = append(overlapped, prefix+" "+chunks[i])
			} else {
				overlapped = append(overlapped, chunks[i])
			}
		}
		return overlapped
	}

	return chunks
}
