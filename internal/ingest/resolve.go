package ingest

import (
	"path/filepath"
	"strings"

	"github.com/papersurf/papersurf/internal/extract"
	"github.com/papersurf/papersurf/internal/paper"
)

// maxAbstractChars bounds the abstract snippet pulled from the body text.
const maxAbstractChars = 1500

// resolveMetadata turns raw extraction hints into a candidate metadata
// record. Absent metadata degrades gracefully: the title falls back to
// the file name and author/topic stay empty for sentinel resolution.
func resolveMetadata(res *extract.Result, path string) paper.Candidate {
	cand := paper.Candidate{
		Title:   strings.TrimSpace(res.TitleHint),
		Authors: res.AuthorHints,
		Topic:   strings.TrimSpace(res.SubjectHint),
		DOI:     res.DOI,
		Year:    res.Year,
	}

	if cand.Title == "" {
		cand.Title = titleFromFilename(path)
		cand.TitleFromFilename = true
	}

	cand.Abstract = abstractFromText(res.Text)

	return cand
}

// titleFromFilename derives a readable title from the file name.
func titleFromFilename(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)
	return strings.Join(strings.Fields(base), " ")
}

// abstractFromText finds an "Abstract" heading in the body text and
// returns the paragraph following it, bounded by the next section heading
// or the snippet limit. Returns "" when no abstract section is found.
func abstractFromText(text string) string {
	lines := strings.Split(text, "\n")

	start := -1
	for i, line := range lines {
		trimmed := strings.ToLower(strings.TrimSpace(line))
		trimmed = strings.TrimRight(trimmed, ".:—-")
		if trimmed == "abstract" {
			start = i + 1
			break
		}
	}
	if start == -1 {
		return ""
	}

	var builder strings.Builder
	for _, line := range lines[start:] {
		trimmed := strings.TrimSpace(line)
		if isSectionBreak(trimmed) {
			break
		}
		if trimmed == "" {
			if builder.Len() > 0 {
				break
			}
			continue
		}
		if builder.Len() > 0 {
			builder.WriteString(" ")
		}
		builder.WriteString(trimmed)
		if builder.Len() >= maxAbstractChars {
			break
		}
	}

	abstract := builder.String()
	if len(abstract) > maxAbstractChars {
		abstract = abstract[:maxAbstractChars]
	}
	return abstract
}

// isSectionBreak checks whether a line starts the section after the abstract.
func isSectionBreak(line string) bool {
	lower := strings.ToLower(strings.TrimSpace(line))
	lower = strings.TrimLeft(lower, "1. ")
	return strings.HasPrefix(lower, "introduction") || strings.HasPrefix(lower, "keywords") ||
		strings.HasPrefix(lower, "index terms")
}
