// Package extract turns PDF files into raw text and metadata hints.
package extract

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrExtractionFailed indicates an unreadable or corrupt source document.
// A batch ingest treats this as a per-file failure, never a batch abort.
var ErrExtractionFailed = errors.New("extraction failed")

// Result holds the raw output of document extraction. Hint fields are
// best-effort and may be empty; the metadata resolver decides how to
// degrade when they are.
type Result struct {
	Text        string   // Full extracted text
	Pages       int      // Page count
	TitleHint   string   // From PDF metadata or first-page heuristics
	AuthorHints []string // From PDF metadata
	SubjectHint string   // From PDF metadata
	DOI         string   // First DOI pattern found in the leading pages
	Year        int      // From the PDF creation date, 0 if unknown
}

// Extractor is the document extraction boundary. Implementations turn a
// file path into text plus metadata hints.
type Extractor interface {
	Extract(path string) (*Result, error)
}

// PDFExtractor extracts text and metadata from PDF files.
type PDFExtractor struct {
	// MaxDOIPages bounds the DOI scan; the DOI is almost always on the
	// first page. Zero means the default of 3.
	MaxDOIPages int
}

// NewPDFExtractor returns a PDFExtractor with default settings.
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{MaxDOIPages: 3}
}

// Extract reads a PDF and returns its text and metadata hints.
// Returns ErrExtractionFailed for unreadable files or files that yield
// no text at all.
func (e *PDFExtractor) Extract(path string) (result *Result, err error) {
	// The PDF parser panics on some malformed files. Convert panics into
	// ErrExtractionFailed so one bad file cannot take down a batch.
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("%w: parsing %s: %v", ErrExtractionFailed, path, r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", ErrExtractionFailed, path, err)
	}
	defer f.Close()

	res := &Result{Pages: r.NumPage()}

	var builder strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		builder.WriteString(text)
		builder.WriteString("\n")
	}
	res.Text = builder.String()

	if strings.TrimSpace(res.Text) == "" {
		return nil, fmt.Errorf("%w: %s yielded no text", ErrExtractionFailed, path)
	}

	e.readInfoDict(r, res)

	if res.TitleHint == "" {
		res.TitleHint = firstSubstantialLine(res.Text)
	}

	maxPages := e.MaxDOIPages
	if maxPages <= 0 {
		maxPages = 3
	}
	res.DOI = findDOI(leadingPages(r, maxPages))

	return res, nil
}

// readInfoDict pulls title, author, subject, and creation year hints from
// the PDF Info dictionary when present.
func (e *PDFExtractor) readInfoDict(r *pdf.Reader, res *Result) {
	info := r.Trailer().Key("Info")
	if info.IsNull() {
		return
	}

	if v := info.Key("Title"); v.Kind() == pdf.String {
		res.TitleHint = strings.TrimSpace(v.Text())
	}
	if v := info.Key("Author"); v.Kind() == pdf.String {
		res.AuthorHints = splitAuthors(v.Text())
	}
	if v := info.Key("Subject"); v.Kind() == pdf.String {
		res.SubjectHint = strings.TrimSpace(v.Text())
	}
	if v := info.Key("CreationDate"); v.Kind() == pdf.String {
		res.Year = parseCreationYear(v.Text())
	}
}

// leadingPages returns the text of the first maxPages pages.
func leadingPages(r *pdf.Reader, maxPages int) string {
	if maxPages > r.NumPage() {
		maxPages = r.NumPage()
	}

	var builder strings.Builder
	for i := 1; i <= maxPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		builder.WriteString(text)
		builder.WriteString("\n")
	}
	return builder.String()
}

// DOI pattern: 10.XXXX/... where XXXX is 4+ digits.
var doiPattern = regexp.MustCompile(`10\.\d{4,9}/[^\s<>"{}|\\^~\[\]` + "`" + `]+`)

// creationDatePattern matches the year in a PDF date string like "D:20240115...".
var creationDatePattern = regexp.MustCompile(`D:(\d{4})`)

// findDOI finds the first valid DOI in text.
func findDOI(text string) string {
	for _, match := range doiPattern.FindAllString(text, -1) {
		match = strings.TrimRight(match, ".,;:)]}\"'")
		if isValidDOI(match) {
			return match
		}
	}
	return ""
}

// isValidDOI performs basic validation on a DOI candidate.
func isValidDOI(doi string) bool {
	if len(doi) < 10 || !strings.HasPrefix(doi, "10.") {
		return false
	}
	slashIdx := strings.Index(doi, "/")
	return slashIdx != -1 && slashIdx < len(doi)-1
}

// parseCreationYear extracts the year from a PDF creation date string.
func parseCreationYear(date string) int {
	m := creationDatePattern.FindStringSubmatch(date)
	if m == nil {
		return 0
	}
	year, err := strconv.Atoi(m[1])
	if err != nil || year < 1800 || year > 2200 {
		return 0
	}
	return year
}

// splitAuthors splits a metadata author string on common separators.
func splitAuthors(s string) []string {
	s = strings.ReplaceAll(s, " and ", ";")
	s = strings.ReplaceAll(s, ",", ";")
	s = strings.ReplaceAll(s, "&", ";")

	var authors []string
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part != "" {
			authors = append(authors, part)
		}
	}
	return authors
}

// firstSubstantialLine returns the first line of text that looks like a
// title rather than a journal header or footer.
func firstSubstantialLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) > 20 && !isHeaderLine(line) {
			return line
		}
	}
	return ""
}

// isHeaderLine checks if a line is likely a journal header or footer.
func isHeaderLine(line string) bool {
	lower := strings.ToLower(line)
	switch {
	case strings.Contains(lower, "journal"):
		return true
	case strings.Contains(lower, "volume") && strings.Contains(lower, "issue"):
		return true
	case strings.Contains(lower, "copyright"):
		return true
	case strings.Contains(lower, "article") && strings.Contains(lower, "published"):
		return true
	}
	return false
}
