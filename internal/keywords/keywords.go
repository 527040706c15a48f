// Package keywords extracts ranked topic keywords from document text.
package keywords

import (
	"regexp"
	"sort"
	"strings"
)

// Keyword is one extracted term with its relevance weight in [0, 1].
type Keyword struct {
	Term   string  `json:"term"`
	Weight float64 `json:"weight"`
}

// Extractor is the keyword extraction boundary. Implementations return at
// most maxK keywords ordered by descending weight.
type Extractor interface {
	ExtractKeywords(text string, maxK int) ([]Keyword, error)
}

// DefaultMaxKeywords is the number of keywords extracted per paper when the
// caller does not specify a count.
const DefaultMaxKeywords = 5

// FrequencyExtractor ranks terms by stopword-filtered frequency. Bigrams of
// consecutive content words compete with unigrams so that multi-word
// phrases like "machine learning" can win over their parts.
type FrequencyExtractor struct {
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

// NewFrequencyExtractor creates a frequency-based keyword extractor.
func NewFrequencyExtractor() *FrequencyExtractor {
	return &FrequencyExtractor{
		tokenPattern: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`),
		stopwords:    defaultStopwords(),
	}
}

// ExtractKeywords returns the top maxK keywords for the text, ordered by
// descending weight with alphabetical tie-breaking. Weights are normalized
// so the top keyword has weight 1. Empty or stopword-only text yields an
// empty list, not an error.
func (e *FrequencyExtractor) ExtractKeywords(text string, maxK int) ([]Keyword, error) {
	if maxK <= 0 {
		maxK = DefaultMaxKeywords
	}

	tokens := e.tokenize(text)

	counts := make(map[string]float64)
	prev := ""
	for _, tok := range tokens {
		if _, isStop := e.stopwords[tok]; isStop {
			prev = ""
			continue
		}
		if len(tok) < 3 {
			prev = ""
			continue
		}
		counts[tok]++
		if prev != "" {
			// A bigram counts a little more than either of its parts
			// so established phrases outrank isolated words.
			counts[prev+" "+tok] += 1.5
		}
		prev = tok
	}

	if len(counts) == 0 {
		return nil, nil
	}

	terms := make([]string, 0, len(counts))
	for term := range counts {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if counts[terms[i]] != counts[terms[j]] {
			return counts[terms[i]] > counts[terms[j]]
		}
		return terms[i] < terms[j]
	})

	if len(terms) > maxK {
		terms = terms[:maxK]
	}

	top := counts[terms[0]]
	result := make([]Keyword, 0, len(terms))
	for _, term := range terms {
		result = append(result, Keyword{Term: term, Weight: counts[term] / top})
	}
	return result, nil
}

func (e *FrequencyExtractor) tokenize(text string) []string {
	return e.tokenPattern.FindAllString(strings.ToLower(text), -1)
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "about", "above", "after", "again", "all", "also", "an", "and",
		"any", "are", "as", "at", "be", "because", "been", "being", "between",
		"both", "but", "by", "can", "could", "did", "do", "does", "during",
		"each", "for", "from", "further", "had", "has", "have", "having",
		"here", "how", "however", "if", "in", "into", "is", "it", "its",
		"may", "more", "most", "much", "no", "nor", "not", "of", "on", "once",
		"only", "or", "other", "our", "over", "own", "per", "same", "should",
		"since", "so", "some", "such", "than", "that", "the", "their", "them",
		"then", "there", "therefore", "these", "they", "this", "those",
		"through", "thus", "to", "under", "until", "upon", "used", "using",
		"very", "was", "we", "were", "what", "when", "where", "which",
		"while", "who", "will", "with", "within", "would",
	}
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
