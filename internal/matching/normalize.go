// Package matching implements the message-matching engine: free-text user
// input is scored against the trigger phrases of canned-response prompts
// using layered lexical strategies, and the best candidate above a
// confidence gate is selected.
package matching

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// minKeywordLen is the shortest token kept by keyword extraction. Tokens of
// this length or less carry almost no signal in a support-chat register.
const minKeywordLen = 2

// DefaultStopWords are filtered out of keyword sets. Articles, conjunctions,
// prepositions, auxiliaries, interrogatives, and the first/second-person
// filler of a support conversation ("please", "help", "my").
var DefaultStopWords = []string{
	"the", "a", "an", "and", "or", "but", "in", "on", "at", "to", "for",
	"of", "with", "by", "is", "are", "was", "were", "what", "how", "when",
	"where", "why", "can", "could", "would", "should", "do", "does", "my",
	"your", "have", "has", "had", "will", "please", "help", "me", "i",
}

// Normalizer lower-cases, folds diacritics, strips punctuation, and extracts
// keyword sets. It holds the stop-word list as injected data so tests and
// future localization can override it.
type Normalizer struct {
	stopWords map[string]struct{}
}

// NewNormalizer creates a Normalizer with the given stop-word list.
// A nil list means DefaultStopWords.
func NewNormalizer(stopWords []string) *Normalizer {
	if stopWords == nil {
		stopWords = DefaultStopWords
	}
	set := make(map[string]struct{}, len(stopWords))
	for _, w := range stopWords {
		set[strings.ToLower(w)] = struct{}{}
	}
	return &Normalizer{stopWords: set}
}

var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lower-cases the text, folds diacritics, replaces every character
// that is not a letter, digit, underscore, or apostrophe with a space,
// collapses runs of whitespace, and trims. It is idempotent.
func Normalize(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))

	if folded, _, err := transform.String(diacriticStripper, text); err == nil {
		text = folded
	}

	var b strings.Builder
	b.Grow(len(text))
	lastSpace := false
	for _, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '\'':
			b.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			lastSpace = true
		}
	}

	return strings.TrimRight(b.String(), " ")
}

// ExtractKeywords normalizes the text, splits it into words, removes
// stop-words and tokens of length <= 2, and de-duplicates while preserving
// first-seen order. Empty input yields an empty slice.
func (n *Normalizer) ExtractKeywords(text string) []string {
	normalized := Normalize(text)
	if normalized == "" {
		return nil
	}

	seen := make(map[string]struct{})
	var keywords []string
	for _, word := range strings.Fields(normalized) {
		if len(word) <= minKeywordLen {
			continue
		}
		if _, stop := n.stopWords[word]; stop {
			continue
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		keywords = append(keywords, word)
	}
	return keywords
}

// Words normalizes the text and returns every token longer than 2
// characters, with no stop-word filtering and no de-duplication. This is the
// tokenization used by the basic scorer's word layer.
func Words(text string) []string {
	normalized := Normalize(text)
	if normalized == "" {
		return nil
	}

	var words []string
	for _, word := range strings.Fields(normalized) {
		if len(word) > minKeywordLen {
			words = append(words, word)
		}
	}
	return words
}
