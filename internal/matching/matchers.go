package matching

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// Word-level match types, in precedence order. When one trigger word matches
// one input word under several strategies at once, only the
// highest-precedence strategy counts.
type MatchType int

const (
	MatchNone MatchType = iota
	MatchExact
	MatchSynonym
	MatchStem
	MatchFuzzy
	MatchPartial
)

// String returns the breakdown bucket name for the match type.
func (m MatchType) String() string {
	switch m {
	case MatchExact:
		return "exact_word"
	case MatchSynonym:
		return "synonym"
	case MatchStem:
		return "stem"
	case MatchFuzzy:
		return "fuzzy"
	case MatchPartial:
		return "partial"
	default:
		return "none"
	}
}

// stemSuffixes are stripped in order when generating stem variants.
var stemSuffixes = []string{"s", "es", "ed", "ing", "er", "est", "ly", "tion", "sion"}

// fuzzyDistanceThresholds: words longer than 4 characters tolerate edit
// distance 2, words of length 3-4 tolerate 1, shorter words never
// fuzzy-match.
const (
	fuzzyLongWordLen      = 4
	fuzzyLongMaxDistance  = 2
	fuzzyShortMaxDistance = 1
	partialMinWordLen     = 4
)

// SynonymTable maps a canonical term to its accepted alternates. Matching is
// symmetric: canonical-to-alternate in either direction, or two alternates
// of the same canonical term.
type SynonymTable map[string][]string

// DefaultSynonyms covers the appliance-support vocabulary the bot ships with.
var DefaultSynonyms = SynonymTable{
	"refrigerator": {"fridge", "icebox", "cooler"},
	"freezer":      {"icebox", "frozen compartment"},
	"repair":       {"fix", "service", "maintenance", "troubleshoot"},
	"broken":       {"damaged", "not working", "faulty", "defective"},
	"temperature":  {"temp", "heat", "cold", "cooling"},
	"ice maker":    {"ice machine", "ice dispenser", "ice generator"},
	"warranty":     {"guarantee", "coverage", "protection"},
	"energy":       {"power", "electricity", "consumption"},
	"noise":        {"sound", "loud", "noisy", "vibration"},
	"clean":        {"wash", "sanitize", "maintenance"},
}

// Match reports whether a and b are synonyms under the table.
func (t SynonymTable) Match(a, b string) bool {
	if a == b {
		return false
	}
	for canonical, alternates := range t {
		aAlt := containsWord(alternates, a)
		bAlt := containsWord(alternates, b)
		if (a == canonical && bAlt) || (b == canonical && aAlt) || (aAlt && bAlt) {
			return true
		}
	}
	return false
}

func containsWord(words []string, w string) bool {
	for _, candidate := range words {
		if candidate == w {
			return true
		}
	}
	return false
}

// ExactMatch reports whether two normalized words are identical.
func ExactMatch(a, b string) bool {
	return a == b
}

// StemVariants returns the word plus every truncation produced by stripping
// a known suffix, provided the remaining stem stays longer than 2 characters.
func StemVariants(word string) []string {
	variants := []string{word}
	for _, suffix := range stemSuffixes {
		if strings.HasSuffix(word, suffix) && len(word) > len(suffix)+minKeywordLen {
			stem := word[:len(word)-len(suffix)]
			if !containsWord(variants, stem) {
				variants = append(variants, stem)
			}
		}
	}
	return variants
}

// StemMatch reports whether two words share a stem variant.
func StemMatch(a, b string) bool {
	for _, va := range StemVariants(a) {
		for _, vb := range StemVariants(b) {
			if va == vb {
				return true
			}
		}
	}
	return false
}

// FuzzyMatch reports whether two words are within edit-distance tolerance of
// each other. Tolerance scales with the longer word's length.
func FuzzyMatch(a, b string) bool {
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen <= minKeywordLen {
		return false
	}

	distance := levenshtein.ComputeDistance(a, b)
	if maxLen > fuzzyLongWordLen {
		return distance <= fuzzyLongMaxDistance
	}
	return distance <= fuzzyShortMaxDistance
}

// PartialMatch reports whether one word contains the other. Only words
// longer than 4 characters participate; shorter substrings are noise.
func PartialMatch(a, b string) bool {
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	if minLen <= partialMinWordLen {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}
