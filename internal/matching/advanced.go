package matching

import (
	"strings"

	"github.com/coldflow/supportbot/internal/domain"
)

// AdvancedScorer is the multi-signal strategy: exact-phrase credit, layered
// word matching with one best strategy per trigger keyword, a context bonus
// against the prompt's response content, penalties for irrelevant or
// length-mismatched input, and a normalized confidence over the maximum
// achievable score. The final ranking score is amplified, never overridden,
// by prompt priority.
type AdvancedScorer struct {
	weights  Weights
	norm     *Normalizer
	synonyms SynonymTable
}

// NewAdvancedScorer creates an advanced scorer. Nil normalizer or synonym
// table mean the shipped defaults.
func NewAdvancedScorer(w Weights, n *Normalizer, synonyms SynonymTable) *AdvancedScorer {
	if n == nil {
		n = NewNormalizer(nil)
	}
	if synonyms == nil {
		synonyms = DefaultSynonyms
	}
	return &AdvancedScorer{
		weights:  w.withDefaults(),
		norm:     n,
		synonyms: synonyms,
	}
}

// Score evaluates one prompt. Eligibility requires confidence at or above
// the minimum threshold; the ranking score is
// total × confidence × (1 + priority/10).
func (s *AdvancedScorer) Score(input string, prompt *domain.Prompt) Evaluation {
	breakdown := s.Breakdown(input, prompt.TriggerPhrase, prompt.Content)

	final := float64(breakdown.TotalScore) * breakdown.Confidence * (1 + float64(prompt.Priority)/10)

	return Evaluation{
		TotalScore: breakdown.TotalScore,
		Confidence: breakdown.Confidence,
		FinalScore: final,
		Eligible:   breakdown.Confidence >= s.weights.MinConfidence,
		Breakdown:  breakdown,
	}
}

// Quality returns the discrete label for a confidence value under this
// scorer's thresholds.
func (s *AdvancedScorer) Quality(confidence float64) string {
	return QualityLabel(confidence, s.weights)
}

// Breakdown computes the full per-strategy score breakdown for one input
// against one trigger phrase. Content is the prompt's response text, used
// only for the context bonus; pass "" to skip it.
func (s *AdvancedScorer) Breakdown(input, triggerPhrase, content string) *ScoreBreakdown {
	b := &ScoreBreakdown{}

	normalizedInput := Normalize(input)
	if normalizedInput == "" || strings.TrimSpace(triggerPhrase) == "" {
		return b
	}

	inputTokens := strings.Fields(normalizedInput)
	triggerWords := s.norm.ExtractKeywords(triggerPhrase)
	inputWords := s.norm.ExtractKeywords(input)
	contentWords := s.norm.ExtractKeywords(content)

	// 1. Exact phrase credit per comma-separated alternative. An alternative
	// whose words all appear in the input, out of order, earns 70% credit.
	// Empty and repeated alternatives are malformed data and do not count.
	alternatives := 0
	seenAlts := make(map[string]bool)
	for _, raw := range strings.Split(triggerPhrase, ",") {
		alt := Normalize(raw)
		if alt == "" || seenAlts[alt] {
			continue
		}
		seenAlts[alt] = true
		alternatives++

		if strings.Contains(normalizedInput, alt) {
			b.ExactPhrase += s.weights.PhraseScore
			continue
		}

		altWords := strings.Fields(alt)
		if len(altWords) > 1 && s.allWordsPresent(altWords, inputTokens) {
			b.ExactPhrase += s.weights.PhraseScore * partialPhraseNumerator / partialPhraseDenominator
		}
	}
	b.TotalScore += b.ExactPhrase
	b.MaxPossibleScore += alternatives * s.weights.PhraseScore

	// 2. Word matching: each trigger keyword contributes its single best
	// pairing against the input keywords; every trigger keyword raises the
	// achievable maximum whether or not it matched.
	relevant := make(map[string]bool, len(inputWords))
	for _, triggerWord := range triggerWords {
		b.MaxPossibleScore += s.weights.ExactWordScore

		bestType := MatchNone
		bestPoints := 0
		for _, inputWord := range inputWords {
			matchType, points := s.classifyPair(triggerWord, inputWord)
			if matchType != MatchNone {
				relevant[inputWord] = true
			}
			if points > bestPoints {
				bestType = matchType
				bestPoints = points
			}
		}

		if bestType != MatchNone {
			b.TotalScore += bestPoints
			b.addBucket(bestType, bestPoints)
		}
	}

	// 3. Context bonus: keywords shared between the input and the prompt's
	// response content signal topical relevance even without a trigger hit.
	for _, inputWord := range inputWords {
		if containsWord(contentWords, inputWord) {
			b.ContextBonus += defaultContextBonusPerKeyword
		}
	}
	b.TotalScore += b.ContextBonus

	// 4. Penalties: input keywords that matched no trigger keyword under any
	// strategy, plus excess length mismatch beyond the tolerance.
	irrelevant := 0
	for _, inputWord := range inputWords {
		if !relevant[inputWord] {
			irrelevant++
		}
	}
	b.Penalties = irrelevant * s.weights.IrrelevantWordPenalty

	lengthDiff := len(inputWords) - len(triggerWords)
	if lengthDiff < 0 {
		lengthDiff = -lengthDiff
	}
	if lengthDiff > defaultLengthMismatchTolerance {
		b.Penalties += s.weights.LengthMismatchPenalty * (lengthDiff - defaultLengthMismatchTolerance)
	}
	b.TotalScore += b.Penalties

	// 5. Confidence over the achievable maximum, clamped to [0, 1]. A zero
	// maximum means a degenerate candidate and confidence stays 0.
	if b.MaxPossibleScore > 0 {
		total := b.TotalScore
		if total < 0 {
			total = 0
		}
		confidence := float64(total) / float64(b.MaxPossibleScore)
		if confidence > 1 {
			confidence = 1
		}
		b.Confidence = confidence
	}

	return b
}

// classifyPair returns the single strategy under which a trigger word
// matches an input word, honoring the fixed precedence
// exact > synonym > stem > fuzzy > partial, with that strategy's points.
func (s *AdvancedScorer) classifyPair(triggerWord, inputWord string) (MatchType, int) {
	switch {
	case ExactMatch(triggerWord, inputWord):
		return MatchExact, s.weights.ExactWordScore
	case s.synonyms.Match(triggerWord, inputWord):
		return MatchSynonym, s.weights.SynonymScore
	case StemMatch(triggerWord, inputWord):
		return MatchStem, s.weights.StemScore
	case FuzzyMatch(triggerWord, inputWord):
		return MatchFuzzy, s.weights.FuzzyScore
	case PartialMatch(triggerWord, inputWord):
		return MatchPartial, s.weights.PartialScore
	default:
		return MatchNone, 0
	}
}

// allWordsPresent reports whether every alternative word longer than 2
// characters is present in the input tokens, counting exact, synonym, and
// stem equivalence as presence.
func (s *AdvancedScorer) allWordsPresent(altWords, inputTokens []string) bool {
	for _, altWord := range altWords {
		if len(altWord) <= minKeywordLen {
			continue
		}
		found := false
		for _, token := range inputTokens {
			if ExactMatch(altWord, token) || s.synonyms.Match(altWord, token) || StemMatch(altWord, token) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
