package matching

import (
	"strings"

	"github.com/coldflow/supportbot/internal/domain"
)

// Basic scorer point values. These are intentionally cruder than the
// advanced weights; the basic scorer is the cheap legacy strategy kept for
// low-traffic deployments.
const (
	basicPhrasePoints    = 10
	basicExactWordPoints = 3
	basicPartialPoints   = 1
)

// BasicScorer is the linear point-accumulation strategy: phrase containment
// plus per-word exact and substring hits, summed across every
// comma-separated trigger alternative. No confidence, no penalties, no
// normalization of the total.
type BasicScorer struct {
	minScore int
}

// NewBasicScorer creates a basic scorer gated at w.BasicMinScore.
func NewBasicScorer(w Weights) *BasicScorer {
	return &BasicScorer{minScore: w.withDefaults().BasicMinScore}
}

// Score computes the basic match score. Empty input or trigger yields a zero,
// ineligible evaluation with no further work.
func (s *BasicScorer) Score(input string, prompt *domain.Prompt) Evaluation {
	total := s.rawScore(input, prompt.TriggerPhrase)
	return Evaluation{
		TotalScore: total,
		FinalScore: float64(total),
		Eligible:   total >= s.minScore,
	}
}

func (s *BasicScorer) rawScore(input, triggerPhrase string) int {
	normalizedInput := Normalize(input)
	if normalizedInput == "" || strings.TrimSpace(triggerPhrase) == "" {
		return 0
	}

	inputWords := Words(normalizedInput)

	score := 0
	seen := make(map[string]bool)
	for _, alternative := range strings.Split(triggerPhrase, ",") {
		trigger := Normalize(alternative)
		if trigger == "" || seen[trigger] {
			continue
		}
		seen[trigger] = true

		if strings.Contains(normalizedInput, trigger) {
			score += basicPhrasePoints
		}

		// Word-level hits are deliberately not de-duplicated: a trigger word
		// that matches several input words scores once per pairing.
		for _, triggerWord := range Words(trigger) {
			for _, inputWord := range inputWords {
				if triggerWord == inputWord {
					score += basicExactWordPoints
				} else if strings.Contains(triggerWord, inputWord) || strings.Contains(inputWord, triggerWord) {
					score += basicPartialPoints
				}
			}
		}
	}

	return score
}
