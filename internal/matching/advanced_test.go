package matching_test

import (
	"testing"

	"github.com/coldflow/supportbot/internal/domain"
	"github.com/coldflow/supportbot/internal/matching"
)

func newAdvancedScorer() *matching.AdvancedScorer {
	return matching.NewAdvancedScorer(matching.DefaultWeights(), nil, nil)
}

func TestAdvancedScorer_ExactPhrase(t *testing.T) {
	scorer := newAdvancedScorer()

	prompt := &domain.Prompt{
		TriggerPhrase: "refrigerator repair",
		Content:       "Here is our refrigerator repair guide",
		Priority:      8,
		Active:        true,
	}

	eval := scorer.Score("I need refrigerator repair help", prompt)

	if eval.Breakdown == nil {
		t.Fatal("expected a breakdown")
	}
	if eval.Breakdown.ExactPhrase == 0 {
		t.Error("expected exact phrase credit")
	}
	if eval.Confidence < 0.9 {
		t.Errorf("Confidence = %v, want >= 0.9", eval.Confidence)
	}
	if !eval.Eligible {
		t.Error("expected the candidate to clear the confidence gate")
	}
	if got := scorer.Quality(eval.Confidence); got != matching.QualityExcellent {
		t.Errorf("Quality = %q, want %q", got, matching.QualityExcellent)
	}

	// total 82: phrase 50, exact words 30, context bonus 4, one irrelevant
	// input keyword -2; confidence clamps at 1.0 over a maximum of 80.
	if eval.TotalScore != 82 {
		t.Errorf("TotalScore = %d, want 82", eval.TotalScore)
	}
	if eval.Confidence != 1.0 {
		t.Errorf("Confidence = %v, want 1.0", eval.Confidence)
	}

	// final score amplified by priority: 82 * 1.0 * 1.8
	expectedFinal := 82 * 1.0 * 1.8
	if diff := eval.FinalScore - expectedFinal; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("FinalScore = %v, want %v", eval.FinalScore, expectedFinal)
	}
}

func TestAdvancedScorer_SynonymsCarryTheMatch(t *testing.T) {
	scorer := newAdvancedScorer()

	prompt := &domain.Prompt{
		TriggerPhrase: "refrigerator repair",
		Content:       "Refrigerator repair guide",
		Priority:      5,
		Active:        true,
	}

	eval := scorer.Score("I need to fix my fridge", prompt)

	if eval.Breakdown == nil {
		t.Fatal("expected a breakdown")
	}
	if eval.Breakdown.Synonym == 0 {
		t.Error("expected synonym credit for fix/repair and fridge/refrigerator")
	}
	// both trigger words are present through synonyms, so the out-of-order
	// phrase credit applies at 70%
	if eval.Breakdown.ExactPhrase != 35 {
		t.Errorf("ExactPhrase = %d, want 35", eval.Breakdown.ExactPhrase)
	}
	if eval.Confidence < 0.6 {
		t.Errorf("Confidence = %v, want >= 0.6", eval.Confidence)
	}
	if !eval.Eligible {
		t.Error("expected the candidate to clear the confidence gate")
	}
}

func TestAdvancedScorer_UnrelatedInput(t *testing.T) {
	scorer := newAdvancedScorer()

	prompt := &domain.Prompt{
		TriggerPhrase: "ice maker",
		Content:       "Ice maker troubleshooting steps",
		Priority:      5,
		Active:        true,
	}

	eval := scorer.Score("completely unrelated query about weather", prompt)

	if eval.Confidence != 0 {
		t.Errorf("Confidence = %v, want 0", eval.Confidence)
	}
	if eval.Eligible {
		t.Error("unrelated input must not clear the gate")
	}
	if eval.FinalScore != 0 {
		t.Errorf("FinalScore = %v, want 0", eval.FinalScore)
	}
}

func TestAdvancedScorer_Breakdown(t *testing.T) {
	scorer := newAdvancedScorer()

	testCases := []struct {
		name    string
		input   string
		trigger string
		check   func(t *testing.T, b *matching.ScoreBreakdown)
	}{
		{
			name:    "fuzzy bucket on a misspelling",
			input:   "refridgerator",
			trigger: "refrigerator",
			check: func(t *testing.T, b *matching.ScoreBreakdown) {
				if b.Fuzzy != 2 {
					t.Errorf("Fuzzy = %d, want 2", b.Fuzzy)
				}
			},
		},
		{
			name:    "stem bucket on an inflection",
			input:   "repairs",
			trigger: "repair",
			check: func(t *testing.T, b *matching.ScoreBreakdown) {
				if b.Stem != 10 {
					t.Errorf("Stem = %d, want 10", b.Stem)
				}
			},
		},
		{
			name:    "one best strategy per trigger keyword",
			input:   "refrigerator fridge",
			trigger: "refrigerator",
			check: func(t *testing.T, b *matching.ScoreBreakdown) {
				if b.ExactWord != 15 {
					t.Errorf("ExactWord = %d, want 15", b.ExactWord)
				}
				if b.Synonym != 0 {
					t.Errorf("Synonym = %d, want 0 when exact already matched", b.Synonym)
				}
			},
		},
		{
			name:    "length mismatch penalty beyond the tolerance",
			input:   "freezer one two three four five six seven eight",
			trigger: "freezer",
			check: func(t *testing.T, b *matching.ScoreBreakdown) {
				// 8 extra keywords are irrelevant (-16) and the keyword-count
				// gap of 8 exceeds the tolerance of 3 by 5 (-5)
				if b.Penalties != -21 {
					t.Errorf("Penalties = %d, want -21", b.Penalties)
				}
			},
		},
		{
			name:    "empty trigger is degenerate",
			input:   "refrigerator",
			trigger: "  ",
			check: func(t *testing.T, b *matching.ScoreBreakdown) {
				if b.MaxPossibleScore != 0 || b.Confidence != 0 {
					t.Errorf("degenerate candidate: max %d confidence %v, want 0 and 0",
						b.MaxPossibleScore, b.Confidence)
				}
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b := scorer.Breakdown(tc.input, tc.trigger, "")
			tc.check(t, b)
		})
	}
}

func TestAdvancedScorer_ConfidenceBounds(t *testing.T) {
	scorer := newAdvancedScorer()

	inputs := []string{
		"",
		"refrigerator",
		"my fridge is broken and making loud noises all night",
		"completely unrelated ramble about nothing in particular at all",
		"refrigerator repair refrigerator repair refrigerator repair",
	}
	triggers := []string{
		"refrigerator repair",
		"broken, damaged, not working",
		"noise, loud, sound",
		"ice maker",
	}

	for _, input := range inputs {
		for _, trigger := range triggers {
			prompt := &domain.Prompt{TriggerPhrase: trigger, Priority: 5, Active: true}
			eval := scorer.Score(input, prompt)
			if eval.Confidence < 0 || eval.Confidence > 1 {
				t.Errorf("Score(%q, %q): confidence %v out of [0, 1]", input, trigger, eval.Confidence)
			}
			if eval.Breakdown.TotalScore != eval.TotalScore {
				t.Errorf("Score(%q, %q): breakdown total %d != evaluation total %d",
					input, trigger, eval.Breakdown.TotalScore, eval.TotalScore)
			}
		}
	}
}

func TestAdvancedScorer_PriorityAmplifiesOnly(t *testing.T) {
	scorer := newAdvancedScorer()

	low := &domain.Prompt{TriggerPhrase: "temperature control", Priority: 3, Active: true}
	high := &domain.Prompt{TriggerPhrase: "temperature control", Priority: 9, Active: true}

	input := "temperature control"
	lowEval := scorer.Score(input, low)
	highEval := scorer.Score(input, high)

	if lowEval.Confidence != highEval.Confidence {
		t.Errorf("priority must not change confidence: %v vs %v", lowEval.Confidence, highEval.Confidence)
	}
	if lowEval.TotalScore != highEval.TotalScore {
		t.Errorf("priority must not change the raw total: %d vs %d", lowEval.TotalScore, highEval.TotalScore)
	}
	if highEval.FinalScore <= lowEval.FinalScore {
		t.Errorf("higher priority must rank higher: %v vs %v", highEval.FinalScore, lowEval.FinalScore)
	}
}

func TestScoreBreakdown_AsMap(t *testing.T) {
	scorer := newAdvancedScorer()

	b := scorer.Breakdown("I need to fix my fridge", "refrigerator repair", "")
	m := b.AsMap()

	if m["synonym_matches"] != b.Synonym {
		t.Errorf("synonym_matches = %d, want %d", m["synonym_matches"], b.Synonym)
	}
	if m["exact_phrase_matches"] != b.ExactPhrase {
		t.Errorf("exact_phrase_matches = %d, want %d", m["exact_phrase_matches"], b.ExactPhrase)
	}
	if m["penalties"] != b.Penalties {
		t.Errorf("penalties = %d, want %d", m["penalties"], b.Penalties)
	}

	var nilBreakdown *matching.ScoreBreakdown
	if nilBreakdown.AsMap() != nil {
		t.Error("nil breakdown must map to nil")
	}
}

func TestAdvancedScorer_RepeatedAlternativesCountOnce(t *testing.T) {
	scorer := newAdvancedScorer()

	single := scorer.Breakdown("refrigerator repair", "refrigerator repair", "")
	doubled := scorer.Breakdown("refrigerator repair", "refrigerator repair,  Refrigerator Repair ", "")

	if doubled.ExactPhrase != single.ExactPhrase {
		t.Errorf("ExactPhrase = %d, want %d", doubled.ExactPhrase, single.ExactPhrase)
	}
	if doubled.MaxPossibleScore != single.MaxPossibleScore {
		t.Errorf("MaxPossibleScore = %d, want %d", doubled.MaxPossibleScore, single.MaxPossibleScore)
	}
	if doubled.Confidence != single.Confidence {
		t.Errorf("Confidence = %v, want %v", doubled.Confidence, single.Confidence)
	}
}
