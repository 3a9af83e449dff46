package matching

import "github.com/coldflow/supportbot/internal/domain"

// Evaluation is one scorer's verdict on one prompt for one input. FinalScore
// is the ranking key; Eligible reports whether the prompt cleared its gate
// (raw-score minimum for the basic scorer, confidence threshold for the
// advanced one). Breakdown is nil for the basic scorer.
type Evaluation struct {
	TotalScore int
	Confidence float64
	FinalScore float64
	Eligible   bool
	Breakdown  *ScoreBreakdown
}

// Scorer scores one user input against one prompt. Implementations are pure:
// scoring never mutates the prompt or any shared state. Mutation (the usage
// counter) belongs to the Selector.
type Scorer interface {
	Score(input string, prompt *domain.Prompt) Evaluation
}

// ScoreBreakdown records per-strategy point contributions for one
// input/prompt pair. It exists only for the duration of a matching call and
// is surfaced to callers for transparency.
type ScoreBreakdown struct {
	ExactPhrase  int `json:"exact_phrase_matches"`
	ExactWord    int `json:"exact_word_matches"`
	Synonym      int `json:"synonym_matches"`
	Stem         int `json:"stem_matches"`
	Partial      int `json:"partial_matches"`
	Fuzzy        int `json:"fuzzy_matches"`
	Penalties    int `json:"penalties"`
	ContextBonus int `json:"context_bonus"`

	TotalScore       int     `json:"total_score"`
	MaxPossibleScore int     `json:"max_possible_score"`
	Confidence       float64 `json:"confidence"`
}

// AsMap returns the named point buckets keyed the way they are reported to
// callers and logged.
func (b *ScoreBreakdown) AsMap() map[string]int {
	if b == nil {
		return nil
	}
	return map[string]int{
		"exact_phrase_matches": b.ExactPhrase,
		"exact_word_matches":   b.ExactWord,
		"synonym_matches":      b.Synonym,
		"stem_matches":         b.Stem,
		"partial_matches":      b.Partial,
		"fuzzy_matches":        b.Fuzzy,
		"penalties":            b.Penalties,
		"context_bonus":        b.ContextBonus,
	}
}

func (b *ScoreBreakdown) addBucket(t MatchType, points int) {
	switch t {
	case MatchExact:
		b.ExactWord += points
	case MatchSynonym:
		b.Synonym += points
	case MatchStem:
		b.Stem += points
	case MatchFuzzy:
		b.Fuzzy += points
	case MatchPartial:
		b.Partial += points
	}
}
