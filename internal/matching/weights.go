package matching

// Default scoring weights. The thresholds are tuned values carried over from
// the production rollout, not derived quantities; override them through
// Weights when probing gate behavior.
const (
	defaultPhraseScore             = 50
	defaultExactWordScore          = 15
	defaultStemScore               = 10
	defaultSynonymScore            = 8
	defaultPartialScore            = 3
	defaultFuzzyScore              = 2
	defaultIrrelevantWordPenalty   = -2
	defaultLengthMismatchPenalty   = -1
	defaultMinConfidence           = 0.6
	defaultHighConfidence          = 0.9
	defaultBasicMinScore           = 2
	defaultContextBonusPerKeyword  = 2
	defaultLengthMismatchTolerance = 3
)

// partialPhraseNumerator/Denominator: a trigger alternative whose words all
// appear in the input, out of order, earns 70% of the full phrase score.
const (
	partialPhraseNumerator   = 7
	partialPhraseDenominator = 10
)

// Weights holds every tunable constant of the two scorers. Penalty values
// are negative. The zero value of any field means "use the default"; a field
// can still be pinned at exactly zero by setting it out of its domain, which
// clamps to zero: negative for scores and thresholds, positive for penalties.
type Weights struct {
	PhraseScore           int
	ExactWordScore        int
	StemScore             int
	SynonymScore          int
	PartialScore          int
	FuzzyScore            int
	IrrelevantWordPenalty int
	LengthMismatchPenalty int
	MinConfidence         float64
	HighConfidence        float64
	BasicMinScore         int
}

// DefaultWeights returns the production defaults.
func DefaultWeights() Weights {
	return Weights{
		PhraseScore:           defaultPhraseScore,
		ExactWordScore:        defaultExactWordScore,
		StemScore:             defaultStemScore,
		SynonymScore:          defaultSynonymScore,
		PartialScore:          defaultPartialScore,
		FuzzyScore:            defaultFuzzyScore,
		IrrelevantWordPenalty: defaultIrrelevantWordPenalty,
		LengthMismatchPenalty: defaultLengthMismatchPenalty,
		MinConfidence:         defaultMinConfidence,
		HighConfidence:        defaultHighConfidence,
		BasicMinScore:         defaultBasicMinScore,
	}
}

// withDefaults fills zero-valued fields with the production defaults and
// clamps out-of-domain values to an explicit zero, so every weight and
// threshold can also be disabled outright.
func (w Weights) withDefaults() Weights {
	d := DefaultWeights()
	w.PhraseScore = scoreOrDefault(w.PhraseScore, d.PhraseScore)
	w.ExactWordScore = scoreOrDefault(w.ExactWordScore, d.ExactWordScore)
	w.StemScore = scoreOrDefault(w.StemScore, d.StemScore)
	w.SynonymScore = scoreOrDefault(w.SynonymScore, d.SynonymScore)
	w.PartialScore = scoreOrDefault(w.PartialScore, d.PartialScore)
	w.FuzzyScore = scoreOrDefault(w.FuzzyScore, d.FuzzyScore)
	w.IrrelevantWordPenalty = penaltyOrDefault(w.IrrelevantWordPenalty, d.IrrelevantWordPenalty)
	w.LengthMismatchPenalty = penaltyOrDefault(w.LengthMismatchPenalty, d.LengthMismatchPenalty)
	w.MinConfidence = thresholdOrDefault(w.MinConfidence, d.MinConfidence)
	w.HighConfidence = thresholdOrDefault(w.HighConfidence, d.HighConfidence)
	w.BasicMinScore = scoreOrDefault(w.BasicMinScore, d.BasicMinScore)
	return w
}

// scoreOrDefault resolves a non-negative weight: zero selects the default,
// negative pins the weight at zero.
func scoreOrDefault(v, def int) int {
	if v == 0 {
		return def
	}
	if v < 0 {
		return 0
	}
	return v
}

// penaltyOrDefault resolves a non-positive weight: zero selects the default,
// positive disables the penalty.
func penaltyOrDefault(v, def int) int {
	if v == 0 {
		return def
	}
	if v > 0 {
		return 0
	}
	return v
}

// thresholdOrDefault resolves a confidence threshold: zero selects the
// default, negative disables the gate.
func thresholdOrDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	if v < 0 {
		return 0
	}
	return v
}
