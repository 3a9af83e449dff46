package matching

import (
	"context"
	"fmt"
	"strings"

	"github.com/coldflow/supportbot/internal/domain"
	"github.com/coldflow/supportbot/internal/logger"
)

// PromptSource supplies match candidates and applies the winner's usage
// increment. ListActivePrompts returns active prompts in descending priority
// order, stable for equal priorities. IncrementUsage carries at-least-once
// semantics; implementations should make the increment atomic at the
// storage layer.
type PromptSource interface {
	ListActivePrompts(ctx context.Context) ([]domain.Prompt, error)
	IncrementUsage(ctx context.Context, promptID int64) error
}

// MatchResult is the outcome of a successful selection.
type MatchResult struct {
	PromptID   int64          `json:"prompt_id"`
	Content    string         `json:"content"`
	Confidence float64        `json:"confidence"`
	FinalScore float64        `json:"final_score"`
	Quality    string         `json:"match_quality"`
	Breakdown  map[string]int `json:"score_breakdown,omitempty"`
}

// Selector runs a scorer across the active prompt catalog and picks the best
// eligible candidate. Scoring is pure; the usage-count side effect happens
// here, once, for the winner only.
type Selector struct {
	scorer  Scorer
	weights Weights
	prompts PromptSource
	log     logger.Logger
}

// NewSelector creates a selector around the given scorer and prompt source.
func NewSelector(scorer Scorer, w Weights, prompts PromptSource, log logger.Logger) *Selector {
	if log == nil {
		log = logger.NewNop()
	}
	return &Selector{
		scorer:  scorer,
		weights: w.withDefaults(),
		prompts: prompts,
		log:     log,
	}
}

// Match scores the user message against every active prompt and returns the
// best candidate that clears its gate, or nil when nothing matches — a
// normal outcome, not an error. Empty or whitespace input yields nil
// immediately.
func (s *Selector) Match(ctx context.Context, userMessage string) (*MatchResult, error) {
	if Normalize(userMessage) == "" {
		return nil, nil
	}

	prompts, err := s.prompts.ListActivePrompts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active prompts: %w", err)
	}

	var (
		best     *domain.Prompt
		bestEval Evaluation
	)
	for i := range prompts {
		prompt := &prompts[i]
		if !prompt.Active || strings.TrimSpace(prompt.TriggerPhrase) == "" {
			continue
		}

		eval := s.scorer.Score(userMessage, prompt)
		if !eval.Eligible {
			continue
		}

		// Strictly-better keeps the earlier (higher priority) prompt on ties.
		if best == nil || eval.FinalScore > bestEval.FinalScore ||
			(eval.FinalScore == bestEval.FinalScore && eval.Confidence > bestEval.Confidence) {
			best = prompt
			bestEval = eval
		}
	}

	if best == nil {
		return nil, nil
	}

	if err := s.prompts.IncrementUsage(ctx, best.ID); err != nil {
		// The match is still valid; losing one usage tick is acceptable.
		s.log.Warn("failed to increment prompt usage",
			logger.Int64("prompt_id", best.ID),
			logger.Error(err))
	}

	result := &MatchResult{
		PromptID:   best.ID,
		Content:    best.Content,
		Confidence: bestEval.Confidence,
		FinalScore: bestEval.FinalScore,
		Quality:    QualityLabel(bestEval.Confidence, s.weights),
		Breakdown:  bestEval.Breakdown.AsMap(),
	}

	s.log.Debug("prompt matched",
		logger.Int64("prompt_id", best.ID),
		logger.Float64("confidence", result.Confidence),
		logger.Float64("final_score", result.FinalScore),
		logger.String("quality", result.Quality))

	return result, nil
}
