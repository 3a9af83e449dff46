package faq

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/coldflow/supportbot/internal/database"
	"github.com/coldflow/supportbot/internal/domain"
	"github.com/coldflow/supportbot/internal/logger"
	"github.com/coldflow/supportbot/internal/matching"
)

// Promotion thresholds: a question is promoted to a FAQ once it has been
// asked often enough and both sides of the exchange carry real content.
const (
	MinQuestionCount  = 10
	MinQuestionLength = 10
	MinAnswerLength   = 20
)

// genericOpeners are conversation fillers that must never become FAQs no
// matter how often they appear.
var genericOpeners = []string{
	"hello", "hi", "hey", "thanks", "thank you", "ok", "okay", "yes", "no", "bye", "goodbye",
}

// Store is the persistence surface the FAQ service needs.
type Store interface {
	ListActive(ctx context.Context) ([]*domain.FAQ, error)
	GetByQuestion(ctx context.Context, question string) (*domain.FAQ, error)
	Create(ctx context.Context, faq *domain.FAQ) error
	IncrementViews(ctx context.Context, faqID int64) error
}

// MessageCounter reports how often users have asked a given question and
// which reply they usually receive.
type MessageCounter interface {
	CountSimilarUserMessages(ctx context.Context, content string) (int, error)
	MostCommonAssistantResponse(ctx context.Context, content string) (string, error)
}

// Result is a successful FAQ lookup.
type Result struct {
	FAQID           int64    `json:"faq_id"`
	Question        string   `json:"question"`
	Answer          string   `json:"answer"`
	MatchedKeywords []string `json:"matched_keywords,omitempty"`
}

// Service answers user messages from the FAQ catalog and promotes repeated
// questions into new FAQ entries.
type Service struct {
	store    Store
	messages MessageCounter
	index    *Index
	norm     *matching.Normalizer
	log      logger.Logger
}

// NewService creates the FAQ service and builds its lookup index from the
// currently active FAQs.
func NewService(ctx context.Context, store Store, messages MessageCounter, log logger.Logger) (*Service, error) {
	if log == nil {
		log = logger.NewNop()
	}

	faqs, err := store.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("load faqs: %w", err)
	}

	return &Service{
		store:    store,
		messages: messages,
		index:    NewIndex(faqs, log),
		norm:     matching.NewNormalizer(nil),
		log:      log,
	}, nil
}

// Refresh rebuilds the lookup index from the store. Call after FAQ writes so
// lookups see the change.
func (s *Service) Refresh(ctx context.Context) error {
	faqs, err := s.store.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("reload faqs: %w", err)
	}
	s.index.Reload(faqs)
	return nil
}

// Lookup answers a user message from the FAQ catalog, or returns nil when no
// entry matches. The winning entry's view counter is incremented; a failed
// increment does not invalidate the answer.
func (s *Service) Lookup(ctx context.Context, message string) (*Result, error) {
	matches := s.index.Match(message)
	if len(matches) == 0 {
		return nil, nil
	}

	best := matches[0]
	if err := s.store.IncrementViews(ctx, best.FAQ.ID); err != nil {
		s.log.Warn("failed to increment faq views",
			logger.Int64("faq_id", best.FAQ.ID),
			logger.Error(err))
	}

	s.log.Debug("faq matched",
		logger.Int64("faq_id", best.FAQ.ID),
		logger.Int("unique_matches", best.UniqueMatches),
		logger.Float64("coverage", best.Coverage))

	return &Result{
		FAQID:           best.FAQ.ID,
		Question:        best.FAQ.Question,
		Answer:          best.FAQ.Answer,
		MatchedKeywords: best.MatchedKeywords,
	}, nil
}

// ConsiderPromotion creates a FAQ from a question/answer exchange once the
// question has been asked at least MinQuestionCount times. It reports whether
// a FAQ was created. Short exchanges, conversational fillers, and questions
// that already have a FAQ are skipped silently.
func (s *Service) ConsiderPromotion(ctx context.Context, question, answer string) (bool, error) {
	question = strings.TrimSpace(question)
	answer = strings.TrimSpace(answer)

	if len(question) < MinQuestionLength || len(answer) < MinAnswerLength {
		return false, nil
	}
	if isGenericOpener(question) {
		return false, nil
	}

	count, err := s.messages.CountSimilarUserMessages(ctx, question)
	if err != nil {
		return false, fmt.Errorf("count similar messages: %w", err)
	}
	if count < MinQuestionCount {
		return false, nil
	}

	if _, err = s.store.GetByQuestion(ctx, question); err == nil {
		return false, nil
	} else if !errors.Is(err, database.ErrNotFound) {
		return false, fmt.Errorf("check existing faq: %w", err)
	}

	created := &domain.FAQ{
		Question: question,
		Answer:   s.promotedAnswer(ctx, question, answer),
		Keywords: s.norm.ExtractKeywords(question),
		Active:   true,
	}
	if err = s.store.Create(ctx, created); err != nil {
		return false, fmt.Errorf("create faq: %w", err)
	}

	s.log.Info("faq auto-created from repeated question",
		logger.Int64("faq_id", created.ID),
		logger.Int("times_asked", count))

	if err = s.Refresh(ctx); err != nil {
		s.log.Warn("failed to refresh faq index after auto-create", logger.Error(err))
	}

	return true, nil
}

// promotedAnswer picks the reply most often given to the question over the
// one from the current exchange, so a one-off reply does not become the
// permanent FAQ answer. The current reply stands in when no usable
// historical reply exists.
func (s *Service) promotedAnswer(ctx context.Context, question, fallback string) string {
	common, err := s.messages.MostCommonAssistantResponse(ctx, question)
	if err != nil {
		if !errors.Is(err, database.ErrNotFound) {
			s.log.Warn("failed to find most common response", logger.Error(err))
		}
		return fallback
	}
	if len(strings.TrimSpace(common)) < MinAnswerLength {
		return fallback
	}
	return common
}

func isGenericOpener(question string) bool {
	normalized := matching.Normalize(question)
	for _, opener := range genericOpeners {
		if normalized == opener {
			return true
		}
	}
	return false
}
