// Package chat orchestrates a conversation turn: the user message is
// answered by the best canned prompt, then the FAQ catalog, then the
// generative fallback, and the whole exchange is persisted to the session
// transcript.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/coldflow/supportbot/internal/database"
	"github.com/coldflow/supportbot/internal/domain"
	"github.com/coldflow/supportbot/internal/faq"
	"github.com/coldflow/supportbot/internal/llm"
	"github.com/coldflow/supportbot/internal/logger"
	"github.com/coldflow/supportbot/internal/matching"
	"github.com/coldflow/supportbot/internal/telemetry"
)

var (
	// ErrEmptyMessage is returned when the user message carries no content.
	ErrEmptyMessage = errors.New("empty message")
	// ErrSessionClosed is returned when a message targets a closed session.
	ErrSessionClosed = errors.New("session closed")
)

// Matcher scores a message against the prompt catalog.
type Matcher interface {
	Match(ctx context.Context, userMessage string) (*matching.MatchResult, error)
}

// FAQ answers messages from the FAQ catalog and promotes repeated questions.
type FAQ interface {
	Lookup(ctx context.Context, message string) (*faq.Result, error)
	ConsiderPromotion(ctx context.Context, question, answer string) (bool, error)
}

// Generator produces a model-written answer from the conversation so far.
type Generator interface {
	Generate(ctx context.Context, history []llm.Turn) (*llm.Reply, error)
}

// SessionStore persists sessions and transcripts.
type SessionStore interface {
	CreateSession(ctx context.Context, session *domain.ChatSession) error
	GetSession(ctx context.Context, sessionID string) (*domain.ChatSession, error)
	CloseSession(ctx context.Context, sessionID string) error
	AppendMessage(ctx context.Context, message *domain.ChatMessage) error
	Transcript(ctx context.Context, sessionID string) ([]domain.ChatMessage, error)
}

// Response is one answered conversation turn.
type Response struct {
	SessionID  string  `json:"session_id"`
	Reply      string  `json:"reply"`
	Source     string  `json:"source"`
	Confidence float64 `json:"confidence,omitempty"`
	Quality    string  `json:"match_quality,omitempty"`
	PromptID   int64   `json:"prompt_id,omitempty"`
	FAQID      int64   `json:"faq_id,omitempty"`
}

// Service runs conversation turns.
type Service struct {
	matcher   Matcher
	faqs      FAQ
	generator Generator
	sessions  SessionStore
	telemetry *telemetry.Provider
	log       logger.Logger
}

// NewService creates the chat service. The telemetry provider may be nil.
func NewService(matcher Matcher, faqs FAQ, generator Generator, sessions SessionStore,
	tp *telemetry.Provider, log logger.Logger) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{
		matcher:   matcher,
		faqs:      faqs,
		generator: generator,
		sessions:  sessions,
		telemetry: tp,
		log:       log,
	}
}

// Send answers one user message. An empty sessionID starts a new session;
// the session identifier is always echoed back so the client can continue
// the conversation. Answer sources degrade tier by tier, so a failing tier
// is logged and skipped rather than surfaced to the user.
func (s *Service) Send(ctx context.Context, sessionID, message string) (*Response, error) {
	message = strings.TrimSpace(message)
	if matching.Normalize(message) == "" {
		return nil, ErrEmptyMessage
	}

	session, err := s.resolveSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err = s.sessions.AppendMessage(ctx, &domain.ChatMessage{
		SessionID:  session.SessionID,
		SenderType: domain.SenderUser,
		Content:    message,
	}); err != nil {
		return nil, fmt.Errorf("persist user message: %w", err)
	}

	start := time.Now()
	response := s.answer(ctx, session.SessionID, message)
	response.SessionID = session.SessionID

	if err = s.sessions.AppendMessage(ctx, &domain.ChatMessage{
		SessionID:      session.SessionID,
		SenderType:     domain.SenderAssistant,
		Content:        response.Reply,
		ResponseSource: response.Source,
		Confidence:     response.Confidence,
	}); err != nil {
		return nil, fmt.Errorf("persist reply: %w", err)
	}

	if s.telemetry != nil {
		s.telemetry.RecordMessage(ctx, response.Source, time.Since(start))
	}

	return response, nil
}

// History returns a session's transcript in chronological order.
func (s *Service) History(ctx context.Context, sessionID string) ([]domain.ChatMessage, error) {
	if _, err := s.sessions.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.sessions.Transcript(ctx, sessionID)
}

// Close marks a session as closed; further messages to it are rejected.
func (s *Service) Close(ctx context.Context, sessionID string) error {
	return s.sessions.CloseSession(ctx, sessionID)
}

func (s *Service) resolveSession(ctx context.Context, sessionID string) (*domain.ChatSession, error) {
	if sessionID != "" {
		session, err := s.sessions.GetSession(ctx, sessionID)
		if err == nil {
			if session.Status == domain.SessionStatusClosed {
				return nil, ErrSessionClosed
			}
			return session, nil
		}
		if !errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("load session: %w", err)
		}
	} else {
		sessionID = uuid.NewString()
	}

	session := &domain.ChatSession{SessionID: sessionID}
	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	if s.telemetry != nil {
		s.telemetry.RecordSessionStarted(ctx)
	}
	s.log.Info("chat session started", logger.String("session_id", sessionID))

	return session, nil
}

func (s *Service) answer(ctx context.Context, sessionID, message string) *Response {
	matchStart := time.Now()
	match, err := s.matcher.Match(ctx, message)
	if err != nil {
		s.log.Warn("prompt matching failed", logger.Error(err))
	}
	if match != nil {
		if s.telemetry != nil {
			s.telemetry.RecordMatch(ctx, time.Since(matchStart), match.Confidence, match.Quality)
		}
		return &Response{
			Reply:      match.Content,
			Source:     domain.ResponseSourcePrompt,
			Confidence: match.Confidence,
			Quality:    match.Quality,
			PromptID:   match.PromptID,
		}
	}
	if s.telemetry != nil {
		s.telemetry.RecordMatchMiss(ctx, time.Since(matchStart))
	}

	answer, err := s.faqs.Lookup(ctx, message)
	if err != nil {
		s.log.Warn("faq lookup failed", logger.Error(err))
	}
	if answer != nil {
		if s.telemetry != nil {
			s.telemetry.RecordFAQHit(ctx)
		}
		return &Response{
			Reply:  answer.Answer,
			Source: domain.ResponseSourceFAQ,
			FAQID:  answer.FAQID,
		}
	}

	return s.generate(ctx, sessionID, message)
}

func (s *Service) generate(ctx context.Context, sessionID, message string) *Response {
	history := s.conversationHistory(ctx, sessionID, message)

	llmStart := time.Now()
	reply, err := s.generator.Generate(ctx, history)
	if s.telemetry != nil {
		var tokens int64
		if reply != nil {
			tokens = reply.TotalTokens
		}
		s.telemetry.RecordLLMCall(ctx, time.Since(llmStart), tokens, err)
	}
	if err != nil {
		if !errors.Is(err, llm.ErrDisabled) {
			s.log.Error("generative fallback failed", logger.Error(err))
		}
		return &Response{
			Reply:  llm.Apology,
			Source: domain.ResponseSourceAI,
		}
	}

	promoted, err := s.faqs.ConsiderPromotion(ctx, message, reply.Content)
	if err != nil {
		s.log.Warn("faq promotion check failed", logger.Error(err))
	}
	if promoted && s.telemetry != nil {
		s.telemetry.RecordFAQPromotion(ctx)
	}

	return &Response{
		Reply:  reply.Content,
		Source: domain.ResponseSourceAI,
	}
}

// conversationHistory replays the transcript to the model, oldest turn
// first. When the transcript cannot be loaded the current message alone is
// used, so the fallback still answers.
func (s *Service) conversationHistory(ctx context.Context, sessionID, message string) []llm.Turn {
	transcript, err := s.sessions.Transcript(ctx, sessionID)
	if err != nil {
		s.log.Warn("failed to load transcript for llm context", logger.Error(err))
		return []llm.Turn{{Role: llm.RoleUser, Content: message}}
	}

	turns := make([]llm.Turn, 0, len(transcript))
	for _, msg := range transcript {
		role := llm.RoleUser
		if msg.SenderType == domain.SenderAssistant {
			role = llm.RoleAssistant
		}
		turns = append(turns, llm.Turn{Role: role, Content: msg.Content})
	}

	if len(turns) == 0 {
		turns = append(turns, llm.Turn{Role: llm.RoleUser, Content: message})
	}
	return turns
}
