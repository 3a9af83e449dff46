package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/coldflow/supportbot/internal/domain"
)

// SessionsRepository handles database operations for chat sessions and their
// message transcripts.
type SessionsRepository struct {
	db *sqlx.DB
}

// NewSessionsRepository creates a new sessions repository.
func NewSessionsRepository(db *sqlx.DB) *SessionsRepository {
	return &SessionsRepository{db: db}
}

// CreateSession inserts a new chat session and fills in its ID and
// timestamps. The public session identifier must already be set.
func (r *SessionsRepository) CreateSession(ctx context.Context, session *domain.ChatSession) error {
	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now
	if session.Status == "" {
		session.Status = domain.SessionStatusActive
	}

	query := `
		INSERT INTO chat_sessions (session_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		session.SessionID,
		session.Status,
		session.CreatedAt,
		session.UpdatedAt,
	).Scan(&session.ID)

	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// GetSession retrieves a session by its public identifier.
func (r *SessionsRepository) GetSession(ctx context.Context, sessionID string) (*domain.ChatSession, error) {
	var session domain.ChatSession
	query := `
		SELECT id, session_id, status, created_at, updated_at
		FROM chat_sessions
		WHERE session_id = $1
	`

	err := r.db.QueryRowContext(ctx, query, sessionID).Scan(
		&session.ID,
		&session.SessionID,
		&session.Status,
		&session.CreatedAt,
		&session.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("session %q: %w", sessionID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return &session, nil
}

// CloseSession marks a session as closed.
func (r *SessionsRepository) CloseSession(ctx context.Context, sessionID string) error {
	query := `UPDATE chat_sessions SET status = $1, updated_at = $2 WHERE session_id = $3`

	result, err := r.db.ExecContext(ctx, query, domain.SessionStatusClosed, time.Now().UTC(), sessionID)
	if err != nil {
		return fmt.Errorf("failed to close session: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("session %q: %w", sessionID, ErrNotFound)
	}

	return nil
}

// AppendMessage records one message in a session's transcript and fills in
// its ID and timestamp.
func (r *SessionsRepository) AppendMessage(ctx context.Context, message *domain.ChatMessage) error {
	message.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO chat_messages (session_id, sender_type, message_content, response_source, confidence, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		message.SessionID,
		message.SenderType,
		message.Content,
		message.ResponseSource,
		message.Confidence,
		message.CreatedAt,
	).Scan(&message.ID)

	if err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}

	return nil
}

// Transcript returns a session's messages in chronological order.
func (r *SessionsRepository) Transcript(ctx context.Context, sessionID string) ([]domain.ChatMessage, error) {
	query := `
		SELECT id, session_id, sender_type, message_content, response_source, confidence, created_at
		FROM chat_messages
		WHERE session_id = $1
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transcript: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var messages []domain.ChatMessage
	for rows.Next() {
		var message domain.ChatMessage
		if err = rows.Scan(
			&message.ID,
			&message.SessionID,
			&message.SenderType,
			&message.Content,
			&message.ResponseSource,
			&message.Confidence,
			&message.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, message)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}

	return messages, nil
}

// CountSimilarUserMessages counts user messages across all sessions whose
// content equals the given text, case-insensitive. Feeds the automatic FAQ
// promotion threshold.
func (r *SessionsRepository) CountSimilarUserMessages(ctx context.Context, content string) (int, error) {
	var count int
	query := `
		SELECT COUNT(*)
		FROM chat_messages
		WHERE sender_type = $1 AND LOWER(message_content) = LOWER($2)
	`

	if err := r.db.QueryRowContext(ctx, query, domain.SenderUser, content).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count similar messages: %w", err)
	}

	return count, nil
}

// MostCommonAssistantResponse returns the assistant reply most often given
// to the question across all sessions, pairing each user message with the
// assistant message that follows it. Fallback apologies are excluded, and
// ties break toward the earliest reply. Returns ErrNotFound when the
// question has no usable reply on record.
func (r *SessionsRepository) MostCommonAssistantResponse(ctx context.Context, content string) (string, error) {
	var answer string
	query := `
		SELECT a.message_content
		FROM chat_messages u
		JOIN chat_messages a
			ON a.session_id = u.session_id
			AND a.id = (
				SELECT MIN(b.id)
				FROM chat_messages b
				WHERE b.session_id = u.session_id
					AND b.id > u.id
					AND b.sender_type = $1
			)
		WHERE u.sender_type = $2
			AND LOWER(u.message_content) = LOWER($3)
			AND a.message_content NOT LIKE '%technical difficulties%'
		GROUP BY a.message_content
		ORDER BY COUNT(*) DESC, MIN(a.id) ASC
		LIMIT 1
	`

	err := r.db.QueryRowContext(ctx, query, domain.SenderAssistant, domain.SenderUser, content).Scan(&answer)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("no recorded reply for question: %w", ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to find most common response: %w", err)
	}

	return answer, nil
}

// SessionCount returns the total number of chat sessions.
func (r *SessionsRepository) SessionCount(ctx context.Context) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM chat_sessions`

	if err := r.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}

	return count, nil
}

// MessageCountBySource returns how many assistant messages were answered by
// each response source. Feeds the stats endpoint.
func (r *SessionsRepository) MessageCountBySource(ctx context.Context) (map[string]int, error) {
	query := `
		SELECT response_source, COUNT(*)
		FROM chat_messages
		WHERE sender_type = $1 AND response_source != ''
		GROUP BY response_source
	`

	rows, err := r.db.QueryContext(ctx, query, domain.SenderAssistant)
	if err != nil {
		return nil, fmt.Errorf("failed to count messages by source: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	counts := make(map[string]int)
	for rows.Next() {
		var source string
		var count int
		if err = rows.Scan(&source, &count); err != nil {
			return nil, fmt.Errorf("failed to scan source count: %w", err)
		}
		counts[source] = count
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating source counts: %w", err)
	}

	return counts, nil
}
