package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/coldflow/supportbot/internal/domain"
)

// PromptsRepository handles database operations for canned-response prompts.
type PromptsRepository struct {
	db *sqlx.DB
}

// NewPromptsRepository creates a new prompts repository.
func NewPromptsRepository(db *sqlx.DB) *PromptsRepository {
	return &PromptsRepository{db: db}
}

// Create inserts a new prompt and fills in its ID and timestamps.
func (r *PromptsRepository) Create(ctx context.Context, prompt *domain.Prompt) error {
	now := time.Now().UTC()
	prompt.CreatedAt = now
	prompt.UpdatedAt = now

	query := `
		INSERT INTO prompts (trigger_phrase, prompt_content, prompt_type, priority, is_active, usage_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		prompt.TriggerPhrase,
		prompt.Content,
		prompt.PromptType,
		prompt.Priority,
		prompt.Active,
		prompt.UsageCount,
		prompt.CreatedAt,
		prompt.UpdatedAt,
	).Scan(&prompt.ID)

	if err != nil {
		return fmt.Errorf("failed to create prompt: %w", err)
	}

	return nil
}

// GetByID retrieves a prompt by its ID.
func (r *PromptsRepository) GetByID(ctx context.Context, id int64) (*domain.Prompt, error) {
	var prompt domain.Prompt
	query := `
		SELECT id, trigger_phrase, prompt_content, prompt_type, priority, is_active, usage_count,
		       created_at, updated_at
		FROM prompts
		WHERE id = $1
	`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&prompt.ID,
		&prompt.TriggerPhrase,
		&prompt.Content,
		&prompt.PromptType,
		&prompt.Priority,
		&prompt.Active,
		&prompt.UsageCount,
		&prompt.CreatedAt,
		&prompt.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("prompt %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get prompt: %w", err)
	}

	return &prompt, nil
}

// List retrieves prompts with optional filtering, ordered by descending
// priority then insertion order.
func (r *PromptsRepository) List(ctx context.Context, promptType string, active *bool) ([]*domain.Prompt, error) {
	query := `
		SELECT id, trigger_phrase, prompt_content, prompt_type, priority, is_active, usage_count,
		       created_at, updated_at
		FROM prompts
	`

	var whereClauses []string
	var args []any
	argIndex := 1

	if promptType != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("prompt_type = $%d", argIndex))
		args = append(args, promptType)
		argIndex++
	}

	if active != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("is_active = $%d", argIndex))
		args = append(args, *active)
	}

	if len(whereClauses) > 0 {
		query += " WHERE " + strings.Join(whereClauses, " AND ")
	}

	query += " ORDER BY priority DESC, id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list prompts: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var prompts []*domain.Prompt
	for rows.Next() {
		var prompt domain.Prompt
		if err = rows.Scan(
			&prompt.ID,
			&prompt.TriggerPhrase,
			&prompt.Content,
			&prompt.PromptType,
			&prompt.Priority,
			&prompt.Active,
			&prompt.UsageCount,
			&prompt.CreatedAt,
			&prompt.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan prompt: %w", err)
		}
		prompts = append(prompts, &prompt)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating prompts: %w", err)
	}

	return prompts, nil
}

// ListActivePrompts returns every active prompt as match candidates, ordered
// by descending priority then insertion order. It satisfies the matching
// engine's prompt source.
func (r *PromptsRepository) ListActivePrompts(ctx context.Context) ([]domain.Prompt, error) {
	active := true
	listed, err := r.List(ctx, "", &active)
	if err != nil {
		return nil, err
	}

	prompts := make([]domain.Prompt, len(listed))
	for i, p := range listed {
		prompts[i] = *p
	}
	return prompts, nil
}

// Update updates an existing prompt.
func (r *PromptsRepository) Update(ctx context.Context, prompt *domain.Prompt) error {
	prompt.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE prompts
		SET trigger_phrase = $1, prompt_content = $2, prompt_type = $3,
		    priority = $4, is_active = $5, updated_at = $6
		WHERE id = $7
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		prompt.TriggerPhrase,
		prompt.Content,
		prompt.PromptType,
		prompt.Priority,
		prompt.Active,
		prompt.UpdatedAt,
		prompt.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update prompt: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("prompt %d: %w", prompt.ID, ErrNotFound)
	}

	return nil
}

// Delete removes a prompt from the database.
func (r *PromptsRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM prompts WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete prompt: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("prompt %d: %w", id, ErrNotFound)
	}

	return nil
}

// IncrementUsage bumps a prompt's usage counter. The increment happens in
// the database so concurrent matches never lose ticks.
func (r *PromptsRepository) IncrementUsage(ctx context.Context, promptID int64) error {
	query := `UPDATE prompts SET usage_count = usage_count + 1, updated_at = $1 WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, time.Now().UTC(), promptID)
	if err != nil {
		return fmt.Errorf("failed to increment prompt usage: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("prompt %d: %w", promptID, ErrNotFound)
	}

	return nil
}

// MostUsed returns the top prompts by usage count.
func (r *PromptsRepository) MostUsed(ctx context.Context, limit int) ([]*domain.Prompt, error) {
	query := `
		SELECT id, trigger_phrase, prompt_content, prompt_type, priority, is_active, usage_count,
		       created_at, updated_at
		FROM prompts
		ORDER BY usage_count DESC, id ASC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list most used prompts: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var prompts []*domain.Prompt
	for rows.Next() {
		var prompt domain.Prompt
		if err = rows.Scan(
			&prompt.ID,
			&prompt.TriggerPhrase,
			&prompt.Content,
			&prompt.PromptType,
			&prompt.Priority,
			&prompt.Active,
			&prompt.UsageCount,
			&prompt.CreatedAt,
			&prompt.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan prompt: %w", err)
		}
		prompts = append(prompts, &prompt)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating prompts: %w", err)
	}

	return prompts, nil
}

// Count returns the total number of prompts.
func (r *PromptsRepository) Count(ctx context.Context) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM prompts`

	if err := r.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count prompts: %w", err)
	}

	return count, nil
}
