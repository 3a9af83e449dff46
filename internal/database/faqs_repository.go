package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/coldflow/supportbot/internal/domain"
)

// FAQsRepository handles database operations for FAQ entries. Keywords are
// stored as a JSON array in a text column so the schema stays portable
// across PostgreSQL and the SQLite used in tests.
type FAQsRepository struct {
	db *sqlx.DB
}

// NewFAQsRepository creates a new FAQs repository.
func NewFAQsRepository(db *sqlx.DB) *FAQsRepository {
	return &FAQsRepository{db: db}
}

func encodeKeywords(keywords []string) (string, error) {
	if keywords == nil {
		keywords = []string{}
	}
	encoded, err := json.Marshal(keywords)
	if err != nil {
		return "", fmt.Errorf("failed to encode keywords: %w", err)
	}
	return string(encoded), nil
}

func decodeKeywords(encoded string) ([]string, error) {
	if encoded == "" {
		return nil, nil
	}
	var keywords []string
	if err := json.Unmarshal([]byte(encoded), &keywords); err != nil {
		return nil, fmt.Errorf("failed to decode keywords: %w", err)
	}
	if len(keywords) == 0 {
		return nil, nil
	}
	return keywords, nil
}

// Create inserts a new FAQ and fills in its ID and timestamps.
func (r *FAQsRepository) Create(ctx context.Context, faq *domain.FAQ) error {
	keywords, err := encodeKeywords(faq.Keywords)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	faq.CreatedAt = now
	faq.UpdatedAt = now

	query := `
		INSERT INTO faqs (question, answer, keywords, is_active, view_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err = r.db.QueryRowContext(
		ctx,
		query,
		faq.Question,
		faq.Answer,
		keywords,
		faq.Active,
		faq.ViewCount,
		faq.CreatedAt,
		faq.UpdatedAt,
	).Scan(&faq.ID)

	if err != nil {
		return fmt.Errorf("failed to create faq: %w", err)
	}

	return nil
}

func (r *FAQsRepository) scanFAQ(row interface {
	Scan(dest ...any) error
}) (*domain.FAQ, error) {
	var faq domain.FAQ
	var keywords string

	err := row.Scan(
		&faq.ID,
		&faq.Question,
		&faq.Answer,
		&keywords,
		&faq.Active,
		&faq.ViewCount,
		&faq.CreatedAt,
		&faq.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	faq.Keywords, err = decodeKeywords(keywords)
	if err != nil {
		return nil, err
	}

	return &faq, nil
}

// GetByID retrieves a FAQ by its ID.
func (r *FAQsRepository) GetByID(ctx context.Context, id int64) (*domain.FAQ, error) {
	query := `
		SELECT id, question, answer, keywords, is_active, view_count, created_at, updated_at
		FROM faqs
		WHERE id = $1
	`

	faq, err := r.scanFAQ(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("faq %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get faq: %w", err)
	}

	return faq, nil
}

// GetByQuestion retrieves a FAQ by its exact question text, case-insensitive.
// Used to de-duplicate automatic FAQ creation.
func (r *FAQsRepository) GetByQuestion(ctx context.Context, question string) (*domain.FAQ, error) {
	query := `
		SELECT id, question, answer, keywords, is_active, view_count, created_at, updated_at
		FROM faqs
		WHERE LOWER(question) = LOWER($1)
	`

	faq, err := r.scanFAQ(r.db.QueryRowContext(ctx, query, question))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("faq %q: %w", question, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get faq by question: %w", err)
	}

	return faq, nil
}

// List retrieves FAQs with optional active filtering, most viewed first.
func (r *FAQsRepository) List(ctx context.Context, active *bool) ([]*domain.FAQ, error) {
	query := `
		SELECT id, question, answer, keywords, is_active, view_count, created_at, updated_at
		FROM faqs
	`
	var args []any

	if active != nil {
		query += " WHERE is_active = $1"
		args = append(args, *active)
	}

	query += " ORDER BY view_count DESC, id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list faqs: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var faqs []*domain.FAQ
	for rows.Next() {
		faq, scanErr := r.scanFAQ(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan faq: %w", scanErr)
		}
		faqs = append(faqs, faq)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating faqs: %w", err)
	}

	return faqs, nil
}

// ListActive returns every active FAQ. The FAQ service feeds these into its
// keyword automaton.
func (r *FAQsRepository) ListActive(ctx context.Context) ([]*domain.FAQ, error) {
	active := true
	return r.List(ctx, &active)
}

// Update updates an existing FAQ.
func (r *FAQsRepository) Update(ctx context.Context, faq *domain.FAQ) error {
	keywords, err := encodeKeywords(faq.Keywords)
	if err != nil {
		return err
	}

	faq.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE faqs
		SET question = $1, answer = $2, keywords = $3, is_active = $4, updated_at = $5
		WHERE id = $6
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		faq.Question,
		faq.Answer,
		keywords,
		faq.Active,
		faq.UpdatedAt,
		faq.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update faq: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("faq %d: %w", faq.ID, ErrNotFound)
	}

	return nil
}

// Delete removes a FAQ from the database.
func (r *FAQsRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM faqs WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete faq: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("faq %d: %w", id, ErrNotFound)
	}

	return nil
}

// IncrementViews bumps a FAQ's view counter in the database.
func (r *FAQsRepository) IncrementViews(ctx context.Context, faqID int64) error {
	query := `UPDATE faqs SET view_count = view_count + 1, updated_at = $1 WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, time.Now().UTC(), faqID)
	if err != nil {
		return fmt.Errorf("failed to increment faq views: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("faq %d: %w", faqID, ErrNotFound)
	}

	return nil
}

// Count returns the total number of FAQs.
func (r *FAQsRepository) Count(ctx context.Context) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM faqs`

	if err := r.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count faqs: %w", err)
	}

	return count, nil
}
