// Package domain defines the persistent entities of the support-bot service.
package domain

import "time"

// Prompt types.
const (
	PromptTypeSystem      = "system"
	PromptTypeResponse    = "response"
	PromptTypeInstruction = "instruction"
)

// Prompt is a canned-response candidate. TriggerPhrase holds one or more
// comma-separated alternative phrases; Content is returned verbatim when the
// prompt wins a match. Higher Priority prompts are preferred. UsageCount is
// incremented exactly once per winning match, never for runners-up.
type Prompt struct {
	ID            int64     `db:"id"             json:"id"`
	TriggerPhrase string    `db:"trigger_phrase" json:"trigger_phrase"`
	Content       string    `db:"prompt_content" json:"prompt_content"`
	PromptType    string    `db:"prompt_type"    json:"prompt_type"`
	Priority      int       `db:"priority"       json:"priority"`
	Active        bool      `db:"is_active"      json:"is_active"`
	UsageCount    int       `db:"usage_count"    json:"usage_count"`
	CreatedAt     time.Time `db:"created_at"     json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"     json:"updated_at"`
}
