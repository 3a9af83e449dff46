package api

import "github.com/coldflow/supportbot/internal/matching"

// ChatRequest represents one user message. SessionID is empty for the first
// message of a conversation.
type ChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message" binding:"required"`
}

// AnalyzeRequest asks for a dry-run scoring of a message against the prompt
// catalog.
type AnalyzeRequest struct {
	Message string `json:"message" binding:"required"`
}

// AnalyzeCandidate is one scored prompt in an analyze response.
type AnalyzeCandidate struct {
	PromptID      int64          `json:"prompt_id"`
	TriggerPhrase string         `json:"trigger_phrase"`
	TotalScore    int            `json:"total_score"`
	Confidence    float64        `json:"confidence"`
	FinalScore    float64        `json:"final_score"`
	Quality       string         `json:"match_quality"`
	Eligible      bool           `json:"eligible"`
	Breakdown     map[string]int `json:"score_breakdown,omitempty"`
}

// AnalyzeResponse lists every candidate in ranking order. Usage counters are
// never touched by an analyze call.
type AnalyzeResponse struct {
	Message    string             `json:"message"`
	Candidates []AnalyzeCandidate `json:"candidates"`
	Winner     *AnalyzeCandidate  `json:"winner,omitempty"`
}

// CreatePromptRequest represents a request to create a prompt.
type CreatePromptRequest struct {
	TriggerPhrase string `json:"trigger_phrase" binding:"required"`
	Content       string `json:"prompt_content" binding:"required"`
	PromptType    string `json:"prompt_type"`
	Priority      int    `json:"priority" binding:"min=0,max=10"`
	Active        *bool  `json:"is_active"`
}

// UpdatePromptRequest represents a request to update a prompt.
type UpdatePromptRequest struct {
	TriggerPhrase string `json:"trigger_phrase" binding:"required"`
	Content       string `json:"prompt_content" binding:"required"`
	PromptType    string `json:"prompt_type"`
	Priority      int    `json:"priority" binding:"min=0,max=10"`
	Active        *bool  `json:"is_active"`
}

// CreateFAQRequest represents a request to create a FAQ entry.
type CreateFAQRequest struct {
	Question string   `json:"question" binding:"required"`
	Answer   string   `json:"answer" binding:"required"`
	Keywords []string `json:"keywords"`
	Active   *bool    `json:"is_active"`
}

// UpdateFAQRequest represents a request to update a FAQ entry.
type UpdateFAQRequest struct {
	Question string   `json:"question" binding:"required"`
	Answer   string   `json:"answer" binding:"required"`
	Keywords []string `json:"keywords"`
	Active   *bool    `json:"is_active"`
}

// StatsResponse aggregates service counters for the dashboard.
type StatsResponse struct {
	Prompts          int            `json:"prompts"`
	FAQs             int            `json:"faqs"`
	Sessions         int            `json:"sessions"`
	RepliesBySource  map[string]int `json:"replies_by_source"`
	MostUsedPrompts  []PromptUsage  `json:"most_used_prompts"`
}

// PromptUsage is one entry of the most-used prompt leaderboard.
type PromptUsage struct {
	PromptID      int64  `json:"prompt_id"`
	TriggerPhrase string `json:"trigger_phrase"`
	UsageCount    int    `json:"usage_count"`
}

func toAnalyzeCandidate(promptID int64, triggerPhrase string, eval matching.Evaluation, quality string) AnalyzeCandidate {
	return AnalyzeCandidate{
		PromptID:      promptID,
		TriggerPhrase: triggerPhrase,
		TotalScore:    eval.TotalScore,
		Confidence:    eval.Confidence,
		FinalScore:    eval.FinalScore,
		Quality:       quality,
		Eligible:      eval.Eligible,
		Breakdown:     eval.Breakdown.AsMap(),
	}
}
