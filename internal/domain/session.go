package domain

import "time"

// Session status values.
const (
	SessionStatusActive = "active"
	SessionStatusClosed = "closed"
)

// Message sender types.
const (
	SenderUser      = "user"
	SenderAssistant = "assistant"
)

// Response sources recorded on assistant messages.
const (
	ResponseSourcePrompt = "prompt"
	ResponseSourceFAQ    = "faq"
	ResponseSourceAI     = "ai"
)

// ChatSession is one user conversation.
type ChatSession struct {
	ID        int64     `db:"id"         json:"id"`
	SessionID string    `db:"session_id" json:"session_id"`
	Status    string    `db:"status"     json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ChatMessage is one turn of a conversation. ResponseSource and Confidence
// are set only on assistant messages, recording how the reply was produced.
type ChatMessage struct {
	ID             int64     `db:"id"              json:"id"`
	SessionID      string    `db:"session_id"      json:"session_id"`
	SenderType     string    `db:"sender_type"     json:"sender_type"`
	Content        string    `db:"message_content" json:"message_content"`
	ResponseSource string    `db:"response_source" json:"response_source,omitempty"`
	Confidence     float64   `db:"confidence"      json:"confidence,omitempty"`
	CreatedAt      time.Time `db:"created_at"      json:"created_at"`
}
