package domain

import "time"

// FAQ is a frequently-asked-question entry managed by administrators or
// auto-created from repeated user questions. Keywords drive lookup; ViewCount
// orders competing matches and is incremented on every hit.
type FAQ struct {
	ID        int64     `db:"id"         json:"id"`
	Question  string    `db:"question"   json:"question"`
	Answer    string    `db:"answer"     json:"answer"`
	Keywords  []string  `db:"-"          json:"keywords"`
	Active    bool      `db:"is_active"  json:"is_active"`
	ViewCount int       `db:"view_count" json:"view_count"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
