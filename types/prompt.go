package types

import (
	"database/sql"
	"time"
)

// Prompt is a single generation record owned by a user.
// Records are immutable once written; history is ordered newest first.
type Prompt struct {
	// ID is the unique identifier of the prompt record.
	ID int64 `json:"id" db:"id"`

	// UserID is the owning user.
	UserID int `json:"user_id" db:"user_id"`

	// Text is the prompt as submitted.
	Text string `json:"prompt" db:"prompt"`

	// ImageURL is the resulting image location. It is null when
	// generation failed before a result was produced.
	ImageURL sql.NullString `json:"-" db:"image_url"`

	// CreatedAt is the timestamp when the record was written.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// PromptView is the API-facing shape of a Prompt, with a plain
// string image URL (empty when null).
type PromptView struct {
	ID        int64     `json:"id"`
	UserID    int       `json:"user_id"`
	Text      string    `json:"prompt"`
	ImageURL  string    `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
}

// View converts a Prompt into its API-facing shape.
func (p Prompt) View() PromptView {
	view := PromptView{
		ID:        p.ID,
		UserID:    p.UserID,
		Text:      p.Text,
		CreatedAt: p.CreatedAt,
	}
	if p.ImageURL.Valid {
		view.ImageURL = p.ImageURL.String
	}
	return view
}
