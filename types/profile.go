package types

import "time"

// Profile is the relational profile row created alongside an account.
// Account and profile creation are not transactional; an account may
// exist without a profile.
type Profile struct {
	ID        int       `json:"id" db:"id"`
	UserID    int       `json:"user_id" db:"user_id"`
	Email     string    `json:"email" db:"email"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ProfileDocument is the denormalized, best-effort mirror document keyed
// by user email in the secondary store. It carries no consistency
// guarantee against the relational rows.
type ProfileDocument struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	LastPrompt string `json:"last_prompt"`
	LastImage  string `json:"last_image"`
	UpdatedAt  string `json:"updated_at"`
}
