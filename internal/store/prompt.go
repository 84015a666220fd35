package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/promptpix/apiserver/types"
)

// PromptRepository handles persistence for prompt records.
type PromptRepository struct {
	db *sql.DB
}

func NewPromptRepository(db *sql.DB) *PromptRepository {
	return &PromptRepository{db: db}
}

func (r *PromptRepository) Create(ctx context.Context, prompt types.Prompt) (types.Prompt, error) {
	prompt.CreatedAt = time.Now()

	const query = `
		INSERT INTO prompts (user_id, prompt, image_url, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		prompt.UserID,
		prompt.Text,
		prompt.ImageURL,
		prompt.CreatedAt,
	).Scan(&prompt.ID); err != nil {
		return types.Prompt{}, err
	}
	return prompt, nil
}

// ListByUser returns the user's prompt records, newest first.
func (r *PromptRepository) ListByUser(ctx context.Context, userID int) ([]types.Prompt, error) {
	const query = `
		SELECT id, user_id, prompt, image_url, created_at
		FROM prompts
		WHERE user_id = $1
		ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var prompts []types.Prompt
	for rows.Next() {
		var prompt types.Prompt
		if err := rows.Scan(
			&prompt.ID,
			&prompt.UserID,
			&prompt.Text,
			&prompt.ImageURL,
			&prompt.CreatedAt,
		); err != nil {
			return nil, err
		}
		prompts = append(prompts, prompt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return prompts, nil
}
