package services

import (
	"context"
	"database/sql"

	"github.com/promptpix/apiserver/types"
)

// PromptService encapsulates prompt persistence use-cases.
type PromptService struct {
	repo PromptRepository
}

func NewPromptService(repo PromptRepository) *PromptService {
	return &PromptService{repo: repo}
}

// Save writes one immutable prompt record. An empty image URL is stored
// as null: the record may predate a successful generation.
func (s *PromptService) Save(ctx context.Context, userID int, prompt, imageURL string) (types.Prompt, error) {
	return s.repo.Create(ctx, types.Prompt{
		UserID:   userID,
		Text:     prompt,
		ImageURL: sql.NullString{String: imageURL, Valid: imageURL != ""},
	})
}

// History returns the user's prompt records, newest first.
func (s *PromptService) History(ctx context.Context, userID int) ([]types.Prompt, error) {
	return s.repo.ListByUser(ctx, userID)
}
