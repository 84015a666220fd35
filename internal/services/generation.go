package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/promptpix/apiserver/internal/events"
	"github.com/promptpix/apiserver/internal/mirror"
	"github.com/promptpix/apiserver/internal/store"
	"github.com/promptpix/apiserver/types"
	"github.com/rs/zerolog"
)

// ErrPromptRequired is returned when a generation request has no prompt.
var ErrPromptRequired = errors.New("prompt is required")

// ErrUnknownUser is returned when the caller identity does not match an
// existing account.
var ErrUnknownUser = errors.New("unknown user")

// Generator issues exactly one provider call per invocation.
type Generator interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// PromptRepository defines persistence operations for prompt records.
type PromptRepository interface {
	Create(ctx context.Context, prompt types.Prompt) (types.Prompt, error)
	ListByUser(ctx context.Context, userID int) ([]types.Prompt, error)
}

// GenerationPublisher emits generation events. Delivery is best-effort.
type GenerationPublisher interface {
	PublishGeneration(ctx context.Context, evt events.GenerationEvent) error
}

// GenerateRequest is one end-to-end generation request. UserEmail is
// empty for guest calls; guests get an image but no persisted record.
type GenerateRequest struct {
	Prompt    string
	Model     string
	UserEmail string
}

// GenerateResult echoes the request alongside the canonical image URL.
type GenerateResult struct {
	ImageURL  string
	Prompt    string
	UserEmail string
}

// GenerationService orchestrates one generate-image request: provider
// call, required persistence for authenticated callers, then best-effort
// mirror and event writes that never change the outcome.
type GenerationService struct {
	generator Generator
	users     UserRepository
	prompts   PromptRepository
	mirror    mirror.Mirror
	publisher GenerationPublisher
	log       zerolog.Logger
}

func NewGenerationService(
	generator Generator,
	users UserRepository,
	prompts PromptRepository,
	m mirror.Mirror,
	publisher GenerationPublisher,
	log zerolog.Logger,
) *GenerationService {
	if m == nil {
		m = mirror.Disabled{}
	}
	return &GenerationService{
		generator: generator,
		users:     users,
		prompts:   prompts,
		mirror:    m,
		publisher: publisher,
		log:       log,
	}
}

func (s *GenerationService) Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return GenerateResult{}, ErrPromptRequired
	}

	imageURL, err := s.generator.Generate(ctx, req.Model, prompt)
	if err != nil {
		return GenerateResult{}, err
	}

	var user types.User
	if req.UserEmail != "" {
		user, err = s.users.GetByEmail(ctx, req.UserEmail)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return GenerateResult{}, ErrUnknownUser
			}
			return GenerateResult{}, fmt.Errorf("resolve user: %w", err)
		}

		// The image exists at this point, but a failed prompt write is
		// still fatal to the request. There is no partial-success state.
		if _, err := s.prompts.Create(ctx, types.Prompt{
			UserID:   user.ID,
			Text:     prompt,
			ImageURL: sql.NullString{String: imageURL, Valid: imageURL != ""},
		}); err != nil {
			return GenerateResult{}, fmt.Errorf("persist prompt: %w", err)
		}

		if err := s.mirror.UpsertProfile(ctx, types.ProfileDocument{
			Email:      user.Email,
			Name:       user.Name,
			LastPrompt: prompt,
			LastImage:  imageURL,
			UpdatedAt:  time.Now().UTC().Format(time.RFC3339),
		}); err != nil {
			s.log.Warn().Err(err).Str("email", user.Email).Msg("profile mirror write failed")
		}
	}

	if s.publisher != nil {
		if err := s.publisher.PublishGeneration(ctx, events.GenerationEvent{
			UserEmail: req.UserEmail,
			Model:     req.Model,
			Prompt:    prompt,
			ImageURL:  imageURL,
		}); err != nil {
			s.log.Warn().Err(err).Msg("generation event publish failed")
		}
	}

	return GenerateResult{
		ImageURL:  imageURL,
		Prompt:    prompt,
		UserEmail: req.UserEmail,
	}, nil
}
