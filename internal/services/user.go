package services

import (
	"context"
	"time"

	"github.com/promptpix/apiserver/internal/mirror"
	"github.com/promptpix/apiserver/types"
	"github.com/rs/zerolog"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
}

// ProfileRepository defines persistence operations for profiles.
type ProfileRepository interface {
	Create(ctx context.Context, profile types.Profile) (types.Profile, error)
	GetByUserID(ctx context.Context, userID int) (types.Profile, error)
}

// AccountService encapsulates account use-cases: signup and lookups.
type AccountService struct {
	users    UserRepository
	profiles ProfileRepository
	mirror   mirror.Mirror
	log      zerolog.Logger
}

func NewAccountService(users UserRepository, profiles ProfileRepository, m mirror.Mirror, log zerolog.Logger) *AccountService {
	if m == nil {
		m = mirror.Disabled{}
	}
	return &AccountService{users: users, profiles: profiles, mirror: m, log: log}
}

// Register creates the account row, then the profile row. The two writes
// are not transactional: a profile failure leaves the account in place
// and is only logged. The mirror write afterwards is best-effort too.
func (s *AccountService) Register(ctx context.Context, email, name, passwordHash string) (types.User, error) {
	user, err := s.users.Create(ctx, types.User{
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
	})
	if err != nil {
		return types.User{}, err
	}

	if _, err := s.profiles.Create(ctx, types.Profile{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
	}); err != nil {
		s.log.Warn().Err(err).Str("email", user.Email).Msg("account created without profile")
	}

	if err := s.mirror.UpsertProfile(ctx, types.ProfileDocument{
		Email:     user.Email,
		Name:      user.Name,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		s.log.Warn().Err(err).Str("email", user.Email).Msg("profile mirror write failed")
	}

	return user, nil
}

func (s *AccountService) GetByID(ctx context.Context, id int) (types.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *AccountService) GetByEmail(ctx context.Context, email string) (types.User, error) {
	return s.users.GetByEmail(ctx, email)
}
