package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/promptpix/apiserver/types"
)

// ProfileRepository handles persistence for user profiles.
// Profile rows are written after account creation, outside any
// transaction; a failure here leaves an account without a profile.
type ProfileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) Create(ctx context.Context, profile types.Profile) (types.Profile, error) {
	profile.CreatedAt = time.Now()

	const query = `
		INSERT INTO profiles (user_id, email, name, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		profile.UserID,
		profile.Email,
		profile.Name,
		profile.CreatedAt,
	).Scan(&profile.ID); err != nil {
		return types.Profile{}, err
	}
	return profile, nil
}

func (r *ProfileRepository) GetByUserID(ctx context.Context, userID int) (types.Profile, error) {
	const query = `
		SELECT id, user_id, email, name, created_at
		FROM profiles
		WHERE user_id = $1`
	var profile types.Profile
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&profile.ID,
		&profile.UserID,
		&profile.Email,
		&profile.Name,
		&profile.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return types.Profile{}, ErrNotFound
		}
		return types.Profile{}, err
	}
	return profile, nil
}
