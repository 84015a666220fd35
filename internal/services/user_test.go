package services

import (
	"context"
	"errors"
	"testing"

	"github.com/promptpix/apiserver/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProfileRepo struct {
	created   []types.Profile
	createErr error
}

func (f *fakeProfileRepo) Create(ctx context.Context, profile types.Profile) (types.Profile, error) {
	if f.createErr != nil {
		return types.Profile{}, f.createErr
	}
	profile.ID = len(f.created) + 1
	f.created = append(f.created, profile)
	return profile, nil
}

func (f *fakeProfileRepo) GetByUserID(ctx context.Context, userID int) (types.Profile, error) {
	for _, profile := range f.created {
		if profile.UserID == userID {
			return profile, nil
		}
	}
	return types.Profile{}, errors.New("not found")
}

func TestRegisterCreatesAccountProfileAndMirror(t *testing.T) {
	users := &fakeUserRepo{users: map[string]types.User{}}
	profiles := &fakeProfileRepo{}
	m := &fakeMirror{}
	svc := NewAccountService(users, profiles, m, zerolog.Nop())

	user, err := svc.Register(context.Background(), "new@example.com", "Nia", "hash")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "new@example.com", user.Email)

	require.Len(t, profiles.created, 1)
	assert.Equal(t, user.ID, profiles.created[0].UserID)
	assert.Equal(t, "Nia", profiles.created[0].Name)

	require.Len(t, m.docs, 1)
	assert.Equal(t, "new@example.com", m.docs[0].Email)
}

func TestRegisterSurvivesProfileFailure(t *testing.T) {
	users := &fakeUserRepo{users: map[string]types.User{}}
	profiles := &fakeProfileRepo{createErr: errors.New("profiles table locked")}
	svc := NewAccountService(users, profiles, &fakeMirror{}, zerolog.Nop())

	// Account creation and profile creation are not atomic: the account
	// stays and the request still succeeds.
	user, err := svc.Register(context.Background(), "orphan@example.com", "Ora", "hash")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Empty(t, profiles.created)
}

func TestRegisterSurvivesMirrorFailure(t *testing.T) {
	users := &fakeUserRepo{users: map[string]types.User{}}
	svc := NewAccountService(users, &fakeProfileRepo{}, &fakeMirror{err: errors.New("redis down")}, zerolog.Nop())

	_, err := svc.Register(context.Background(), "new@example.com", "Nia", "hash")
	require.NoError(t, err)
}

func TestRegisterNilMirrorDefaultsToDisabled(t *testing.T) {
	users := &fakeUserRepo{users: map[string]types.User{}}
	svc := NewAccountService(users, &fakeProfileRepo{}, nil, zerolog.Nop())

	_, err := svc.Register(context.Background(), "new@example.com", "Nia", "hash")
	require.NoError(t, err)
}
