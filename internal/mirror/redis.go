package mirror

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/promptpix/apiserver/config"
	"github.com/promptpix/apiserver/types"
)

const profileKeyPrefix = "profile:"

// RedisMirror keeps one hash per user email. HSET gives the merge-upsert
// semantics the document mirror needs: fields absent from an update are
// left untouched.
type RedisMirror struct {
	client *redis.Client
}

// NewRedisMirror constructs a mirror from config and verifies connectivity.
func NewRedisMirror(ctx context.Context, cfg config.MirrorConfig) (*RedisMirror, error) {
	if strings.TrimSpace(cfg.Addr) == "" {
		return nil, errors.New("redis addr is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &RedisMirror{client: client}, nil
}

// UpsertProfile merges the document into the profile hash keyed by email.
// Empty fields are skipped so a generation update does not clobber the
// name written at registration.
func (m *RedisMirror) UpsertProfile(ctx context.Context, doc types.ProfileDocument) error {
	if strings.TrimSpace(doc.Email) == "" {
		return errors.New("profile document email is required")
	}

	fields := map[string]interface{}{
		"email":      doc.Email,
		"updated_at": doc.UpdatedAt,
	}
	if doc.UpdatedAt == "" {
		fields["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	}
	if doc.Name != "" {
		fields["name"] = doc.Name
	}
	if doc.LastPrompt != "" {
		fields["last_prompt"] = doc.LastPrompt
	}
	if doc.LastImage != "" {
		fields["last_image"] = doc.LastImage
	}

	return m.client.HSet(ctx, profileKeyPrefix+doc.Email, fields).Err()
}

// Close closes the underlying Redis client.
func (m *RedisMirror) Close() error {
	return m.client.Close()
}
