package mirror

import (
	"context"

	"github.com/promptpix/apiserver/types"
)

// Mirror merge-upserts denormalized profile documents into a secondary
// store. Every call is best-effort: callers log failures and move on,
// and no workflow outcome may depend on a Mirror error.
type Mirror interface {
	UpsertProfile(ctx context.Context, doc types.ProfileDocument) error
	Close() error
}

// Disabled is a Mirror used when no secondary store is configured.
type Disabled struct{}

func (Disabled) UpsertProfile(context.Context, types.ProfileDocument) error { return nil }
func (Disabled) Close() error                                               { return nil }
