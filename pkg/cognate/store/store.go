// Package store persists learner stories and the translation memo.
package store

import (
	"context"

	"github.com/cognicore/cognate/pkg/cognate/story"
)

// Store is the persistence interface for stories. Implementations return
// internalerr.ErrNotFound for unknown story IDs.
type Store interface {
	Close() error

	// Stories
	SaveStory(ctx context.Context, s story.Story) error
	GetStory(ctx context.Context, id string) (story.Story, error)
	ListStories(ctx context.Context, limit int) ([]story.Story, error)
	DeleteStory(ctx context.Context, id string) error

	// Translation memo, keyed by translate.CacheKey
	GetTranslation(ctx context.Context, key string) (string, bool, error)
	PutTranslation(ctx context.Context, key, value string) error
}
