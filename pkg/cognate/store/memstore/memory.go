package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cognicore/cognate/pkg/cognate/internalerr"
	"github.com/cognicore/cognate/pkg/cognate/store"
	"github.com/cognicore/cognate/pkg/cognate/story"
)

var _ store.Store = (*Store)(nil)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu           sync.RWMutex
	stories      map[string]story.Story
	translations map[string]string
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		stories:      make(map[string]story.Story),
		translations: make(map[string]string),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// SaveStory inserts or replaces a story, keyed by ID.
func (s *Store) SaveStory(ctx context.Context, st story.Story) error {
	if st.ID == "" {
		return fmt.Errorf("save story: empty id: %w", internalerr.ErrInvalidArgument)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stories[st.ID] = copyStory(st)
	return nil
}

func (s *Store) GetStory(ctx context.Context, id string) (story.Story, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.stories[id]
	if !ok {
		return story.Story{}, fmt.Errorf("story %s: %w", id, internalerr.ErrNotFound)
	}
	return copyStory(st), nil
}

// ListStories returns stories newest first, ties broken by descending ID.
func (s *Store) ListStories(ctx context.Context, limit int) ([]story.Story, error) {
	s.mu.RLock()
	out := make([]story.Story, 0, len(s.stories))
	for _, st := range s.stories {
		out = append(out, copyStory(st))
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) DeleteStory(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.stories[id]; !ok {
		return fmt.Errorf("story %s: %w", id, internalerr.ErrNotFound)
	}
	delete(s.stories, id)
	return nil
}

func (s *Store) GetTranslation(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.translations[key]
	return v, ok, nil
}

func (s *Store) PutTranslation(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.translations[key] = value
	return nil
}

func copyStory(st story.Story) story.Story {
	out := st
	out.Sentences = make([]story.SentenceRecord, len(st.Sentences))
	for i, rec := range st.Sentences {
		rec.CognateWords = append([]string(nil), rec.CognateWords...)
		rec.Breakdown.RejectReasons = append([]string(nil), rec.Breakdown.RejectReasons...)
		out.Sentences[i] = rec
	}
	return out
}
