package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cognicore/cognate/pkg/cognate/internalerr"
	"github.com/cognicore/cognate/pkg/cognate/story"
)

func TestStoryLifecycle(t *testing.T) {
	ctx := context.Background()
	s := New()

	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		st := story.Story{ID: id, SourceLang: "fr", TargetLang: "en", CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		st.Append(story.SentenceRecord{Sentence: "Le hotel", CognateWords: []string{"hotel"}, Difficulty: i})
		if err := s.SaveStory(ctx, st); err != nil {
			t.Fatalf("SaveStory: %v", err)
		}
	}

	list, err := s.ListStories(ctx, 2)
	if err != nil {
		t.Fatalf("ListStories: %v", err)
	}
	if len(list) != 2 || list[0].ID != "c" || list[1].ID != "b" {
		t.Fatalf("unexpected list: %+v", list)
	}

	got, err := s.GetStory(ctx, "a")
	if err != nil {
		t.Fatalf("GetStory: %v", err)
	}
	got.Sentences[0].CognateWords[0] = "mutated"
	again, _ := s.GetStory(ctx, "a")
	if again.Sentences[0].CognateWords[0] != "hotel" {
		t.Errorf("store returned aliased slice")
	}

	if err := s.DeleteStory(ctx, "a"); err != nil {
		t.Fatalf("DeleteStory: %v", err)
	}
	if _, err := s.GetStory(ctx, "a"); !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestTranslationMemo(t *testing.T) {
	ctx := context.Background()
	s := New()
	if _, ok, _ := s.GetTranslation(ctx, "k"); ok {
		t.Fatal("expected miss")
	}
	if err := s.PutTranslation(ctx, "k", "v"); err != nil {
		t.Fatalf("PutTranslation: %v", err)
	}
	if v, ok, _ := s.GetTranslation(ctx, "k"); !ok || v != "v" {
		t.Errorf("GetTranslation = %q, %v", v, ok)
	}
}
