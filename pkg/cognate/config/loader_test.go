package config

import (
	"context"
	"testing"
)

func TestLoaderAllEmpty(t *testing.T) {
	comp, err := Loader{}.Load()
	if err != nil {
		t.Fatalf("Empty loader should succeed: %v", err)
	}
	if comp.Lexicon == nil {
		t.Error("Should have lexicon (empty)")
	}
	if comp.Dictionary == nil || comp.Dictionary.Len() != 0 {
		t.Error("Should have empty dictionary")
	}
}

func TestLoaderNonExistentLexicon(t *testing.T) {
	if _, err := (Loader{LexiconPath: "/nonexistent/lexicon.yaml"}).Load(); err == nil {
		t.Error("Should error on nonexistent lexicon")
	}
}

func TestLoaderNonExistentDictionary(t *testing.T) {
	if _, err := (Loader{DictionaryPath: "/nonexistent/fr-en.txt"}).Load(); err == nil {
		t.Error("Should error on nonexistent dictionary")
	}
}

func TestLoaderFromConfig(t *testing.T) {
	lexPath := writeFile(t, "lexicon.yaml", `synonyms:
  - canonical: assure
    variants: [ensure, guarantee]
`)
	dictPath := writeFile(t, "fr-en.txt", "pain bread\nhôtel hotel\n")

	cfg := Default()
	cfg.Classifier.LexiconPath = lexPath
	cfg.Translator.DictionaryPath = dictPath

	comp, err := NewLoader(cfg).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	syns, err := comp.Lexicon.Synonyms(context.Background(), "assure")
	if err != nil || len(syns) == 0 {
		t.Errorf("Synonyms(assure) = %v, %v", syns, err)
	}
	if got, ok := comp.Dictionary.Lookup("pain"); !ok || got != "bread" {
		t.Errorf("Lookup(pain) = %q, %v", got, ok)
	}
}
