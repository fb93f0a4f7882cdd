package lexicon

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoadFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "synonyms.yaml")
	content := `synonyms:
  - canonical: Car
    variants: [automobile, Vehicle, car]
  - canonical: assure
    variants: [ensure, guarantee]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	lex, err := LoadFromYAML(path)
	if err != nil {
		t.Fatalf("LoadFromYAML: %v", err)
	}

	if got := lex.Variants("vehicle"); !reflect.DeepEqual(got, []string{"car", "automobile", "vehicle"}) {
		t.Errorf("Variants(vehicle) = %v", got)
	}
	if got := lex.Canonical("Guarantee"); got != "assure" {
		t.Errorf("Canonical(Guarantee) = %q", got)
	}
	if st := lex.Stats(); st.Groups != 2 || st.Members != 6 {
		t.Errorf("Stats = %+v", st)
	}
}

func TestLoadFromYAMLInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("synonyms: [\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := LoadFromYAML(path); err == nil {
		t.Fatal("expected parse error")
	}
	if _, err := LoadFromYAML(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestSynonyms(t *testing.T) {
	lex := New()
	lex.AddSynonymGroup("car", []string{"automobile", "vehicle"})

	got, err := lex.Synonyms(context.Background(), "automobile")
	if err != nil {
		t.Fatalf("Synonyms: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"car", "vehicle"}) {
		t.Errorf("Synonyms(automobile) = %v", got)
	}

	got, _ = lex.Synonyms(context.Background(), "bread")
	if len(got) != 0 {
		t.Errorf("unknown word should have no synonyms, got %v", got)
	}
}

func TestAddSynonymGroupReplaces(t *testing.T) {
	lex := New()
	lex.AddSynonymGroup("car", []string{"automobile"})
	lex.AddSynonymGroup("car", []string{"vehicle"})

	if lex.HasSynonyms("automobile") {
		t.Error("stale member should be removed when a group is replaced")
	}
	if !lex.HasSynonyms("vehicle") {
		t.Error("new member should be indexed")
	}
}
