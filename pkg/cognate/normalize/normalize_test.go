package normalize

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"Président":  "president",
		"l'océan,":   "locean",
		"ÇA":         "ca",
		"1310":       "",
		"...":        "",
		"snake_case": "snake_case",
		"":           "",
		"Noël!":      "noel",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	for _, in := range []string{"Élève", "façade", "Über-cool", "naïve"} {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestTokenize(t *testing.T) {
	sentence := "Le président, en 1310 , assure le peuple !"

	got := Tokenize(sentence, false)
	want := []string{"Le", "président,", "en", "assure", "le", "peuple"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Tokenize = %v, want %v", got, want)
	}

	got = Tokenize(sentence, true)
	want = []string{"président,", "assure", "peuple"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Tokenize(trimShort) = %v, want %v", got, want)
	}
}

func TestStripElision(t *testing.T) {
	cases := map[string]string{
		"l'océan":  "océan",
		"L'Europe": "Europe",
		"d’accord": "accord",
		"l'":       "l'",
		"lumière":  "lumière",
	}
	for in, want := range cases {
		if got := StripElision(in, DefaultElisions); got != want {
			t.Errorf("StripElision(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsCapitalized(t *testing.T) {
	if !IsCapitalized("Victor") {
		t.Error("Victor should be capitalized")
	}
	if !IsCapitalized("«Bonjour") {
		t.Error("leading punctuation should be skipped")
	}
	if IsCapitalized("student") || IsCapitalized("42") {
		t.Error("lowercase and digits are not capitalized")
	}
}

func TestTrimPartialWord(t *testing.T) {
	cases := map[string]string{
		" mange une pom":       "mange une",
		"arrive\nà la gare ve": "arrive à la gare",
		"seul":                 "seul",
		"":                     "",
	}
	for in, want := range cases {
		if got := TrimPartialWord(in); got != want {
			t.Errorf("TrimPartialWord(%q) = %q, want %q", in, got, want)
		}
	}
}
