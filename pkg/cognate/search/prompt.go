package search

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

var languageNames = map[string]string{
	"fr": "French",
	"es": "Spanish",
	"it": "Italian",
	"pt": "Portuguese",
	"de": "German",
	"en": "English",
}

// LanguageName returns the English name of a language code, or the code
// itself when unknown.
func LanguageName(code string) string {
	if name, ok := languageNames[strings.ToLower(code)]; ok {
		return name
	}
	return code
}

// BuildPrompt builds the continuation prompt for text. seedWords, when set,
// asks the model to use at least one of them.
func BuildPrompt(cfg Config, text string, seedWords []string) string {
	src, dst := LanguageName(cfg.SourceLang), LanguageName(cfg.TargetLang)

	var b strings.Builder
	fmt.Fprintf(&b, "You are a fluent speaker of both %s and %s. You are about to receive a sentence in %s. ", src, dst, src)
	fmt.Fprintf(&b, "Please complete the sentence in %s as coherently as possible. ", src)
	fmt.Fprintf(&b, "Try to use cognate words that an %s speaker can recognize. ", dst)
	if len(seedWords) > 0 {
		fmt.Fprintf(&b, "Please include at least one of the following seed words in your response: %s. ", strings.Join(seedWords, ", "))
		b.WriteString("Please include the actual word instead of substituting it with underscores. ")
	}
	b.WriteString("Do not include the existing sentence in your response, just include the newly-added portion. ")
	fmt.Fprintf(&b, "Above all, do NOT include any %s text in your response.\n\n", dst)
	b.WriteString(strings.Join(strings.Fields(text), " "))
	return b.String()
}

// DefaultStarters are French openings used when no seed text is given.
// RandomYear is replaced by "En <year>".
var DefaultStarters = []string{
	"Le", "Le", "L'", "Les", "De", "Au", "Après", "Son", "Par",
	"De plus", "La", "La", "En", "En", "En",
	RandomYear, RandomYear, RandomYear, RandomYear, RandomYear, RandomYear,
	"En septembre", "En octobre", "En novembre", "En décembre", "En janvier",
	"En février", "En mars", "En avril", "En mai", "En juin", "Créée par",
	"Considérée comme", "Cette", "Avec", "Pour", "Une", "Si", "Un",
	"L'actuelle", "Une", "Je", "Vous", "Tu", "Elle", "Nous", "Ils", "Elles",
}

// RandomYear marks a starter that expands to a random year in 1700..2050.
const RandomYear = "En_INSERT_RANDOM_YEAR"

// RandomStarter picks one of starters (DefaultStarters when empty).
func RandomStarter(rng *rand.Rand, starters []string) string {
	if len(starters) == 0 {
		starters = DefaultStarters
	}
	s := starters[rng.IntN(len(starters))]
	if s == RandomYear {
		return fmt.Sprintf("En %d", 1700+rng.IntN(351))
	}
	return s
}
