package config

import (
	"fmt"

	"github.com/cognicore/cognate/pkg/cognate/auxdict"
	"github.com/cognicore/cognate/pkg/cognate/lexicon"
)

// Loader loads the file-backed word resources.
type Loader struct {
	LexiconPath    string
	DictionaryPath string
}

// Components holds the loaded resources. Missing paths yield empty,
// usable values.
type Components struct {
	Lexicon    *lexicon.Lexicon
	Dictionary *auxdict.Dictionary
}

// NewLoader takes the paths from cfg.
func NewLoader(cfg Config) Loader {
	return Loader{
		LexiconPath:    cfg.Classifier.LexiconPath,
		DictionaryPath: cfg.Translator.DictionaryPath,
	}
}

// Load reads all configured files.
func (l Loader) Load() (*Components, error) {
	comp := &Components{}

	if l.LexiconPath != "" {
		lex, err := lexicon.LoadFromYAML(l.LexiconPath)
		if err != nil {
			return nil, fmt.Errorf("load lexicon: %w", err)
		}
		comp.Lexicon = lex
	} else {
		comp.Lexicon = lexicon.New()
	}

	if l.DictionaryPath != "" {
		dict, err := auxdict.Load(l.DictionaryPath)
		if err != nil {
			return nil, fmt.Errorf("load dictionary: %w", err)
		}
		comp.Dictionary = dict
	} else {
		comp.Dictionary = auxdict.New(nil)
	}

	return comp, nil
}
