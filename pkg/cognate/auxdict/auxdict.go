// Package auxdict is a read-only word to translation table consulted before
// the remote translator.
package auxdict

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/edsrzf/mmap-go"

	"github.com/cognicore/cognate/pkg/cognate/normalize"
)

// Dictionary maps normalized source words to translations. It is immutable
// after construction and safe for concurrent reads.
type Dictionary struct {
	entries map[string]string
}

// New builds a dictionary from raw pairs. Keys are normalized; empty keys or
// values are skipped and the first pair for a key wins.
func New(pairs map[string]string) *Dictionary {
	d := &Dictionary{entries: make(map[string]string, len(pairs))}
	for k, v := range pairs {
		d.add(k, v)
	}
	return d
}

// Load reads a dictionary file. Files ending in .json hold a single object
// of word to translation; anything else is read as whitespace separated
// "word translation" lines (the MUSE bilingual dictionary layout).
func Load(path string) (*Dictionary, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return loadJSON(path)
	}
	return loadPairs(path)
}

func loadJSON(path string) (*Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var pairs map[string]string
	if err := json.Unmarshal(data, &pairs); err != nil {
		return nil, fmt.Errorf("parse dictionary %s: %w", path, err)
	}
	return New(pairs), nil
}

func loadPairs(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	d := &Dictionary{entries: make(map[string]string)}
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.Size() == 0 {
		return d, nil
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("mmap %s: %w", path, err)
	}
	defer m.Unmap()

	sc := bufio.NewScanner(bytes.NewReader(m))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 {
			continue
		}
		d.add(fields[0], strings.Join(fields[1:], " "))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read dictionary %s: %w", path, err)
	}
	return d, nil
}

func (d *Dictionary) add(word, translation string) {
	key := normalize.Normalize(strings.ReplaceAll(word, " ", ""))
	translation = strings.TrimSpace(translation)
	if key == "" || translation == "" {
		return
	}
	if _, exists := d.entries[key]; !exists {
		d.entries[key] = translation
	}
}

// Lookup returns the translation of word, normalizing it first.
func (d *Dictionary) Lookup(word string) (string, bool) {
	if d == nil {
		return "", false
	}
	out, ok := d.entries[normalize.Normalize(word)]
	return out, ok
}

// Len returns the number of entries.
func (d *Dictionary) Len() int {
	if d == nil {
		return 0
	}
	return len(d.entries)
}
