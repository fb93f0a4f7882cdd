package translate

import (
	"context"
	"log"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/cognicore/cognate/internal/metrics"
	"github.com/cognicore/cognate/pkg/cognate/classify"
)

// Cache stores translations by key.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// CacheKey builds the key for a translation, e.g. "translation:fr:en:pain".
func CacheKey(word, src, dst string) string {
	return "translation:" + strings.ToLower(src) + ":" + strings.ToLower(dst) + ":" + strings.ToLower(word)
}

// Cached is a read-through cache in front of another translator. Cache
// failures are logged and never fail the translation.
type Cached struct {
	Name  string
	Cache Cache
	Next  classify.WordTranslator
}

// Translate implements classify.WordTranslator.
func (c *Cached) Translate(ctx context.Context, word, src, dst string) (string, error) {
	key := CacheKey(word, src, dst)
	if out, ok, err := c.Cache.Get(ctx, key); err != nil {
		log.Printf("translation cache %s get %q: %v", c.Name, key, err)
	} else if ok {
		metrics.CacheLookup(c.Name, true)
		return out, nil
	}
	metrics.CacheLookup(c.Name, false)

	out, err := c.Next.Translate(ctx, word, src, dst)
	if err != nil {
		return "", err
	}
	if err := c.Cache.Set(ctx, key, out); err != nil {
		log.Printf("translation cache %s set %q: %v", c.Name, key, err)
	}
	return out, nil
}

// LRU is an in-process bounded cache.
type LRU struct {
	cache *lru.Cache[string, string]
}

// NewLRU creates an LRU cache holding at most size entries.
func NewLRU(size int) (*LRU, error) {
	c, err := lru.New[string, string](size)
	if err != nil {
		return nil, err
	}
	return &LRU{cache: c}, nil
}

// Get implements Cache.
func (l *LRU) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := l.cache.Get(key)
	return v, ok, nil
}

// Set implements Cache.
func (l *LRU) Set(_ context.Context, key, value string) error {
	l.cache.Add(key, value)
	return nil
}

// Len returns the number of cached entries.
func (l *LRU) Len() int { return l.cache.Len() }

// Memo is the persistent translation table of a story store.
type Memo interface {
	GetTranslation(ctx context.Context, key string) (string, bool, error)
	PutTranslation(ctx context.Context, key, value string) error
}

// StoreCache adapts a Memo to Cache.
type StoreCache struct {
	Memo Memo
}

// Get implements Cache.
func (s StoreCache) Get(ctx context.Context, key string) (string, bool, error) {
	return s.Memo.GetTranslation(ctx, key)
}

// Set implements Cache.
func (s StoreCache) Set(ctx context.Context, key, value string) error {
	return s.Memo.PutTranslation(ctx, key, value)
}
