package services

import (
	"context"
	"strings"
	"sync"

	"github.com/deckbinder/deckbinder/binder/config"
	"github.com/deckbinder/deckbinder/binder/search"
	lru "github.com/hashicorp/golang-lru"
	"github.com/sahilm/fuzzy"
)

// NameSource provides the distinct card names to suggest from.
type NameSource interface {
	AllNames(ctx context.Context) ([]string, error)
}

// SuggestService powers the search box's name autocomplete. The engine
// itself never caches; the suggester is an external collaborator and keeps
// a small LRU of recent queries over an in-memory name snapshot.
type SuggestService struct {
	source NameSource

	mu    sync.RWMutex
	names []string

	cache *lru.Cache
}

func NewSuggestService(source NameSource) (*SuggestService, error) {
	cache, err := lru.New(config.SuggestCacheSize)
	if err != nil {
		return nil, err
	}
	return &SuggestService{source: source, cache: cache}, nil
}

// Refresh reloads the name snapshot; call after a dataset import.
func (s *SuggestService) Refresh(ctx context.Context) error {
	names, err := s.source.AllNames(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.names = names
	s.mu.Unlock()
	s.cache.Purge()
	return nil
}

// Suggest returns up to limit card names ranked by fuzzy match quality.
func (s *SuggestService) Suggest(query string, limit int) []string {
	query = search.NormalizeTerm(query)
	if query == "" {
		return nil
	}
	if limit <= 0 || limit > config.MaxSuggestions {
		limit = config.MaxSuggestions
	}

	cacheKey := strings.ToLower(query)
	if v, ok := s.cache.Get(cacheKey); ok {
		hits := v.([]string)
		if len(hits) > limit {
			hits = hits[:limit]
		}
		return hits
	}

	s.mu.RLock()
	names := s.names
	s.mu.RUnlock()

	matches := fuzzy.Find(query, names)
	hits := make([]string, 0, config.MaxSuggestions)
	for _, m := range matches {
		hits = append(hits, names[m.Index])
		if len(hits) == config.MaxSuggestions {
			break
		}
	}
	s.cache.Add(cacheKey, hits)

	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}
