package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/excelq/excelq-engine/pkg/models"
	"github.com/excelq/excelq-engine/pkg/repositories"
)

// SuggestionLimit caps autocomplete candidates per lookup.
const SuggestionLimit = 10

// suggestionCacheTTL bounds staleness of cached prefixes; ingestion is rare
// compared to keystroke-driven lookups.
const suggestionCacheTTL = 5 * time.Minute

// SuggestionService supplies autocomplete candidates for company and product
// fields by case-insensitive prefix match.
type SuggestionService interface {
	// Suggest returns up to SuggestionLimit distinct, trimmed values starting
	// with prefix, alphabetically ordered. An empty prefix yields an empty
	// list without error.
	Suggest(ctx context.Context, kind models.SuggestionKind, prefix string) ([]string, error)
}

type suggestionService struct {
	searchRepo repositories.SearchRepository
	cache      *redis.Client // nil disables caching
	logger     *zap.Logger
}

// NewSuggestionService creates a new SuggestionService. cache may be nil.
func NewSuggestionService(searchRepo repositories.SearchRepository, cache *redis.Client, logger *zap.Logger) SuggestionService {
	return &suggestionService{searchRepo: searchRepo, cache: cache, logger: logger}
}

var _ SuggestionService = (*suggestionService)(nil)

func (s *suggestionService) Suggest(ctx context.Context, kind models.SuggestionKind, prefix string) ([]string, error) {
	if prefix == "" {
		return []string{}, nil
	}

	cacheKey := "suggest:" + string(kind) + ":" + strings.ToLower(prefix)
	if cached, ok := s.fromCache(ctx, cacheKey); ok {
		return cached, nil
	}

	suggestions, err := s.searchRepo.Suggestions(ctx, kind, prefix, SuggestionLimit)
	if err != nil {
		return nil, err
	}
	if suggestions == nil {
		suggestions = []string{}
	}

	s.toCache(ctx, cacheKey, suggestions)
	return suggestions, nil
}

func (s *suggestionService) fromCache(ctx context.Context, key string) ([]string, bool) {
	if s.cache == nil {
		return nil, false
	}

	payload, err := s.cache.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			s.logger.Debug("Suggestion cache read failed", zap.Error(err))
		}
		return nil, false
	}

	var suggestions []string
	if err := json.Unmarshal([]byte(payload), &suggestions); err != nil {
		return nil, false
	}
	return suggestions, true
}

func (s *suggestionService) toCache(ctx context.Context, key string, suggestions []string) {
	if s.cache == nil {
		return
	}

	payload, err := json.Marshal(suggestions)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, payload, suggestionCacheTTL).Err(); err != nil {
		s.logger.Debug("Suggestion cache write failed", zap.Error(err))
	}
}
