// Package search ranks stored chunks against a free-text query.
package search

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/brucruz/legal-case-rag/internal/embedding"
	"github.com/brucruz/legal-case-rag/internal/models"
	"github.com/brucruz/legal-case-rag/internal/store"
)

// DefaultLimit is the result count used when the caller does not ask for
// one.
const DefaultLimit = 10

// Service embeds a query and returns the most similar stored chunks, each
// joined with its owning case.
type Service struct {
	store    store.VectorStore
	embedder embedding.Embedder
}

func NewService(s store.VectorStore, e embedding.Embedder) *Service {
	return &Service{store: s, embedder: e}
}

// Search returns at most limit results in descending similarity order. An
// empty result set is a valid outcome. Empty queries and non-positive
// limits are rejected before any I/O.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]models.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, models.NewValidationError("query", "must not be empty")
	}
	if limit <= 0 {
		return nil, models.NewValidationError("limit", "must be positive, got %d", limit)
	}

	queryVec, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		var providerErr *models.ProviderError
		if !errors.As(err, &providerErr) {
			err = &models.ProviderError{Err: err}
		}
		log.Error().Err(err).Msg("query embedding failed")
		return nil, err
	}

	results, err := s.store.SearchChunks(ctx, queryVec, limit)
	if err != nil {
		log.Error().Err(err).Msg("ranked lookup failed")
		return nil, err
	}

	log.Debug().Int("results", len(results)).Int("limit", limit).Msg("search complete")
	return results, nil
}
