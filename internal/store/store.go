// Package store persists cases and their embedded chunks and ranks chunks
// against a query vector. Two backends are provided: Postgres with the
// pgvector extension, and an in-process chromem database for smaller
// datasets.
package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/brucruz/legal-case-rag/internal/models"
)

// VectorStore is the persistence capability the pipeline and the search
// service depend on. Ranking is cosine: similarity = 1 - cosine distance.
type VectorStore interface {
	// Init prepares the backing storage (tables, extensions, collections).
	Init(ctx context.Context) error
	// UpsertCase inserts the case if its case number is unseen and returns
	// the stored row. On conflict the existing row is left untouched and
	// returned as is.
	UpsertCase(ctx context.Context, c *models.Case) (*models.Case, error)
	// DeleteCaseChunks removes every chunk owned by the given case.
	DeleteCaseChunks(ctx context.Context, caseID uuid.UUID) error
	// InsertChunk persists one embedded chunk.
	InsertChunk(ctx context.Context, chunk *models.CaseChunk) error
	// SearchChunks returns up to limit chunks ranked by descending
	// similarity to the query vector, each joined with its owning case.
	SearchChunks(ctx context.Context, queryVec []float32, limit int) ([]models.SearchResult, error)
	// Close releases the backing resources.
	Close() error
}
