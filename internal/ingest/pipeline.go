// Package ingest turns raw case records into persisted, embedded chunks.
package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/brucruz/legal-case-rag/internal/chunker"
	"github.com/brucruz/legal-case-rag/internal/embedding"
	"github.com/brucruz/legal-case-rag/internal/models"
	"github.com/brucruz/legal-case-rag/internal/store"
)

const defaultWorkers = 4

// dateLayouts accepted for the ingestion feed's date field.
var dateLayouts = []string{time.RFC3339, "2006-01-02"}

// Pipeline ingests cases one at a time: upsert the case, drop its old
// chunks, re-chunk the full text, embed and persist each unit.
type Pipeline struct {
	store     store.VectorStore
	embedder  embedding.Embedder
	chunkOpts []chunker.Option
	workers   int
}

type PipelineOption func(*Pipeline)

// WithChunkOptions overrides the chunking bounds.
func WithChunkOptions(opts ...chunker.Option) PipelineOption {
	return func(p *Pipeline) { p.chunkOpts = opts }
}

// WithWorkers bounds the number of concurrent embedding calls per case.
func WithWorkers(n int) PipelineOption {
	return func(p *Pipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

func NewPipeline(s store.VectorStore, e embedding.Embedder, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{store: s, embedder: e, workers: defaultWorkers}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// IngestCase processes one case record. Old chunks are removed before any
// new chunk is written, so stale and fresh units never coexist; a failure
// partway leaves the case safe to re-ingest.
func (p *Pipeline) IngestCase(ctx context.Context, input models.CaseInput) error {
	c, err := caseFromInput(input)
	if err != nil {
		return err
	}

	stored, err := p.store.UpsertCase(ctx, c)
	if err != nil {
		return err
	}
	if err := p.store.DeleteCaseChunks(ctx, stored.ID); err != nil {
		return err
	}

	units := chunker.Chunk(input.FullText, p.chunkOpts...)
	log.Debug().
		Str("case_number", input.CaseNumber).
		Int("chunks", len(units)).
		Msg("chunked full text")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for _, content := range units {
		g.Go(func() error {
			vector, err := p.embedder.EmbedQuery(gctx, content)
			if err != nil {
				return err
			}
			if len(vector) != models.VectorSize {
				return &models.ProviderError{
					Err: fmt.Errorf("embedding has %d dimensions, want %d", len(vector), models.VectorSize),
				}
			}
			return p.store.InsertChunk(gctx, &models.CaseChunk{
				CaseID:    stored.ID,
				Content:   content,
				Embedding: vector,
			})
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	log.Info().
		Str("case_number", input.CaseNumber).
		Int("chunks", len(units)).
		Msg("ingested case")
	return nil
}

// IngestAll processes the records sequentially and aborts the run at the
// first failing case. Failure isolation is per case: earlier cases stay
// fully ingested.
func (p *Pipeline) IngestAll(ctx context.Context, inputs []models.CaseInput) error {
	for _, input := range inputs {
		if err := p.IngestCase(ctx, input); err != nil {
			log.Error().Err(err).Str("case_number", input.CaseNumber).Msg("ingestion failed")
			return err
		}
	}
	return nil
}

func caseFromInput(input models.CaseInput) (*models.Case, error) {
	if strings.TrimSpace(input.CaseNumber) == "" {
		return nil, models.NewValidationError("caseNumber", "must not be empty")
	}
	date, err := parseDate(input.Date)
	if err != nil {
		return nil, models.NewValidationError("date", "%q is not ISO-parsable", input.Date)
	}
	return &models.Case{
		CaseNumber:   input.CaseNumber,
		CelexID:      input.CelexID,
		Title:        input.Title,
		Court:        input.Court,
		Date:         date,
		Jurisdiction: input.Jurisdiction,
		Summary:      input.Summary,
		FullText:     input.FullText,
		SourceURL:    input.SourceURL,
	}, nil
}

func parseDate(value string) (time.Time, error) {
	var err error
	for _, layout := range dateLayouts {
		var t time.Time
		if t, err = time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}
