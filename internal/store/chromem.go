package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/philippgille/chromem-go"

	"github.com/brucruz/legal-case-rag/internal/models"
)

const chromemCollection = "case_chunks"

// caseIDNamespace seeds the deterministic case IDs: a case number maps to
// the same UUID in every process, so chunk replacement on re-ingestion
// works across restarts of a persistent store.
var caseIDNamespace = uuid.MustParse("7f4bd4a7-9657-41a2-b64d-8a7e5c9f3b21")

func chromemCaseID(caseNumber string) uuid.UUID {
	return uuid.NewSHA1(caseIDNamespace, []byte(caseNumber))
}

// ChromemStore is an in-process VectorStore backed by chromem-go. It
// brute-force scans stored vectors, which is plenty for corpora of a few
// thousand chunks and spares a Postgres dependency for local runs. Case
// IDs are derived from the case number, so re-ingesting into a persistent
// store replaces the previous run's chunks instead of duplicating them.
type ChromemStore struct {
	db         *chromem.DB
	collection *chromem.Collection

	mu       sync.Mutex
	byNumber map[string]models.Case
	byID     map[uuid.UUID]models.Case
}

// NewChromemStore opens (or creates) a persistent chromem database at
// path. With inMemory set, nothing touches disk.
func NewChromemStore(path string, inMemory bool) (*ChromemStore, error) {
	var db *chromem.DB
	var err error
	if inMemory {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(path, false)
		if err != nil {
			return nil, &models.StorageError{Op: "open chromem", Err: err}
		}
	}
	return &ChromemStore{
		db:       db,
		byNumber: make(map[string]models.Case),
		byID:     make(map[uuid.UUID]models.Case),
	}, nil
}

func (s *ChromemStore) Init(ctx context.Context) error {
	c, err := s.db.GetOrCreateCollection(chromemCollection, nil, nil)
	if err != nil {
		return &models.StorageError{Op: "init", Err: err}
	}
	s.collection = c
	return nil
}

func (s *ChromemStore) UpsertCase(ctx context.Context, c *models.Case) (*models.Case, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.byNumber[c.CaseNumber]; ok {
		return &existing, nil
	}
	c.ID = chromemCaseID(c.CaseNumber)
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	s.byNumber[c.CaseNumber] = *c
	s.byID[c.ID] = *c
	return c, nil
}

func (s *ChromemStore) DeleteCaseChunks(ctx context.Context, caseID uuid.UUID) error {
	if s.collection.Count() == 0 {
		return nil
	}
	err := s.collection.Delete(ctx, map[string]string{"caseId": caseID.String()}, nil)
	if err != nil {
		return &models.StorageError{Op: "delete chunks", Err: err}
	}
	return nil
}

func (s *ChromemStore) InsertChunk(ctx context.Context, chunk *models.CaseChunk) error {
	s.mu.Lock()
	owner, ok := s.byID[chunk.CaseID]
	s.mu.Unlock()
	if !ok {
		return &models.StorageError{Op: "insert chunk", Err: errUnknownCase(chunk.CaseID)}
	}
	if chunk.ID == uuid.Nil {
		chunk.ID = uuid.New()
	}

	doc := chromem.Document{
		ID:        chunk.ID.String(),
		Content:   chunk.Content,
		Embedding: chunk.Embedding,
		Metadata:  caseMetadata(owner),
	}
	if err := s.collection.AddDocument(ctx, doc); err != nil {
		return &models.StorageError{Op: "insert chunk", Err: err}
	}
	return nil
}

func (s *ChromemStore) SearchChunks(ctx context.Context, queryVec []float32, limit int) ([]models.SearchResult, error) {
	// chromem rejects nResults above the stored document count
	if count := s.collection.Count(); limit > count {
		limit = count
	}
	if limit == 0 {
		return []models.SearchResult{}, nil
	}

	hits, err := s.collection.QueryWithOptions(ctx, chromem.QueryOptions{
		QueryEmbedding: queryVec,
		NResults:       limit,
	})
	if err != nil {
		return nil, &models.StorageError{Op: "search chunks", Err: err}
	}

	results := make([]models.SearchResult, 0, len(hits))
	for _, hit := range hits {
		chunkID, err := uuid.Parse(hit.ID)
		if err != nil {
			return nil, &models.StorageError{Op: "search chunks", Err: err}
		}
		owner := caseFromMetadata(hit.Metadata)
		results = append(results, models.SearchResult{
			ChunkID:      chunkID,
			CaseID:       owner.ID,
			RelevantText: hit.Content,
			Similarity:   float64(hit.Similarity),
			Case:         owner,
		})
	}
	return results, nil
}

func (s *ChromemStore) Close() error { return nil }

type errUnknownCase uuid.UUID

func (e errUnknownCase) Error() string {
	return "unknown case " + uuid.UUID(e).String()
}

func caseMetadata(c models.Case) map[string]string {
	return map[string]string{
		"caseId":       c.ID.String(),
		"caseNumber":   c.CaseNumber,
		"celexId":      c.CelexID,
		"title":        c.Title,
		"court":        c.Court,
		"date":         c.Date.Format(time.RFC3339),
		"jurisdiction": c.Jurisdiction,
		"summary":      c.Summary,
		"sourceUrl":    c.SourceURL,
		"createdAt":    c.CreatedAt.Format(time.RFC3339),
	}
}

func caseFromMetadata(meta map[string]string) models.Case {
	id, _ := uuid.Parse(meta["caseId"])
	date, _ := time.Parse(time.RFC3339, meta["date"])
	createdAt, _ := time.Parse(time.RFC3339, meta["createdAt"])
	return models.Case{
		ID:           id,
		CaseNumber:   meta["caseNumber"],
		CelexID:      meta["celexId"],
		Title:        meta["title"],
		Court:        meta["court"],
		Date:         date,
		Jurisdiction: meta["jurisdiction"],
		Summary:      meta["summary"],
		SourceURL:    meta["sourceUrl"],
		CreatedAt:    createdAt,
	}
}
