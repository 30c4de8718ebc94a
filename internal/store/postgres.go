package store

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"github.com/brucruz/legal-case-rag/internal/config"
	"github.com/brucruz/legal-case-rag/internal/models"
)

// PostgresStore is the pgvector-backed VectorStore.
type PostgresStore struct {
	db *bun.DB
}

// ConnectPostgres opens a bun connection over the pgdriver connector.
func ConnectPostgres(dbConfig *config.DatabaseConfig) (*PostgresStore, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dbConfig.URL)))
	db := bun.NewDB(sqldb, pgdialect.New())
	if dbConfig.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return &models.StorageError{Op: "init", Err: err}
	}
	if _, err := s.db.NewCreateTable().
		Model((*models.Case)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return &models.StorageError{Op: "init", Err: err}
	}
	if _, err := s.db.NewCreateTable().
		Model((*models.CaseChunk)(nil)).
		IfNotExists().
		ForeignKey(`("case_id") REFERENCES "cases" ("id")`).
		Exec(ctx); err != nil {
		return &models.StorageError{Op: "init", Err: err}
	}
	if _, err := s.db.ExecContext(ctx,
		"CREATE INDEX IF NOT EXISTS case_chunks_embedding_idx ON case_chunks USING hnsw (embedding vector_cosine_ops)"); err != nil {
		return &models.StorageError{Op: "init", Err: err}
	}
	return nil
}

func (s *PostgresStore) UpsertCase(ctx context.Context, c *models.Case) (*models.Case, error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	// insert-if-absent: an existing row keeps its stored fields
	if _, err := s.db.NewInsert().
		Model(c).
		ExcludeColumn("created_at").
		On("CONFLICT (case_number) DO NOTHING").
		Exec(ctx); err != nil {
		return nil, &models.StorageError{Op: "upsert case", Err: err}
	}

	stored := new(models.Case)
	if err := s.db.NewSelect().
		Model(stored).
		Where("case_number = ?", c.CaseNumber).
		Scan(ctx); err != nil {
		return nil, &models.StorageError{Op: "upsert case", Err: err}
	}
	return stored, nil
}

func (s *PostgresStore) DeleteCaseChunks(ctx context.Context, caseID uuid.UUID) error {
	if _, err := s.db.NewDelete().
		Model((*models.CaseChunk)(nil)).
		Where("case_id = ?", caseID).
		Exec(ctx); err != nil {
		return &models.StorageError{Op: "delete chunks", Err: err}
	}
	return nil
}

func (s *PostgresStore) InsertChunk(ctx context.Context, chunk *models.CaseChunk) error {
	if chunk.ID == uuid.Nil {
		chunk.ID = uuid.New()
	}
	if _, err := s.db.NewInsert().
		Model(chunk).
		ExcludeColumn("created_at").
		Value("embedding", "?::vector", vectorParam(chunk.Embedding)).
		Exec(ctx); err != nil {
		return &models.StorageError{Op: "insert chunk", Err: err}
	}
	return nil
}

// chunkHit is the ranked-lookup row: a chunk plus its similarity to the
// query vector.
type chunkHit struct {
	bun.BaseModel `bun:"table:case_chunks,alias:cc"`
	ID            uuid.UUID `bun:"id"`
	CaseID        uuid.UUID `bun:"case_id"`
	Content       string    `bun:"content"`
	Similarity    float64   `bun:"similarity"`
}

func (s *PostgresStore) SearchChunks(ctx context.Context, queryVec []float32, limit int) ([]models.SearchResult, error) {
	param := vectorParam(queryVec)

	var hits []chunkHit
	err := s.db.NewSelect().
		Model(&hits).
		ColumnExpr("cc.id, cc.case_id, cc.content").
		ColumnExpr("1 - (cc.embedding <=> ?::vector) AS similarity", param).
		OrderExpr("cc.embedding <=> ?::vector", param).
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, &models.StorageError{Op: "search chunks", Err: err}
	}
	if len(hits) == 0 {
		return []models.SearchResult{}, nil
	}

	casesByID, err := s.casesByID(ctx, hits)
	if err != nil {
		return nil, err
	}

	results := make([]models.SearchResult, 0, len(hits))
	for _, hit := range hits {
		results = append(results, models.SearchResult{
			ChunkID:      hit.ID,
			CaseID:       hit.CaseID,
			RelevantText: hit.Content,
			Similarity:   hit.Similarity,
			Case:         casesByID[hit.CaseID],
		})
	}
	return results, nil
}

func (s *PostgresStore) casesByID(ctx context.Context, hits []chunkHit) (map[uuid.UUID]models.Case, error) {
	ids := make([]uuid.UUID, 0, len(hits))
	seen := make(map[uuid.UUID]struct{})
	for _, hit := range hits {
		if _, ok := seen[hit.CaseID]; ok {
			continue
		}
		seen[hit.CaseID] = struct{}{}
		ids = append(ids, hit.CaseID)
	}

	var cases []models.Case
	if err := s.db.NewSelect().
		Model(&cases).
		Where("id IN (?)", bun.In(ids)).
		Scan(ctx); err != nil {
		return nil, &models.StorageError{Op: "load cases", Err: err}
	}

	byID := make(map[uuid.UUID]models.Case, len(cases))
	for _, c := range cases {
		byID[c.ID] = c
	}
	return byID, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// vectorParam renders a vector in pgvector's input format, e.g. [0.1,0.2].
func vectorParam(vec []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range vec {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(v), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}
