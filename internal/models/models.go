package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// VectorSize is the embedding dimensionality produced by the embedding
// model (text-embedding-3-small). Every stored chunk carries a vector of
// exactly this length.
const VectorSize = 1536

// Case is a single court decision, identified by its case number.
type Case struct {
	bun.BaseModel `bun:"table:cases,alias:c"`
	ID            uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	CaseNumber    string    `bun:"case_number,notnull,unique" json:"caseNumber"`
	CelexID       string    `bun:"celex_id" json:"celexId,omitempty"`
	Title         string    `bun:"title,notnull" json:"title"`
	Court         string    `bun:"court,notnull" json:"court"`
	Date          time.Time `bun:"date,notnull" json:"date"`
	Jurisdiction  string    `bun:"jurisdiction,notnull" json:"jurisdiction"`
	Summary       string    `bun:"summary" json:"summary"`
	FullText      string    `bun:"full_text" json:"-"`
	SourceURL     string    `bun:"source_url" json:"sourceUrl,omitempty"`
	CreatedAt     time.Time `bun:"created_at,notnull,default:current_timestamp" json:"-"`
}

// CaseChunk is one embedded slice of a case's full text. Chunks belong to
// exactly one case and are dropped and regenerated wholesale whenever the
// case is re-ingested.
type CaseChunk struct {
	bun.BaseModel `bun:"table:case_chunks,alias:cc"`
	ID            uuid.UUID `bun:"id,pk,type:uuid"`
	CaseID        uuid.UUID `bun:"case_id,notnull,type:uuid"`
	Content       string    `bun:"content,notnull"`
	Embedding     []float32 `bun:"embedding,notnull,type:vector(1536)"`
	CreatedAt     time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// CaseInput is one record of the ingestion feed, as found in cases.json.
type CaseInput struct {
	CaseNumber   string `json:"caseNumber"`
	CelexID      string `json:"celexId,omitempty"`
	Title        string `json:"title"`
	Court        string `json:"court"`
	Date         string `json:"date"`
	Jurisdiction string `json:"jurisdiction"`
	Summary      string `json:"summary"`
	FullText     string `json:"fullText"`
	SourceURL    string `json:"sourceUrl,omitempty"`
}

// SearchResult pairs a matching chunk with its similarity score and the
// owning case's metadata. It is derived at query time and never persisted.
type SearchResult struct {
	ChunkID      uuid.UUID `json:"contentUnitId"`
	CaseID       uuid.UUID `json:"documentId"`
	RelevantText string    `json:"relevantText"`
	Similarity   float64   `json:"similarity"`
	Case         Case      `json:"document"`
}
