package store

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brucruz/legal-case-rag/internal/models"
)

func newTestStore(t *testing.T) *ChromemStore {
	t.Helper()
	s, err := NewChromemStore("", true)
	require.NoError(t, err)
	require.NoError(t, s.Init(context.Background()))
	return s
}

func testCase(number string) *models.Case {
	return &models.Case{
		CaseNumber:   number,
		CelexID:      "61984CJ0152",
		Title:        "Marshall v Southampton Health Authority",
		Court:        "Court of Justice",
		Date:         time.Date(1986, 2, 26, 0, 0, 0, 0, time.UTC),
		Jurisdiction: "EU",
		Summary:      "Direct effect of directives against state employers.",
		SourceURL:    "https://eur-lex.europa.eu/legal-content/EN/TXT/?uri=CELEX:61984CJ0152",
	}
}

// unitVector builds a 3-d unit vector whose cosine similarity against
// [1,0,0] is exactly sim.
func unitVector(sim float64) []float32 {
	return []float32{float32(sim), float32(math.Sqrt(1 - sim*sim)), 0}
}

func TestChromemStore_UpsertCaseIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.UpsertCase(ctx, testCase("C-152/84"))
	require.NoError(t, err)

	modified := testCase("C-152/84")
	modified.Title = "A different title"
	second, err := s.UpsertCase(ctx, modified)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	// conflict is a no-op: the stored fields stay untouched
	assert.Equal(t, first.Title, second.Title)
}

func TestChromemStore_SearchReturnsTopKDescending(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	stored, err := s.UpsertCase(ctx, testCase("C-152/84"))
	require.NoError(t, err)

	for i := 1; i <= 10; i++ {
		sim := float64(i) / 10 // 0.1 .. 1.0
		require.NoError(t, s.InsertChunk(ctx, &models.CaseChunk{
			CaseID:    stored.ID,
			Content:   fmt.Sprintf("chunk with similarity %.1f", sim),
			Embedding: unitVector(sim),
		}))
	}

	results, err := s.SearchChunks(ctx, []float32{1, 0, 0}, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.InDelta(t, 1.0, results[0].Similarity, 1e-4)
	assert.InDelta(t, 0.9, results[1].Similarity, 1e-4)
	assert.InDelta(t, 0.8, results[2].Similarity, 1e-4)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Similarity, results[i].Similarity)
	}

	// each result carries the owning case's metadata
	assert.Equal(t, stored.ID, results[0].CaseID)
	assert.Equal(t, "C-152/84", results[0].Case.CaseNumber)
	assert.Equal(t, "Court of Justice", results[0].Case.Court)
}

func TestChromemStore_SearchOnEmptyStore(t *testing.T) {
	s := newTestStore(t)

	results, err := s.SearchChunks(context.Background(), []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestChromemStore_LimitClampedToStoredChunks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	stored, err := s.UpsertCase(ctx, testCase("C-152/84"))
	require.NoError(t, err)
	require.NoError(t, s.InsertChunk(ctx, &models.CaseChunk{
		CaseID:    stored.ID,
		Content:   "only chunk",
		Embedding: unitVector(0.5),
	}))

	results, err := s.SearchChunks(ctx, []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestChromemStore_DeleteCaseChunks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	stored, err := s.UpsertCase(ctx, testCase("C-152/84"))
	require.NoError(t, err)
	other, err := s.UpsertCase(ctx, testCase("C-41/74"))
	require.NoError(t, err)

	require.NoError(t, s.InsertChunk(ctx, &models.CaseChunk{
		CaseID: stored.ID, Content: "first case chunk", Embedding: unitVector(0.9),
	}))
	require.NoError(t, s.InsertChunk(ctx, &models.CaseChunk{
		CaseID: other.ID, Content: "other case chunk", Embedding: unitVector(0.8),
	}))

	require.NoError(t, s.DeleteCaseChunks(ctx, stored.ID))

	results, err := s.SearchChunks(ctx, []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, other.ID, results[0].CaseID)
}

func TestChromemStore_ReingestAcrossRestartsReplacesChunks(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	// upsert, delete old chunks, insert fresh ones, as the pipeline does,
	// each time through a freshly opened store over the same directory
	ingest := func(content string) uuid.UUID {
		s, err := NewChromemStore(dir, false)
		require.NoError(t, err)
		require.NoError(t, s.Init(ctx))

		stored, err := s.UpsertCase(ctx, testCase("C-152/84"))
		require.NoError(t, err)
		require.NoError(t, s.DeleteCaseChunks(ctx, stored.ID))
		require.NoError(t, s.InsertChunk(ctx, &models.CaseChunk{
			CaseID:    stored.ID,
			Content:   content,
			Embedding: unitVector(0.9),
		}))
		return stored.ID
	}

	firstID := ingest("the only chunk")
	secondID := ingest("the only chunk, regenerated")
	assert.Equal(t, firstID, secondID)

	s, err := NewChromemStore(dir, false)
	require.NoError(t, err)
	require.NoError(t, s.Init(ctx))

	results, err := s.SearchChunks(ctx, []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, firstID, results[0].CaseID)
	assert.Equal(t, "the only chunk, regenerated", results[0].RelevantText)
}

func TestChromemStore_InsertChunkForUnknownCase(t *testing.T) {
	s := newTestStore(t)

	err := s.InsertChunk(context.Background(), &models.CaseChunk{
		Content:   "orphan chunk",
		Embedding: unitVector(0.5),
	})
	require.Error(t, err)

	var storageErr *models.StorageError
	assert.ErrorAs(t, err, &storageErr)
}
