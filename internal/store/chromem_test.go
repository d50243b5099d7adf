package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bull/docchat/internal/errs"
)

// basisVector returns a unit vector with a single 1 at position i, handy
// for making similarity outcomes exact.
func basisVector(i int) []float32 {
	v := make([]float32, VectorDimension)
	v[i] = 1
	return v
}

func newTestStore(t *testing.T) *ChromemStore {
	t.Helper()
	s, err := NewMemoryStore("documents")
	require.NoError(t, err)
	return s
}

func TestSearch_ExactMatchFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	chunks := []Chunk{
		{Source: "data/sample.txt", Offset: 0, Index: 0, Text: "Office Hours: Monday to Friday, 9 AM to 6 PM."},
		{Source: "data/sample.txt", Offset: 800, Index: 1, Text: "Services: AI consulting and chatbots."},
		{Source: "data/sample.txt", Offset: 1600, Index: 2, Text: "Contact: support@techcorp.example"},
	}
	embeddings := [][]float32{basisVector(0), basisVector(1), basisVector(2)}
	require.NoError(t, s.Upsert(ctx, chunks, embeddings))

	for k := 1; k <= 3; k++ {
		hits, err := s.Search(ctx, basisVector(1), k)
		require.NoError(t, err)
		require.NotEmpty(t, hits)
		assert.Equal(t, "Services: AI consulting and chatbots.", hits[0].Text, "k=%d", k)
		assert.InDelta(t, 1.0, hits[0].Score, 1e-4)
	}
}

func TestSearch_DescendingOrderAndTieBreak(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	chunks := []Chunk{
		{Source: "data/sample.txt", Offset: 0, Index: 0, Text: "match"},
		{Source: "data/sample.txt", Offset: 800, Index: 1, Text: "tie one"},
		{Source: "data/sample.txt", Offset: 1600, Index: 2, Text: "tie two"},
	}
	embeddings := [][]float32{basisVector(0), basisVector(1), basisVector(2)}
	require.NoError(t, s.Upsert(ctx, chunks, embeddings))

	hits, err := s.Search(ctx, basisVector(0), 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)

	assert.Equal(t, "match", hits[0].Text)
	for i := 1; i < len(hits); i++ {
		assert.GreaterOrEqual(t, hits[i-1].Score, hits[i].Score)
	}
	// the two zero-similarity hits keep insertion order
	assert.Equal(t, "tie one", hits[1].Text)
	assert.Equal(t, "tie two", hits[2].Text)
}

func TestSearch_TieAtCutoffKeepsInsertionOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// identical embeddings, so both chunks score the same for any query
	chunks := []Chunk{
		{Source: "data/sample.txt", Offset: 0, Index: 0, Text: "first inserted"},
		{Source: "data/sample.txt", Offset: 800, Index: 1, Text: "second inserted"},
	}
	require.NoError(t, s.Upsert(ctx, chunks, [][]float32{basisVector(0), basisVector(0)}))

	// with k=1 the tie sits exactly on the cutoff; the earlier chunk wins
	hits, err := s.Search(ctx, basisVector(0), 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "first inserted", hits[0].Text)
}

func TestUpsert_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	chunk := Chunk{Source: "data/sample.txt", Offset: 0, Index: 0, Text: "Office Hours: Monday to Friday, 9 AM to 6 PM."}

	require.NoError(t, s.Upsert(ctx, []Chunk{chunk}, [][]float32{basisVector(0)}))
	require.NoError(t, s.Upsert(ctx, []Chunk{chunk}, [][]float32{basisVector(0)}))

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "re-ingesting the same chunk must not duplicate it")

	// a different offset is a different entry
	other := Chunk{Source: "data/sample.txt", Offset: 800, Index: 1, Text: "more"}
	require.NoError(t, s.Upsert(ctx, []Chunk{other}, [][]float32{basisVector(1)}))
	count, err = s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestSearch_EmptyIndex(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Search(context.Background(), basisVector(0), 2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyIndex))
	assert.True(t, errors.Is(err, errs.ErrConfiguration))
}

func TestSearch_KClampedToCount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx,
		[]Chunk{{Source: "a.txt", Offset: 0, Index: 0, Text: "only entry"}},
		[][]float32{basisVector(0)}))

	hits, err := s.Search(ctx, basisVector(0), 10)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestSearch_InvalidK(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Search(context.Background(), basisVector(0), 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrConfiguration))
}

func TestUpsert_DimensionMismatch(t *testing.T) {
	s := newTestStore(t)

	err := s.Upsert(context.Background(),
		[]Chunk{{Source: "a.txt", Offset: 0, Index: 0, Text: "bad"}},
		[][]float32{make([]float32, 3)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDimensionMismatch))
}

func TestUpsert_LengthMismatch(t *testing.T) {
	s := newTestStore(t)

	err := s.Upsert(context.Background(),
		[]Chunk{{Source: "a.txt", Offset: 0, Index: 0, Text: "one"}},
		nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrConfiguration))
}

func TestChunkID_Deterministic(t *testing.T) {
	a := ChunkID("data/sample.txt", 0)
	b := ChunkID("data/sample.txt", 0)
	c := ChunkID("data/sample.txt", 800)
	d := ChunkID("data/other.txt", 0)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, a, d)
}

func TestChromemStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := NewChromemStore(dir, "documents")
	require.NoError(t, err)
	require.NoError(t, s.Upsert(ctx,
		[]Chunk{{Source: "a.txt", Offset: 0, Index: 0, Text: "persisted entry"}},
		[][]float32{basisVector(0)}))
	require.NoError(t, s.Close())

	reopened, err := NewChromemStore(dir, "documents")
	require.NoError(t, err)

	count, err := reopened.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	hits, err := reopened.Search(ctx, basisVector(0), 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "persisted entry", hits[0].Text)
	assert.Equal(t, "a.txt", hits[0].Source)
}
