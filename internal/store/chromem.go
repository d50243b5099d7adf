package store

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strconv"

	"github.com/philippgille/chromem-go"

	"github.com/bull/docchat/internal/errs"
)

// ChromemStore is the embedded vector store backend. Persistent mode writes
// the collection to a directory on disk and reopens it across restarts;
// in-memory mode backs tests and throwaway sessions.
type ChromemStore struct {
	db         *chromem.DB
	collection *chromem.Collection
	dimension  int
}

// NewChromemStore opens (or creates) a persistent chromem collection under
// the given directory.
func NewChromemStore(path, collection string) (*ChromemStore, error) {
	db, err := chromem.NewPersistentDB(path, false)
	if err != nil {
		return nil, fmt.Errorf("open chromem db at %s: %w", path, err)
	}
	return newChromemStore(db, collection)
}

// NewMemoryStore creates a non-persistent chromem store.
func NewMemoryStore(collection string) (*ChromemStore, error) {
	return newChromemStore(chromem.NewDB(), collection)
}

func newChromemStore(db *chromem.DB, collection string) (*ChromemStore, error) {
	// nil embedding func: all embeddings are computed upstream and passed in
	col, err := db.GetOrCreateCollection(collection, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("get or create collection %s: %w", collection, err)
	}
	return &ChromemStore{db: db, collection: col, dimension: VectorDimension}, nil
}

// Upsert stores chunks with their embeddings. Existing entries with the
// same derived ID are overwritten.
func (s *ChromemStore) Upsert(ctx context.Context, chunks []Chunk, embeddings [][]float32) error {
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("%w: %d chunks but %d embeddings", errs.ErrConfiguration, len(chunks), len(embeddings))
	}
	if len(chunks) == 0 {
		return nil
	}

	docs := make([]chromem.Document, len(chunks))
	for i, chunk := range chunks {
		if len(embeddings[i]) != s.dimension {
			return fmt.Errorf("%w: chunk %d has %d dimensions, expected %d",
				ErrDimensionMismatch, i, len(embeddings[i]), s.dimension)
		}
		docs[i] = chromem.Document{
			ID:        ChunkID(chunk.Source, chunk.Offset),
			Content:   chunk.Text,
			Embedding: embeddings[i],
			Metadata: map[string]string{
				"source": chunk.Source,
				"offset": strconv.Itoa(chunk.Offset),
				"index":  strconv.Itoa(chunk.Index),
			},
		}
	}

	if err := s.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("add documents: %w", err)
	}
	return nil
}

// Search returns the k most similar chunks by cosine similarity.
func (s *ChromemStore) Search(ctx context.Context, embedding []float32, k int) ([]ScoredChunk, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: k must be >= 1, got %d", errs.ErrConfiguration, k)
	}
	if len(embedding) != s.dimension {
		return nil, fmt.Errorf("%w: query has %d dimensions, expected %d",
			ErrDimensionMismatch, len(embedding), s.dimension)
	}

	count := s.collection.Count()
	if count == 0 {
		return nil, ErrEmptyIndex
	}
	if k > count {
		k = count
	}

	// chromem scores every document regardless of the limit, and its tie
	// order is unspecified. Rank the full candidate set here so equal-score
	// chunks keep their position order even at the k cutoff.
	results, err := s.collection.QueryEmbedding(ctx, embedding, count, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query embedding: %w", err)
	}

	hits := make([]ScoredChunk, 0, len(results))
	for _, res := range results {
		offset, _ := strconv.Atoi(res.Metadata["offset"])
		index, _ := strconv.Atoi(res.Metadata["index"])
		hits = append(hits, ScoredChunk{
			Chunk: Chunk{
				ID:     res.ID,
				Source: res.Metadata["source"],
				Offset: offset,
				Index:  index,
				Text:   res.Content,
			},
			Score: float64(res.Similarity),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		if hits[i].Source != hits[j].Source {
			return hits[i].Source < hits[j].Source
		}
		return hits[i].Index < hits[j].Index
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Count returns the number of stored chunks.
func (s *ChromemStore) Count(ctx context.Context) (int, error) {
	return s.collection.Count(), nil
}

// Close is a no-op; chromem persists on every write.
func (s *ChromemStore) Close() error {
	return nil
}
