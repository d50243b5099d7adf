// Package store persists chunk embeddings and serves nearest-neighbor
// search over them.
//
// Two backends implement the same contract: chromem (embedded, persists to
// a local directory, the default) and qdrant (remote server, for shared
// deployments). Both key points by a deterministic UUID derived from
// (source, offset), so re-ingesting an unchanged document overwrites
// entries instead of duplicating them.
package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// VectorDimension is the embedding size stored in the index. This matches
// embedding.Dimension (text-embedding-3-small, 1536).
const VectorDimension = 1536

// Chunk is a stored retrieval unit.
type Chunk struct {
	ID     string // deterministic UUID, derived from Source and Offset
	Source string // source document identifier
	Offset int    // rune offset of the chunk within the source
	Index  int    // position in the source's split sequence
	Text   string
}

// ScoredChunk is a search hit with its cosine similarity to the query.
type ScoredChunk struct {
	Chunk
	Score float64
}

// Store is the vector index contract shared by both backends.
//
// Search returns the k chunks most similar to the query embedding, ordered
// by descending cosine similarity with ties broken by chunk position. The
// index must be safe for concurrent readers; writes happen only during the
// offline ingestion batch.
type Store interface {
	Upsert(ctx context.Context, chunks []Chunk, embeddings [][]float32) error
	Search(ctx context.Context, embedding []float32, k int) ([]ScoredChunk, error)
	Count(ctx context.Context) (int, error)
	Close() error
}

// ChunkID derives the stable point identifier for a chunk. The same
// (source, offset) pair always maps to the same UUID.
func ChunkID(source string, offset int) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("%s#%d", source, offset))).String()
}
