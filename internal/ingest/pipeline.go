// Package ingest runs the offline document indexing pipeline.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bull/docchat/internal/document"
	"github.com/bull/docchat/internal/splitter"
	"github.com/bull/docchat/internal/store"
)

// Embedder is the batch embedding dependency.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Upserter is the index write dependency.
type Upserter interface {
	Upsert(ctx context.Context, chunks []store.Chunk, embeddings [][]float32) error
}

// Result contains statistics about one ingestion run.
type Result struct {
	Sources  []string
	Chunks   int
	Duration time.Duration
}

// Pipeline reads documents, splits them into overlapping chunks, embeds
// the chunks and writes them to the index. A single embedding failure
// aborts the whole batch; partially ingested sources are overwritten on the
// next successful run because chunk IDs are deterministic.
type Pipeline struct {
	splitter *splitter.Splitter
	embedder Embedder
	store    Upserter
	logger   *slog.Logger
}

// NewPipeline creates an ingestion pipeline.
func NewPipeline(split *splitter.Splitter, embedder Embedder, upserter Upserter, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		splitter: split,
		embedder: embedder,
		store:    upserter,
		logger:   logger,
	}
}

// Run ingests the given files in order.
func (p *Pipeline) Run(ctx context.Context, paths []string) (*Result, error) {
	start := time.Now()
	result := &Result{}

	for _, path := range paths {
		n, err := p.ingestFile(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("ingest %s: %w", path, err)
		}
		result.Sources = append(result.Sources, path)
		result.Chunks += n
	}

	result.Duration = time.Since(start)
	p.logger.Info("Ingestion complete",
		"sources", len(result.Sources),
		"chunks", result.Chunks,
		"duration", result.Duration,
	)

	return result, nil
}

// ingestFile handles the full pipeline for one document. Returns the number
// of chunks written.
func (p *Pipeline) ingestFile(ctx context.Context, path string) (int, error) {
	doc, err := document.Load(path)
	if err != nil {
		return 0, err
	}
	p.logger.Debug("Loaded document", "source", doc.Source, "size", len(doc.Content))

	chunks := p.splitter.Split(doc)
	p.logger.Debug("Split document", "source", doc.Source, "chunks", len(chunks))

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	embeddings, err := p.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embeddings: %w", err)
	}

	storeChunks := make([]store.Chunk, len(chunks))
	for i, chunk := range chunks {
		storeChunks[i] = store.Chunk{
			ID:     store.ChunkID(chunk.Source, chunk.Offset),
			Source: chunk.Source,
			Offset: chunk.Offset,
			Index:  chunk.Index,
			Text:   chunk.Text,
		}
	}

	if err := p.store.Upsert(ctx, storeChunks, embeddings); err != nil {
		return 0, fmt.Errorf("store chunks: %w", err)
	}

	p.logger.Info("Ingested document", "source", doc.Source, "chunks", len(chunks))
	return len(chunks), nil
}
