package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/bull/docchat/internal/query"
	"github.com/bull/docchat/internal/store"
)

// makeAskHandler creates the ask tool handler. Questions run through the
// full query pipeline against the server's single conversation session.
func makeAskHandler(s *Server) func(
	context.Context, *mcp.CallToolRequest, AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input AskInput) (
		*mcp.CallToolResult, AskOutput, error,
	) {
		s.mu.Lock()
		defer s.mu.Unlock()

		result, err := s.orchestrator.Ask(ctx, s.session, input.Question)
		if err != nil {
			return nil, AskOutput{}, fmt.Errorf("ask failed: %w", err)
		}

		sources := make([]Source, len(result.Sources))
		for i, chunk := range result.Sources {
			sources[i] = Source{
				Source: chunk.Source,
				Offset: chunk.Offset,
				Text:   chunk.Text,
			}
		}

		return nil, AskOutput{Answer: result.Answer, Sources: sources}, nil
	}
}

// makeSearchHandler creates the search tool handler. It embeds the query
// and returns raw chunk matches without a model call.
func makeSearchHandler(st store.Store, embedder query.Embedder) func(
	context.Context, *mcp.CallToolRequest, SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input SearchInput) (
		*mcp.CallToolResult, SearchOutput, error,
	) {
		maxResults := input.MaxResults
		if maxResults <= 0 {
			maxResults = 5
		}

		embedding, err := embedder.EmbedQuery(ctx, input.Query)
		if err != nil {
			return nil, SearchOutput{}, fmt.Errorf("failed to embed query: %w", err)
		}

		hits, err := st.Search(ctx, embedding, maxResults)
		if err != nil {
			if errors.Is(err, store.ErrEmptyIndex) {
				return nil, SearchOutput{
					Results: []SearchResult{},
					Message: "The index is empty. Ingest documents before searching.",
				}, nil
			}
			return nil, SearchOutput{}, fmt.Errorf("search failed: %w", err)
		}

		results := make([]SearchResult, len(hits))
		for i, hit := range hits {
			results[i] = SearchResult{
				Source: hit.Source,
				Offset: hit.Offset,
				Text:   hit.Text,
				Score:  hit.Score,
			}
		}

		if len(results) == 0 {
			return nil, SearchOutput{
				Results: []SearchResult{},
				Message: "No matching chunks found. Try broader search terms.",
			}, nil
		}

		return nil, SearchOutput{Results: results}, nil
	}
}

// makeStatusHandler creates the index_status tool handler.
func makeStatusHandler(st store.Store) func(
	context.Context, *mcp.CallToolRequest, StatusInput,
) (*mcp.CallToolResult, StatusOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input StatusInput) (
		*mcp.CallToolResult, StatusOutput, error,
	) {
		count, err := st.Count(ctx)
		if err != nil {
			return nil, StatusOutput{}, fmt.Errorf("failed to count chunks: %w", err)
		}

		return nil, StatusOutput{Chunks: count, Ready: count > 0}, nil
	}
}
