package mcp

import (
	"context"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/bull/docchat/internal/query"
	"github.com/bull/docchat/internal/store"
)

// Server wraps the MCP server with the query pipeline dependencies. It
// holds one conversation session for its lifetime; a mutex keeps queries
// within it strictly sequential.
type Server struct {
	server       *mcp.Server
	store        store.Store
	orchestrator *query.Orchestrator

	mu      sync.Mutex
	session *query.Session
}

// Config holds server dependencies.
type Config struct {
	Store        store.Store
	Embedder     query.Embedder
	Orchestrator *query.Orchestrator
}

// NewServer creates a configured MCP server with tools registered.
func NewServer(cfg *Config) *Server {
	impl := &mcp.Implementation{
		Name:    "docchat-server",
		Version: "v0.1.0",
	}

	s := &Server{
		server:       mcp.NewServer(impl, nil),
		store:        cfg.Store,
		orchestrator: cfg.Orchestrator,
		session:      query.NewSession(),
	}

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Ask a question about the ingested documents. Answers are grounded in retrieved passages and the running conversation.",
	}, makeAskHandler(s))

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Semantic search over the ingested document chunks. Returns raw passages with similarity scores, without calling the language model.",
	}, makeSearchHandler(cfg.Store, cfg.Embedder))

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "index_status",
		Description: "Report the number of indexed chunks and whether the index is ready for questions.",
	}, makeStatusHandler(cfg.Store))

	return s
}

// Run starts the server with stdio transport (blocks until the client
// disconnects).
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// MCPServer returns the underlying MCP server instance for transport
// handlers that need to wrap it.
func (s *Server) MCPServer() *mcp.Server {
	return s.server
}
