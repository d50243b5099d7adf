// Package main provides the docchat CLI: document ingestion, the terminal
// chat UI, the MCP server and a provider connectivity check.
package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/bull/docchat/internal/chat"
	"github.com/bull/docchat/internal/config"
	"github.com/bull/docchat/internal/embedding"
	"github.com/bull/docchat/internal/ingest"
	mcpserver "github.com/bull/docchat/internal/mcp"
	"github.com/bull/docchat/internal/prompt"
	"github.com/bull/docchat/internal/query"
	"github.com/bull/docchat/internal/splitter"
	"github.com/bull/docchat/internal/store"
	"github.com/bull/docchat/internal/tui"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "docchat",
	Short: "Retrieval-augmented chat over your documents",
	Long: `docchat ingests text documents into a local vector index and answers
questions over a chat interface by retrieving relevant passages and
forwarding them, with conversation history, to a hosted language model.

Environment variables:
  OPENAI_API_KEY OpenAI API key (required)
  QDRANT_HOST    Qdrant hostname, qdrant backend only (default: localhost)
  QDRANT_PORT    Qdrant gRPC port, qdrant backend only (default: 6334)`,
}

var ingestCmd = &cobra.Command{
	Use:   "ingest [file...]",
	Short: "Split, embed and index documents",
	Long: `Reads the given UTF-8 text files (or the configured data path when no
arguments are given), splits them into overlapping chunks, embeds each
chunk and writes the results to the vector index. Re-running on unchanged
files overwrites existing entries instead of duplicating them.`,
	RunE: runIngest,
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the assistant in the terminal",
	RunE:  runChat,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose the assistant as an MCP server",
	Long: `Runs the MCP server over stdio, or over HTTP when --http is set
(MCP at /mcp, health at /health).`,
	RunE: runServe,
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify provider connectivity with one cheap model call",
	RunE:  runCheck,
}

var httpAddr string

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "path to YAML config file")
	serveCmd.Flags().StringVar(&httpAddr, "http", "", "serve MCP over HTTP on this address instead of stdio (e.g. :8080)")
	rootCmd.AddCommand(ingestCmd, chatCmd, serveCmd, checkCmd)
}

func main() {
	// Load .env if present (local development), ignore if missing
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	paths := args
	if len(paths) == 0 {
		paths = []string{cfg.DataPath}
	}

	split, err := splitter.New(cfg.Chunking.Size, cfg.Chunking.Overlap)
	if err != nil {
		return err
	}

	client, err := embedding.NewClient()
	if err != nil {
		return err
	}
	embedder := embedding.NewEmbedder(client, cfg.LLM.EmbeddingModel, 0, 0)

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	fmt.Printf("Ingesting %d file(s) into %s index...\n", len(paths), cfg.Index.Backend)
	pipeline := ingest.NewPipeline(split, embedder, st, nil)
	result, err := pipeline.Run(ctx, paths)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("Ingestion complete!")
	fmt.Printf("  Sources:  %d\n", len(result.Sources))
	fmt.Printf("  Chunks:   %d\n", result.Chunks)
	fmt.Printf("  Duration: %s\n", result.Duration.Round(time.Millisecond))
	return nil
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	orchestrator, st, err := buildPipeline(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	session := query.NewSession()
	model := tui.New(orchestrator, session, cfg.Assistant)
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("chat UI: %w", err)
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	orchestrator, st, err := buildPipeline(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	client, err := embedding.NewClient()
	if err != nil {
		return err
	}
	embedder := embedding.NewEmbedder(client, cfg.LLM.EmbeddingModel, 0, 0)

	server := mcpserver.NewServer(&mcpserver.Config{
		Store:        st,
		Embedder:     embedder,
		Orchestrator: orchestrator,
	})

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	if httpAddr != "" {
		mux := http.NewServeMux()
		mux.HandleFunc("/health", mcpserver.NewHealthHandler(st))
		mux.Handle("/mcp", mcpserver.NewHTTPHandler(server, nil))

		ln, err := net.Listen("tcp", httpAddr)
		if err != nil {
			return fmt.Errorf("listen on %s: %w", httpAddr, err)
		}
		log.Printf("Starting HTTP server on %s (MCP at /mcp, health at /health)", httpAddr)
		return serveHTTP(ctx, &http.Server{Handler: mux}, ln)
	}

	log.Println("Starting docchat MCP server (stdio mode)...")
	return server.Run(ctx)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	client, err := embedding.NewClient()
	if err != nil {
		return err
	}
	model := chat.NewClient(client, cfg.LLM.ChatModel, cfg.LLM.Temperature, 30*time.Second)

	fmt.Println("Testing provider connectivity...")
	answer, err := model.Complete(cmd.Context(), []chat.Message{
		{Role: "system", Content: "You are a helpful assistant."},
		{Role: "user", Content: "Say 'Hello! API is working!' in one sentence."},
	})
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(answer)
	return nil
}

// serveHTTP serves until the listener fails or ctx is canceled, then
// drains in-flight requests with a bounded shutdown.
func serveHTTP(ctx context.Context, srv *http.Server, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Println("Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// buildPipeline wires the query-side components from config.
func buildPipeline(cfg *config.Config) (*query.Orchestrator, store.Store, error) {
	client, err := embedding.NewClient()
	if err != nil {
		return nil, nil, err
	}
	embedder := embedding.NewEmbedder(client, cfg.LLM.EmbeddingModel, 0, 0)
	model := chat.NewClient(client, cfg.LLM.ChatModel, cfg.LLM.Temperature,
		time.Duration(cfg.LLM.TimeoutSecs)*time.Second)

	st, err := openStore(cfg)
	if err != nil {
		return nil, nil, err
	}

	composer := prompt.NewComposer(cfg.Assistant)
	orchestrator := query.NewOrchestrator(embedder, st, model, composer, cfg.Retrieval.TopK, nil)
	return orchestrator, st, nil
}

// openStore opens the configured vector store backend.
func openStore(cfg *config.Config) (store.Store, error) {
	switch cfg.Index.Backend {
	case "qdrant":
		host := getEnv("QDRANT_HOST", cfg.Index.Qdrant.Host)
		port := getEnvInt("QDRANT_PORT", cfg.Index.Qdrant.Port)
		return store.NewQdrantStore(host, port, cfg.Index.Collection)
	default:
		return store.NewChromemStore(cfg.Index.Path, cfg.Index.Collection)
	}
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		var i int
		if _, err := fmt.Sscanf(v, "%d", &i); err == nil {
			return i
		}
	}
	return defaultValue
}
