package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// HealthResponse is the JSON body of the /health endpoint.
type HealthResponse struct {
	Status    string `json:"status"`
	Index     string `json:"index"`
	Chunks    int    `json:"chunks"`
	Timestamp string `json:"timestamp"`
}

// Counter is the health check dependency; the vector store implements it.
type Counter interface {
	Count(ctx context.Context) (int, error)
}

// NewHealthHandler creates the /health endpoint handler. It verifies the
// vector store responds and reports the index size.
func NewHealthHandler(st Counter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		count, err := st.Count(ctx)

		response := HealthResponse{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}

		w.Header().Set("Content-Type", "application/json")

		if err != nil {
			response.Status = "unhealthy"
			response.Index = "disconnected"
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(response)
			return
		}

		response.Status = "healthy"
		response.Index = "connected"
		response.Chunks = count
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(response)
	}
}
