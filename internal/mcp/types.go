// Package mcp exposes the query pipeline over the Model Context Protocol.
package mcp

// AskInput defines the input parameters for the ask tool.
type AskInput struct {
	// Question is the user question to answer from the ingested documents.
	Question string `json:"question" jsonschema:"required,description=The question to answer from the ingested documents"`
}

// AskOutput contains the answer and its provenance.
type AskOutput struct {
	// Answer is the model's answer text.
	Answer string `json:"answer"`
	// Sources lists the retrieved chunks the answer was grounded on, in
	// similarity order.
	Sources []Source `json:"sources"`
}

// Source identifies one retrieved chunk.
type Source struct {
	// Source is the document the chunk came from.
	Source string `json:"source"`
	// Offset is the chunk's rune offset within the document.
	Offset int `json:"offset"`
	// Text is the chunk content.
	Text string `json:"text"`
}

// SearchInput defines the input parameters for the search tool.
type SearchInput struct {
	// Query is the semantic search query.
	Query string `json:"query" jsonschema:"required,description=The semantic search query"`
	// MaxResults is the maximum number of chunks to return.
	MaxResults int `json:"max_results,omitempty" jsonschema:"minimum=1,maximum=20,default=5,description=Maximum number of chunks to return"`
}

// SearchOutput contains raw retrieval results without a model call.
type SearchOutput struct {
	// Results is the list of matching chunks with similarity scores.
	Results []SearchResult `json:"results"`
	// Message provides informational context when there are no results.
	Message string `json:"message,omitempty"`
}

// SearchResult is a single chunk match.
type SearchResult struct {
	Source string  `json:"source"`
	Offset int     `json:"offset"`
	Text   string  `json:"text"`
	Score  float64 `json:"score"`
}

// StatusInput defines the input for the index_status tool. No parameters.
type StatusInput struct{}

// StatusOutput reports the state of the vector index.
type StatusOutput struct {
	// Chunks is the number of entries in the index.
	Chunks int `json:"chunks"`
	// Ready is false until the index holds at least one chunk.
	Ready bool `json:"ready"`
}
