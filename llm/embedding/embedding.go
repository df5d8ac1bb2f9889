// Package embedding provides the embedding-vendor contract (§6 "Embedding
// vendor"): a list of texts in, a list of fixed-dimension float vectors
// out. Modeled on the teacher's llm/embedding base/openai split.
package embedding

import (
	"context"
)

// Dimensions is the fixed embedding width the relational schema's
// castellers_info_chunks vector column is declared with (§6).
const Dimensions = 512

// Request asks for embeddings of one or more input texts.
type Request struct {
	Input     []string
	InputType InputType
}

// InputType distinguishes a retrieval query from an indexed document; some
// vendors apply an asymmetric encoding for each.
type InputType string

const (
	InputTypeQuery    InputType = "query"
	InputTypeDocument InputType = "document"
)

// Response carries the embeddings in request order.
type Response struct {
	Provider   string
	Model      string
	Embeddings [][]float64
	Usage      Usage
}

// Usage reports token accounting for the embedding call.
type Usage struct {
	PromptTokens int
	TotalTokens  int
}

// Provider is the unified embedding provider interface.
type Provider interface {
	Embed(ctx context.Context, req *Request) (*Response, error)
	EmbedQuery(ctx context.Context, query string) ([]float64, error)
	EmbedDocuments(ctx context.Context, documents []string) ([][]float64, error)
	Name() string
	Dimensions() int
}
