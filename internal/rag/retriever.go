// Package rag implements the vector retrieval stage of the pipeline
// (§4.7): embed the question, nearest-neighbor search the vector store,
// filter by similarity, optionally rerank, and assemble a numbered
// document context for the answerer.
package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/janreigtorra/castellerq/config"
	"github.com/janreigtorra/castellerq/internal/database"
	"github.com/janreigtorra/castellerq/llm/embedding"
	"github.com/janreigtorra/castellerq/llm/rerank"
	"github.com/janreigtorra/castellerq/types"
	"go.uber.org/zap"
)

// ErrNoRelevantInformation is surfaced when the filtered candidate set is
// empty — the retriever found chunks, but none cleared MinSimilarity.
var ErrNoRelevantInformation = fmt.Errorf("rag: no sufficiently relevant information")

// Document is one retrieved chunk, ready to render into the answerer's
// context block.
type Document struct {
	ID         string
	Text       string
	Similarity float64
}

// Retriever runs the embed -> nearest-neighbor -> filter -> rerank pipeline.
type Retriever struct {
	pool     *database.PoolManager
	embedder embedding.Provider
	reranker rerank.Provider
	cfg      config.RAGConfig
	logger   *zap.Logger
}

func New(pool *database.PoolManager, embedder embedding.Provider, reranker rerank.Provider, cfg config.RAGConfig, logger *zap.Logger) *Retriever {
	return &Retriever{
		pool:     pool,
		embedder: embedder,
		reranker: reranker,
		cfg:      cfg,
		logger:   logger.With(zap.String("component", "rag")),
	}
}

// chunkRow mirrors one row of castellers_info_chunks with its cosine
// distance to the query vector (pgvector's <=> operator).
type chunkRow struct {
	ID       string
	Content  string
	Distance float64
}

// Retrieve embeds question, searches the vector store for InitialK
// candidates, filters by MinSimilarity, optionally reranks, and truncates
// to FinalK (§4.7).
func (r *Retriever) Retrieve(ctx context.Context, question string) ([]Document, error) {
	vector, err := r.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, types.NewError(types.ErrVectorStoreError, "no s'ha pogut vectoritzar la pregunta").
			WithCause(err)
	}

	candidates, err := r.search(ctx, vector)
	if err != nil {
		return nil, err
	}

	filtered := make([]Document, 0, len(candidates))
	for _, c := range candidates {
		similarity := 1 - c.Distance
		if similarity < r.cfg.MinSimilarity {
			continue
		}
		filtered = append(filtered, Document{ID: c.ID, Text: c.Content, Similarity: similarity})
	}

	if len(filtered) == 0 {
		return nil, ErrNoRelevantInformation
	}

	if r.cfg.RerankEnabled && r.reranker != nil {
		filtered, err = r.rerank(ctx, question, filtered)
		if err != nil {
			r.logger.Warn("rerank failed, falling back to store ordering", zap.Error(err))
		}
	}

	if len(filtered) > r.cfg.FinalK {
		filtered = filtered[:r.cfg.FinalK]
	}
	return filtered, nil
}

// search runs the pgvector nearest-neighbor query. The embedding column is
// declared vector(512) (§6); <=> is pgvector's cosine-distance operator,
// which on L2-normalized vectors is equivalent to 1 - cosine similarity.
func (r *Retriever) search(ctx context.Context, vector []float64) ([]chunkRow, error) {
	db, cancel := r.pool.WithTimeout(ctx)
	defer cancel()

	rows, err := db.Raw(
		`SELECT id, content, embedding <=> ? AS distance
		 FROM castellers_info_chunks
		 ORDER BY embedding <=> ?
		 LIMIT ?`,
		pgvectorLiteral(vector), pgvectorLiteral(vector), r.cfg.InitialK,
	).Rows()
	if err != nil {
		return nil, types.NewError(types.ErrVectorStoreError, "la cerca vectorial ha fallat").WithCause(err)
	}
	defer rows.Close()

	var out []chunkRow
	for rows.Next() {
		var c chunkRow
		if err := rows.Scan(&c.ID, &c.Content, &c.Distance); err != nil {
			return nil, types.NewError(types.ErrVectorStoreError, "no s'ha pogut llegir un resultat vectorial").
				WithCause(err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// rerank reorders filtered via the configured cross-encoder, preserving
// Document data but adopting the reranker's relevance ordering and score.
func (r *Retriever) rerank(ctx context.Context, question string, filtered []Document) ([]Document, error) {
	docs := make([]rerank.Document, len(filtered))
	for i, d := range filtered {
		docs[i] = rerank.Document{ID: d.ID, Text: d.Text}
	}

	resp, err := r.reranker.Rerank(ctx, &rerank.Request{Query: question, Documents: docs, TopN: r.cfg.FinalK})
	if err != nil {
		return filtered, err
	}

	reordered := make([]Document, 0, len(resp.Results))
	for _, res := range resp.Results {
		if res.Index < 0 || res.Index >= len(filtered) {
			continue
		}
		doc := filtered[res.Index]
		doc.Similarity = res.RelevanceScore
		reordered = append(reordered, doc)
	}
	return reordered, nil
}

// pgvectorLiteral renders a float vector as pgvector's "[v1,v2,...]" input
// literal format.
func pgvectorLiteral(vector []float64) string {
	parts := make([]string, len(vector))
	for i, v := range vector {
		parts[i] = fmt.Sprintf("%g", v)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// AssembleContext renders docs as numbered blocks per §4.7: "[Document i]\n<text>".
func AssembleContext(docs []Document) string {
	var b strings.Builder
	for i, d := range docs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[Document %d]\n%s", i+1, d.Text)
	}
	return b.String()
}
