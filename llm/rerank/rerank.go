// Package rerank implements the optional, disabled-by-default reranking
// stage of RAG retrieval (§4.6): given a query and the candidate chunks
// returned by the initial vector search, ask a cross-encoder to reorder
// them by relevance. Modeled on the teacher's llm/rerank/cohere.go.
package rerank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/janreigtorra/castellerq/llm/providers"
)

// Document is one candidate chunk to be scored against the query.
type Document struct {
	ID   string
	Text string
}

// Request asks for the candidate Documents to be reordered by relevance
// to Query; TopN truncates the result (0 means return all, reordered).
type Request struct {
	Query     string
	Documents []Document
	TopN      int
}

// Result pairs a candidate's original index with its relevance score.
type Result struct {
	Index          int
	RelevanceScore float64
}

// Response carries the reranked results, most relevant first.
type Response struct {
	Provider string
	Model    string
	Results  []Result
}

// Provider is the unified reranking interface.
type Provider interface {
	Rerank(ctx context.Context, req *Request) (*Response, error)
	Name() string
}

// CohereConfig configures the Cohere rerank vendor.
type CohereConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// CohereProvider reranks documents using Cohere's rerank API.
type CohereProvider struct {
	cfg    CohereConfig
	client *http.Client
}

// NewCohereProvider creates a Cohere rerank provider.
func NewCohereProvider(cfg CohereConfig) *CohereProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.cohere.ai"
	}
	if cfg.Model == "" {
		cfg.Model = "rerank-v3.5"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &CohereProvider{cfg: cfg, client: &http.Client{Timeout: timeout}}
}

func (p *CohereProvider) Name() string { return "cohere-rerank" }

type cohereRerankRequest struct {
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
	Model     string   `json:"model"`
	TopN      int      `json:"top_n,omitempty"`
}

type cohereRerankResponse struct {
	Results []struct {
		Index          int     `json:"index"`
		RelevanceScore float64 `json:"relevance_score"`
	} `json:"results"`
}

// Rerank implements Provider.
func (p *CohereProvider) Rerank(ctx context.Context, req *Request) (*Response, error) {
	model := p.cfg.Model

	docs := make([]string, len(req.Documents))
	for i, d := range req.Documents {
		docs[i] = d.Text
	}

	body := cohereRerankRequest{Query: req.Query, Documents: docs, Model: model, TopN: req.TopN}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(p.cfg.BaseURL, "/")+"/v2/rerank", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("rerank request: %w", err)
	}
	defer providers.SafeCloseBody(resp.Body)

	if resp.StatusCode >= 400 {
		msg := providers.ReadErrorMessage(resp.Body)
		return nil, fmt.Errorf("rerank error: status=%d body=%s", resp.StatusCode, msg)
	}

	var cResp cohereRerankResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return nil, fmt.Errorf("decode rerank response: %w", err)
	}

	results := make([]Result, len(cResp.Results))
	for i, r := range cResp.Results {
		results[i] = Result{Index: r.Index, RelevanceScore: r.RelevanceScore}
	}

	return &Response{Provider: p.Name(), Model: model, Results: results}, nil
}

var _ Provider = (*CohereProvider)(nil)
