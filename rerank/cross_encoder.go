package rerank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vietlabor/lawrag/core"
)

// CrossEncoderOptions configures the HTTP cross-encoder client. The endpoint
// is expected to speak the text-embeddings-inference rerank protocol:
// POST {"query": ..., "texts": [...]} -> [{"index": i, "score": s}, ...].
type CrossEncoderOptions struct {
	Model    string
	Endpoint string
	APIKey   string
	Timeout  time.Duration
}

// CrossEncoder scores query/chunk pairs against a hosted cross-encoder model.
type CrossEncoder struct {
	opts       CrossEncoderOptions
	httpClient *http.Client
}

var _ Reranker = (*CrossEncoder)(nil)

// NewCrossEncoder creates a client for a hosted reranker endpoint.
func NewCrossEncoder(optFns ...func(o *CrossEncoderOptions)) *CrossEncoder {
	opts := CrossEncoderOptions{
		Model:   "BAAI/bge-reranker-v2-m3",
		Timeout: 30 * time.Second,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &CrossEncoder{
		opts:       opts,
		httpClient: &http.Client{Timeout: opts.Timeout},
	}
}

type rerankRequest struct {
	Model string   `json:"model,omitempty"`
	Query string   `json:"query"`
	Texts []string `json:"texts"`
}

type rerankResult struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

// Score implements Reranker with one batch call over all chunks.
func (c *CrossEncoder) Score(ctx context.Context, query string, chunks []core.ScoredChunk) ([]core.ScoredChunk, error) {
	if len(chunks) == 0 {
		return nil, nil
	}
	if c.opts.Endpoint == "" {
		return nil, fmt.Errorf("reranker endpoint not configured")
	}

	texts := make([]string, len(chunks))
	for i, sc := range chunks {
		texts[i] = sc.Chunk.Text
	}
	body, err := json.Marshal(rerankRequest{Model: c.opts.Model, Query: query, Texts: texts})
	if err != nil {
		return nil, fmt.Errorf("marshal rerank request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build rerank request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.opts.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.opts.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rerank request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("rerank endpoint returned %d: %s", resp.StatusCode, payload)
	}

	var results []rerankResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("decode rerank response: %w", err)
	}

	out := make([]core.ScoredChunk, 0, len(results))
	for _, r := range results {
		if r.Index < 0 || r.Index >= len(chunks) {
			return nil, fmt.Errorf("rerank response index %d out of range", r.Index)
		}
		out = append(out, core.ScoredChunk{Chunk: chunks[r.Index].Chunk, Score: r.Score})
	}
	return out, nil
}
