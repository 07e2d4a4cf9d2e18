// Package rerank holds the second-pass relevance stage: deduplication of
// fused retrieval hits by article identity followed by cross-encoder
// rescoring and top-N selection. Dedup always runs before rescoring, so the
// scorer only ever sees distinct articles.
package rerank

import (
	"context"
	"fmt"
	"sort"

	"github.com/vietlabor/lawrag/core"
)

// Reranker scores a small candidate set against the query with a model more
// expensive than first-pass retrieval. The returned slice carries the same
// chunks with updated scores, in any order.
type Reranker interface {
	Score(ctx context.Context, query string, chunks []core.ScoredChunk) ([]core.ScoredChunk, error)
}

// Refiner collapses duplicate articles and applies a Reranker.
type Refiner struct {
	reranker Reranker
	topN     int
}

// DefaultTopN mirrors the production selection width.
const DefaultTopN = 7

// NewRefiner builds a refiner selecting at most topN chunks. A non-positive
// topN falls back to DefaultTopN.
func NewRefiner(reranker Reranker, topN int) *Refiner {
	if topN <= 0 {
		topN = DefaultTopN
	}
	return &Refiner{reranker: reranker, topN: topN}
}

// Refine deduplicates fused chunks by ArticleKey (keeping the max-score entry
// per group, first-seen on ties), rescores the survivors against the query
// and returns the topN by descending rerank score. An empty input or an empty
// dedup result short-circuits without calling the reranker.
func (r *Refiner) Refine(ctx context.Context, query string, fused []core.ScoredChunk) ([]core.ScoredChunk, error) {
	deduped := Dedup(fused)
	if len(deduped) == 0 {
		return nil, nil
	}

	scored, err := r.reranker.Score(ctx, query, deduped)
	if err != nil {
		return nil, fmt.Errorf("rerank: %w", err)
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > r.topN {
		scored = scored[:r.topN]
	}
	return scored, nil
}

// Dedup groups chunks by ArticleKey and keeps the highest-scored entry per
// group. Ties keep the first-seen entry. The relative order of survivors
// follows their first appearance in the input.
func Dedup(chunks []core.ScoredChunk) []core.ScoredChunk {
	best := make(map[core.ArticleKey]int, len(chunks))
	out := make([]core.ScoredChunk, 0, len(chunks))
	for _, sc := range chunks {
		key := sc.Chunk.Key()
		if i, seen := best[key]; seen {
			if sc.Score > out[i].Score {
				out[i] = sc
			}
			continue
		}
		best[key] = len(out)
		out = append(out, sc)
	}
	return out
}
