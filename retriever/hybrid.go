package retriever

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vietlabor/lawrag/core"
	"github.com/vietlabor/lawrag/logging"
)

// Config tunes the hybrid retriever. Zero values fall back to the production
// defaults below.
type Config struct {
	// VectorTopK is the per-query depth of the dense path.
	VectorTopK int
	// BM25TopK is the per-query depth of the sparse path.
	BM25TopK int
	// HybridTopK truncates the fused list.
	HybridTopK int
	// RRFK is the rank-smoothing constant of Reciprocal Rank Fusion.
	RRFK int
	// PathTimeout bounds each retrieval path individually.
	PathTimeout time.Duration
}

// DefaultConfig mirrors the production retrieval depths.
var DefaultConfig = Config{
	VectorTopK:  15,
	BM25TopK:    15,
	HybridTopK:  25,
	RRFK:        30,
	PathTimeout: 10 * time.Second,
}

// Hybrid runs dense and sparse search concurrently over the same corpus and
// fuses their rankings with RRF. Either path failing fails the whole
// retrieval: partial fusion from a timed-out path would bias results
// unpredictably, so callers retry instead of silently degrading.
type Hybrid struct {
	dense  DenseSearcher
	sparse SparseSearcher
	cfg    Config
	logger logging.Logger
}

// Options configures a Hybrid retriever.
type Options struct {
	Config Config
	Logger logging.Logger
}

// NewHybrid constructs a hybrid retriever over the two search paths.
func NewHybrid(dense DenseSearcher, sparse SparseSearcher, optFns ...func(o *Options)) *Hybrid {
	opts := Options{Config: DefaultConfig, Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	cfg := opts.Config
	if cfg.VectorTopK <= 0 {
		cfg.VectorTopK = DefaultConfig.VectorTopK
	}
	if cfg.BM25TopK <= 0 {
		cfg.BM25TopK = DefaultConfig.BM25TopK
	}
	if cfg.HybridTopK <= 0 {
		cfg.HybridTopK = DefaultConfig.HybridTopK
	}
	if cfg.RRFK <= 0 {
		cfg.RRFK = DefaultConfig.RRFK
	}
	if cfg.PathTimeout <= 0 {
		cfg.PathTimeout = DefaultConfig.PathTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Hybrid{dense: dense, sparse: sparse, cfg: cfg, logger: opts.Logger}
}

// Retrieve issues both search calls concurrently, waits for both, and returns
// the RRF-fused list truncated to HybridTopK. An empty result is valid ("no
// legal basis found"); an error from either path aborts the whole call.
func (h *Hybrid) Retrieve(ctx context.Context, query string) ([]core.ScoredChunk, error) {
	var denseHits, sparseHits []core.ScoredChunk

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		pctx, cancel := context.WithTimeout(gctx, h.cfg.PathTimeout)
		defer cancel()
		hits, err := h.dense.Search(pctx, query, h.cfg.VectorTopK)
		if err != nil {
			return fmt.Errorf("dense search: %w", err)
		}
		denseHits = hits
		return nil
	})
	g.Go(func() error {
		pctx, cancel := context.WithTimeout(gctx, h.cfg.PathTimeout)
		defer cancel()
		hits, err := h.sparse.Search(pctx, query, h.cfg.BM25TopK)
		if err != nil {
			return fmt.Errorf("sparse search: %w", err)
		}
		sparseHits = hits
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	fused := FuseRRF(h.cfg.RRFK, denseHits, sparseHits)
	if len(fused) > h.cfg.HybridTopK {
		fused = fused[:h.cfg.HybridTopK]
	}

	h.logger.Debug("hybrid retrieval",
		"dense_hits", len(denseHits),
		"sparse_hits", len(sparseHits),
		"fused", len(fused),
	)
	return fused, nil
}

// FuseRRF merges ranked lists with Reciprocal Rank Fusion: a chunk at
// 1-indexed rank r in a list contributes 1/(k+r) to its aggregate score,
// summed across all lists it appears in. Equal aggregate scores are ordered
// by chunk id ascending so the output is deterministic for a fixed input.
func FuseRRF(k int, lists ...[]core.ScoredChunk) []core.ScoredChunk {
	scores := make(map[string]float64)
	chunks := make(map[string]core.Chunk)

	for _, list := range lists {
		for i, hit := range list {
			rank := i + 1
			scores[hit.Chunk.ID] += 1.0 / float64(k+rank)
			if _, seen := chunks[hit.Chunk.ID]; !seen {
				chunks[hit.Chunk.ID] = hit.Chunk
			}
		}
	}

	fused := make([]core.ScoredChunk, 0, len(scores))
	for id, score := range scores {
		fused = append(fused, core.ScoredChunk{Chunk: chunks[id], Score: score})
	}
	sort.Slice(fused, func(i, j int) bool {
		if fused[i].Score != fused[j].Score {
			return fused[i].Score > fused[j].Score
		}
		return fused[i].Chunk.ID < fused[j].Chunk.ID
	})
	return fused
}
