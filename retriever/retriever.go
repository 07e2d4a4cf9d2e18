package retriever

import (
	"context"

	"github.com/vietlabor/lawrag/core"
)

// DenseSearcher is a similarity search service over precomputed embeddings of
// the corpus. Results arrive ordered by descending similarity, at most k.
type DenseSearcher interface {
	Search(ctx context.Context, query string, k int) ([]core.ScoredChunk, error)
}

// SparseSearcher is a lexical search service over the raw corpus text.
// Results arrive ordered by descending lexical weight, at most k.
type SparseSearcher interface {
	Search(ctx context.Context, query string, k int) ([]core.ScoredChunk, error)
}

// Embedder turns a query string into the vector used for dense search.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
