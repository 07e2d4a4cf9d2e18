package retriever

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietlabor/lawrag/core"
)

func sc(id string, score float64) core.ScoredChunk {
	return core.ScoredChunk{Chunk: core.Chunk{ID: id, Text: "text " + id}, Score: score}
}

func TestFuseRRF_BothListsOutrankSingle(t *testing.T) {
	dense := []core.ScoredChunk{sc("shared", 0.9), sc("dense-only", 0.8)}
	sparse := []core.ScoredChunk{sc("sparse-only", 12.0), sc("shared", 8.0)}

	fused := FuseRRF(30, dense, sparse)
	require.Len(t, fused, 3)
	// shared: 1/31 + 1/32 beats any single-list 1/31.
	assert.Equal(t, "shared", fused[0].Chunk.ID)
	assert.InDelta(t, 1.0/31+1.0/32, fused[0].Score, 1e-12)
}

func TestFuseRRF_IgnoresRawScores(t *testing.T) {
	// Only ranks matter: a huge BM25 score at rank 2 still loses to rank 1.
	sparse := []core.ScoredChunk{sc("first", 1.0), sc("second", 99999.0)}

	fused := FuseRRF(30, sparse)
	require.Len(t, fused, 2)
	assert.Equal(t, "first", fused[0].Chunk.ID)
}

func TestFuseRRF_TieBreaksByID(t *testing.T) {
	dense := []core.ScoredChunk{sc("b", 0.9)}
	sparse := []core.ScoredChunk{sc("a", 5.0)}

	fused := FuseRRF(30, dense, sparse)
	require.Len(t, fused, 2)
	assert.Equal(t, "a", fused[0].Chunk.ID)
	assert.Equal(t, "b", fused[1].Chunk.ID)
}

func TestFuseRRF_EmptyLists(t *testing.T) {
	assert.Empty(t, FuseRRF(30, nil, nil))
}

type fakeSearcher struct {
	hits []core.ScoredChunk
	err  error
}

func (f *fakeSearcher) Search(context.Context, string, int) ([]core.ScoredChunk, error) {
	return f.hits, f.err
}

func TestHybrid_RetrieveFusesAndTruncates(t *testing.T) {
	denseHits := make([]core.ScoredChunk, 0, 15)
	sparseHits := make([]core.ScoredChunk, 0, 15)
	for i := 0; i < 15; i++ {
		denseHits = append(denseHits, sc(string(rune('a'+i))+"-dense", float64(15-i)))
		sparseHits = append(sparseHits, sc(string(rune('a'+i))+"-sparse", float64(15-i)))
	}

	h := NewHybrid(&fakeSearcher{hits: denseHits}, &fakeSearcher{hits: sparseHits})
	fused, err := h.Retrieve(context.Background(), "trợ cấp thôi việc")
	require.NoError(t, err)
	// 30 distinct candidates truncated to the hybrid depth.
	assert.Len(t, fused, DefaultConfig.HybridTopK)
}

func TestHybrid_EitherPathFailureFailsCall(t *testing.T) {
	boom := errors.New("qdrant unavailable")

	h := NewHybrid(&fakeSearcher{err: boom}, &fakeSearcher{hits: []core.ScoredChunk{sc("a", 1)}})
	_, err := h.Retrieve(context.Background(), "q")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	h = NewHybrid(&fakeSearcher{hits: []core.ScoredChunk{sc("a", 1)}}, &fakeSearcher{err: boom})
	_, err = h.Retrieve(context.Background(), "q")
	assert.Error(t, err)
}

func TestHybrid_EmptyResultIsValid(t *testing.T) {
	h := NewHybrid(&fakeSearcher{}, &fakeSearcher{})
	fused, err := h.Retrieve(context.Background(), "chủ đề ngoài phạm vi")
	require.NoError(t, err)
	assert.Empty(t, fused)
}

func TestNewHybrid_ZeroConfigFallsBackToDefaults(t *testing.T) {
	h := NewHybrid(&fakeSearcher{}, &fakeSearcher{}, func(o *Options) {
		o.Config = Config{}
	})
	assert.Equal(t, DefaultConfig, h.cfg)
}
