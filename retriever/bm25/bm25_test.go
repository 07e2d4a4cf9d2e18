package bm25

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietlabor/lawrag/core"
)

func testCorpus() []core.Chunk {
	return []core.Chunk{
		{ID: "c1", Text: "Trợ cấp thôi việc được tính theo thời gian làm việc và tiền lương."},
		{ID: "c2", Text: "Trợ cấp mất việc làm áp dụng khi doanh nghiệp sáp nhập hoặc tái cơ cấu."},
		{ID: "c3", Text: "Thời giờ làm việc bình thường không quá 8 giờ trong một ngày."},
	}
}

func TestIndex_SearchRanksTermMatches(t *testing.T) {
	idx := NewIndex(testCorpus())

	hits, err := idx.Search(context.Background(), "trợ cấp thôi việc", 10)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "c1", hits[0].Chunk.ID)
	assert.Greater(t, hits[0].Score, 0.0)
}

func TestIndex_SearchTruncatesToK(t *testing.T) {
	idx := NewIndex(testCorpus())

	hits, err := idx.Search(context.Background(), "việc", 1)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestIndex_SearchNoMatches(t *testing.T) {
	idx := NewIndex(testCorpus())

	hits, err := idx.Search(context.Background(), "blockchain", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestIndex_SearchCancelledContext(t *testing.T) {
	idx := NewIndex(testCorpus())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := idx.Search(ctx, "việc", 10)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIndex_Len(t *testing.T) {
	assert.Equal(t, 3, NewIndex(testCorpus()).Len())
	assert.Equal(t, 0, NewIndex(nil).Len())
}

func TestTokenize(t *testing.T) {
	tokens := tokenize("Điều 46. Trợ cấp thôi việc (BLLĐ 2019)!")
	assert.Equal(t, []string{"điều", "46", "trợ", "cấp", "thôi", "việc", "bllđ", "2019"}, tokens)
}
