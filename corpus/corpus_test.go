package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validSnapshot = `[
  {
    "id": "bllđ-2019-đ46",
    "text": "Khi hợp đồng lao động chấm dứt...",
    "metadata": {
      "doc_type": "luật",
      "doc_number": "45/2019/QH14",
      "doc_name": "Bộ luật Lao động 2019",
      "short_name": "BLLĐ 2019",
      "chapter": "III",
      "article_id": "46",
      "article_title": "Trợ cấp thôi việc",
      "effective_date": "2021-01-01",
      "status": "hiệu lực",
      "references": ["Điều 47 BLLĐ 2019"]
    }
  },
  {
    "id": "bllđ-2019-đ47",
    "text": "Người sử dụng lao động trả trợ cấp mất việc làm...",
    "metadata": {
      "doc_number": "45/2019/QH14",
      "article_id": "47"
    }
  }
]`

func TestParse(t *testing.T) {
	chunks, err := Parse([]byte(validSnapshot))
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	assert.Equal(t, "bllđ-2019-đ46", chunks[0].ID)
	assert.Equal(t, "46", chunks[0].Metadata.ArticleID)
	assert.Equal(t, []string{"Điều 47 BLLĐ 2019"}, chunks[0].Metadata.References)
	assert.Empty(t, chunks[1].Metadata.References)
}

func TestParse_Rejections(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{`},
		{"empty snapshot", `[]`},
		{"missing id", `[{"text":"nội dung"}]`},
		{"missing text", `[{"id":"c1"}]`},
		{"duplicate id", `[{"id":"c1","text":"a"},{"id":"c1","text":"b"}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.json")
	require.NoError(t, os.WriteFile(path, []byte(validSnapshot), 0o644))

	chunks, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, chunks, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
