package core

// ChunkMetadata carries the structured citation fields attached to a legal
// article chunk by the ingestion pipeline. All fields are plain strings as
// produced by the corpus snapshot; References holds cross-referenced
// provisions ("Điều 46 BLLĐ 2019" etc.).
type ChunkMetadata struct {
	DocType       string   `json:"doc_type"`
	DocNumber     string   `json:"doc_number"`
	DocName       string   `json:"doc_name"`
	ShortName     string   `json:"short_name"`
	Chapter       string   `json:"chapter"`
	ArticleID     string   `json:"article_id"`
	ArticleTitle  string   `json:"article_title"`
	EffectiveDate string   `json:"effective_date"`
	Status        string   `json:"status"`
	References    []string `json:"references,omitempty"`
}

// Chunk is an immutable unit of retrievable content: one provision of a legal
// document plus its citation metadata. Chunks are created by the external
// ingestion collaborator and are read-only inside the engine. ID is unique
// and stable across retrieval paths.
type Chunk struct {
	ID       string        `json:"id"`
	Text     string        `json:"text"`
	Metadata ChunkMetadata `json:"metadata"`
}

// ArticleKey is the derived identity used for source deduplication. The same
// legal article may surface as different chunk ids from the dense and sparse
// paths, so identity for dedup purposes is the citation triple rather than
// the chunk id.
type ArticleKey struct {
	DocNumber string
	ArticleID string
	Chapter   string
}

// Key returns the deduplication identity of the chunk.
func (c Chunk) Key() ArticleKey {
	return ArticleKey{
		DocNumber: c.Metadata.DocNumber,
		ArticleID: c.Metadata.ArticleID,
		Chapter:   c.Metadata.Chapter,
	}
}

// ScoredChunk pairs a chunk with a relevance score. Score semantics depend on
// the producing stage (cosine similarity, BM25 weight, RRF aggregate or
// cross-encoder relevance) and must not be compared across stages.
type ScoredChunk struct {
	Chunk Chunk   `json:"chunk"`
	Score float64 `json:"score"`
}
