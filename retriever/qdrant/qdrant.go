// Package qdrant implements the dense search port over a Qdrant collection
// holding the precomputed corpus embeddings. The query string is embedded via
// the injected Embedder, then matched against the collection with the gRPC
// Query API.
package qdrant

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"

	"github.com/vietlabor/lawrag/core"
	"github.com/vietlabor/lawrag/retriever"
)

// Options configures the Qdrant searcher.
type Options struct {
	Host       string
	Port       int
	APIKey     string
	UseTLS     bool
	Collection string
}

// Searcher is a retriever.DenseSearcher backed by a Qdrant collection.
type Searcher struct {
	client     *qdrant.Client
	collection string
	embedder   retriever.Embedder
}

var _ retriever.DenseSearcher = (*Searcher)(nil)

// NewSearcher connects to Qdrant and wraps the given collection.
func NewSearcher(embedder retriever.Embedder, optFns ...func(o *Options)) (*Searcher, error) {
	opts := Options{Host: "localhost", Port: 6334, Collection: "legal_decrees"}
	for _, fn := range optFns {
		fn(&opts)
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   opts.Host,
		Port:   opts.Port,
		APIKey: opts.APIKey,
		UseTLS: opts.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("connect qdrant: %w", err)
	}
	return &Searcher{client: client, collection: opts.Collection, embedder: embedder}, nil
}

// NewSearcherFromClient wraps an existing client, mainly for tests.
func NewSearcherFromClient(client *qdrant.Client, collection string, embedder retriever.Embedder) *Searcher {
	return &Searcher{client: client, collection: collection, embedder: embedder}
}

// Search implements retriever.DenseSearcher. Scores are cosine similarities
// as returned by Qdrant.
func (s *Searcher) Search(ctx context.Context, query string, k int) ([]core.ScoredChunk, error) {
	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	limit := uint64(k)
	points, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQueryDense(vector),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant query: %w", err)
	}

	results := make([]core.ScoredChunk, 0, len(points))
	for _, p := range points {
		results = append(results, core.ScoredChunk{
			Chunk: pointToChunk(p),
			Score: float64(p.Score),
		})
	}
	return results, nil
}

// pointToChunk maps a scored point's payload onto the chunk shape written by
// the ingestion pipeline.
func pointToChunk(p *qdrant.ScoredPoint) core.Chunk {
	payload := p.Payload
	c := core.Chunk{
		ID:   pointID(p.Id),
		Text: payloadString(payload, "text"),
		Metadata: core.ChunkMetadata{
			DocType:       payloadString(payload, "doc_type"),
			DocNumber:     payloadString(payload, "doc_number"),
			DocName:       payloadString(payload, "doc_name"),
			ShortName:     payloadString(payload, "short_name"),
			Chapter:       payloadString(payload, "chapter"),
			ArticleID:     payloadString(payload, "article_id"),
			ArticleTitle:  payloadString(payload, "article_title"),
			EffectiveDate: payloadString(payload, "effective_date"),
			Status:        payloadString(payload, "status"),
		},
	}
	if refs, ok := payload["references"]; ok {
		for _, v := range refs.GetListValue().GetValues() {
			if sv := v.GetStringValue(); sv != "" {
				c.Metadata.References = append(c.Metadata.References, sv)
			}
		}
	}
	return c
}

func pointID(id *qdrant.PointId) string {
	if id == nil {
		return ""
	}
	if u := id.GetUuid(); u != "" {
		return u
	}
	return fmt.Sprintf("%d", id.GetNum())
}

func payloadString(payload map[string]*qdrant.Value, key string) string {
	if v, ok := payload[key]; ok {
		return v.GetStringValue()
	}
	return ""
}
