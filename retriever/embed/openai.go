// Package embed provides query-embedding adapters for the dense retrieval
// path. The corpus side is embedded offline by the ingestion pipeline; only
// query-time embedding happens here, and it must use the same model family
// the collection was built with.
package embed

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/vietlabor/lawrag/retriever"
)

// Options configures the OpenAI embedder. BaseURL allows pointing the client
// at an OpenAI-compatible embedding server hosting the Vietnamese embedding
// model the corpus was indexed with.
type Options struct {
	Model   string
	APIKey  string
	BaseURL string
}

// OpenAI embeds queries via the Embeddings API.
type OpenAI struct {
	client *openai.Client
	model  string
}

var _ retriever.Embedder = (*OpenAI)(nil)

// NewOpenAI creates an embedder backed by the official OpenAI client.
func NewOpenAI(optFns ...func(o *Options)) *OpenAI {
	opts := Options{Model: string(openai.EmbeddingModelTextEmbedding3Small)}
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(opts.BaseURL))
	}
	client := openai.NewClient(clientOpts...)
	return &OpenAI{client: &client, model: opts.Model}
}

// Embed implements retriever.Embedder.
func (e *OpenAI) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: []string{text}},
		Model: e.model,
	})
	if err != nil {
		return nil, fmt.Errorf("embeddings api: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("empty embedding response")
	}
	vec := make([]float32, len(resp.Data[0].Embedding))
	for i, v := range resp.Data[0].Embedding {
		vec[i] = float32(v)
	}
	return vec, nil
}
