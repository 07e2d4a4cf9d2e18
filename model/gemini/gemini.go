// Package gemini provides a model.Model adapter for the Gemini API via the
// google.golang.org/genai client.
package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/vietlabor/lawrag/model"
)

// Options configures the Gemini model adapter.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

// Model wraps the genai client behind the generic model.Model interface.
type Model struct {
	client *genai.Client
	opts   Options
}

// NewModel creates a new Gemini model. The client talks to the Gemini API
// backend with an API key (not Vertex AI).
func NewModel(ctx context.Context, optFns ...func(o *Options)) (*Model, error) {
	opts := Options{
		Model:       "gemini-2.5-flash",
		Temperature: 0.05,
		MaxTokens:   4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Model{client: client, opts: opts}, nil
}

// Generate implements unified streaming / non-streaming generation.
func (m *Model) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	out := make(chan model.Response, 32)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		contents := genai.Text(req.Prompt)
		config := m.buildConfig(req)

		if req.Stream {
			var full string
			for resp, err := range m.client.Models.GenerateContentStream(ctx, m.opts.Model, contents, config) {
				if err != nil {
					errCh <- fmt.Errorf("gemini streaming error: %w", err)
					return
				}
				delta := resp.Text()
				if delta == "" {
					continue
				}
				full += delta
				select {
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				case out <- model.Response{Text: delta, Partial: true}:
				}
			}
			out <- model.Response{Text: full, FinishReason: "stop"}
			return
		}

		resp, err := m.client.Models.GenerateContent(ctx, m.opts.Model, contents, config)
		if err != nil {
			errCh <- fmt.Errorf("gemini api error: %w", err)
			return
		}
		out <- model.Response{Text: resp.Text(), FinishReason: "stop"}
	}()

	return out, errCh
}

func (m *Model) buildConfig(req model.Request) *genai.GenerateContentConfig {
	temperature := m.opts.Temperature
	if req.Temperature != 0 {
		temperature = req.Temperature
	}
	maxTokens := m.opts.MaxTokens
	if req.MaxTokens != 0 {
		maxTokens = req.MaxTokens
	}
	return &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(temperature)),
		MaxOutputTokens: int32(maxTokens),
	}
}

// Info returns metadata describing this Gemini model implementation.
func (m *Model) Info() model.Info {
	return model.Info{Name: m.opts.Model, Provider: "gemini"}
}
