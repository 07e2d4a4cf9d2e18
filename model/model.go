package model

import (
	"context"
	"fmt"
	"strings"
)

// Request captures one completion call. Prompt is the fully rendered prompt
// text; Temperature and MaxTokens override the adapter's defaults when
// non-zero. With Stream set the adapter emits partial text deltas before the
// final response; otherwise it emits exactly one final Response.
type Request struct {
	Prompt      string  `json:"prompt"`
	Temperature float64 `json:"temperature,omitempty"`
	MaxTokens   int64   `json:"max_tokens,omitempty"`
	Stream      bool    `json:"stream,omitempty"`
}

// Response is a (partial or final) chunk emitted by a model. For partial
// responses Text holds only the new delta; the final response carries the
// full accumulated text and a finish reason.
type Response struct {
	Text         string `json:"text"`
	Partial      bool   `json:"partial"`
	FinishReason string `json:"finish_reason,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "gemini", "mock"
}

// Model is the minimal interface required to drive generation. Generate
// returns immediately; results and errors arrive on the channels, both of
// which are closed when the call finishes. Cancelling ctx aborts the call.
type Model interface {
	Generate(ctx context.Context, req Request) (<-chan Response, <-chan error)

	// Info returns information about the model implementation.
	Info() Info
}

// Complete drains a non-streaming Generate call and returns the final text.
// It is the sync call shape used by the router and the condenser.
func Complete(ctx context.Context, m Model, prompt string) (string, error) {
	respCh, errCh := m.Generate(ctx, Request{Prompt: prompt})
	var sb strings.Builder
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case resp, ok := <-respCh:
			if !ok {
				select {
				case err, ok := <-errCh:
					if ok && err != nil {
						return "", err
					}
				default:
				}
				return sb.String(), nil
			}
			if !resp.Partial {
				sb.Reset()
			}
			sb.WriteString(resp.Text)
		case err, ok := <-errCh:
			if ok && err != nil {
				return "", err
			}
		}
	}
}

// MockModel is a lightweight in-memory Model useful for tests. Canned
// responses are matched by prompt substring so test prompts do not need to
// reproduce full templates.
type MockModel struct {
	info      Info
	responses map[string]string
	err       error
}

// NewMockModel constructs an empty MockModel.
func NewMockModel() *MockModel {
	return &MockModel{
		info:      Info{Name: "mock", Provider: "mock"},
		responses: make(map[string]string),
	}
}

// AddResponse registers a canned completion returned when the request prompt
// contains the given substring.
func (m *MockModel) AddResponse(promptSubstring, response string) {
	m.responses[promptSubstring] = response
}

// FailWith makes every Generate call emit err instead of a response.
func (m *MockModel) FailWith(err error) { m.err = err }

// Generate implements Model; emits rune-sized partial chunks when streaming.
func (m *MockModel) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	respCh := make(chan Response, 16)
	errCh := make(chan error, 1)

	go func() {
		defer close(respCh)
		defer close(errCh)
		if m.err != nil {
			errCh <- m.err
			return
		}
		full, matched := "", false
		for sub, resp := range m.responses {
			if strings.Contains(req.Prompt, sub) {
				full, matched = resp, true
				break
			}
		}
		if !matched {
			full = fmt.Sprintf("Mock response to: %s", req.Prompt)
		}
		if req.Stream {
			for _, r := range full {
				select {
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				case respCh <- Response{Text: string(r), Partial: true}:
				}
			}
		}
		select {
		case <-ctx.Done():
			errCh <- ctx.Err()
		case respCh <- Response{Text: full, FinishReason: "stop"}:
		}
	}()
	return respCh, errCh
}

// Info implements Model.
func (m *MockModel) Info() Info { return m.info }
