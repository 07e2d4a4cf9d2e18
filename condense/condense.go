// Package condense rewrites follow-up questions into standalone queries so
// retrieval sees the full context of the conversation. The rewrite is a
// single sync LLM call; the raw output is used as-is after trimming.
package condense

import (
	"context"
	"strings"

	"github.com/vietlabor/lawrag/core"
	"github.com/vietlabor/lawrag/logging"
	"github.com/vietlabor/lawrag/model"
	"github.com/vietlabor/lawrag/prompt"
)

// Options configures the Condenser.
type Options struct {
	Logger logging.Logger
}

// Condenser rewrites a question against prior history.
type Condenser struct {
	model model.Model
	opts  Options
}

// NewCondenser builds a condenser over the given model.
func NewCondenser(m model.Model, optFns ...func(o *Options)) *Condenser {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Condenser{model: m, opts: opts}
}

// Condense returns the standalone rewrite of question given the rendered
// history block. With empty history the question is already standalone and is
// returned unchanged without a model call. An empty rewrite also falls back
// to the original question.
func (c *Condenser) Condense(ctx context.Context, history, question string) (string, error) {
	if strings.TrimSpace(history) == "" {
		return question, nil
	}

	raw, err := model.Complete(ctx, c.model, prompt.Condense(history, question))
	if err != nil {
		return "", core.NewStageError(core.StageCondense, err)
	}

	rewritten := strings.TrimSpace(raw)
	if rewritten == "" {
		return question, nil
	}
	c.opts.Logger.Debug("condensed question", "original", question, "rewritten", rewritten)
	return rewritten, nil
}
