// Package router classifies incoming questions into an intent before the
// pipeline decides whether to retrieve. Classification is a single sync LLM
// call whose structured plain-text reply is parsed line by line; an
// unparseable reply degrades to a safe LAW default so a flaky classifier
// never blocks a legal question.
package router

import (
	"context"
	"strconv"
	"strings"

	"github.com/vietlabor/lawrag/core"
	"github.com/vietlabor/lawrag/logging"
	"github.com/vietlabor/lawrag/model"
	"github.com/vietlabor/lawrag/prompt"
)

// Options configures the SemanticRouter.
type Options struct {
	Logger logging.Logger
}

// SemanticRouter decides LAW vs CHAT with an LLM call.
type SemanticRouter struct {
	model model.Model
	opts  Options
}

// NewSemanticRouter builds a router over the given classification model.
func NewSemanticRouter(m model.Model, optFns ...func(o *Options)) *SemanticRouter {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &SemanticRouter{model: m, opts: opts}
}

// Classify renders the routing prompt from the given history block and the
// raw user question, calls the model synchronously and parses its reply. It
// returns an error only when the model call itself fails; an unparseable
// reply yields the LAW fallback decision with a nil error.
func (r *SemanticRouter) Classify(ctx context.Context, history, question string) (core.RouterDecision, error) {
	raw, err := model.Complete(ctx, r.model, prompt.Router(history, question))
	if err != nil {
		return core.RouterDecision{}, core.NewStageError(core.StageRoute, err)
	}

	decision := ParseDecision(raw)
	r.opts.Logger.Debug("router decision",
		"intent", decision.Intent,
		"confidence", decision.Confidence,
		"reasoning", decision.Reasoning,
	)
	return decision, nil
}

// ParseDecision extracts INTENT / CONFIDENCE / REASONING lines from the raw
// classifier reply. A reply missing a valid INTENT or CONFIDENCE line is
// malformed and yields the deterministic {LAW, 0.5, "Parse error"} fallback;
// REASONING is optional.
func ParseDecision(raw string) core.RouterDecision {
	var decision core.RouterDecision
	seenIntent, seenConfidence := false, false

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "INTENT:"):
			value := cleanValue(strings.TrimPrefix(line, "INTENT:"))
			switch strings.ToUpper(value) {
			case string(core.IntentLaw):
				decision.Intent = core.IntentLaw
				seenIntent = true
			case string(core.IntentChat):
				decision.Intent = core.IntentChat
				seenIntent = true
			}
		case strings.HasPrefix(line, "CONFIDENCE:"):
			value := cleanValue(strings.TrimPrefix(line, "CONFIDENCE:"))
			if f, err := strconv.ParseFloat(value, 64); err == nil && f >= 0 && f <= 1 {
				decision.Confidence = f
				seenConfidence = true
			}
		case strings.HasPrefix(line, "REASONING:"):
			decision.Reasoning = cleanValue(strings.TrimPrefix(line, "REASONING:"))
		}
	}

	if !seenIntent || !seenConfidence {
		return core.RouterDecision{
			Intent:     core.IntentLaw,
			Confidence: 0.5,
			Reasoning:  "Parse error",
		}
	}
	return decision
}

// cleanValue strips whitespace and the bracket/asterisk decoration models
// tend to echo from the template ("[LAW]", "**CHAT**").
func cleanValue(s string) string {
	return strings.Trim(strings.TrimSpace(s), "[]* ")
}
