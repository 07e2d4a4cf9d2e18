package core

// Intent classifies what kind of answer a query needs.
type Intent string

const (
	// IntentLaw routes the query through retrieval-grounded generation.
	IntentLaw Intent = "LAW"
	// IntentChat answers directly from the chat persona without retrieval.
	IntentChat Intent = "CHAT"
)

// RouterDecision is the outcome of one intent classification. It lives for a
// single turn and is never persisted. Confidence is in [0,1]; Reasoning is the
// model's short free-text justification (or "parse error" for the fallback).
type RouterDecision struct {
	Intent     Intent  `json:"intent"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}
