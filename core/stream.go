package core

// StreamEvent is the tagged union emitted over a turn's event channel. It is
// the wire-level projection of the turn lifecycle: zero or more TokenEvents
// followed by exactly one terminal, an IntentEvent/SourcesEvent pair on
// success or a single ErrorEvent on failure. Concrete variants implement the
// private marker method so switches over the union stay exhaustive.
type StreamEvent interface {
	isStreamEvent()
}

// TokenEvent carries one generated text delta, forwarded in real time.
type TokenEvent struct {
	Text string `json:"token"`
}

// IntentEvent reports the intent the turn resolved to. Emitted once, after
// the token stream completes.
type IntentEvent struct {
	Intent Intent `json:"intent"`
}

// SourcesEvent lists the deduplicated, reranked chunks the answer was
// grounded on. An empty list is valid and means no legal basis was found.
type SourcesEvent struct {
	Chunks []ScoredChunk `json:"nodes"`
}

// ErrorEvent replaces the Intent/Sources terminal when the turn fails. Stage
// attributes the failure to the pipeline stage that produced it.
type ErrorEvent struct {
	Stage   Stage  `json:"stage"`
	Message string `json:"error"`
}

func (TokenEvent) isStreamEvent()   {}
func (IntentEvent) isStreamEvent()  {}
func (SourcesEvent) isStreamEvent() {}
func (ErrorEvent) isStreamEvent()   {}
