// Package engine orchestrates one conversational turn end to end: intent
// routing, follow-up condensation, hybrid retrieval, rerank refinement,
// streamed generation and the memory commit. The engine owns the turn
// lifecycle and the event protocol; transports (SSE, CLI) only forward
// events.
package engine

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vietlabor/lawrag/core"
	"github.com/vietlabor/lawrag/logging"
	"github.com/vietlabor/lawrag/memory"
	"github.com/vietlabor/lawrag/model"
	"github.com/vietlabor/lawrag/prompt"
	"github.com/vietlabor/lawrag/session"
)

// Router classifies a question given a rendered history block.
type Router interface {
	Classify(ctx context.Context, history, question string) (core.RouterDecision, error)
}

// Condenser rewrites a follow-up question into a standalone one.
type Condenser interface {
	Condense(ctx context.Context, history, question string) (string, error)
}

// Retriever returns fused candidate chunks for a standalone query.
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]core.ScoredChunk, error)
}

// Refiner deduplicates and reranks fused candidates down to the final set.
type Refiner interface {
	Refine(ctx context.Context, query string, fused []core.ScoredChunk) ([]core.ScoredChunk, error)
}

// Options tunes the engine. Zero values fall back to the defaults below.
type Options struct {
	// SkipRouting forces every turn down the LAW path without a
	// classification call.
	SkipRouting bool

	// RouterHistoryTurns / RouterHistoryMaxChars bound the history block
	// rendered into the classification prompt.
	RouterHistoryTurns    int
	RouterHistoryMaxChars int

	// HistoryTurns bounds the history rendered for condensation and chat.
	HistoryTurns int

	// Per-stage deadlines for the sync LLM calls and the rerank call.
	RouteTimeout    time.Duration
	CondenseTimeout time.Duration
	RerankTimeout   time.Duration

	// GenerateTimeout bounds the full generation stream.
	GenerateTimeout time.Duration

	Logger *logging.EngineLogger
}

// Request is one user turn addressed to a session.
type Request struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// Answer is the sync (non-streaming) result shape used by Query.
type Answer struct {
	Text    string             `json:"answer"`
	Intent  core.Intent        `json:"intent"`
	Sources []core.ScoredChunk `json:"nodes"`
}

// Engine wires the pipeline stages together. Construct with New; the zero
// value is not usable.
type Engine struct {
	router    Router
	condenser Condenser
	retriever Retriever
	refiner   Refiner
	chatModel model.Model
	lawModel  model.Model
	sessions  session.Store
	opts      Options
}

// Deps carries the engine's collaborators. ChatModel may be nil, in which
// case LawModel serves both paths.
type Deps struct {
	Router    Router
	Condenser Condenser
	Retriever Retriever
	Refiner   Refiner
	LawModel  model.Model
	ChatModel model.Model
	Sessions  session.Store
}

// New constructs an Engine from its collaborators.
func New(deps Deps, optFns ...func(o *Options)) *Engine {
	opts := Options{
		RouterHistoryTurns:    3,
		RouterHistoryMaxChars: 200,
		HistoryTurns:          6,
		RouteTimeout:          15 * time.Second,
		CondenseTimeout:       15 * time.Second,
		RerankTimeout:         30 * time.Second,
		GenerateTimeout:       120 * time.Second,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewEngineLogger(&logging.EngineLoggerConfig{
			Output:    io.Discard,
			Component: "engine",
		})
	}
	chatModel := deps.ChatModel
	if chatModel == nil {
		chatModel = deps.LawModel
	}
	return &Engine{
		router:    deps.Router,
		condenser: deps.Condenser,
		retriever: deps.Retriever,
		refiner:   deps.Refiner,
		chatModel: chatModel,
		lawModel:  deps.LawModel,
		sessions:  deps.Sessions,
		opts:      opts,
	}
}

// Chat runs one turn and streams its events. The returned channel carries
// zero or more TokenEvents followed by exactly one terminal: an IntentEvent
// and SourcesEvent pair on success, or a single ErrorEvent on failure. The
// channel is closed when the turn finishes. Cancelling ctx aborts the turn;
// an aborted turn is never committed to session memory.
func (e *Engine) Chat(ctx context.Context, req Request) <-chan core.StreamEvent {
	events := make(chan core.StreamEvent)
	go func() {
		defer close(events)
		e.runTurn(ctx, req, events)
	}()
	return events
}

func (e *Engine) runTurn(ctx context.Context, req Request, events chan<- core.StreamEvent) {
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = "default"
	}
	log := e.opts.Logger.WithSession(sessionID, uuid.NewString())
	buffer := e.sessions.Get(sessionID)

	decision, err := e.route(ctx, buffer, req.Message)
	if err != nil {
		e.fail(ctx, events, log, err)
		return
	}
	log.LogRouterDecision(decision)

	var (
		answer  string
		sources []core.ScoredChunk
	)
	if decision.Intent == core.IntentChat {
		answer, err = e.chatTurn(ctx, events, buffer, req.Message)
	} else {
		answer, sources, err = e.lawTurn(ctx, events, log, buffer, req.Message)
	}
	if err != nil {
		e.fail(ctx, events, log, err)
		return
	}

	if !e.send(ctx, events, core.IntentEvent{Intent: decision.Intent}) {
		return
	}
	if !e.send(ctx, events, core.SourcesEvent{Chunks: sources}) {
		return
	}

	// Memory commits only after the terminal events went out. A cancelled
	// or failed turn leaves the session exactly as it was.
	buffer.Put(core.Turn{Role: core.RoleUser, Content: req.Message})
	buffer.Put(core.Turn{Role: core.RoleAssistant, Content: answer})
	log.Info("turn committed", "intent", string(decision.Intent), "sources", len(sources))
}

// route classifies the turn, or short-circuits to LAW when routing is
// disabled.
func (e *Engine) route(ctx context.Context, buffer *memory.Buffer, message string) (core.RouterDecision, error) {
	if e.opts.SkipRouting || e.router == nil {
		return core.RouterDecision{
			Intent:     core.IntentLaw,
			Confidence: 1.0,
			Reasoning:  "Routing disabled",
		}, nil
	}
	rctx, cancel := context.WithTimeout(ctx, e.opts.RouteTimeout)
	defer cancel()
	history := buffer.GetRecent(e.opts.RouterHistoryTurns, e.opts.RouterHistoryMaxChars)
	return e.router.Classify(rctx, history, message)
}

// chatTurn streams the no-retrieval persona answer.
func (e *Engine) chatTurn(ctx context.Context, events chan<- core.StreamEvent, buffer *memory.Buffer, message string) (string, error) {
	history := buffer.GetRecent(e.opts.HistoryTurns, 0)
	answer, err := e.streamGenerate(ctx, events, e.chatModel, prompt.Chat(history, message))
	if err != nil {
		return "", core.NewStageError(core.StageGenerate, err)
	}
	return answer, nil
}

// lawTurn runs condense, retrieve, refine, generate. An empty refined set is
// not an error: the turn resolves to the fixed out-of-scope answer with no
// sources.
func (e *Engine) lawTurn(ctx context.Context, events chan<- core.StreamEvent, log *logging.EngineLogger, buffer *memory.Buffer, message string) (string, []core.ScoredChunk, error) {
	history := buffer.GetRecent(e.opts.HistoryTurns, 0)

	cctx, cancel := context.WithTimeout(ctx, e.opts.CondenseTimeout)
	standalone, err := e.condenser.Condense(cctx, history, message)
	cancel()
	if err != nil {
		return "", nil, err
	}

	started := time.Now()
	fused, err := e.retriever.Retrieve(ctx, standalone)
	if err != nil {
		return "", nil, core.NewStageError(core.StageRetrieve, err)
	}
	log.Info("retrieval completed", "fused", len(fused), "duration", time.Since(started).String())

	rctx, cancel := context.WithTimeout(ctx, e.opts.RerankTimeout)
	selected, err := e.refiner.Refine(rctx, standalone, fused)
	cancel()
	if err != nil {
		return "", nil, core.NewStageError(core.StageRerank, err)
	}

	if len(selected) == 0 {
		if !e.send(ctx, events, core.TokenEvent{Text: prompt.OutOfScopeAnswer}) {
			return "", nil, ctx.Err()
		}
		return prompt.OutOfScopeAnswer, []core.ScoredChunk{}, nil
	}

	answer, err := e.streamGenerate(ctx, events, e.lawModel, prompt.LawContext(selected, standalone))
	if err != nil {
		return "", nil, core.NewStageError(core.StageGenerate, err)
	}
	return answer, selected, nil
}

// streamGenerate drives a streaming model call, forwarding each partial delta
// as a TokenEvent and returning the final accumulated text. An empty
// completed generation is replaced with the fixed fallback answer.
func (e *Engine) streamGenerate(ctx context.Context, events chan<- core.StreamEvent, m model.Model, promptText string) (string, error) {
	gctx, cancel := context.WithTimeout(ctx, e.opts.GenerateTimeout)
	defer cancel()

	respCh, errCh := m.Generate(gctx, model.Request{Prompt: promptText, Stream: true})
	var (
		acc   strings.Builder
		final string
	)
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case resp, ok := <-respCh:
			if !ok {
				select {
				case err := <-errCh:
					if err != nil {
						return "", err
					}
				default:
				}
				if final == "" {
					final = acc.String()
				}
				if strings.TrimSpace(final) == "" {
					final = prompt.EmptyGenerationAnswer
					if !e.send(ctx, events, core.TokenEvent{Text: final}) {
						return "", ctx.Err()
					}
				}
				return final, nil
			}
			if resp.Partial {
				acc.WriteString(resp.Text)
				if !e.send(ctx, events, core.TokenEvent{Text: resp.Text}) {
					return "", ctx.Err()
				}
			} else {
				final = resp.Text
			}
		case err, ok := <-errCh:
			if ok && err != nil {
				return "", err
			}
			errCh = nil
		}
	}
}

// fail emits the single ErrorEvent terminal for err. Cancellation never
// produces a terminal: a gone client has nobody left to read it.
func (e *Engine) fail(ctx context.Context, events chan<- core.StreamEvent, log *logging.EngineLogger, err error) {
	if ctx.Err() != nil {
		log.Info("turn aborted", "reason", ctx.Err().Error())
		return
	}
	stage, ok := core.StageOf(err)
	if !ok {
		stage = core.StageGenerate
	}
	log.Error("turn failed", "stage", string(stage), "error", err.Error())
	e.send(ctx, events, core.ErrorEvent{Stage: stage, Message: err.Error()})
}

func (e *Engine) send(ctx context.Context, events chan<- core.StreamEvent, ev core.StreamEvent) bool {
	select {
	case <-ctx.Done():
		return false
	case events <- ev:
		return true
	}
}

// Query answers a standalone question without touching any session memory.
// Routing still applies unless disabled; the LAW path skips condensation
// because there is no history to fold in.
func (e *Engine) Query(ctx context.Context, question string) (*Answer, error) {
	decision := core.RouterDecision{Intent: core.IntentLaw, Confidence: 1.0}
	if !e.opts.SkipRouting && e.router != nil {
		rctx, cancel := context.WithTimeout(ctx, e.opts.RouteTimeout)
		d, err := e.router.Classify(rctx, "", question)
		cancel()
		if err != nil {
			return nil, err
		}
		decision = d
	}

	if decision.Intent == core.IntentChat {
		text, err := model.Complete(ctx, e.chatModel, prompt.Chat("", question))
		if err != nil {
			return nil, core.NewStageError(core.StageGenerate, err)
		}
		return &Answer{Text: text, Intent: core.IntentChat, Sources: []core.ScoredChunk{}}, nil
	}

	fused, err := e.retriever.Retrieve(ctx, question)
	if err != nil {
		return nil, core.NewStageError(core.StageRetrieve, err)
	}
	rctx, cancel := context.WithTimeout(ctx, e.opts.RerankTimeout)
	selected, err := e.refiner.Refine(rctx, question, fused)
	cancel()
	if err != nil {
		return nil, core.NewStageError(core.StageRerank, err)
	}
	if len(selected) == 0 {
		return &Answer{Text: prompt.OutOfScopeAnswer, Intent: core.IntentLaw, Sources: []core.ScoredChunk{}}, nil
	}

	text, err := model.Complete(ctx, e.lawModel, prompt.LawContext(selected, question))
	if err != nil {
		return nil, core.NewStageError(core.StageGenerate, err)
	}
	if strings.TrimSpace(text) == "" {
		text = prompt.EmptyGenerationAnswer
	}
	return &Answer{Text: text, Intent: core.IntentLaw, Sources: selected}, nil
}

// ResetSession clears the memory of one session.
func (e *Engine) ResetSession(sessionID string) {
	if sessionID == "" {
		sessionID = "default"
	}
	e.sessions.Reset(sessionID)
}
