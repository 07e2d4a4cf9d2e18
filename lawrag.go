// Package lawrag provides a high-level façade over the conversational
// retrieval engine for Vietnamese labor-law question answering. Most
// applications interact with this package by:
//  1. Creating a LawRAG via New() from a config.Config
//  2. Streaming turns with Chat() or answering one-shot questions with Query()
//  3. Serving HTTP traffic by passing Engine() to server.New
//
// The façade assembles the generation model, the dense and sparse retrieval
// paths, the reranker and the session store, then delegates orchestration to
// engine.Engine. All defaults mirror the production deployment.
package lawrag

import (
	"context"
	"fmt"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"

	"github.com/vietlabor/lawrag/condense"
	"github.com/vietlabor/lawrag/config"
	"github.com/vietlabor/lawrag/core"
	"github.com/vietlabor/lawrag/corpus"
	"github.com/vietlabor/lawrag/engine"
	"github.com/vietlabor/lawrag/logging"
	"github.com/vietlabor/lawrag/model"
	anthropicmodel "github.com/vietlabor/lawrag/model/anthropic"
	geminimodel "github.com/vietlabor/lawrag/model/gemini"
	openaimodel "github.com/vietlabor/lawrag/model/openai"
	"github.com/vietlabor/lawrag/rerank"
	"github.com/vietlabor/lawrag/retriever"
	"github.com/vietlabor/lawrag/retriever/bm25"
	"github.com/vietlabor/lawrag/retriever/embed"
	qdrantsearch "github.com/vietlabor/lawrag/retriever/qdrant"
	"github.com/vietlabor/lawrag/router"
	"github.com/vietlabor/lawrag/session"
)

// Options overrides parts of the assembled pipeline. Any nil field is built
// from the config.
type Options struct {
	// Model overrides the generation model for both intents.
	Model model.Model

	// Dense and Sparse override the retrieval paths.
	Dense  retriever.DenseSearcher
	Sparse retriever.SparseSearcher

	// Reranker overrides the second-pass scorer.
	Reranker rerank.Reranker

	// Sessions overrides the session store.
	Sessions session.Store

	Logger *logging.EngineLogger
}

// LawRAG is the assembled question-answering system.
type LawRAG struct {
	engine *engine.Engine
	logger *logging.EngineLogger
}

// New assembles a LawRAG from configuration. The corpus snapshot is loaded
// eagerly so a broken snapshot fails startup rather than the first query.
func New(ctx context.Context, cfg *config.Config, optFns ...func(o *Options)) (*LawRAG, error) {
	var opts Options
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewEngineLogger(nil)
	}
	log := opts.Logger

	m := opts.Model
	if m == nil {
		var err error
		if m, err = buildModel(ctx, cfg); err != nil {
			return nil, err
		}
	}

	sparse := opts.Sparse
	if sparse == nil {
		chunks, err := corpus.Load(cfg.CorpusPath)
		if err != nil {
			return nil, err
		}
		log.Info("corpus loaded", "path", cfg.CorpusPath, "chunks", len(chunks))
		sparse = bm25.NewIndex(chunks)
	}

	dense := opts.Dense
	if dense == nil {
		embedder := embed.NewOpenAI(func(o *embed.Options) {
			o.Model = cfg.EmbeddingModel
			o.APIKey = cfg.OpenAIAPIKey
			o.BaseURL = cfg.EmbeddingBaseURL
		})
		var err error
		dense, err = qdrantsearch.NewSearcher(embedder, func(o *qdrantsearch.Options) {
			o.Host = cfg.QdrantHost
			o.Port = cfg.QdrantPort
			o.APIKey = cfg.QdrantAPIKey
			o.UseTLS = cfg.QdrantUseTLS
			o.Collection = cfg.QdrantCollection
		})
		if err != nil {
			return nil, err
		}
	}

	hybrid := retriever.NewHybrid(dense, sparse, func(o *retriever.Options) {
		o.Config = retriever.Config{
			VectorTopK:  cfg.VectorTopK,
			BM25TopK:    cfg.BM25TopK,
			HybridTopK:  cfg.HybridTopK,
			RRFK:        cfg.RRFK,
			PathTimeout: cfg.PathTimeout,
		}
		o.Logger = log.WithComponent("retriever")
	})

	reranker := opts.Reranker
	if reranker == nil {
		reranker = rerank.NewCrossEncoder(func(o *rerank.CrossEncoderOptions) {
			o.Model = cfg.RerankerModel
			o.Endpoint = cfg.RerankerEndpoint
			o.APIKey = cfg.RerankerAPIKey
		})
	}

	sessions := opts.Sessions
	if sessions == nil {
		sessions = session.NewInMemoryStore(cfg.MemoryTokenLimit)
	}

	eng := engine.New(engine.Deps{
		Router:    router.NewSemanticRouter(m, func(o *router.Options) { o.Logger = log.WithComponent("router") }),
		Condenser: condense.NewCondenser(m, func(o *condense.Options) { o.Logger = log.WithComponent("condense") }),
		Retriever: hybrid,
		Refiner:   rerank.NewRefiner(reranker, cfg.RerankTopN),
		LawModel:  m,
		Sessions:  sessions,
	}, func(o *engine.Options) {
		o.SkipRouting = cfg.SkipRouting
		o.Logger = log.WithComponent("engine")
	})

	return &LawRAG{engine: eng, logger: log}, nil
}

// buildModel constructs the generation model for the configured provider.
func buildModel(ctx context.Context, cfg *config.Config) (model.Model, error) {
	switch cfg.Provider {
	case "openai":
		return openaimodel.NewModel(func(o *openaimodel.Options) {
			if cfg.Model != "" {
				o.Model = cfg.Model
			}
			o.APIKey = cfg.OpenAIAPIKey
		}), nil
	case "anthropic":
		return anthropicmodel.NewModel(func(o *anthropicmodel.Options) {
			if cfg.Model != "" {
				o.Model = anthropicsdk.Model(cfg.Model)
			}
			o.APIKey = cfg.AnthropicAPIKey
		}), nil
	case "gemini":
		return geminimodel.NewModel(ctx, func(o *geminimodel.Options) {
			if cfg.Model != "" {
				o.Model = cfg.Model
			}
			o.APIKey = cfg.GeminiAPIKey
		})
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

// Engine exposes the orchestrator, e.g. for mounting the HTTP server.
func (l *LawRAG) Engine() *engine.Engine { return l.engine }

// Chat streams one conversational turn. See engine.Engine.Chat for the event
// protocol.
func (l *LawRAG) Chat(ctx context.Context, req engine.Request) <-chan core.StreamEvent {
	return l.engine.Chat(ctx, req)
}

// Query answers a standalone question without session memory.
func (l *LawRAG) Query(ctx context.Context, question string) (*engine.Answer, error) {
	return l.engine.Query(ctx, question)
}

// ResetSession clears one session's conversation memory.
func (l *LawRAG) ResetSession(sessionID string) { l.engine.ResetSession(sessionID) }
