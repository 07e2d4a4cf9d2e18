// Package server exposes the engine over HTTP. The chat endpoint streams the
// turn's events as server-sent events; the remaining endpoints are plain
// JSON. The server holds no conversation state of its own.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vietlabor/lawrag/core"
	"github.com/vietlabor/lawrag/engine"
	"github.com/vietlabor/lawrag/logging"
)

// Options configures the Server.
type Options struct {
	Logger *logging.EngineLogger

	// ShutdownTimeout bounds graceful shutdown once Run's context ends.
	ShutdownTimeout time.Duration
}

// Server routes HTTP traffic to an engine.
type Server struct {
	engine *engine.Engine
	router *gin.Engine
	opts   Options
}

// New builds the HTTP server around an engine.
func New(eng *engine.Engine, optFns ...func(o *Options)) *Server {
	opts := Options{ShutdownTimeout: 10 * time.Second}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewEngineLogger(nil).WithComponent("server")
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	s := &Server{engine: eng, router: r, opts: opts}
	r.GET("/", s.handleRoot)
	r.GET("/health", s.handleHealth)
	r.POST("/chat", s.handleChat)
	r.POST("/query", s.handleQuery)
	r.POST("/reset-memory", s.handleResetMemory)
	return s
}

// Handler exposes the underlying router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.router}

	errCh := make(chan error, 1)
	go func() {
		s.opts.Logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		sctx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	}
}

// corsMiddleware allows any origin. The API fronts a public assistant UI and
// carries no credentials.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "lawrag",
		"message": "Trợ lý Pháp luật Lao động Việt Nam",
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// handleChat streams one turn as SSE. Each event is one JSON object on a
// data: line; the stream ends with a [DONE] marker after the terminal event.
func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message must not be empty"})
		return
	}
	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming unsupported"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	ctx := c.Request.Context()
	events := s.engine.Chat(ctx, engine.Request{SessionID: req.SessionID, Message: req.Message})
	for ev := range events {
		payload, err := encodeEvent(ev)
		if err != nil {
			s.opts.Logger.Error("encode event", "error", err.Error())
			continue
		}
		fmt.Fprintf(c.Writer, "data: %s\n\n", payload)
		flusher.Flush()
	}
	if ctx.Err() == nil {
		fmt.Fprint(c.Writer, "data: [DONE]\n\n")
		flusher.Flush()
	}
}

// encodeEvent projects a stream event onto its wire shape.
func encodeEvent(ev core.StreamEvent) ([]byte, error) {
	switch e := ev.(type) {
	case core.TokenEvent:
		return json.Marshal(gin.H{"type": "token", "token": e.Text})
	case core.IntentEvent:
		return json.Marshal(gin.H{"type": "intent", "intent": e.Intent})
	case core.SourcesEvent:
		chunks := e.Chunks
		if chunks == nil {
			chunks = []core.ScoredChunk{}
		}
		return json.Marshal(gin.H{"type": "nodes", "nodes": chunks})
	case core.ErrorEvent:
		return json.Marshal(gin.H{"type": "error", "stage": e.Stage, "error": e.Message})
	default:
		return nil, fmt.Errorf("unknown event type %T", ev)
	}
}

type queryRequest struct {
	Question string `json:"question"`
}

func (s *Server) handleQuery(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "question must not be empty"})
		return
	}

	answer, err := s.engine.Query(c.Request.Context(), req.Question)
	if err != nil {
		stage, _ := core.StageOf(err)
		s.opts.Logger.Error("query failed", "stage", string(stage), "error", err.Error())
		c.JSON(http.StatusBadGateway, gin.H{"stage": stage, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, answer)
}

type resetRequest struct {
	SessionID string `json:"session_id"`
}

func (s *Server) handleResetMemory(c *gin.Context) {
	var req resetRequest
	// An empty body resets the default session.
	_ = c.ShouldBindJSON(&req)
	s.engine.ResetSession(req.SessionID)
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Đã xóa lịch sử hội thoại"})
}
