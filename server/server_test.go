package server

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietlabor/lawrag/core"
	"github.com/vietlabor/lawrag/engine"
	"github.com/vietlabor/lawrag/model"
	"github.com/vietlabor/lawrag/session"
)

type stubRouter struct{ intent core.Intent }

func (s *stubRouter) Classify(context.Context, string, string) (core.RouterDecision, error) {
	return core.RouterDecision{Intent: s.intent, Confidence: 0.9}, nil
}

type stubCondenser struct{}

func (stubCondenser) Condense(_ context.Context, _, question string) (string, error) {
	return question, nil
}

type stubRetriever struct{ hits []core.ScoredChunk }

func (s *stubRetriever) Retrieve(context.Context, string) ([]core.ScoredChunk, error) {
	return s.hits, nil
}

type stubRefiner struct{ out []core.ScoredChunk }

func (s *stubRefiner) Refine(context.Context, string, []core.ScoredChunk) ([]core.ScoredChunk, error) {
	return s.out, nil
}

func testChunk() core.ScoredChunk {
	return core.ScoredChunk{
		Chunk: core.Chunk{
			ID:   "c1",
			Text: "Trợ cấp thôi việc...",
			Metadata: core.ChunkMetadata{
				DocNumber: "45/2019/QH14",
				ShortName: "BLLĐ 2019",
				ArticleID: "46",
			},
		},
		Score: 0.93,
	}
}

func newTestServer(t *testing.T, intent core.Intent) *Server {
	t.Helper()
	m := model.NewMockModel()
	m.AddResponse("Điều 46", "Theo Điều 46, trợ cấp thôi việc là 0.5 tháng lương mỗi năm.")
	m.AddResponse("Xin chào", "Chào bạn!")

	eng := engine.New(engine.Deps{
		Router:    &stubRouter{intent: intent},
		Condenser: stubCondenser{},
		Retriever: &stubRetriever{hits: []core.ScoredChunk{testChunk()}},
		Refiner:   &stubRefiner{out: []core.ScoredChunk{testChunk()}},
		LawModel:  m,
		Sessions:  session.NewInMemoryStore(0),
	})
	return New(eng)
}

func TestServer_Health(t *testing.T) {
	srv := newTestServer(t, core.IntentLaw)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServer_ChatStreamsSSE(t *testing.T) {
	srv := newTestServer(t, core.IntentLaw)
	body := strings.NewReader(`{"session_id":"s1","message":"Trợ cấp thôi việc Điều 46?"}`)
	req := httptest.NewRequest(http.MethodPost, "/chat", body)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	var (
		tokens  strings.Builder
		types   []string
		done    bool
		nodeCnt = -1
	)
	scanner := bufio.NewScanner(rec.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		payload := strings.TrimPrefix(line, "data: ")
		if payload == "[DONE]" {
			done = true
			continue
		}
		var ev map[string]json.RawMessage
		require.NoError(t, json.Unmarshal([]byte(payload), &ev))

		var typ string
		require.NoError(t, json.Unmarshal(ev["type"], &typ))
		types = append(types, typ)
		switch typ {
		case "token":
			var tok string
			require.NoError(t, json.Unmarshal(ev["token"], &tok))
			tokens.WriteString(tok)
		case "nodes":
			var nodes []core.ScoredChunk
			require.NoError(t, json.Unmarshal(ev["nodes"], &nodes))
			nodeCnt = len(nodes)
		}
	}

	assert.True(t, done)
	assert.Contains(t, tokens.String(), "Điều 46")
	require.GreaterOrEqual(t, len(types), 3)
	assert.Equal(t, "intent", types[len(types)-2])
	assert.Equal(t, "nodes", types[len(types)-1])
	assert.Equal(t, 1, nodeCnt)
}

func TestServer_ChatRejectsEmptyMessage(t *testing.T) {
	srv := newTestServer(t, core.IntentLaw)
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":"  "}`))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_ChatRejectsBadJSON(t *testing.T) {
	srv := newTestServer(t, core.IntentLaw)
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{`))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_Query(t *testing.T) {
	srv := newTestServer(t, core.IntentLaw)
	req := httptest.NewRequest(http.MethodPost, "/query", strings.NewReader(`{"question":"Trợ cấp thôi việc Điều 46?"}`))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var answer engine.Answer
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &answer))
	assert.Equal(t, core.IntentLaw, answer.Intent)
	assert.Contains(t, answer.Text, "Điều 46")
	assert.Len(t, answer.Sources, 1)
}

func TestServer_ResetMemory(t *testing.T) {
	srv := newTestServer(t, core.IntentChat)

	chat := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"session_id":"s1","message":"Xin chào"}`))
	chat.Header.Set("Content-Type", "application/json")
	srv.Handler().ServeHTTP(httptest.NewRecorder(), chat)

	reset := httptest.NewRequest(http.MethodPost, "/reset-memory", strings.NewReader(`{"session_id":"s1"}`))
	reset.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, reset)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestServer_Root(t *testing.T) {
	srv := newTestServer(t, core.IntentLaw)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "lawrag")
}
