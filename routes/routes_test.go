package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HammadAli08/Portfolio-backend/internal/ai"
	"github.com/HammadAli08/Portfolio-backend/internal/rag"
	"github.com/HammadAli08/Portfolio-backend/models"
)

type stubEmbedder struct{}

func (stubEmbedder) Embed(_ context.Context, texts []string, _ string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{1}
	}
	return out, nil
}

type stubIndex struct{}

func (stubIndex) Query(_ context.Context, _ []float32, topK int) ([]ai.Match, error) {
	return []ai.Match{{ID: "1", Metadata: ai.VectorMetadata{Text: "context doc"}}}, nil
}

type stubModel struct {
	fragments []string
}

func (m stubModel) Complete(_ context.Context, _ string) (string, error) {
	return strings.Join(m.fragments, ""), nil
}

func (m stubModel) Stream(_ context.Context, _ string) (<-chan ai.Token, error) {
	ch := make(chan ai.Token, len(m.fragments))
	for _, f := range m.fragments {
		ch <- ai.Token{Content: f}
	}
	close(ch)
	return ch, nil
}

type testEnv struct {
	router  *gin.Engine
	stats   *rag.Stats
	holder  *rag.Holder
	builds  *int
	reindex bool
}

func newTestEnv(t *testing.T, fragments []string) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	builds := 0
	env := &testEnv{builds: &builds, reindex: true}
	env.holder = rag.NewHolder(func() (*rag.Pipeline, error) {
		builds++
		return rag.NewPipelineWithComponents(stubEmbedder{}, stubIndex{}, stubModel{fragments: fragments}, 0), nil
	})
	env.stats = rag.NewStats()

	env.router = gin.New()
	SetupSystemRoutes(env.router, env.holder, env.stats, func() bool { return env.reindex })
	SetupChatRoutes(env.router, env.holder, env.stats)
	return env
}

// closeNotifyRecorder adds the http.CloseNotifier method gin's c.Stream
// requires, which httptest.ResponseRecorder does not implement.
type closeNotifyRecorder struct {
	*httptest.ResponseRecorder
}

func (closeNotifyRecorder) CloseNotify() <-chan bool { return make(chan bool) }

func postChat(t *testing.T, router *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(closeNotifyRecorder{w}, req)
	return w
}

func TestChatNonStreaming(t *testing.T) {
	env := newTestEnv(t, []string{"I am ", "Hammad."})

	w := postChat(t, env.router, `{"message": "who are you?", "stream": false}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "I am Hammad.", resp.Response)
}

func TestChatStreamingBodyMatchesNonStreaming(t *testing.T) {
	env := newTestEnv(t, []string{"I am ", "Hammad."})

	streamed := postChat(t, env.router, `{"message": "who are you?", "stream": true}`)
	require.Equal(t, http.StatusOK, streamed.Code)
	assert.Contains(t, streamed.Header().Get("Content-Type"), "text/plain")

	plain := postChat(t, env.router, `{"message": "who are you?", "stream": false}`)
	var resp models.ChatResponse
	require.NoError(t, json.Unmarshal(plain.Body.Bytes(), &resp))

	// Raw concatenation of fragments, no framing
	assert.Equal(t, resp.Response, streamed.Body.String())
}

func TestChatDefaultsToStreaming(t *testing.T) {
	env := newTestEnv(t, []string{"hello"})

	w := postChat(t, env.router, `{"message": "hi"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
	assert.Equal(t, "hello", w.Body.String())
}

func TestChatRejectsEmptyMessage(t *testing.T) {
	env := newTestEnv(t, []string{"x"})

	w := postChat(t, env.router, `{"stream": false}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, int64(0), env.stats.Snapshot().TotalQueries, "rejected requests are not counted")
}

func TestChatPipelineUnavailable(t *testing.T) {
	gin.SetMode(gin.TestMode)
	holder := rag.NewHolder(func() (*rag.Pipeline, error) {
		return nil, context.DeadlineExceeded
	})
	router := gin.New()
	SetupChatRoutes(router, holder, rag.NewStats())

	w := postChat(t, router, `{"message": "hi", "stream": false}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "goroutine", "no stack traces to clients")
}

func TestChatUpdatesStats(t *testing.T) {
	env := newTestEnv(t, []string{"x"})

	postChat(t, env.router, `{"message": "hi", "stream": false}`)
	snap := env.stats.Snapshot()
	assert.Equal(t, int64(1), snap.TotalQueries)

	postChat(t, env.router, `{"message": "hi again", "stream": true}`)
	snap = env.stats.Snapshot()
	assert.Equal(t, int64(2), snap.TotalQueries)
}

func TestRootDescriptor(t *testing.T) {
	env := newTestEnv(t, nil)

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "/api/health", body["health_check"])
}

func TestHealthReportsIndexStatus(t *testing.T) {
	env := newTestEnv(t, nil)
	env.stats.SetIndexStatus("Ready (Pinecone)")

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Status      string `json:"status"`
		IndexStatus string `json:"index_status"`
		Timestamp   int64  `json:"timestamp"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "Ready (Pinecone)", body.IndexStatus)
	assert.InDelta(t, time.Now().Unix(), body.Timestamp, 5)
}

func TestStatsEndpoint(t *testing.T) {
	env := newTestEnv(t, []string{"x"})
	postChat(t, env.router, `{"message": "hi", "stream": false}`)

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var snap rag.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, int64(1), snap.TotalQueries)
}

func TestReindexSwapsPipeline(t *testing.T) {
	env := newTestEnv(t, []string{"x"})

	// Warm the holder, then rebuild
	postChat(t, env.router, `{"message": "hi", "stream": false}`)
	require.Equal(t, 1, *env.builds)

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/reindex", nil))
	require.Equal(t, http.StatusOK, w.Code)

	// Next chat binds to a freshly built pipeline
	postChat(t, env.router, `{"message": "hi", "stream": false}`)
	assert.Equal(t, 2, *env.builds)

	snap := env.stats.Snapshot()
	assert.Equal(t, "Ready (Pinecone)", snap.IndexStatus)
	assert.NotEmpty(t, snap.LastReindexTime)
}

func TestReindexFailure(t *testing.T) {
	env := newTestEnv(t, []string{"x"})
	env.reindex = false

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/reindex", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, env.stats.Snapshot().LastReindexTime)
}

func TestWebSocketChatLoop(t *testing.T) {
	fragments := []string{"I ", "build ", "AI."}
	env := newTestEnv(t, fragments)

	srv := httptest.NewServer(env.router)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/chat"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Two turns: each streams its fragments then exactly one [DONE]
	for turn := 0; turn < 2; turn++ {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("who are you?")))

		var got []string
		for {
			_, msg, err := conn.ReadMessage()
			require.NoError(t, err)
			if string(msg) == "[DONE]" {
				break
			}
			got = append(got, string(msg))
		}
		assert.Equal(t, fragments, got, "turn %d", turn)
	}

	// The server records the turn after sending [DONE]
	assert.Eventually(t, func() bool {
		return env.stats.Snapshot().TotalQueries == 2
	}, time.Second, 10*time.Millisecond)
}
