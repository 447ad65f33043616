package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/aegis-advisor/backend/internal/api/handlers"
	"github.com/wonny/aegis-advisor/backend/internal/engine"
	"github.com/wonny/aegis-advisor/backend/internal/realtime"
	"github.com/wonny/aegis-advisor/backend/internal/s5_signallog"
	"github.com/wonny/aegis-advisor/backend/internal/scoreconfig"
	"github.com/wonny/aegis-advisor/backend/internal/service"
	"github.com/wonny/aegis-advisor/backend/pkg/logger"
	"github.com/wonny/aegis-advisor/backend/pkg/redis"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	log := logger.NewNop()

	eng, err := engine.New(scoreconfig.Default(), log)
	require.NoError(t, err)

	hub := realtime.NewHub(log)
	signals := s5_signallog.NewService(s5_signallog.NewMemoryStore(), log, 7)
	signals.SetNotifier(hub)
	svc := service.NewRecommendationService(eng, redis.NewCache(redis.Disabled(), "test"), signals, log, service.Options{})

	return NewRouter(RouterDeps{
		Recommendations: handlers.NewRecommendationHandler(svc, log),
		Signals:         handlers.NewSignalHandler(svc, log),
		Stream:          handlers.NewStreamHandler(hub, log),
		Limiter:         redis.NewRateLimiter(redis.Disabled(), "test"),
		Logger:          log,
	})
}

func do(t *testing.T, h http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

const aaplInputs = `{
	"ticker": "AAPL",
	"fundamentals": {"pe": 28, "roe": 150, "net_margin": 25.3, "revenue_growth": 6, "debt_to_equity": 1.8},
	"technicals": {"price": 190, "rsi14": 58, "macd": 1.2, "macd_signal": 0.8, "sma50": 182, "sma200": 175},
	"analyst": {"strong_buy": 12, "buy": 20, "hold": 8, "target_price": 215},
	"news": {"avg_sentiment": 0.3, "article_count": 24},
	"insider": {"mspr": -12, "window_months": 3}
}`

func TestHealth(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.NotEmpty(t, rec.Header().Get(HeaderRequestID))

	rec = do(t, h, http.MethodGet, "/health", "", map[string]string{HeaderRequestID: "req-123"})
	assert.Equal(t, "req-123", rec.Header().Get(HeaderRequestID))
}

func TestEvaluate(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/recommendations", aaplInputs, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Ticker        string  `json:"ticker"`
			Composite     float64 `json:"composite"`
			PrimarySignal struct {
				Type string `json:"type"`
			} `json:"primary_signal"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "AAPL", body.Data.Ticker)
	assert.GreaterOrEqual(t, body.Data.Composite, 0.0)
	assert.LessOrEqual(t, body.Data.Composite, 100.0)
	assert.NotEmpty(t, body.Data.PrimarySignal.Type)
}

func TestEvaluate_BadRequests(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/recommendations", `{not json`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/recommendations", `{"ticker": ""}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/recommendations/batch", `{"inputs": []}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEvaluateBatch_PreservesOrder(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/recommendations/batch",
		`{"inputs": [{"ticker": "MSFT"}, {"ticker": "AAPL"}, {"ticker": "NVDA"}]}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Count int `json:"count"`
		Data  []struct {
			Ticker string `json:"ticker"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 3, body.Count)
	assert.Equal(t, "MSFT", body.Data[0].Ticker)
	assert.Equal(t, "AAPL", body.Data[1].Ticker)
	assert.Equal(t, "NVDA", body.Data[2].Ticker)
}

func TestSignals_RequireScope(t *testing.T) {
	h := newTestRouter(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/signals"},
		{http.MethodGet, "/api/signals"},
		{http.MethodDelete, "/api/signals"},
		{http.MethodGet, "/api/signals/performance"},
	} {
		rec := do(t, h, tc.method, tc.path, `{"inputs": {"ticker": "AAPL"}}`, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", tc.method, tc.path)
	}
}

func TestSignals_LogListDeleteFlow(t *testing.T) {
	h := newTestRouter(t)
	scope := map[string]string{handlers.HeaderPortfolioID: "p-42"}
	body := `{"inputs": ` + aaplInputs + `}`

	rec := do(t, h, http.MethodPost, "/api/signals", body, scope)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		Duplicate bool `json:"duplicate"`
		Entry     struct {
			ID     string `json:"id"`
			Ticker string `json:"ticker"`
		} `json:"entry"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.False(t, created.Duplicate)
	assert.Equal(t, "AAPL", created.Entry.Ticker)
	assert.Equal(t, "60", rec.Header().Get("X-RateLimit-Limit"))

	// 중복 기록 → 200 + duplicate
	rec = do(t, h, http.MethodPost, "/api/signals", body, scope)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"duplicate":true`)

	rec = do(t, h, http.MethodGet, "/api/signals", "", scope)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":1`)

	// 다른 스코프에서는 보이지 않음
	rec = do(t, h, http.MethodGet, "/api/signals", "", map[string]string{handlers.HeaderUserID: "someone"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":0`)

	rec = do(t, h, http.MethodGet, "/api/signals/performance?period=7", "", scope)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"win_rate":{"7":null}`)

	rec = do(t, h, http.MethodGet, "/api/signals/performance?period=3", "", scope)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/signals/"+created.Entry.ID, "", scope)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/signals/"+created.Entry.ID, "", scope)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/signals", "", scope)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"deleted":0`)
}

func TestSignals_InvalidOverride(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/signals",
		`{"inputs": {"ticker": "AAPL"}, "signal_type": "YOLO"}`,
		map[string]string{handlers.HeaderUserID: "u"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRateLimitMiddleware_Blocks(t *testing.T) {
	limiter := redis.NewRateLimiter(redis.Disabled(), "test")
	calls := 0
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	})
	h := scopeMiddleware()(rateLimitMiddleware(limiter, logger.NewNop())(next))

	headers := map[string]string{handlers.HeaderUserID: "flooder"}
	limit := redis.SignalWriteLimit("user:flooder").Limit
	for i := 0; i < limit; i++ {
		rec := do(t, h, http.MethodPost, "/api/signals", "{}", headers)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := do(t, h, http.MethodPost, "/api/signals", "{}", headers)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Equal(t, limit, calls)
}

func TestSignalStream_PushesLoggedSignals(t *testing.T) {
	srv := httptest.NewServer(newTestRouter(t))
	defer srv.Close()

	scope := http.Header{}
	scope.Set(handlers.HeaderPortfolioID, "p-7")

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/signals/stream"

	// 스코프 없이는 업그레이드 전에 401
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, scope)
	require.NoError(t, err)
	defer conn.Close()

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/signals", strings.NewReader(`{"inputs": `+aaplInputs+`}`))
	require.NoError(t, err)
	req.Header.Set(handlers.HeaderPortfolioID, "p-7")

	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev realtime.Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, realtime.EventSignalLogged, ev.Type)
	assert.Equal(t, "portfolio:p-7", ev.Scope)
	require.NotNil(t, ev.Entry)
	assert.Equal(t, "AAPL", ev.Entry.Ticker)
}
