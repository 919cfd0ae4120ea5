package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"clementus360/nudge-agent/config"
	"clementus360/nudge-agent/types"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAgent struct {
	runtime  *config.Runtime
	snapshot types.ActivitySnapshot
	classify types.ClassificationResult
	localErr error
	nudge    types.NudgeResult
	stats    types.CacheStats

	mu         sync.Mutex
	lastReq    types.ClassifyRequest
	lastSender string
}

func (a *fakeAgent) Snapshot(context.Context) types.ActivitySnapshot { return a.snapshot }

func (a *fakeAgent) Classify(_ context.Context, req types.ClassifyRequest) types.ClassificationResult {
	a.mu.Lock()
	a.lastReq = req
	a.mu.Unlock()
	return a.classify
}

func (a *fakeAgent) ClassifyLocal(_ context.Context, req types.ClassifyRequest) (types.ClassificationResult, error) {
	if a.localErr != nil {
		return types.ClassificationResult{}, a.localErr
	}
	return a.classify, nil
}

func (a *fakeAgent) Nudge(_ context.Context, sender string) types.NudgeResult {
	a.mu.Lock()
	a.lastSender = sender
	a.mu.Unlock()
	return a.nudge
}

func (a *fakeAgent) Runtime() *config.Runtime { return a.runtime }

func (a *fakeAgent) CacheStats() types.CacheStats { return a.stats }

type fakeSink struct {
	ok   bool
	last types.Feedback
}

func (s *fakeSink) Store(_ context.Context, fb types.Feedback) bool {
	s.last = fb
	return s.ok
}

func newHandler(agent *fakeAgent, sink *fakeSink) *Handler {
	if agent.runtime == nil {
		agent.runtime = config.NewRuntime(config.DefaultRuntimeConfig())
	}
	return New(agent, sink, nil)
}

func do(t *testing.T, handler http.HandlerFunc, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range header {
		r.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	handler(w, r)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestActivitySnapshotHandler(t *testing.T) {
	agent := &fakeAgent{snapshot: types.ActivitySnapshot{
		AppName:     "VSCode",
		WindowTitle: "main.py",
		Timestamp:   time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC),
		Context:     types.ActivityContext{FocusDurationSec: 42, TimeOfDay: "10:00", RecentApps: []string{"VSCode"}},
	}}
	h := newHandler(agent, &fakeSink{})

	w := do(t, h.ActivitySnapshotHandler, http.MethodGet, "/activity-snapshot", "", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"app_name": "VSCode",
		"window_title": "main.py",
		"timestamp": "2026-03-04T10:00:00Z",
		"privacy_mode": false,
		"context": {
			"focus_duration_sec": 42,
			"app_switches_last_5min": 0,
			"app_switches_last_30min": 0,
			"time_of_day": "10:00",
			"is_work_hours": false,
			"recent_apps": ["VSCode"]
		}
	}`, w.Body.String())
}

func TestClassifyHandler(t *testing.T) {
	agent := &fakeAgent{classify: types.ClassificationResult{Status: types.OnTask, Confidence: 0.9, Reasoning: "coding"}}
	h := newHandler(agent, &fakeSink{})

	w := do(t, h.ClassifyHandler, http.MethodPost, "/classify",
		`{"app_name":"VSCode","window_title":"main.py","context":{"focus_duration_sec":60}}`, nil)

	require.Equal(t, http.StatusOK, w.Code)
	got := decode[types.ClassificationResult](t, w)
	assert.Equal(t, types.OnTask, got.Status)
	assert.Equal(t, 60, agent.lastReq.Context.FocusDurationSec)

	w = do(t, h.ClassifyHandler, http.MethodPost, "/classify", `{"window_title":"main.py"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h.ClassifyHandler, http.MethodPost, "/classify", `{not json`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestClassifyLocalHandler_Unavailable(t *testing.T) {
	agent := &fakeAgent{localErr: errors.New("connection refused")}
	h := newHandler(agent, &fakeSink{})

	w := do(t, h.ClassifyLocalHandler, http.MethodPost, "/classify-local", `{"app_name":"VSCode","window_title":"x"}`, nil)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, decode[types.ErrorResponse](t, w).ErrorMessage, "connection refused")
}

func TestNudgeHandler(t *testing.T) {
	agent := &fakeAgent{nudge: types.NudgeResult{
		PokeID:      "p-1",
		Status:      types.OnTask,
		Confidence:  0.95,
		MessageText: "Sam is proud of you. You're locked in! 🎯",
		AudioBase64: "QUJD",
		DurationSec: 1.5,
	}}
	h := newHandler(agent, &fakeSink{})

	w := do(t, h.NudgeHandler, http.MethodPost, "/nudge", `{"sender_name":" Sam "}`, nil)

	require.Equal(t, http.StatusOK, w.Code)
	got := decode[types.NudgeResult](t, w)
	assert.Equal(t, agent.nudge, got)
	assert.Equal(t, "Sam", agent.lastSender)

	w = do(t, h.NudgeHandler, http.MethodPost, "/nudge", `{}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNudgeHandler_DegradedIs503(t *testing.T) {
	agent := &fakeAgent{nudge: types.NudgeResult{PokeID: "p-2", Error: "nudge pipeline failed: boom"}}
	h := newHandler(agent, &fakeSink{})

	w := do(t, h.NudgeHandler, http.MethodPost, "/nudge", `{"sender_name":"Sam"}`, nil)

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	got := decode[types.NudgeErrorResponse](t, w)
	assert.Equal(t, "Sam sent you a poke!", got.FallbackMessage)
	assert.Contains(t, got.Error, "boom")
}

func TestFeedbackHandler(t *testing.T) {
	sink := &fakeSink{ok: true}
	h := newHandler(&fakeAgent{}, sink)

	w := do(t, h.FeedbackHandler, http.MethodPost, "/feedback",
		`{"poke_id":"p-1","user_id":"u-1","user_feedback":"WRONG_ON_TASK","comment":"was reading docs"}`, nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, types.FeedbackResponse{Success: true, Message: "Thanks for the feedback!"}, decode[types.FeedbackResponse](t, w))
	assert.Equal(t, "u-1", sink.last.UserID)
	require.NotNil(t, sink.last.Comment)
	assert.Equal(t, "was reading docs", *sink.last.Comment)
}

func TestFeedbackHandler_JWTSubjectWins(t *testing.T) {
	sink := &fakeSink{ok: true}
	h := newHandler(&fakeAgent{}, sink)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "jwt-user"}).SignedString([]byte("s"))
	require.NoError(t, err)

	w := do(t, h.FeedbackHandler, http.MethodPost, "/feedback",
		`{"poke_id":"p-1","user_id":"spoofed","user_feedback":"CORRECT"}`,
		map[string]string{"Authorization": "Bearer " + token})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "jwt-user", sink.last.UserID)
	assert.Nil(t, sink.last.Comment)
}

func TestFeedbackHandler_Rejects(t *testing.T) {
	h := newHandler(&fakeAgent{}, &fakeSink{ok: true})

	for _, body := range []string{
		`{"user_id":"u","user_feedback":"CORRECT"}`,
		`{"poke_id":"p","user_feedback":"CORRECT"}`,
		`{"poke_id":"p","user_id":"u","user_feedback":"MAYBE"}`,
		`[]`,
	} {
		w := do(t, h.FeedbackHandler, http.MethodPost, "/feedback", body, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestFeedbackHandler_StoreFailure(t *testing.T) {
	h := newHandler(&fakeAgent{}, &fakeSink{ok: false})

	w := do(t, h.FeedbackHandler, http.MethodPost, "/feedback",
		`{"poke_id":"p","user_id":"u","user_feedback":"CORRECT"}`, nil)

	assert.Equal(t, types.FeedbackResponse{Success: false, Message: "Failed to save feedback."}, decode[types.FeedbackResponse](t, w))
}

func TestConfigHandlers(t *testing.T) {
	h := newHandler(&fakeAgent{}, &fakeSink{})

	w := do(t, h.GetConfigHandler, http.MethodGet, "/config", "", nil)
	assert.Equal(t, config.DefaultRuntimeConfig(), decode[types.RuntimeConfig](t, w))

	w = do(t, h.UpdateConfigHandler, http.MethodPost, "/config", `{"privacy_mode":true,"app_whitelist":["Signal"]}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[types.ConfigResponse](t, w)
	assert.True(t, resp.Success)
	assert.True(t, resp.Config.PrivacyMode)
	assert.Equal(t, []string{"Signal"}, resp.Config.AppWhitelist)
	assert.Equal(t, "22:00", resp.Config.MuteStart)

	w = do(t, h.UpdateConfigHandler, http.MethodPost, "/config", `{"mute_end":"25:99"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp = decode[types.ConfigResponse](t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, "08:00", resp.Config.MuteEnd)

	w = do(t, h.UpdateConfigHandler, http.MethodPost, "/config", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCacheStatsHandler(t *testing.T) {
	h := newHandler(&fakeAgent{stats: types.CacheStats{Size: 3, MaxSize: 20, Hits: 5}}, &fakeSink{})

	w := do(t, h.CacheStatsHandler, http.MethodGet, "/cache/stats", "", nil)

	assert.JSONEq(t, `{"size":3,"maxsize":20,"hits":5,"misses":0,"evictions":0}`, w.Body.String())
}

func TestHealthHandler(t *testing.T) {
	ollama := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			w.Write([]byte(`{"models":[]}`))
			return
		}
		http.NotFound(w, r)
	}))
	defer ollama.Close()

	h := New(&fakeAgent{}, &fakeSink{}, NewLocalModelProbe(ollama.URL+"/"))
	w := do(t, h.HealthHandler, http.MethodGet, "/health", "", nil)
	assert.Equal(t, types.HealthResponse{
		Status: "healthy", ActivityService: "ready", LLMService: "ready", LocalModel: "available",
	}, decode[types.HealthResponse](t, w))

	down := New(&fakeAgent{}, &fakeSink{}, NewLocalModelProbe("http://127.0.0.1:1"))
	w = do(t, down.HealthHandler, http.MethodGet, "/health", "", nil)
	assert.Equal(t, "unavailable", decode[types.HealthResponse](t, w).LocalModel)
}
