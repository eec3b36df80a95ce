package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/mrdaebak/voice-order-gateway/internal/catalog"
	"github.com/mrdaebak/voice-order-gateway/internal/config"
	"github.com/mrdaebak/voice-order-gateway/internal/conversation"
	"github.com/mrdaebak/voice-order-gateway/internal/llm"
	"github.com/mrdaebak/voice-order-gateway/internal/orders"
	"github.com/mrdaebak/voice-order-gateway/internal/service"
)

// newTestEngine wires a full engine over a fake remote backend.
func newTestEngine(t *testing.T, backendReply string) (http.Handler, orders.Store) {
	t.Helper()

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		out, err := json.Marshal(map[string]string{"text": backendReply})
		require.NoError(t, err)
		w.Write(out)
	}))
	t.Cleanup(backend.Close)

	cfg := config.LLMConfig{
		Provider: config.ProviderRemote,
		Remote: config.RemoteConfig{
			RemoteTuning: config.RemoteTuning{Endpoint: backend.URL, Model: "test-model"},
		},
	}

	cat := catalog.Load(t.TempDir(), "2026-02-14")
	store, err := orders.NewFileStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	svc := service.New(
		llm.NewRouter(cfg, llm.NewSanitizer("")),
		store, cat, conversation.Load(""), "2026-02-14", 0)

	engine := NewEngine(NewHandlers(svc, nil), []string{"http://localhost:8080"})
	return engine, store
}

func doJSON(t *testing.T, engine http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	engine, _ := newTestEngine(t, "ok")
	w := doJSON(t, engine, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", gjson.Get(w.Body.String(), "status").String())
}

func TestConfigEndpoints(t *testing.T) {
	engine, _ := newTestEngine(t, "ok")

	w := doJSON(t, engine, http.MethodGet, "/config/model-info", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "remote", gjson.Get(w.Body.String(), "provider").String())

	w = doJSON(t, engine, http.MethodGet, "/config/order-token", "")
	assert.Equal(t, "<<CONFIRM_ORDER>>", gjson.Get(w.Body.String(), "token").String())

	w = doJSON(t, engine, http.MethodGet, "/config/initial-language", "")
	assert.Equal(t, "ko-KR", gjson.Get(w.Body.String(), "language").String())

	w = doJSON(t, engine, http.MethodGet, "/config/system-prompt", "")
	assert.NotEmpty(t, gjson.Get(w.Body.String(), "prompt").String())

	w = doJSON(t, engine, http.MethodGet, "/config/greeting?lang=en-US&name=Alex", "")
	assert.Contains(t, gjson.Get(w.Body.String(), "greeting").String(), "Alex")

	w = doJSON(t, engine, http.MethodGet, "/config/ui-text?lang=en-US", "")
	assert.Equal(t, "Listening...", gjson.Get(w.Body.String(), "messages.listening").String())

	w = doJSON(t, engine, http.MethodGet, "/config/language-instruction?lang=fr-FR", "")
	assert.Contains(t, gjson.Get(w.Body.String(), "instruction").String(), "French")
}

func TestDetectLanguage(t *testing.T) {
	engine, _ := newTestEngine(t, "ok")

	w := doJSON(t, engine, http.MethodPost, "/utils/detect-language", `{"text":"발렌타인 디너 주세요"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ko-KR", gjson.Get(w.Body.String(), "language").String())
}

func TestGenerate(t *testing.T) {
	engine, _ := newTestEngine(t, "발렌타인 디너를 추천드립니다.")

	w := doJSON(t, engine, http.MethodPost, "/api/llm/generate",
		`{"messages":[{"role":"user","content":"디너 추천해줘"}]}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "발렌타인 디너를 추천드립니다.", gjson.Get(w.Body.String(), "message").String())
	assert.False(t, gjson.Get(w.Body.String(), "orderConfirmed").Bool())
}

func TestGenerate_EmptyBodyIsBadRequest(t *testing.T) {
	engine, _ := newTestEngine(t, "ok")

	w := doJSON(t, engine, http.MethodPost, "/api/llm/generate", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotEmpty(t, gjson.Get(w.Body.String(), "detail").String())
}

func TestConfirmOrder(t *testing.T) {
	summaryReply := strings.Join([]string{
		"customerName = 김철수",
		"menuName = 발렌타인 디너",
		"quantity = 1",
		"useCoupon = null",
	}, "\n")
	engine, store := newTestEngine(t, summaryReply)

	w := doJSON(t, engine, http.MethodPost, "/api/order/confirm",
		`{"history":[{"role":"user","content":"발렌타인 디너 확정"}],"finalMessage":"주문이 확정되었습니다."}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	orderID := gjson.Get(w.Body.String(), "orderId").String()
	require.NotEmpty(t, orderID)
	assert.Equal(t, "김철수", gjson.Get(w.Body.String(), "order.customerName").String())

	saved, err := store.Get(context.Background(), orderID)
	require.NoError(t, err)
	assert.Equal(t, orders.TypeConfirm, saved.OrderType)
}

func TestChangeOrder_UnknownIDIs404(t *testing.T) {
	engine, _ := newTestEngine(t, "customerName = 김철수")

	w := doJSON(t, engine, http.MethodPost, "/api/order/change",
		`{"history":[{"role":"user","content":"변경"}],"orderId":"no-such-order"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestChangeOrder_MissingIDIsBadRequest(t *testing.T) {
	engine, _ := newTestEngine(t, "ok")

	w := doJSON(t, engine, http.MethodPost, "/api/order/change",
		`{"history":[{"role":"user","content":"변경"}]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerate_UpstreamFailureIs502(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(backend.Close)

	cfg := config.LLMConfig{
		Provider: config.ProviderRemote,
		Remote: config.RemoteConfig{
			RemoteTuning: config.RemoteTuning{Endpoint: backend.URL, Model: "test-model"},
		},
	}
	cat := catalog.Load(t.TempDir(), "2026-02-14")
	store, err := orders.NewFileStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	svc := service.New(llm.NewRouter(cfg, llm.NewSanitizer("")), store, cat, conversation.Load(""), "2026-02-14", 0)
	engine := NewEngine(NewHandlers(svc, nil), nil)

	w := doJSON(t, engine, http.MethodPost, "/api/llm/generate",
		`{"messages":[{"role":"user","content":"안녕"}]}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestRequestIDHeader(t *testing.T) {
	engine, _ := newTestEngine(t, "ok")

	w := doJSON(t, engine, http.MethodGet, "/health", "")
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-Id", "fixed-id")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	assert.Equal(t, "fixed-id", rec.Header().Get("X-Request-Id"))
}

func TestCORS(t *testing.T) {
	engine, _ := newTestEngine(t, "ok")

	req := httptest.NewRequest(http.MethodOptions, "/api/llm/generate", nil)
	req.Header.Set("Origin", "http://localhost:8080")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:8080", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://evil.example.com")
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
