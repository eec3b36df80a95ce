package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrdaebak/voice-order-gateway/internal/catalog"
	"github.com/mrdaebak/voice-order-gateway/internal/config"
	"github.com/mrdaebak/voice-order-gateway/internal/conversation"
	"github.com/mrdaebak/voice-order-gateway/internal/llm"
	"github.com/mrdaebak/voice-order-gateway/internal/orders"
)

const confirmToken = "<<CONFIRM_ORDER>>"

// fakeBackend serves both generation passes over the remote wire shape,
// switching on the requested model.
type fakeBackend struct {
	chatReply    string
	summaryReply string
	summaryCalls int
}

func (f *fakeBackend) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model string `json:"model"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		reply := f.chatReply
		if req.Model == "summary-model" {
			f.summaryCalls++
			reply = f.summaryReply
		}
		out, err := json.Marshal(map[string]string{"text": reply})
		require.NoError(t, err)
		w.Write(out)
	}
}

func newTestService(t *testing.T, backend *fakeBackend) (*Service, orders.Store) {
	t.Helper()
	server := httptest.NewServer(backend.handler(t))
	t.Cleanup(server.Close)

	cfg := config.LLMConfig{
		Provider: config.ProviderRemote,
		Remote: config.RemoteConfig{
			RemoteTuning: config.RemoteTuning{
				Endpoint:    server.URL,
				Model:       "chat-model",
				Temperature: 0.6,
				TopP:        0.9,
				MaxTokens:   256,
			},
			Summary: config.RemoteTuning{Model: "summary-model"},
		},
	}

	cat := catalog.Load(t.TempDir(), "2026-02-14")
	languages := conversation.Load("")
	store, err := orders.NewFileStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	router := llm.NewRouter(cfg, llm.NewSanitizer(cat.BasePrompt()))
	return New(router, store, cat, languages, "2026-02-14", 8192), store
}

func summaryText(orderKeyValues ...string) string {
	return strings.Join(orderKeyValues, "\n")
}

func TestChat_NoConfirmation(t *testing.T) {
	backend := &fakeBackend{chatReply: "발렌타인 디너를 추천드립니다. 주문하시겠어요?"}
	svc, _ := newTestService(t, backend)

	result, err := svc.Chat(context.Background(), []llm.Message{
		{Role: llm.RoleUser, Content: "디너 추천해줘"},
	})
	require.NoError(t, err)

	assert.False(t, result.OrderConfirmed)
	assert.Equal(t, "발렌타인 디너를 추천드립니다. 주문하시겠어요?", result.Message)
	assert.Empty(t, result.OrderID)
	assert.Nil(t, result.Order)
	assert.Zero(t, backend.summaryCalls)
}

func TestChat_ConfirmationPersistsOrder(t *testing.T) {
	backend := &fakeBackend{
		chatReply: "주문이 확정되었습니다. 감사합니다. " + confirmToken,
		summaryReply: summaryText(
			"customerName = 김철수",
			"customerAddress = 서울시 강남구",
			"menuName = 발렌타인 디너",
			"menuStyle = 그랜드",
			"menuItems = 와인=1, 스테이크=1",
			"deliveryTime = 2026-02-14T19:00:00",
			"quantity = 1",
			"couponCode = null",
			"useCoupon = null",
		),
	}
	svc, store := newTestService(t, backend)

	result, err := svc.Chat(context.Background(), []llm.Message{
		{Role: llm.RoleUser, Content: "발렌타인 디너 하나, 그랜드 스타일로 확정할게요"},
	})
	require.NoError(t, err)

	assert.True(t, result.OrderConfirmed)
	assert.NotContains(t, result.Message, confirmToken)
	assert.Equal(t, "주문이 확정되었습니다. 감사합니다.", result.Message)
	assert.Equal(t, 1, backend.summaryCalls)

	require.NotEmpty(t, result.OrderID)
	assert.True(t, strings.HasPrefix(result.OrderID, "order-"))

	saved, err := store.Get(context.Background(), result.OrderID)
	require.NoError(t, err)
	assert.Equal(t, orders.TypeConfirm, saved.OrderType)
	require.NotNil(t, saved.Summary.CustomerName)
	assert.Equal(t, "김철수", *saved.Summary.CustomerName)
	require.NotNil(t, saved.Summary.Quantity)
	assert.Equal(t, 1, *saved.Summary.Quantity)
	assert.Nil(t, saved.Summary.CouponCode)
	assert.Equal(t, saved.ConfirmedAt, saved.Summary.OrderTime)
}

func TestChat_SummaryFailureKeepsReply(t *testing.T) {
	backend := &fakeBackend{
		chatReply:    "주문이 확정되었습니다. " + confirmToken,
		summaryReply: "   ",
	}
	svc, _ := newTestService(t, backend)

	result, err := svc.Chat(context.Background(), []llm.Message{
		{Role: llm.RoleUser, Content: "확정할게요"},
	})
	require.NoError(t, err)

	// The turn still succeeds: clean text returned, confirmation withdrawn.
	assert.False(t, result.OrderConfirmed)
	assert.Equal(t, "주문이 확정되었습니다.", result.Message)
	assert.Empty(t, result.OrderID)
}

func TestChangeOrder(t *testing.T) {
	backend := &fakeBackend{
		chatReply: "변경되었습니다.",
		summaryReply: summaryText(
			"customerName = 김철수",
			"menuName = 프렌치 디너",
			"quantity = 2",
		),
	}
	svc, store := newTestService(t, backend)
	ctx := context.Background()

	_, err := svc.ChangeOrder(ctx, nil, "변경해주세요", "no-such-order")
	assert.ErrorIs(t, err, orders.ErrNotFound)

	require.NoError(t, store.Save(ctx, &orders.Record{
		OrderType:   orders.TypeConfirm,
		OrderID:     "order-abc",
		ConfirmedAt: "2026-02-14T18:00:00.000000",
	}))

	record, err := svc.ChangeOrder(ctx, []llm.Message{
		{Role: llm.RoleUser, Content: "프렌치 디너 두 개로 바꿔주세요"},
	}, "변경 완료", "order-abc")
	require.NoError(t, err)

	// The existing id wins over anything the model might suggest.
	assert.Equal(t, "order-abc", record.OrderID)
	assert.Equal(t, orders.TypeChange, record.OrderType)
	require.NotNil(t, record.Summary.MenuName)
	assert.Equal(t, "프렌치 디너", *record.Summary.MenuName)
}

func TestGenerateReply_PrependsSystemPrompt(t *testing.T) {
	var sawSystem bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []llm.Message `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		sawSystem = len(req.Messages) > 0 && req.Messages[0].Role == llm.RoleSystem
		w.Write([]byte(`{"text":"네"}`))
	}))
	defer server.Close()

	cfg := config.LLMConfig{
		Provider: config.ProviderRemote,
		Remote: config.RemoteConfig{
			RemoteTuning: config.RemoteTuning{Endpoint: server.URL, Model: "chat-model"},
		},
	}
	cat := catalog.Load(t.TempDir(), "2026-02-14")
	store, err := orders.NewFileStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	svc := New(llm.NewRouter(cfg, llm.NewSanitizer("")), store, cat, conversation.Load(""), "2026-02-14", 0)

	_, err = svc.GenerateReply(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "안녕"}})
	require.NoError(t, err)
	assert.True(t, sawSystem)
}
