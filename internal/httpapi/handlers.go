// Package httpapi is the HTTP boundary of the voice-order service.
//
// DESIGN: Handlers stay thin: bind, delegate to the service, map the llm
// error taxonomy to a status code. A backend failure is always turned into
// a structured error response, never a crash or an empty 200.
package httpapi

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/mrdaebak/voice-order-gateway/internal/llm"
	"github.com/mrdaebak/voice-order-gateway/internal/orders"
	"github.com/mrdaebak/voice-order-gateway/internal/service"
	"github.com/mrdaebak/voice-order-gateway/internal/stt"
)

// maxAudioBytes caps uploaded audio at 25MB, matching the upstream
// transcription API limit.
const maxAudioBytes = 25 * 1024 * 1024

// Handlers bundles the service dependencies for the route layer.
type Handlers struct {
	svc *service.Service
	stt *stt.Client
}

// NewHandlers creates the handler set.
func NewHandlers(svc *service.Service, sttClient *stt.Client) *Handlers {
	return &Handlers{svc: svc, stt: sttClient}
}

// Health is GET /health.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ModelInfo is GET /config/model-info.
func (h *Handlers) ModelInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"provider": h.svc.Provider()})
}

// SystemPrompt is GET /config/system-prompt.
func (h *Handlers) SystemPrompt(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"prompt": h.svc.Catalog().SystemPrompt()})
}

// OrderToken is GET /config/order-token.
func (h *Handlers) OrderToken(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"token": h.svc.Languages().ConfirmationToken})
}

// InitialLanguage is GET /config/initial-language.
func (h *Handlers) InitialLanguage(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"language": h.svc.Languages().InitialLanguage})
}

// UIText is GET /config/ui-text.
func (h *Handlers) UIText(c *gin.Context) {
	lang := c.DefaultQuery("lang", h.svc.Languages().InitialLanguage)
	c.JSON(http.StatusOK, gin.H{"language": lang, "messages": h.svc.Languages().UIText(lang)})
}

// Greeting is GET /config/greeting.
func (h *Handlers) Greeting(c *gin.Context) {
	lang := c.DefaultQuery("lang", h.svc.Languages().InitialLanguage)
	name := c.DefaultQuery("name", "고객님")
	c.JSON(http.StatusOK, gin.H{"greeting": h.svc.Languages().Greeting(lang, name)})
}

// LanguageInstruction is GET /config/language-instruction.
func (h *Handlers) LanguageInstruction(c *gin.Context) {
	lang := c.DefaultQuery("lang", h.svc.Languages().InitialLanguage)
	c.JSON(http.StatusOK, gin.H{"instruction": h.svc.Languages().LanguageInstruction(lang)})
}

// DetectLanguage is POST /utils/detect-language.
func (h *Handlers) DetectLanguage(c *gin.Context) {
	var req DetectLanguageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Detail: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"language": h.svc.Languages().DetectLanguage(req.Text)})
}

// Generate is POST /api/llm/generate: one conversational turn, including
// confirmation detection and auto-save.
func (h *Handlers) Generate(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Detail: "messages 배열이 필요합니다."})
		return
	}

	result, err := h.svc.Chat(c.Request.Context(), req.Messages)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, ChatResponse{
		Message:        result.Message,
		OrderConfirmed: result.OrderConfirmed,
		OrderID:        result.OrderID,
		Order:          result.Order,
	})
}

// Transcribe is POST /api/stt/transcribe (multipart: file, optional
// language form field or query param).
func (h *Handlers) Transcribe(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Detail: "file 필드가 필요합니다."})
		return
	}
	if fileHeader.Size > maxAudioBytes {
		c.JSON(http.StatusRequestEntityTooLarge, errorResponse{Detail: "오디오 파일이 너무 큽니다."})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Detail: "오디오 파일을 읽을 수 없습니다."})
		return
	}
	defer f.Close()

	audio, err := io.ReadAll(io.LimitReader(f, maxAudioBytes+1))
	if err != nil || len(audio) == 0 {
		c.JSON(http.StatusBadRequest, errorResponse{Detail: "빈 오디오 파일입니다."})
		return
	}

	language := c.PostForm("language")
	if language == "" {
		language = c.Query("language")
	}

	transcript, err := h.stt.Transcribe(c.Request.Context(), fileHeader.Filename, audio, language)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transcript": transcript})
}

// ConfirmOrder is POST /api/order/confirm.
func (h *Handlers) ConfirmOrder(c *gin.Context) {
	var req OrderConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Detail: "history가 비어 있습니다."})
		return
	}

	record, err := h.svc.BuildOrderRecord(c.Request.Context(), req.History, req.FinalMessage, "")
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, OrderConfirmResponse{
		OrderID:     record.OrderID,
		ConfirmedAt: record.ConfirmedAt,
		Order:       record.Summary,
	})
}

// ChangeOrder is POST /api/order/change.
func (h *Handlers) ChangeOrder(c *gin.Context) {
	var req OrderChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Detail: "history와 orderId가 필요합니다."})
		return
	}

	record, err := h.svc.ChangeOrder(c.Request.Context(), req.History, req.FinalMessage, req.OrderID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, OrderConfirmResponse{
		OrderID:     record.OrderID,
		ConfirmedAt: record.ConfirmedAt,
		Order:       record.Summary,
	})
}

// writeError maps pipeline errors to HTTP statuses.
func (h *Handlers) writeError(c *gin.Context, err error) {
	var (
		cfgErr      *llm.ConfigurationError
		depErr      *llm.DependencyUnavailableError
		upstreamErr *llm.UpstreamError
		emptyErr    *llm.EmptyResponseError
		summaryErr  *llm.EmptySummaryError
	)

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, orders.ErrNotFound):
		status = http.StatusNotFound
	case errors.As(err, &cfgErr), errors.As(err, &depErr):
		status = http.StatusInternalServerError
	case errors.As(err, &upstreamErr), errors.As(err, &emptyErr), errors.As(err, &summaryErr):
		status = http.StatusBadGateway
	}

	log.Error().Err(err).Int("status", status).Msg("request failed")
	c.JSON(status, errorResponse{Detail: err.Error()})
}
