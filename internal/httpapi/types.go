package httpapi

import (
	"github.com/mrdaebak/voice-order-gateway/internal/llm"
	"github.com/mrdaebak/voice-order-gateway/internal/summary"
)

// ChatRequest is the body of POST /api/llm/generate.
type ChatRequest struct {
	Messages []llm.Message `json:"messages" binding:"required,min=1,dive"`
}

// ChatResponse is the reply for one conversational turn.
type ChatResponse struct {
	Message        string                `json:"message"`
	OrderConfirmed bool                  `json:"orderConfirmed"`
	OrderID        string                `json:"orderId,omitempty"`
	Order          *summary.OrderSummary `json:"order,omitempty"`
}

// OrderConfirmRequest is the body of POST /api/order/confirm.
type OrderConfirmRequest struct {
	History      []llm.Message `json:"history" binding:"required,min=1,dive"`
	FinalMessage string        `json:"finalMessage"`
}

// OrderChangeRequest is the body of POST /api/order/change.
type OrderChangeRequest struct {
	OrderConfirmRequest
	OrderID string `json:"orderId" binding:"required"`
}

// OrderConfirmResponse is returned by the confirm and change endpoints.
type OrderConfirmResponse struct {
	OrderID     string                `json:"orderId"`
	ConfirmedAt string                `json:"confirmedAt"`
	Order       *summary.OrderSummary `json:"order"`
}

// DetectLanguageRequest is the body of POST /utils/detect-language.
type DetectLanguageRequest struct {
	Text string `json:"text"`
}

// errorResponse is the uniform error body.
type errorResponse struct {
	Detail string `json:"detail"`
}
