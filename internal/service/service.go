// Package service orchestrates the ordering conversation: reply
// generation, confirmation detection, order summarization, and
// persistence.
//
// FLOW: caller → Router → backend → sanitized reply → confirmation
// detection → (on confirmation) summary pass → Parse → identifier
// selection → Store.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/pkoukk/tiktoken-go"
	"github.com/rs/zerolog/log"

	"github.com/mrdaebak/voice-order-gateway/internal/catalog"
	"github.com/mrdaebak/voice-order-gateway/internal/conversation"
	"github.com/mrdaebak/voice-order-gateway/internal/llm"
	"github.com/mrdaebak/voice-order-gateway/internal/orders"
	"github.com/mrdaebak/voice-order-gateway/internal/summary"
)

// promptEncoding is the BPE used for prompt-size accounting. Counting is
// advisory: the actual tokenizer differs per backend, but o200k is close
// enough to warn on oversized prompts.
const promptEncoding = "o200k_base"

// Service wires the generation pipeline to the catalog, conversation data,
// and order store.
type Service struct {
	router        *llm.Router
	store         orders.Store
	catalog       *catalog.Catalog
	languages     *conversation.Data
	assumedDate   string
	contextWindow int
	encoder       *tiktoken.Tiktoken // nil when the encoding is unavailable
}

// New creates the service. The token encoder is optional; prompt
// accounting is skipped when it cannot be loaded (e.g. offline first run).
func New(router *llm.Router, store orders.Store, cat *catalog.Catalog, languages *conversation.Data, assumedDate string, contextWindow int) *Service {
	encoder, err := tiktoken.GetEncoding(promptEncoding)
	if err != nil {
		log.Warn().Err(err).Msg("token encoder unavailable, prompt accounting disabled")
		encoder = nil
	}
	return &Service{
		router:        router,
		store:         store,
		catalog:       cat,
		languages:     languages,
		assumedDate:   assumedDate,
		contextWindow: contextWindow,
		encoder:       encoder,
	}
}

// Languages exposes the conversation data set for the route layer.
func (s *Service) Languages() *conversation.Data { return s.languages }

// Catalog exposes the catalog for the route layer.
func (s *Service) Catalog() *catalog.Catalog { return s.catalog }

// Provider returns the active generation provider id.
func (s *Service) Provider() string { return s.router.Provider() }

// ChatResult is the outcome of one conversational turn.
type ChatResult struct {
	Message        string
	OrderConfirmed bool
	OrderID        string
	Order          *summary.OrderSummary
}

// GenerateReply produces the assistant's next reply for the history. The
// system prompt is prepended unless the caller already supplied one.
func (s *Service) GenerateReply(ctx context.Context, history []llm.Message) (string, error) {
	scoped := s.withSystemPrompt(history)
	s.accountTokens(scoped)
	return s.router.Route(ctx, scoped, llm.ModeChat)
}

// Chat runs a full turn: generate a reply, detect confirmation, and on
// confirmation materialize and persist the order.
func (s *Service) Chat(ctx context.Context, history []llm.Message) (*ChatResult, error) {
	reply, err := s.GenerateReply(ctx, history)
	if err != nil {
		return nil, err
	}
	confirmed, record, clean := s.DetectAndSummarize(ctx, history, reply)
	result := &ChatResult{Message: clean, OrderConfirmed: confirmed}
	if record != nil {
		result.OrderID = record.OrderID
		result.Order = record.Summary
	}
	return result, nil
}

// DetectAndSummarize checks the reply for the confirmation sentinel and,
// when present, runs the summary pipeline and persists the order.
//
// A summarization or persistence failure must not discard the generated
// reply: the user still gets the clean text, with confirmation marked
// false and the failure logged.
func (s *Service) DetectAndSummarize(ctx context.Context, history []llm.Message, reply string) (bool, *orders.Record, string) {
	token := s.languages.ConfirmationToken
	if !llm.ContainsConfirmation(reply, token) {
		return false, nil, reply
	}

	clean := llm.StripConfirmation(reply, token)

	record, err := s.BuildOrderRecord(ctx, history, reply, "")
	if err != nil {
		log.Error().Err(err).Msg("failed to materialize confirmed order, returning reply unconfirmed")
		return false, nil, clean
	}
	return true, record, clean
}

// BuildOrderRecord derives a structured order from the conversation and
// saves it. existingID is set for change flows and always wins over a
// model-suggested id.
func (s *Service) BuildOrderRecord(ctx context.Context, history []llm.Message, finalMessage, existingID string) (*orders.Record, error) {
	prompt := summary.BuildPrompt(summary.PromptInput{
		History:      history,
		FinalMessage: finalMessage,
		AssumedDate:  s.assumedDate,
		ItemGuide:    s.catalog.MenuItemGuide(),
		StyleGuide:   s.catalog.StyleGuide(),
	})
	s.accountTokens(prompt)

	raw, err := s.router.Route(ctx, prompt, llm.ModeSummary)
	if err != nil {
		return nil, fmt.Errorf("summary generation failed: %w", err)
	}

	parsed, err := summary.Parse(raw)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	confirmedAt := now.Format("2006-01-02T15:04:05.000000")

	orderType := orders.TypeConfirm
	if existingID != "" {
		orderType = orders.TypeChange
	}

	parsed.OrderID = orders.ChooseID(existingID, parsed.OrderID, now)
	parsed.OrderTime = confirmedAt

	record := &orders.Record{
		OrderType:   orderType,
		OrderID:     parsed.OrderID,
		ConfirmedAt: confirmedAt,
		Summary:     parsed,
	}
	if err := s.store.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to persist order %s: %w", record.OrderID, err)
	}

	log.Info().
		Str("order_id", record.OrderID).
		Str("order_type", record.OrderType).
		Msg("order saved")
	return record, nil
}

// ChangeOrder re-summarizes the conversation for an existing order. The id
// must already exist in the store.
func (s *Service) ChangeOrder(ctx context.Context, history []llm.Message, finalMessage, orderID string) (*orders.Record, error) {
	exists, err := s.store.Exists(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up order %s: %w", orderID, err)
	}
	if !exists {
		return nil, orders.ErrNotFound
	}
	return s.BuildOrderRecord(ctx, history, finalMessage, orderID)
}

// withSystemPrompt prepends the catalog system prompt unless the first
// message already carries one.
func (s *Service) withSystemPrompt(history []llm.Message) []llm.Message {
	if len(history) > 0 && history[0].Role == llm.RoleSystem {
		return history
	}
	scoped := make([]llm.Message, 0, len(history)+1)
	scoped = append(scoped, llm.Message{Role: llm.RoleSystem, Content: s.catalog.SystemPrompt()})
	return append(scoped, history...)
}

// accountTokens logs the prompt size and warns when it exceeds the
// configured context window. Advisory only: nothing is truncated here.
func (s *Service) accountTokens(messages []llm.Message) {
	if s.encoder == nil {
		return
	}
	total := 0
	for _, msg := range messages {
		total += len(s.encoder.Encode(msg.Content, nil, nil))
	}
	if s.contextWindow > 0 && total > s.contextWindow {
		log.Warn().
			Int("prompt_tokens", total).
			Int("context_window", s.contextWindow).
			Msg("prompt exceeds configured context window")
		return
	}
	log.Debug().Int("prompt_tokens", total).Msg("prompt token count")
}
