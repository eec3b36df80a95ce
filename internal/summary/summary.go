// Package summary converts a confirmed conversation into a typed order
// snapshot via a constrained generation pass.
//
// DESIGN: The extraction model is instructed to emit exactly nine
// `key = value` lines (the line protocol). Parsing is a tolerant,
// data-driven table of {key, coercion}: unknown keys are skipped, later
// occurrences of a key overwrite earlier ones, and missing keys stay null.
// Adding a field is a one-line change to the table.
package summary

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mrdaebak/voice-order-gateway/internal/llm"
)

// OrderSummary is the fixed-schema order snapshot. Every optional field is
// nil unless explicitly derived from text. OrderID and OrderTime are set by
// the order pipeline, never by the model.
type OrderSummary struct {
	CustomerName    *string `json:"customerName"`
	CustomerAddress *string `json:"customerAddress"`
	MenuName        *string `json:"menuName"`
	MenuStyle       *string `json:"menuStyle"`
	MenuItems       *string `json:"menuItems"`    // comma-separated item=qty pairs
	DeliveryTime    *string `json:"deliveryTime"` // ISO-8601
	Quantity        *int    `json:"quantity"`
	CouponCode      *string `json:"couponCode"`
	UseCoupon       *bool   `json:"useCoupon"`

	OrderID   string `json:"orderId,omitempty"`
	OrderTime string `json:"orderTime,omitempty"` // ISO-8601
}

// field binds a protocol key to its coercion and storage.
type field struct {
	key    string
	assign func(*OrderSummary, string)
	render func(*OrderSummary) string
}

// nullValues are raw values that coerce to null, compared case-insensitively.
var nullValues = map[string]bool{
	"null": true,
	"-":    true,
	"none": true,
	"":     true,
}

func stringField(key string, get func(*OrderSummary) **string) field {
	return field{
		key: key,
		assign: func(s *OrderSummary, raw string) {
			v := raw
			*get(s) = &v
		},
		render: func(s *OrderSummary) string {
			if p := *get(s); p != nil {
				return *p
			}
			return "null"
		},
	}
}

// fields is the protocol table. Order matters only for Format, which emits
// the nine lines in this order.
var fields = []field{
	stringField("customerName", func(s *OrderSummary) **string { return &s.CustomerName }),
	stringField("customerAddress", func(s *OrderSummary) **string { return &s.CustomerAddress }),
	stringField("menuName", func(s *OrderSummary) **string { return &s.MenuName }),
	stringField("menuStyle", func(s *OrderSummary) **string { return &s.MenuStyle }),
	stringField("menuItems", func(s *OrderSummary) **string { return &s.MenuItems }),
	stringField("deliveryTime", func(s *OrderSummary) **string { return &s.DeliveryTime }),
	{
		key: "quantity",
		assign: func(s *OrderSummary, raw string) {
			// Non-integer text coerces to null rather than failing the parse.
			if n, err := strconv.Atoi(raw); err == nil {
				s.Quantity = &n
			} else {
				s.Quantity = nil
			}
		},
		render: func(s *OrderSummary) string {
			if s.Quantity != nil {
				return strconv.Itoa(*s.Quantity)
			}
			return "null"
		},
	},
	stringField("couponCode", func(s *OrderSummary) **string { return &s.CouponCode }),
	{
		key: "useCoupon",
		assign: func(s *OrderSummary, raw string) {
			switch strings.ToLower(raw) {
			case "true":
				v := true
				s.UseCoupon = &v
			case "false":
				v := false
				s.UseCoupon = &v
			default:
				s.UseCoupon = nil
			}
		},
		render: func(s *OrderSummary) string {
			if s.UseCoupon != nil {
				return strconv.FormatBool(*s.UseCoupon)
			}
			return "null"
		},
	},
}

// Keys returns the nine protocol keys in emission order.
func Keys() []string {
	keys := make([]string, len(fields))
	for i, f := range fields {
		keys[i] = f.key
	}
	return keys
}

// Parse converts raw line-protocol text into an OrderSummary.
//
// Rules: blank lines and lines without '=' are ignored; the split is on the
// first '=' only; keys outside the protocol table are ignored; the last
// occurrence of a key wins. Empty or whitespace-only input fails with
// llm.EmptySummaryError.
func Parse(raw string) (*OrderSummary, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, &llm.EmptySummaryError{}
	}

	byKey := make(map[string]field, len(fields))
	for _, f := range fields {
		byKey[f.key] = f
	}

	var s OrderSummary
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !strings.Contains(line, "=") {
			continue
		}
		key, value, _ := strings.Cut(line, "=")
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		f, ok := byKey[key]
		if !ok {
			continue
		}
		if nullValues[strings.ToLower(value)] {
			clearField(&s, key)
			continue
		}
		f.assign(&s, value)
	}
	return &s, nil
}

// clearField resets a key back to null; used when a later line explicitly
// carries a null value for a key an earlier line had set.
func clearField(s *OrderSummary, key string) {
	switch key {
	case "customerName":
		s.CustomerName = nil
	case "customerAddress":
		s.CustomerAddress = nil
	case "menuName":
		s.MenuName = nil
	case "menuStyle":
		s.MenuStyle = nil
	case "menuItems":
		s.MenuItems = nil
	case "deliveryTime":
		s.DeliveryTime = nil
	case "quantity":
		s.Quantity = nil
	case "couponCode":
		s.CouponCode = nil
	case "useCoupon":
		s.UseCoupon = nil
	}
}

// Format renders the summary back into the nine-line protocol. Mostly used
// by tests to assert the parse/format round trip.
func Format(s *OrderSummary) string {
	var b strings.Builder
	for _, f := range fields {
		fmt.Fprintf(&b, "%s = %s\n", f.key, f.render(s))
	}
	return b.String()
}
