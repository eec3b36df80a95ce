package summary

import (
	"fmt"
	"strings"

	"github.com/mrdaebak/voice-order-gateway/internal/llm"
)

// PromptInput carries everything the extraction prompt needs.
type PromptInput struct {
	History      []llm.Message
	FinalMessage string

	// AssumedDate fixes "today" so the model resolves relative delivery
	// dates deterministically.
	AssumedDate string

	// ItemGuide and StyleGuide are catalog reference text biasing the
	// model toward in-catalog component and style names.
	ItemGuide  string
	StyleGuide string
}

// BuildPrompt constructs the two-message extraction prompt: a system
// message pinning the exact nine-line output contract, and a user message
// carrying the role-tagged transcript plus the final confirmation text.
func BuildPrompt(in PromptInput) []llm.Message {
	systemLines := []string{
		"You are an expert maître d' that produces structured order snapshots for Mr. Daebak Dinner.",
		"Return plain text with exactly the following nine lines:",
		"customerName = <value or null>",
		"customerAddress = <value or null>",
		"menuName = <value or null>",
		"menuStyle = <value or null>",
		"menuItems = <comma separated list of item=quantity>",
		"deliveryTime = <ISO 8601 datetime or null>",
		"quantity = <integer number or null>",
		"couponCode = <coupon code or coupon name mentioned by customer or null>",
		"useCoupon = <true or false or null>",
		fmt.Sprintf("Use ISO 8601 format (YYYY-MM-DDTHH:mm:ss) for deliveryTime. Assume today is %s and normalize any inferred delivery date to that day unless the customer explicitly requested another date.", in.AssumedDate),
		"For quantity: extract the number of menu sets ordered (e.g., '2개' or 'two' means quantity = 2). If not mentioned, use null.",
		"For couponCode: extract the coupon code or name if the customer mentioned using a coupon (e.g., 'REGULAR10000', '단골 쿠폰', '쿠폰 사용'). If no coupon mentioned, use null.",
		"For useCoupon: set to true if customer mentioned using a coupon, false if they explicitly said not to use one, null if not mentioned.",
		"For deliveryTime: if customer mentioned a specific future date/time for delivery, set it here. If they want immediate delivery or didn't specify, use null.",
		`Do not add extra lines or commentary. Use "null" (without quotes) for missing information. Use "true" or "false" (lowercase, without quotes) for boolean values.`,
		"When the conversation was in Korean, keep the values in Korean; otherwise mirror the customer language.",
	}
	if in.ItemGuide != "" {
		systemLines = append(systemLines, in.ItemGuide)
	}
	if in.StyleGuide != "" {
		systemLines = append(systemLines, in.StyleGuide)
	}

	transcript := make([]string, 0, len(in.History))
	for _, msg := range in.History {
		transcript = append(transcript, fmt.Sprintf("%s: %s", strings.ToUpper(msg.Role), msg.Content))
	}

	userLines := []string{
		"다음은 고객과의 최종 주문 대화 내용입니다.",
		"",
		strings.Join(transcript, "\n"),
		"",
		"최종 안내 메시지:",
		in.FinalMessage,
		"",
		"위 내용을 기준으로 주문 요약을 출력하세요.",
	}

	return []llm.Message{
		{Role: llm.RoleSystem, Content: strings.Join(systemLines, "\n")},
		{Role: llm.RoleUser, Content: strings.Join(userLines, "\n")},
	}
}
