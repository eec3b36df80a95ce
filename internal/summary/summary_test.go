package summary

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrdaebak/voice-order-gateway/internal/llm"
)

func TestParse_FullSummary(t *testing.T) {
	raw := strings.Join([]string{
		"customerName = 김철수",
		"customerAddress = 서울시 강남구 테헤란로 123",
		"menuName = 발렌타인 디너",
		"menuStyle = 그랜드",
		"menuItems = 와인=1, 스테이크=1",
		"deliveryTime = 2026-02-14T18:30:00",
		"quantity = 2",
		"couponCode = LOVE2026",
		"useCoupon = true",
	}, "\n")

	s, err := Parse(raw)
	require.NoError(t, err)

	require.NotNil(t, s.CustomerName)
	assert.Equal(t, "김철수", *s.CustomerName)
	require.NotNil(t, s.MenuName)
	assert.Equal(t, "발렌타인 디너", *s.MenuName)
	require.NotNil(t, s.Quantity)
	assert.Equal(t, 2, *s.Quantity)
	require.NotNil(t, s.UseCoupon)
	assert.True(t, *s.UseCoupon)
	require.NotNil(t, s.MenuItems)
	assert.Equal(t, "와인=1, 스테이크=1", *s.MenuItems)
}

func TestParse_NullCoercions(t *testing.T) {
	s, err := Parse("customerName = null\nquantity = 2\nuseCoupon = true")
	require.NoError(t, err)
	assert.Nil(t, s.CustomerName)
	require.NotNil(t, s.Quantity)
	assert.Equal(t, 2, *s.Quantity)
	require.NotNil(t, s.UseCoupon)
	assert.True(t, *s.UseCoupon)

	for _, raw := range []string{"NULL", "None", "-", ""} {
		s, err := Parse("customerName = " + raw + "\nquantity = 1")
		require.NoError(t, err)
		assert.Nil(t, s.CustomerName, "value %q must coerce to null", raw)
	}
}

func TestParse_NonIntegerQuantity(t *testing.T) {
	s, err := Parse("quantity = two")
	require.NoError(t, err)
	assert.Nil(t, s.Quantity)
}

func TestParse_NonBooleanUseCoupon(t *testing.T) {
	s, err := Parse("useCoupon = yes")
	require.NoError(t, err)
	assert.Nil(t, s.UseCoupon)

	s, err = Parse("useCoupon = FALSE")
	require.NoError(t, err)
	require.NotNil(t, s.UseCoupon)
	assert.False(t, *s.UseCoupon)
}

func TestParse_EmptyInput(t *testing.T) {
	for _, raw := range []string{"", "   ", "\n\n"} {
		_, err := Parse(raw)
		var empty *llm.EmptySummaryError
		assert.ErrorAs(t, err, &empty, "input %q", raw)
	}
}

func TestParse_UnknownKeysIgnored(t *testing.T) {
	s, err := Parse("mood = great\ncustomerName = 이영희\ngarbage line without equals")
	require.NoError(t, err)
	require.NotNil(t, s.CustomerName)
	assert.Equal(t, "이영희", *s.CustomerName)
}

func TestParse_LastOccurrenceWins(t *testing.T) {
	s, err := Parse("quantity = 1\nquantity = 3")
	require.NoError(t, err)
	require.NotNil(t, s.Quantity)
	assert.Equal(t, 3, *s.Quantity)

	// A later explicit null clears an earlier value.
	s, err = Parse("customerName = 김철수\ncustomerName = null")
	require.NoError(t, err)
	assert.Nil(t, s.CustomerName)
}

func TestParse_SplitsOnFirstEquals(t *testing.T) {
	s, err := Parse("menuItems = 와인=2, 치즈=1")
	require.NoError(t, err)
	require.NotNil(t, s.MenuItems)
	assert.Equal(t, "와인=2, 치즈=1", *s.MenuItems)
}

func TestFormat_RoundTrip(t *testing.T) {
	raw := strings.Join([]string{
		"customerName = 김철수",
		"customerAddress = null",
		"menuName = 프렌치 디너",
		"menuStyle = 심플",
		"menuItems = null",
		"deliveryTime = 2026-03-01T19:00:00",
		"quantity = 1",
		"couponCode = null",
		"useCoupon = false",
	}, "\n") + "\n"

	s, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, raw, Format(s))
}

func TestFormat_EmptySummaryIsAllNull(t *testing.T) {
	out := Format(&OrderSummary{})
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 9)
	for i, line := range lines {
		assert.Equal(t, Keys()[i]+" = null", line)
	}
}

func TestKeys_Order(t *testing.T) {
	assert.Equal(t, []string{
		"customerName", "customerAddress", "menuName", "menuStyle",
		"menuItems", "deliveryTime", "quantity", "couponCode", "useCoupon",
	}, Keys())
}
