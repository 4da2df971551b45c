package util

import (
	"testing"

	"slingshotBot/pkg/constants/futureType"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func TestQuantizeQty(t *testing.T) {
	cases := []struct {
		qty, lotStep, minQty, expected string
	}{
		{"1.23456", "0.001", "0.001", "1.234"},
		{"0.0004", "0.001", "0.001", "0.001"},
		{"17", "5", "5", "15"},
		{"3", "5", "5", "5"},
		{"2.5", "0.5", "1", "2.5"},
		{"0", "0.01", "0.01", "0.01"},
	}

	for _, c := range cases {
		actual := QuantizeQty(d(c.qty), d(c.lotStep), d(c.minQty))
		assert.Truef(t, d(c.expected).Equal(actual), "qty %s: expected %s, got %s", c.qty, c.expected, actual)
	}
}

func TestQuantizeQtyIsMultipleOfLotStepAndAboveMin(t *testing.T) {
	lotSteps := []string{"0.001", "0.01", "0.1", "1", "0.5"}
	quantities := []string{"0", "0.0001", "0.7777", "1.999", "10.05", "1234.5678"}

	for _, lotStep := range lotSteps {
		for _, qty := range quantities {
			step := d(lotStep)
			minQty := step.Mul(decimal.NewFromInt(2))
			actual := QuantizeQty(d(qty), step, minQty)

			assert.True(t, actual.Mod(step).IsZero(), "%s is not a multiple of %s", actual, step)
			assert.True(t, actual.GreaterThanOrEqual(minQty), "%s is below min %s", actual, minQty)
		}
	}
}

func TestQuantizePrice(t *testing.T) {
	assert.True(t, d("92.01").Equal(QuantizePrice(d("92.0001"), d("0.01"), futureType.BUY)))
	assert.True(t, d("92.00").Equal(QuantizePrice(d("92.0099"), d("0.01"), futureType.SELL)))
	assert.True(t, d("92").Equal(QuantizePrice(d("92"), d("0.5"), futureType.BUY)))
}

func TestQuantizeAveragePrice(t *testing.T) {
	assert.True(t, d("103.5").Equal(QuantizeAveragePrice(d("103.1"), d("0.5"), futureType.LONG)))
	assert.True(t, d("103").Equal(QuantizeAveragePrice(d("103.1"), d("0.5"), futureType.SHORT)))
}

func TestQuantityForQuote(t *testing.T) {
	assert.True(t, d("0.333").Equal(QuantityForQuote(d("300"), d("100"), d("0.001"), d("0.001"))))
	assert.True(t, d("0.01").Equal(QuantityForQuote(d("30000"), d("10"), d("0.001"), d("0.01"))))
	assert.True(t, QuantityForQuote(decimal.Zero, d("10"), d("0.001"), d("0.01")).IsZero())
}

func TestCalculatePriceForStopLoss(t *testing.T) {
	assert.True(t, d("92").Equal(CalculatePriceForStopLoss(d("100"), d("0.08"), futureType.LONG)))
	assert.True(t, d("108").Equal(CalculatePriceForStopLoss(d("100"), d("0.08"), futureType.SHORT)))
}

func TestCalculateProfitInPercent(t *testing.T) {
	assert.True(t, d("10").Equal(CalculateProfitInPercent(d("100"), d("110"), futureType.LONG)))
	assert.True(t, d("-10").Equal(CalculateProfitInPercent(d("100"), d("110"), futureType.SHORT)))
}
