package ledger

import (
	"testing"
	"time"

	"slingshotBot/pkg/constants/futureType"
	"slingshotBot/pkg/constants/orderStatus"
	"slingshotBot/pkg/data/domains"
	"slingshotBot/pkg/service/date"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func assertDecimal(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	assert.True(t, d(expected).Equal(actual), "expected %s, got %s", expected, actual.String())
}

var openTime = time.Date(2023, 3, 1, 12, 0, 0, 0, time.UTC)

func newLedger() (*PositionLedgerService, *date.ClockMock) {
	clock := date.GetClockMock(openTime)
	return NewPositionLedgerService(clock, DefaultConfig()), clock
}

func instrument(priceStep string) *domains.Instrument {
	return &domains.Instrument{Symbol: "ETHUSDT", PriceStep: d(priceStep), LotStep: d("0.001"), MinQty: d("0.001")}
}

func open(t *testing.T, s *PositionLedgerService, side futureType.FuturesType, priceStep, qty, price string) *domains.Position {
	t.Helper()
	position, err := s.Open(instrument(priceStep), side, d(qty), d(price), nil, d("0.05"))
	require.NoError(t, err)
	return position
}

func TestOpen_chargesEntryFee(t *testing.T) {
	s, _ := newLedger()

	position := open(t, s, futureType.LONG, "0.01", "1", "100")

	assertDecimal(t, "-0.04", position.RealizedResult)
	assert.Equal(t, 1, position.Addons)
	assert.Equal(t, 0, position.Fixes)
	assert.Equal(t, openTime, position.LastAddonTime)
	assert.Equal(t, openTime, position.OpenedAt)
	assertDecimal(t, "1", position.OriginalQuantity)
	assert.Nil(t, position.StopLoss)
}

func TestOpen_rejectsEmptyFill(t *testing.T) {
	s, _ := newLedger()

	_, err := s.Open(instrument("0.01"), futureType.LONG, decimal.Zero, d("100"), nil, d("0.05"))

	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestAddon_averageIsQuantizedAgainstPosition(t *testing.T) {
	tests := []struct {
		name      string
		side      futureType.FuturesType
		priceStep string
		addon     string
		want      string
	}{
		{name: "exact average", side: futureType.LONG, priceStep: "0.01", addon: "106", want: "103"},
		{name: "long rounds up", side: futureType.LONG, priceStep: "0.5", addon: "106.2", want: "103.5"},
		{name: "short rounds down", side: futureType.SHORT, priceStep: "0.5", addon: "106.2", want: "103"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newLedger()
			position := open(t, s, tt.side, tt.priceStep, "1", "100")

			require.NoError(t, s.Addon(position, d("1"), d(tt.addon)))

			assertDecimal(t, tt.want, position.AveragePrice)
		})
	}
}

func TestAddon_updatesCountersAndBasis(t *testing.T) {
	s, clock := newLedger()
	position := open(t, s, futureType.LONG, "0.01", "1", "100")
	_, err := s.Fix(position, d("0.4"), d("101"))
	require.NoError(t, err)
	clock.Add(time.Hour)

	require.NoError(t, s.Addon(position, d("2"), d("110")))

	assertDecimal(t, "2.6", position.CurrentQuantity)
	assertDecimal(t, "2.6", position.OriginalQuantity)
	assert.Equal(t, 2, position.Addons)
	assert.Equal(t, openTime.Add(time.Hour), position.LastAddonTime)
}

func TestAddonAllowed_gapBoundary(t *testing.T) {
	s, _ := newLedger()

	long := open(t, s, futureType.LONG, "0.01", "1", "100")
	assert.False(t, s.AddonAllowed(long, d("107.99")))
	assert.True(t, s.AddonAllowed(long, d("108.00")))

	short := open(t, s, futureType.SHORT, "0.01", "1", "100")
	assert.False(t, s.AddonAllowed(short, d("92.01")))
	assert.True(t, s.AddonAllowed(short, d("92.00")))
}

func TestFixAllowed_cooldownAfterAddon(t *testing.T) {
	s, clock := newLedger()
	position := open(t, s, futureType.LONG, "0.01", "1", "100")

	clock.Set(openTime.Add(2*time.Hour + 59*time.Minute))
	assert.False(t, s.FixAllowed(position))

	clock.Set(openTime.Add(3*time.Hour + time.Minute))
	assert.True(t, s.FixAllowed(position))
}

func TestFix_toZeroClosesPosition(t *testing.T) {
	s, _ := newLedger()
	position := open(t, s, futureType.LONG, "0.01", "2", "100")

	result, err := s.Fix(position, d("2"), d("101"))

	require.NoError(t, err)
	assert.True(t, result.Closed)
	assert.Nil(t, result.NewStopPrice)
	assert.True(t, position.IsClosed())
	assertDecimal(t, "0", position.CurrentQuantity)
}

func TestFix_overFixIsClamped(t *testing.T) {
	s, _ := newLedger()
	position := open(t, s, futureType.SHORT, "0.01", "2", "100")

	result, err := s.Fix(position, d("5"), d("90"))

	require.NoError(t, err)
	assert.True(t, result.Closed)
	assertDecimal(t, "2", result.FilledQty)
	assertDecimal(t, "0", position.CurrentQuantity)
	// entry fee 0.08, pnl +20, exit fee 0.072
	assertDecimal(t, "19.848", position.RealizedResult)
}

func TestFix_rejectsNonPositiveQuantityAndClosedPosition(t *testing.T) {
	s, _ := newLedger()
	position := open(t, s, futureType.LONG, "0.01", "1", "100")

	_, err := s.Fix(position, decimal.Zero, d("100"))
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = s.Fix(position, d("1"), d("100"))
	require.NoError(t, err)

	_, err = s.Fix(position, d("1"), d("100"))
	assert.ErrorIs(t, err, ErrNoPosition)
}

func TestLifecycle_openAddonFixClose(t *testing.T) {
	s, clock := newLedger()
	position := open(t, s, futureType.LONG, "0.01", "1", "100")

	require.NoError(t, s.Addon(position, d("1"), d("106")))
	assertDecimal(t, "103", position.AveragePrice)
	assertDecimal(t, "-0.0824", position.RealizedResult)

	clock.Add(4 * time.Hour)
	fixed, err := s.Fix(position, d("1"), d("110"))
	require.NoError(t, err)
	assert.False(t, fixed.Closed)
	assertDecimal(t, "6.8736", position.RealizedResult)
	assertDecimal(t, "103", position.AveragePrice)
	assert.Equal(t, 1, position.Fixes)

	clock.Add(time.Hour)
	closed, err := s.Fix(position, s.CloseQty(position), d("108"))
	require.NoError(t, err)
	assert.True(t, closed.Closed)
	assertDecimal(t, "11.8304", position.RealizedResult)

	statistic := s.Statistics(position)
	assert.Equal(t, "ETHUSDT", statistic.Symbol)
	assert.Equal(t, 2, statistic.TotalAddons)
	assert.Equal(t, 2, statistic.TotalFixes)
	assertDecimal(t, "2", statistic.MaxQuantity)
	assertDecimal(t, "0", statistic.CurrentQuantity)
	assertDecimal(t, "11.8304", statistic.Result)
	require.True(t, statistic.ClosedAt.Valid)
	assert.Equal(t, openTime.Add(5*time.Hour), statistic.ClosedAt.Time)
}

func TestApplyFill_routesBySide(t *testing.T) {
	s, _ := newLedger()
	position := open(t, s, futureType.SHORT, "0.01", "1", "100")

	result, err := s.ApplyFill(position, futureType.SELL, d("1"), d("90"))
	require.NoError(t, err)
	assert.False(t, result.Closed)
	assertDecimal(t, "2", position.CurrentQuantity)
	assertDecimal(t, "95", position.AveragePrice)

	result, err = s.ApplyFill(position, futureType.BUY, d("2"), d("95"))
	require.NoError(t, err)
	assert.True(t, result.Closed)
}

func withStop(position *domains.Position, kind orderStatus.OrderType, price string) *domains.Position {
	position.StopLoss = &domains.StopLoss{OrderId: 7, Price: d(price), Kind: kind}
	return position
}

func TestFix_recommendsTighterStopForLong(t *testing.T) {
	s, _ := newLedger()
	position := withStop(open(t, s, futureType.LONG, "0.1", "2", "100"), orderStatus.STOP_MARKET, "95")

	result, err := s.Fix(position, d("1"), d("110"))

	require.NoError(t, err)
	require.NotNil(t, result.NewStopPrice)
	assertDecimal(t, "104.5", *result.NewStopPrice)
}

func TestFix_recommendsTighterStopForShort(t *testing.T) {
	s, _ := newLedger()
	position := withStop(open(t, s, futureType.SHORT, "0.1", "2", "100"), orderStatus.STOP_MARKET, "105")

	result, err := s.Fix(position, d("1"), d("90"))

	require.NoError(t, err)
	require.NotNil(t, result.NewStopPrice)
	assertDecimal(t, "94.5", *result.NewStopPrice)
}

func TestFix_keepsStopWhenNotWarranted(t *testing.T) {
	tests := []struct {
		name     string
		kind     orderStatus.OrderType
		stop     string
		fixPrice string
	}{
		{name: "move too small", kind: orderStatus.STOP_MARKET, stop: "95", fixPrice: "104"},
		{name: "stop already tighter", kind: orderStatus.STOP_MARKET, stop: "105", fixPrice: "110"},
		{name: "trailing is managed by exchange", kind: orderStatus.TRAILING_STOP_MARKET, stop: "95", fixPrice: "120"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newLedger()
			position := withStop(open(t, s, futureType.LONG, "0.1", "2", "100"), tt.kind, tt.stop)

			result, err := s.Fix(position, d("1"), d(tt.fixPrice))

			require.NoError(t, err)
			assert.Nil(t, result.NewStopPrice)
		})
	}
}

func TestFixQty(t *testing.T) {
	s, _ := newLedger()
	inst := &domains.Instrument{Symbol: "ETHUSDT", PriceStep: d("0.01"), LotStep: d("0.001"), MinQty: d("0.1")}

	tests := []struct {
		name     string
		original string
		current  string
		parts    int
		want     string
	}{
		{name: "share of original", original: "10", current: "10", parts: 3, want: "3.333"},
		{name: "remainder below minimum takes all", original: "10", current: "3.4", parts: 3, want: "3.4"},
		{name: "lifted to minimum", original: "0.15", current: "0.15", parts: 2, want: "0.15"},
		{name: "minimum when share is tiny", original: "0.5", current: "0.5", parts: 10, want: "0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			position := &domains.Position{Instrument: inst, OriginalQuantity: d(tt.original), CurrentQuantity: d(tt.current)}

			assertDecimal(t, tt.want, s.FixQty(position, tt.parts))
		})
	}
}

func TestStopPriceFor_quantizedOnStopSide(t *testing.T) {
	s, _ := newLedger()

	long := open(t, s, futureType.LONG, "0.01", "1", "103.33")
	assertDecimal(t, "98.16", s.StopPriceFor(long, d("0.05")))

	short := open(t, s, futureType.SHORT, "0.01", "1", "103.33")
	assertDecimal(t, "108.5", s.StopPriceFor(short, d("0.05")))
}
