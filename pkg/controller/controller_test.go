package controller

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"slingshotBot/pkg/constants/futureType"
	"slingshotBot/pkg/constants/orderStatus"
	"slingshotBot/pkg/data/domains"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type positionStub struct {
	position *domains.Position
}

func (p *positionStub) Position() *domains.Position {
	return p.position
}

type switchStub struct {
	enabled     bool
	disabledFor time.Duration
}

func (s *switchStub) IsOpeningEnabled() bool { return s.enabled }
func (s *switchStub) EnableOpening()         { s.enabled = true }
func (s *switchStub) DisableOpening()        { s.enabled = false }
func (s *switchStub) DisableOpeningFor(duration time.Duration) {
	s.enabled = false
	s.disabledFor = duration
}

func serve(t *testing.T, handler http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(method, target, nil))
	return recorder
}

func TestHealthcheck(t *testing.T) {
	router := InitControllers(nil, &switchStub{})

	assert.Equal(t, http.StatusOK, serve(t, router, http.MethodGet, "/healthcheck").Code)
}

func TestMetrics(t *testing.T) {
	router := InitControllers(nil, &switchStub{})

	response := serve(t, router, http.MethodGet, "/metrics")

	assert.Equal(t, http.StatusOK, response.Code)
	assert.Contains(t, response.Body.String(), "go_goroutines")
}

func TestPositions(t *testing.T) {
	open := &domains.Position{
		Instrument:      &domains.Instrument{Symbol: "ETHUSDT"},
		Side:            futureType.SHORT,
		AveragePrice:    decimal.RequireFromString("1650.5"),
		CurrentQuantity: decimal.RequireFromString("0.3"),
		RealizedResult:  decimal.RequireFromString("-0.2"),
		Addons:          1,
		StopLoss:        &domains.StopLoss{OrderId: 42, Price: decimal.RequireFromString("1782.54"), Kind: orderStatus.STOP_MARKET},
	}
	router := InitControllers([]PositionSource{&positionStub{position: open}, &positionStub{}}, &switchStub{})

	response := serve(t, router, http.MethodGet, "/positions")

	require.Equal(t, http.StatusOK, response.Code)
	var body []map[string]interface{}
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, "ETHUSDT", body[0]["symbol"])
	assert.Equal(t, "SHORT", body[0]["side"])
	assert.Equal(t, "1650.5", body[0]["averagePrice"])
	assert.Equal(t, "1782.54", body[0]["stopPrice"])
	assert.Equal(t, float64(42), body[0]["stopOrderId"])
}

func TestPositions_emptyList(t *testing.T) {
	router := InitControllers([]PositionSource{&positionStub{}}, &switchStub{})

	response := serve(t, router, http.MethodGet, "/positions")

	assert.JSONEq(t, "[]", response.Body.String())
}

func TestTradingSwitch(t *testing.T) {
	openingSwitch := &switchStub{enabled: true}
	router := InitControllers(nil, openingSwitch)

	response := serve(t, router, http.MethodPost, "/trading/disable")
	assert.JSONEq(t, `{"openingEnabled": false}`, response.Body.String())
	assert.False(t, openingSwitch.enabled)

	response = serve(t, router, http.MethodPost, "/trading/enable")
	assert.JSONEq(t, `{"openingEnabled": true}`, response.Body.String())

	response = serve(t, router, http.MethodGet, "/trading")
	assert.JSONEq(t, `{"openingEnabled": true}`, response.Body.String())
}

func TestTradingSwitch_disableFor(t *testing.T) {
	openingSwitch := &switchStub{enabled: true}
	router := InitControllers(nil, openingSwitch)

	response := serve(t, router, http.MethodPost, "/trading/disable?for=2h")

	assert.Equal(t, http.StatusOK, response.Code)
	assert.Equal(t, 2*time.Hour, openingSwitch.disabledFor)

	response = serve(t, router, http.MethodPost, "/trading/disable?for=soon")
	assert.Equal(t, http.StatusBadRequest, response.Code)
}

func TestTradingSwitch_rejectsGetOnMutation(t *testing.T) {
	router := InitControllers(nil, &switchStub{enabled: true})

	assert.Equal(t, http.StatusMethodNotAllowed, serve(t, router, http.MethodGet, "/trading/disable").Code)
}
