package controller

import (
	"encoding/json"
	"net/http"
	"time"

	"slingshotBot/pkg/constants/futureType"
	"slingshotBot/pkg/data/domains"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type PositionSource interface {
	Position() *domains.Position
}

type OpeningSwitch interface {
	IsOpeningEnabled() bool
	EnableOpening()
	DisableOpening()
	DisableOpeningFor(duration time.Duration)
}

type positionResponse struct {
	Symbol          string           `json:"symbol"`
	Side            string           `json:"side"`
	OpenedAt        time.Time        `json:"openedAt"`
	AveragePrice    decimal.Decimal  `json:"averagePrice"`
	CurrentQuantity decimal.Decimal  `json:"currentQuantity"`
	RealizedResult  decimal.Decimal  `json:"realizedResult"`
	Addons          int              `json:"addons"`
	Fixes           int              `json:"fixes"`
	StopPrice       *decimal.Decimal `json:"stopPrice,omitempty"`
	StopOrderId     *int64           `json:"stopOrderId,omitempty"`
}

type tradingResponse struct {
	OpeningEnabled bool `json:"openingEnabled"`
}

func InitControllers(positions []PositionSource, openingSwitch OpeningSwitch) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	InitHealthCheckEndpoints(r)
	InitMetricsEndpoints(r)
	InitPositionEndpoints(r, positions)
	InitTradingEndpoints(r, openingSwitch)
	return r
}

func InitHealthCheckEndpoints(r *chi.Mux) {
	r.Get("/healthcheck", func(res http.ResponseWriter, req *http.Request) {})
}

func InitMetricsEndpoints(r *chi.Mux) {
	r.Handle("/metrics", promhttp.Handler())
}

func InitPositionEndpoints(r *chi.Mux, positions []PositionSource) {
	r.Get("/positions", func(res http.ResponseWriter, req *http.Request) {
		response := make([]positionResponse, 0, len(positions))
		for _, source := range positions {
			if position := source.Position(); position != nil {
				response = append(response, toPositionResponse(position))
			}
		}
		writeJson(res, response)
	})
}

func InitTradingEndpoints(r *chi.Mux, openingSwitch OpeningSwitch) {
	r.Route("/trading", func(r chi.Router) {
		r.Get("/", func(res http.ResponseWriter, req *http.Request) {
			writeJson(res, tradingResponse{OpeningEnabled: openingSwitch.IsOpeningEnabled()})
		})
		r.Post("/enable", func(res http.ResponseWriter, req *http.Request) {
			openingSwitch.EnableOpening()
			writeJson(res, tradingResponse{OpeningEnabled: openingSwitch.IsOpeningEnabled()})
		})
		// optional ?for=1h re-enables opening after the duration
		r.Post("/disable", func(res http.ResponseWriter, req *http.Request) {
			if value := req.URL.Query().Get("for"); value != "" {
				duration, err := time.ParseDuration(value)
				if err != nil || duration <= 0 {
					http.Error(res, "invalid duration: "+value, http.StatusBadRequest)
					return
				}
				openingSwitch.DisableOpeningFor(duration)
			} else {
				openingSwitch.DisableOpening()
			}
			writeJson(res, tradingResponse{OpeningEnabled: openingSwitch.IsOpeningEnabled()})
		})
	})
}

func toPositionResponse(position *domains.Position) positionResponse {
	response := positionResponse{
		Symbol:          position.Instrument.Symbol,
		Side:            futureType.GetString(position.Side),
		OpenedAt:        position.OpenedAt,
		AveragePrice:    position.AveragePrice,
		CurrentQuantity: position.CurrentQuantity,
		RealizedResult:  position.RealizedResult,
		Addons:          position.Addons,
		Fixes:           position.Fixes,
	}
	if position.StopLoss != nil {
		response.StopPrice = &position.StopLoss.Price
		response.StopOrderId = &position.StopLoss.OrderId
	}
	return response
}

func writeJson(res http.ResponseWriter, body interface{}) {
	res.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(res).Encode(body); err != nil {
		zap.S().Errorf("Error during writing response: %s", err.Error())
	}
}
