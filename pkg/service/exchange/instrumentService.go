package exchange

import (
	"context"
	"sort"
	"strings"
	"time"

	"slingshotBot/pkg/api"
	"slingshotBot/pkg/data/domains"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

const tradingStatus = "TRADING"

func NewInstrumentService(exchangeApi api.ExchangeApi, quoteAsset string, whitelist []string) *InstrumentService {
	allowed := make(map[string]bool, len(whitelist))
	for _, symbol := range whitelist {
		allowed[strings.ToUpper(strings.TrimSpace(symbol))] = true
	}
	return &InstrumentService{
		exchangeApi: exchangeApi,
		quoteAsset:  quoteAsset,
		whitelist:   allowed,
		retryPeriod: 5 * time.Second,
	}
}

// InstrumentService resolves the tradable universe and its precision filters.
type InstrumentService struct {
	exchangeApi api.ExchangeApi
	quoteAsset  string
	whitelist   map[string]bool
	retryPeriod time.Duration
}

// LoadInstruments keeps asking the exchange until it answers or ctx is done.
func (s *InstrumentService) LoadInstruments(ctx context.Context) ([]*domains.Instrument, error) {
	infos, err := backoff.Retry(ctx, func() ([]api.InstrumentInfo, error) {
		return s.exchangeApi.GetInstruments(ctx)
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(s.retryPeriod)),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, next time.Duration) {
			zap.S().Errorf("Error during GetInstruments, retry in %v: %s", next, err.Error())
		}),
	)
	if err != nil {
		return nil, err
	}

	instruments := make([]*domains.Instrument, 0, len(infos))
	for i := range infos {
		info := infos[i]
		if !s.accept(info) {
			continue
		}
		instrument := info.Instrument
		instruments = append(instruments, &instrument)
	}
	sort.Slice(instruments, func(i, j int) bool {
		return instruments[i].Symbol < instruments[j].Symbol
	})

	zap.S().Infof("Loaded %d instruments quoted in %s", len(instruments), s.quoteAsset)
	return instruments, nil
}

func (s *InstrumentService) accept(info api.InstrumentInfo) bool {
	if info.Status != "" && info.Status != tradingStatus {
		return false
	}
	if !strings.HasSuffix(info.Instrument.Symbol, s.quoteAsset) {
		return false
	}
	if info.QuoteAsset != "" && info.QuoteAsset != s.quoteAsset {
		return false
	}
	if !info.Instrument.PriceStep.IsPositive() || !info.Instrument.LotStep.IsPositive() {
		return false
	}
	return len(s.whitelist) == 0 || s.whitelist[info.Instrument.Symbol]
}
