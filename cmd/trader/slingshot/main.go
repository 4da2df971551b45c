package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"slingshotBot"
	"slingshotBot/cmd/bootstrap"
	"slingshotBot/configs"
	"slingshotBot/pkg/api/binance"
	"slingshotBot/pkg/constants/orderStatus"
	"slingshotBot/pkg/controller"
	"slingshotBot/pkg/cron"
	"slingshotBot/pkg/repository"
	"slingshotBot/pkg/service/date"
	"slingshotBot/pkg/service/exchange"
	"slingshotBot/pkg/service/gateway"
	"slingshotBot/pkg/service/indicator"
	"slingshotBot/pkg/service/ledger"
	"slingshotBot/pkg/service/orders"
	signalService "slingshotBot/pkg/service/signal"
	"slingshotBot/pkg/service/statistic"
	"slingshotBot/pkg/service/telegram"
	"slingshotBot/pkg/service/trading"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func main() {
	bootstrap.Run()
	configs.NewRuntimeConfig(viper.GetBool("trading.openingEnabled"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	postgresDb, closeDb := bootstrap.Database()
	defer closeDb()

	repos := repository.NewRepositories(postgresDb)

	useTestnet, _ := strconv.ParseBool(os.Getenv("BINANCE_TESTNET"))
	exchangeApi := binance.NewBinanceFuturesApi(os.Getenv("BINANCE_API_KEY"), os.Getenv("BINANCE_SECRET_KEY"), useTestnet)

	instrumentService := exchange.NewInstrumentService(exchangeApi, viper.GetString("exchange.quoteAsset"), viper.GetStringSlice("exchange.symbols"))
	instruments, err := instrumentService.LoadInstruments(ctx)
	if err != nil {
		zap.S().Fatalf("FAILED to load instruments %s", err.Error())
	}
	zap.S().Infof("Trading %d instruments", len(instruments))

	marketDataService := exchange.NewMarketDataService(exchangeApi)
	slingshotSignalService := signalService.NewSlingshotSignalService(
		marketDataService,
		indicator.NewStochasticRsiService(
			viper.GetInt("signal.rsiLength"),
			viper.GetInt("signal.stochLength"),
			viper.GetInt("signal.smoothK"),
			viper.GetInt("signal.smoothD"),
		),
		indicator.NewSlingshotTrendService(viper.GetInt("signal.fastEma"), viper.GetInt("signal.slowEma")),
		signalService.Config{
			Interval:           viper.GetString("signal.interval"),
			CandleLimit:        viper.GetInt("signal.candleLimit"),
			MainTrend:          viper.GetInt("signal.mainTrend"),
			RequiredVolume:     decimalOf("signal.requiredVolume"),
			RequiredVolatility: decimalOf("signal.requiredVolatility"),
			ExtraFixPercent:    decimalOf("signal.extraFixPercent"),
		},
	)

	sizingService := orders.NewSizingService(exchangeApi, viper.GetInt("exchange.bookDepth"))
	executionGateway := gateway.NewExecutionGateway(exchangeApi, gateway.Config{
		Attempts:            viper.GetUint("gateway.attempts"),
		RetryInterval:       viper.GetDuration("gateway.retryInterval"),
		PollInitialInterval: viper.GetDuration("gateway.pollInitialInterval"),
		PollMaxInterval:     viper.GetDuration("gateway.pollMaxInterval"),
		FillTimeout:         viper.GetDuration("gateway.fillTimeout"),
	})
	ledgerService := ledger.NewPositionLedgerService(date.GetClock(), ledger.Config{
		FeeRate:     decimalOf("trading.feeRate"),
		AddonGap:    decimalOf("trading.addonGap"),
		FixCooldown: viper.GetDuration("trading.fixCooldown"),
	})
	telegramService := telegram.NewTelegramService()

	controllerConfig := trading.Config{
		OrderPercent:    decimalOf("trading.orderPercent"),
		StopLossPercent: decimalOf("trading.stopLossPercent"),
		StopKind:        orderStatus.OrderType(viper.GetString("trading.stopKind")),
		FixParts:        viper.GetInt("trading.fixParts"),
	}

	tradingServices := make([]trading.TradingService, 0, len(instruments))
	positionSources := make([]controller.PositionSource, 0, len(instruments))
	for _, instrument := range instruments {
		positionController := trading.NewPositionControllerService(instrument, slingshotSignalService, sizingService,
			executionGateway, ledgerService, repos.PositionStatistic, telegramService, configs.RuntimeConfig, controllerConfig)
		tradingServices = append(tradingServices, positionController)
		positionSources = append(positionSources, positionController)
	}

	if enabled, err := strconv.ParseBool(os.Getenv("TRADING_ENABLED")); enabled && err == nil {
		cron.InitCronJobs(ctx, tradingServices, uint64(viper.GetInt("trading.intervalMinutes")))
	} else {
		zap.S().Warn("TRADING_ENABLED is off, the trading job is not scheduled")
	}

	statisticJob := cron.NewStatisticJob(statistic.NewStatisticService(repos.PositionStatistic, date.GetClock()), viper.GetString("statistic.cron"))
	defer statisticJob.Stop()

	router := controller.InitControllers(positionSources, configs.RuntimeConfig)

	srv := new(slingshotBot.Server)
	go func() {
		zap.S().Info("Server is doing to be up right now!")
		if err := srv.Run(viper.GetString("server.port"), router); err != nil {
			zap.S().Errorf("Http server stopped: %s", err.Error())
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	zap.S().Info("Trading bot is shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.S().Errorf("error occured on server shutting down: %s", err.Error())
	}
}

func decimalOf(key string) decimal.Decimal {
	value, err := decimal.NewFromString(viper.GetString(key))
	if err != nil {
		panic(fmt.Sprintf("Error during reading %s: %s", key, err.Error()))
	}
	return value
}
