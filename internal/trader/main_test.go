package trader

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"upbit_bot/internal/models"
	"upbit_bot/internal/modules/config"
	"upbit_bot/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type fakeGateway struct {
	marketsErr error
	marketErr  error

	ticker    models.Ticker
	tickerErr error

	buyOrder models.Order
	buyErr   error

	sellOrder models.Order
	sellErr   error

	loadCalls   int
	tickerCalls int
	buyQtys     []float64
	sellQtys    []float64
}

func (f *fakeGateway) LoadMarkets(ctx context.Context) error {
	f.loadCalls++
	return f.marketsErr
}

func (f *fakeGateway) Market(symbol string) (models.Market, error) {
	if f.marketErr != nil {
		return models.Market{}, f.marketErr
	}
	return models.Market{Symbol: symbol}, nil
}

func (f *fakeGateway) FetchTicker(ctx context.Context, symbol string) (models.Ticker, error) {
	f.tickerCalls++
	if f.tickerErr != nil {
		return models.Ticker{}, f.tickerErr
	}
	return f.ticker, nil
}

func (f *fakeGateway) CreateMarketBuyOrder(ctx context.Context, symbol string, qty float64) (models.Order, error) {
	f.buyQtys = append(f.buyQtys, qty)
	if f.buyErr != nil {
		return models.Order{}, f.buyErr
	}
	return f.buyOrder, nil
}

func (f *fakeGateway) CreateMarketSellOrder(ctx context.Context, symbol string, qty float64) (models.Order, error) {
	f.sellQtys = append(f.sellQtys, qty)
	if f.sellErr != nil {
		return models.Order{}, f.sellErr
	}
	return f.sellOrder, nil
}

type fakeJournal struct {
	records []models.TradeRecord
	err     error
}

func (f *fakeJournal) Append(ctx context.Context, rec models.TradeRecord) error {
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, rec)
	return nil
}

type fakeNotifier struct {
	msgs []string
}

func (f *fakeNotifier) Send(msg string) { f.msgs = append(f.msgs, msg) }

func (f *fakeNotifier) Sendf(format string, args ...any) { f.Send(fmt.Sprintf(format, args...)) }

func (f *fakeNotifier) contains(sub string) bool {
	for _, m := range f.msgs {
		if strings.Contains(m, sub) {
			return true
		}
	}
	return false
}

type fakeStrategy struct {
	sig models.Signal
	err error

	prepErr error

	sigCalls int
	prepares int
	resets   int
}

func (f *fakeStrategy) Name() string { return "fake" }

func (f *fakeStrategy) PollInterval() time.Duration { return time.Millisecond }

func (f *fakeStrategy) GetSignal(ctx context.Context) (models.Signal, error) {
	f.sigCalls++
	return f.sig, f.err
}

func (f *fakeStrategy) Prepare(ctx context.Context) error {
	f.prepares++
	return f.prepErr
}

func (f *fakeStrategy) Reset() { f.resets++ }

var testNow = time.Date(2024, time.May, 20, 10, 30, 0, 0, time.UTC)

func testConfig(budget float64) *config.Config {
	cfg := &config.Config{}
	cfg.Symbol = "BTC/KRW"
	cfg.Budget = budget
	cfg.SafetyFactor = 0.9995
	cfg.ResetHour = 9
	return cfg
}

func newTestManager(gw *fakeGateway, j *fakeJournal, n *fakeNotifier, budget float64) *Manager {
	m := NewManager(gw, j, n, testConfig(budget))
	m.now = func() time.Time { return testNow }
	return m
}
