package trader

import (
	"context"
	"errors"
	"testing"
	"time"

	"upbit_bot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerBuyOpensPosition(t *testing.T) {
	gw := &fakeGateway{
		ticker:   models.Ticker{Last: 100},
		buyOrder: models.Order{ID: "ord-1", AvgPrice: 101, FilledQty: 49.5},
	}
	n := &fakeNotifier{}
	m := newTestManager(gw, &fakeJournal{}, n, 5000)

	require.NoError(t, m.Buy(context.Background()))

	// бюджет 5000 * 0.9995 / 100
	require.Len(t, gw.buyQtys, 1)
	assert.InDelta(t, 49.975, gw.buyQtys[0], 1e-9)

	require.True(t, m.HasPosition())
	assert.InDelta(t, 101, m.pos.EntryPrice, 1e-9)
	assert.InDelta(t, 49.5, m.pos.Quantity, 1e-9)
	assert.Equal(t, testNow, m.pos.EntryTime)
	assert.True(t, n.contains("Покупка"))
}

func TestManagerBuyFallsBackToQuote(t *testing.T) {
	// биржа не отдала исполнение: живём с тикером и расчётным объёмом
	gw := &fakeGateway{
		ticker:   models.Ticker{Last: 100},
		buyOrder: models.Order{ID: "ord-1"},
	}
	m := newTestManager(gw, &fakeJournal{}, &fakeNotifier{}, 5000)

	require.NoError(t, m.Buy(context.Background()))

	require.True(t, m.HasPosition())
	assert.InDelta(t, 100, m.pos.EntryPrice, 1e-9)
	assert.InDelta(t, 49.975, m.pos.Quantity, 1e-9)
}

func TestManagerBuyNoopWhenPositioned(t *testing.T) {
	gw := &fakeGateway{
		ticker:   models.Ticker{Last: 100},
		buyOrder: models.Order{ID: "ord-1", AvgPrice: 100, FilledQty: 1},
	}
	m := newTestManager(gw, &fakeJournal{}, &fakeNotifier{}, 5000)

	require.NoError(t, m.Buy(context.Background()))
	require.NoError(t, m.Buy(context.Background()))

	assert.Len(t, gw.buyQtys, 1)
	assert.Equal(t, 1, gw.tickerCalls)
}

func TestManagerBuyErrors(t *testing.T) {
	gw := &fakeGateway{tickerErr: errors.New("ticker down")}
	m := newTestManager(gw, &fakeJournal{}, &fakeNotifier{}, 5000)

	err := m.Buy(context.Background())
	assert.ErrorContains(t, err, "buy ticker")
	assert.False(t, m.HasPosition())

	// нулевая котировка не должна превращаться в заявку на бесконечный объём
	gw = &fakeGateway{ticker: models.Ticker{Last: 0}}
	m = newTestManager(gw, &fakeJournal{}, &fakeNotifier{}, 5000)

	err = m.Buy(context.Background())
	assert.ErrorContains(t, err, "bad price")
	assert.Empty(t, gw.buyQtys)

	gw = &fakeGateway{ticker: models.Ticker{Last: 100}, buyErr: errors.New("rejected")}
	m = newTestManager(gw, &fakeJournal{}, &fakeNotifier{}, 5000)

	err = m.Buy(context.Background())
	assert.ErrorContains(t, err, "buy order")
	assert.False(t, m.HasPosition())
}

func TestManagerSellNoopWhenFlat(t *testing.T) {
	gw := &fakeGateway{}
	j := &fakeJournal{}
	m := newTestManager(gw, j, &fakeNotifier{}, 5000)

	require.NoError(t, m.Sell(context.Background(), "strategy-signal"))
	assert.Empty(t, gw.sellQtys)
	assert.Empty(t, j.records)
}

func TestManagerSellComputesPnL(t *testing.T) {
	gw := &fakeGateway{
		sellOrder: models.Order{ID: "ord-2", AvgPrice: 110, FilledQty: 2},
	}
	j := &fakeJournal{}
	n := &fakeNotifier{}
	m := newTestManager(gw, j, n, 200)

	entry := testNow.Add(-2 * time.Hour)
	m.pos = &models.Position{EntryPrice: 100, Quantity: 2, EntryTime: entry}

	require.NoError(t, m.Sell(context.Background(), "strategy-signal"))

	require.Len(t, gw.sellQtys, 1)
	assert.InDelta(t, 2, gw.sellQtys[0], 1e-9)

	require.Len(t, j.records, 1)
	rec := j.records[0]
	assert.Equal(t, "BTC/KRW", rec.Symbol)
	assert.Equal(t, entry, rec.EntryTime)
	assert.Equal(t, testNow, rec.ExitTime)
	assert.InDelta(t, 100, rec.EntryPrice, 1e-9)
	assert.InDelta(t, 110, rec.ExitPrice, 1e-9)
	assert.InDelta(t, 20, rec.Profit, 1e-9)
	assert.InDelta(t, 10, rec.ProfitPercent, 1e-9)

	assert.False(t, m.HasPosition())
	assert.True(t, n.contains("Продажа"))
	assert.True(t, n.contains("strategy-signal"))
}

func TestManagerSellExitFallsBackToTicker(t *testing.T) {
	gw := &fakeGateway{
		sellOrder: models.Order{ID: "ord-2"},
		ticker:    models.Ticker{Last: 105},
	}
	j := &fakeJournal{}
	m := newTestManager(gw, j, &fakeNotifier{}, 200)
	m.pos = &models.Position{EntryPrice: 100, Quantity: 2, EntryTime: testNow}

	require.NoError(t, m.Sell(context.Background(), "strategy-signal"))

	require.Len(t, j.records, 1)
	assert.InDelta(t, 105, j.records[0].ExitPrice, 1e-9)
	assert.InDelta(t, 10, j.records[0].Profit, 1e-9)
}

func TestManagerSellExitFallsBackToEntry(t *testing.T) {
	// ни исполнения, ни тикера: P&L честно нулевой
	gw := &fakeGateway{
		sellOrder: models.Order{ID: "ord-2"},
		tickerErr: errors.New("ticker down"),
	}
	j := &fakeJournal{}
	m := newTestManager(gw, j, &fakeNotifier{}, 200)
	m.pos = &models.Position{EntryPrice: 100, Quantity: 2, EntryTime: testNow}

	require.NoError(t, m.Sell(context.Background(), "scheduled-reset"))

	require.Len(t, j.records, 1)
	assert.InDelta(t, 100, j.records[0].ExitPrice, 1e-9)
	assert.Zero(t, j.records[0].Profit)
}

func TestManagerSellOrderErrorKeepsPosition(t *testing.T) {
	gw := &fakeGateway{sellErr: errors.New("rejected")}
	j := &fakeJournal{}
	m := newTestManager(gw, j, &fakeNotifier{}, 200)
	m.pos = &models.Position{EntryPrice: 100, Quantity: 2, EntryTime: testNow}

	err := m.Sell(context.Background(), "strategy-signal")
	assert.ErrorContains(t, err, "sell order")
	assert.True(t, m.HasPosition())
	assert.Empty(t, j.records)
}

func TestManagerSellJournalErrorKeepsPosition(t *testing.T) {
	gw := &fakeGateway{
		sellOrder: models.Order{ID: "ord-2", AvgPrice: 110, FilledQty: 2},
	}
	j := &fakeJournal{err: errors.New("disk full")}
	n := &fakeNotifier{}
	m := newTestManager(gw, j, n, 200)
	m.pos = &models.Position{EntryPrice: 100, Quantity: 2, EntryTime: testNow}

	err := m.Sell(context.Background(), "strategy-signal")
	assert.ErrorContains(t, err, "journal append")

	// сделка не записана: позиция остаётся, уведомления о продаже нет
	assert.True(t, m.HasPosition())
	assert.Len(t, gw.sellQtys, 1)
	assert.False(t, n.contains("Продажа"))
}
