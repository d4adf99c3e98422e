package trader

import (
	"context"
	"fmt"
	"sync"
	"time"

	"upbit_bot/internal/models"
	"upbit_bot/internal/modules/config"
	"upbit_bot/internal/notify"
	"upbit_bot/pkg/logger"

	"github.com/opentracing/opentracing-go"
)

// Gateway — что трейдеру нужно от биржи.
type Gateway interface {
	LoadMarkets(ctx context.Context) error
	Market(symbol string) (models.Market, error)
	FetchTicker(ctx context.Context, symbol string) (models.Ticker, error)
	CreateMarketBuyOrder(ctx context.Context, symbol string, qty float64) (models.Order, error)
	CreateMarketSellOrder(ctx context.Context, symbol string, qty float64) (models.Order, error)
}

// Journal — куда уходят закрытые сделки.
type Journal interface {
	Append(ctx context.Context, rec models.TradeRecord) error
}

// Manager владеет позицией. Одновременно не больше одной, частичных нет.
// Покупка при открытой позиции и продажа без позиции — тихие no-op,
// чтобы повторный сигнал стратегии не ронял цикл.
type Manager struct {
	gw      Gateway
	journal Journal
	n       notify.Notifier

	symbol       string
	budget       float64
	safetyFactor float64

	mu  sync.Mutex
	pos *models.Position

	now func() time.Time
}

func NewManager(gw Gateway, journal Journal, n notify.Notifier, cfg *config.Config) *Manager {
	return &Manager{
		gw:           gw,
		journal:      journal,
		n:            n,
		symbol:       cfg.Symbol,
		budget:       cfg.Budget,
		safetyFactor: cfg.SafetyFactor,
		now:          time.Now,
	}
}

func (m *Manager) HasPosition() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pos != nil
}

// Buy заводит позицию на весь бюджет. Объём режется safety_factor-ом,
// чтобы комиссия не выбила "недостаточно средств".
func (m *Manager) Buy(ctx context.Context) error {
	m.mu.Lock()
	if m.pos != nil {
		m.mu.Unlock()
		logger.Info("[TRADE] buy skipped: position already open")
		return nil
	}
	m.mu.Unlock()

	span, ctx := opentracing.StartSpanFromContext(ctx, "buy")
	defer span.Finish()

	ticker, err := m.gw.FetchTicker(ctx, m.symbol)
	if err != nil {
		return fmt.Errorf("buy ticker: %w", err)
	}
	if ticker.Last <= 0 {
		return fmt.Errorf("buy ticker: bad price %v", ticker.Last)
	}

	qty := m.budget * m.safetyFactor / ticker.Last
	order, err := m.gw.CreateMarketBuyOrder(ctx, m.symbol, qty)
	if err != nil {
		return fmt.Errorf("buy order: %w", err)
	}

	// биржа не отдала исполнение — живём с котировкой и расчётным объёмом
	entryPrice := order.AvgPrice
	if entryPrice <= 0 {
		entryPrice = ticker.Last
	}
	entryQty := order.FilledQty
	if entryQty <= 0 {
		entryQty = qty
	}

	m.mu.Lock()
	m.pos = &models.Position{
		EntryPrice: entryPrice,
		Quantity:   entryQty,
		EntryTime:  m.now(),
	}
	m.mu.Unlock()

	logger.Info("[TRADE] BUY %s qty=%.8f @ %.2f (order %s)", m.symbol, entryQty, entryPrice, order.ID)
	m.n.Sendf("🛒 Покупка %s\nЦена: %.2f\nОбъём: %.8f", m.symbol, entryPrice, entryQty)

	return nil
}

// Sell закрывает позицию целиком. Порядок жёсткий: записать сделку в
// журнал, уведомить, только потом очистить позицию. Не записали —
// позиция остаётся и ошибка уходит наверх.
func (m *Manager) Sell(ctx context.Context, reason string) error {
	m.mu.Lock()
	pos := m.pos
	m.mu.Unlock()

	if pos == nil {
		logger.Info("[TRADE] sell skipped: no open position")
		return nil
	}

	span, ctx := opentracing.StartSpanFromContext(ctx, "sell")
	span.SetTag("reason", reason)
	defer span.Finish()

	order, err := m.gw.CreateMarketSellOrder(ctx, m.symbol, pos.Quantity)
	if err != nil {
		return fmt.Errorf("sell order: %w", err)
	}

	exitPrice := order.AvgPrice
	if exitPrice <= 0 {
		// исполнение не узнали — добираем свежим тикером
		if t, terr := m.gw.FetchTicker(ctx, m.symbol); terr == nil && t.Last > 0 {
			exitPrice = t.Last
		} else {
			exitPrice = pos.EntryPrice
		}
	}

	profit := (exitPrice - pos.EntryPrice) * pos.Quantity
	profitPct := profit / m.budget * 100

	rec := models.TradeRecord{
		EntryTime:     pos.EntryTime,
		ExitTime:      m.now(),
		Symbol:        m.symbol,
		EntryPrice:    pos.EntryPrice,
		ExitPrice:     exitPrice,
		Quantity:      pos.Quantity,
		Profit:        profit,
		ProfitPercent: profitPct,
	}

	if err := m.journal.Append(ctx, rec); err != nil {
		return fmt.Errorf("journal append: %w", err)
	}

	logger.Info("[TRADE] SELL %s qty=%.8f @ %.2f pnl=%.2f (%.2f%%) reason=%s",
		m.symbol, pos.Quantity, exitPrice, profit, profitPct, reason)
	m.n.Sendf("💰 Продажа %s (%s)\nВход: %.2f -> Выход: %.2f\nПрибыль: %.2f (%.2f%%)",
		m.symbol, reason, pos.EntryPrice, exitPrice, profit, profitPct)

	m.mu.Lock()
	m.pos = nil
	m.mu.Unlock()

	return nil
}
