package trader

import (
	"context"
	"fmt"
	"time"

	"upbit_bot/internal/models"
	"upbit_bot/internal/modules/config"
	stratsvc "upbit_bot/internal/modules/strategy/service"
	"upbit_bot/internal/notify"
	"upbit_bot/pkg/logger"

	"github.com/opentracing/opentracing-go"
)

// Loop — торговый цикл: тик раз в poll-интервал, на тике сначала
// граница дня, потом сигнал стратегии. Ошибки тика уведомляются и
// цикл живёт дальше.
type Loop struct {
	cfg *config.Config
	gw  Gateway
	stg stratsvc.Strategy
	mgr *Manager
	n   notify.Notifier

	now  func() time.Time
	done chan struct{}

	// дата последнего ресета; новый календарный день после часа границы —
	// ресет срабатывает, второй раз в тот же день не повторяется
	lastReset time.Time
}

func NewLoop(cfg *config.Config, gw Gateway, stg stratsvc.Strategy, mgr *Manager, n notify.Notifier) *Loop {
	return &Loop{
		cfg:  cfg,
		gw:   gw,
		stg:  stg,
		mgr:  mgr,
		n:    n,
		now:  time.Now,
		done: make(chan struct{}),
	}
}

// Startup — проверки перед циклом: справочник рынков, наличие пары,
// прогрев стратегии. Ошибка здесь валит приложение, торговать вслепую
// нельзя.
func (l *Loop) Startup(ctx context.Context) error {
	if err := l.gw.LoadMarkets(ctx); err != nil {
		l.n.Sendf("❌ Не удалось загрузить рынки: %v", err)
		return fmt.Errorf("load markets: %w", err)
	}

	if _, err := l.gw.Market(l.cfg.Symbol); err != nil {
		l.n.Sendf("❌ Пара %s недоступна: %v", l.cfg.Symbol, err)
		return fmt.Errorf("market %s: %w", l.cfg.Symbol, err)
	}

	if p, ok := l.stg.(stratsvc.Preparer); ok {
		// не фатально: цель досчитается первым тиком
		if err := p.Prepare(ctx); err != nil {
			logger.Warn("[LOOP] prepare: %v", err)
		}
	}

	// если стартанули после границы дня, сегодняшний ресет уже не нужен
	if l.now().Hour() >= l.cfg.ResetHour {
		l.lastReset = l.now()
	}

	l.n.Sendf("✅ Бот запущен: %s на %s", l.stg.Name(), l.cfg.Symbol)
	return nil
}

// Run крутит цикл до отмены ctx. Блокирующий, запускать горутиной.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.done)

	interval := time.Duration(l.cfg.PollInterval)
	if interval <= 0 {
		interval = l.stg.PollInterval()
	}

	logger.Info("[LOOP] started: %s on %s, poll %s", l.stg.Name(), l.cfg.Symbol, interval)

	for {
		l.tick(ctx)

		select {
		case <-ctx.Done():
			logger.Info("[LOOP] stopped")
			return
		case <-time.After(interval):
		}
	}
}

// Wait блокирует до выхода из Run.
func (l *Loop) Wait(ctx context.Context) {
	select {
	case <-l.done:
	case <-ctx.Done():
	}
}

func (l *Loop) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	span, ctx := opentracing.StartSpanFromContext(ctx, "tick")
	defer span.Finish()

	now := l.now()
	if l.dueForReset(now) {
		l.lastReset = now
		l.resetDay(ctx)
		return
	}

	sig, err := l.stg.GetSignal(ctx)
	if err != nil {
		logger.Error("[LOOP] signal: %v", err)
		l.n.Sendf("🚨 Ошибка в торговом цикле: %v", err)
		return
	}

	switch sig {
	case models.SignalBuy:
		if err := l.mgr.Buy(ctx); err != nil {
			logger.Error("[LOOP] buy: %v", err)
			l.n.Sendf("❌ Ошибка покупки: %v", err)
		}
	case models.SignalSell:
		if err := l.mgr.Sell(ctx, "strategy-signal"); err != nil {
			logger.Error("[LOOP] sell: %v", err)
			l.n.Sendf("❌ Ошибка продажи: %v", err)
		}
	}
}

func (l *Loop) dueForReset(now time.Time) bool {
	return now.Hour() >= l.cfg.ResetHour && !sameDay(now, l.lastReset)
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// resetDay — граница торгового дня: закрыть позицию, сбросить стратегию,
// пересчитать цель. Неудачная продажа границу не отменяет: guard в Buy
// не даст задвоить позицию, а закрытие добьёт сигнал или следующий день.
func (l *Loop) resetDay(ctx context.Context) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "daily-reset")
	defer span.Finish()

	logger.Info("[LOOP] daily reset (hour %d)", l.cfg.ResetHour)

	if l.mgr.HasPosition() {
		if err := l.mgr.Sell(ctx, "scheduled-reset"); err != nil {
			logger.Error("[LOOP] reset sell: %v", err)
			l.n.Sendf("❌ Ошибка продажи на границе дня: %v", err)
		}
	}

	if r, ok := l.stg.(stratsvc.Resetter); ok {
		r.Reset()
	}
	if p, ok := l.stg.(stratsvc.Preparer); ok {
		if err := p.Prepare(ctx); err != nil {
			logger.Warn("[LOOP] prepare after reset: %v", err)
		}
	}
}
