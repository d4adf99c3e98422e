package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"upbit_bot/internal/models"
	"upbit_bot/pkg/logger"
)

// VolatilityBreakout — пробой волатильности Ларри Вильямса.
// Цель дня: open сегодня + k * (high - low вчера). Первое касание цели
// даёт BUY, дальше до ресета только HOLD. SELL стратегия не даёт никогда,
// выход из позиции — дело раннера на границе дня.
type VolatilityBreakout struct {
	md        MarketData
	symbol    string
	timeframe string
	k         float64

	mu     sync.Mutex
	target float64 // 0 = цель не рассчитана
	fired  bool
}

func NewVolatilityBreakout(md MarketData, symbol, timeframe string, params Params) *VolatilityBreakout {
	if timeframe == "" {
		timeframe = "1d"
	}
	return &VolatilityBreakout{
		md:        md,
		symbol:    symbol,
		timeframe: timeframe,
		k:         params.Float("k_value", 0.5),
	}
}

func (s *VolatilityBreakout) Name() string { return "VolatilityBreakout" }

func (s *VolatilityBreakout) PollInterval() time.Duration { return 2 * time.Second }

// Prepare пересчитывает цель дня по двум последним дневным свечам.
func (s *VolatilityBreakout) Prepare(ctx context.Context) error {
	candles, err := s.md.FetchOHLCV(ctx, s.symbol, s.timeframe, 2)
	if err != nil {
		return fmt.Errorf("breakout prepare: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.fired = false
	if len(candles) < 2 {
		// свежий листинг, вчерашней свечи ещё нет
		logger.Warn("[SIGNAL] %s: not enough daily candles for target (%d)", s.symbol, len(candles))
		s.target = 0
		return nil
	}

	prev := candles[len(candles)-2]
	today := candles[len(candles)-1]
	s.target = today.Open + (prev.High-prev.Low)*s.k

	logger.Info("[SIGNAL] %s target %.2f (open %.2f + %.2f * k=%.2f)",
		s.symbol, s.target, today.Open, prev.High-prev.Low, s.k)

	return nil
}

func (s *VolatilityBreakout) Reset() {
	s.mu.Lock()
	s.target = 0
	s.fired = false
	s.mu.Unlock()
}

func (s *VolatilityBreakout) GetSignal(ctx context.Context) (models.Signal, error) {
	s.mu.Lock()
	ready := s.target > 0
	s.mu.Unlock()

	if !ready {
		if err := s.Prepare(ctx); err != nil {
			return models.SignalHold, err
		}
	}

	s.mu.Lock()
	target := s.target
	fired := s.fired
	s.mu.Unlock()

	if target <= 0 || fired {
		return models.SignalHold, nil
	}

	ticker, err := s.md.FetchTicker(ctx, s.symbol)
	if err != nil {
		return models.SignalHold, err
	}

	// строго выше цели, касание не считается
	if ticker.Last > target {
		s.mu.Lock()
		s.fired = true
		s.mu.Unlock()

		logger.Info("[SIGNAL] %s breakout: price %.2f > target %.2f", s.symbol, ticker.Last, target)
		return models.SignalBuy, nil
	}

	return models.SignalHold, nil
}
