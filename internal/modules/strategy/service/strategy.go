package service

import (
	"context"
	"time"

	"upbit_bot/internal/models"
)

// MarketData — то, что стратегии нужно от биржи.
type MarketData interface {
	FetchTicker(ctx context.Context, symbol string) (models.Ticker, error)
	FetchOHLCV(ctx context.Context, symbol, timeframe string, limit int) ([]models.Candle, error)
}

// Strategy опрашивается раннером каждый тик.
// Ошибка = не смогли дотянуться до рынка; нехватка истории ошибкой
// не считается, это честный HOLD.
type Strategy interface {
	Name() string
	PollInterval() time.Duration
	GetSignal(ctx context.Context) (models.Signal, error)
}

// Preparer — стратегии с прогревом на границе торгового дня.
type Preparer interface {
	Prepare(ctx context.Context) error
}

// Resetter — стратегии с внутридневным состоянием.
type Resetter interface {
	Reset()
}
