package models

import "time"

// Market — инструмент биржи. Symbol в ccxt-нотации ("BTC/KRW"),
// Code — нативный код Upbit ("KRW-BTC").
type Market struct {
	Symbol string
	Code   string
	Name   string
}

type Ticker struct {
	Symbol string
	Last   float64
	Time   time.Time
}

// Candle — одна свеча OHLCV. Последовательности всегда отсортированы
// по Timestamp по возрастанию (самая свежая — последняя).
type Candle struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}
