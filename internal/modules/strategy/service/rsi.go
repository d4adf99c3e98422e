package service

import (
	"context"
	"time"

	"upbit_bot/internal/models"
	"upbit_bot/pkg/logger"
)

// сколько свечей тянем под расчёт RSI
const rsiHistory = 100

// RSI — перепроданность/перекупленность по Уайлдеру. Состояния не держит,
// каждый тик пересчитывается с нуля по свежей истории.
type RSI struct {
	md        MarketData
	symbol    string
	timeframe string

	period     int
	oversold   float64
	overbought float64
}

func NewRSI(md MarketData, symbol, timeframe string, params Params) *RSI {
	if timeframe == "" {
		timeframe = "1h"
	}
	return &RSI{
		md:         md,
		symbol:     symbol,
		timeframe:  timeframe,
		period:     params.Int("rsi_period", 14),
		oversold:   params.Float("oversold", 30),
		overbought: params.Float("overbought", 70),
	}
}

func (s *RSI) Name() string { return "RSI" }

func (s *RSI) PollInterval() time.Duration { return 5 * time.Second }

func (s *RSI) GetSignal(ctx context.Context) (models.Signal, error) {
	candles, err := s.md.FetchOHLCV(ctx, s.symbol, s.timeframe, rsiHistory)
	if err != nil {
		return models.SignalHold, err
	}
	if len(candles) < s.period+1 {
		logger.Warn("[SIGNAL] %s rsi: %d candles, need %d", s.symbol, len(candles), s.period+1)
		return models.SignalHold, nil
	}

	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}

	value := rsiValue(closes, s.period)
	logger.Info("[SIGNAL] %s rsi(%d)=%.2f", s.symbol, s.period, value)

	// строгие сравнения: ровно на пороге сигнала нет
	switch {
	case value < s.oversold:
		logger.Info("[SIGNAL] %s oversold: %.2f < %.2f", s.symbol, value, s.oversold)
		return models.SignalBuy, nil
	case value > s.overbought:
		logger.Info("[SIGNAL] %s overbought: %.2f > %.2f", s.symbol, value, s.overbought)
		return models.SignalSell, nil
	}
	return models.SignalHold, nil
}

// rsiValue — RSI Уайлдера: первое среднее простое за period, дальше
// сглаживание avg = (avg*(period-1) + x) / period.
func rsiValue(closes []float64, period int) float64 {
	var avgGain, avgLoss float64

	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss += -change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	for i := period + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		var gain, loss float64
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		return 100
	}

	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}
