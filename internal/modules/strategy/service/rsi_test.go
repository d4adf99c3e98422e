package service

import (
	"context"
	"errors"
	"testing"

	"upbit_bot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candlesFromCloses(closes ...float64) []models.Candle {
	out := make([]models.Candle, len(closes))
	for i, c := range closes {
		out[i] = models.Candle{Open: c, High: c, Low: c, Close: c}
	}
	return out
}

func TestRSIValue(t *testing.T) {
	// period=2: окно +1,+1 даёт avgGain=1; шаг -1 сглаживает до 0.5/0.5
	assert.InDelta(t, 50, rsiValue([]float64{1, 2, 3, 2}, 2), 1e-9)

	// только рост: avgLoss=0, по Уайлдеру RSI=100
	assert.InDelta(t, 100, rsiValue([]float64{1, 2, 3, 4}, 2), 1e-9)

	// только падение
	assert.InDelta(t, 0, rsiValue([]float64{4, 3, 2, 1}, 2), 1e-9)
}

func TestRSISignals(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name   string
		closes []float64
		want   models.Signal
	}{
		{"neutral", []float64{1, 2, 3, 2}, models.SignalHold},
		{"overbought", []float64{1, 2, 3, 4}, models.SignalSell},
		{"oversold", []float64{4, 3, 2, 1}, models.SignalBuy},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			md := &fakeMarketData{candles: candlesFromCloses(tc.closes...)}
			s := NewRSI(md, "BTC/KRW", "1h", Params{"rsi_period": 2})

			sig, err := s.GetSignal(ctx)
			require.NoError(t, err)
			assert.Equal(t, tc.want, sig)
		})
	}
}

func TestRSIShortHistoryHolds(t *testing.T) {
	// 14 свечей при period=14: нужна ещё одна под первую дельту
	md := &fakeMarketData{candles: candlesFromCloses(
		1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14,
	)}
	s := NewRSI(md, "BTC/KRW", "", nil)

	sig, err := s.GetSignal(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.SignalHold, sig)
}

func TestRSIDefaults(t *testing.T) {
	md := &fakeMarketData{candles: candlesFromCloses(1, 2)}
	s := NewRSI(md, "BTC/KRW", "", nil)

	_, err := s.GetSignal(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "1h", md.lastTimeframe)
	assert.Equal(t, rsiHistory, md.lastLimit)
	assert.Equal(t, 14, s.period)
	assert.InDelta(t, 30, s.oversold, 1e-9)
	assert.InDelta(t, 70, s.overbought, 1e-9)
}

func TestRSICustomThresholds(t *testing.T) {
	// RSI=50 с порогом oversold=55 уже сигналит на покупку
	md := &fakeMarketData{candles: candlesFromCloses(1, 2, 3, 2)}
	s := NewRSI(md, "BTC/KRW", "1h", Params{"rsi_period": 2, "oversold": 55})

	sig, err := s.GetSignal(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.SignalBuy, sig)

	// ровно на пороге сигнала нет, сравнение строгое
	s = NewRSI(md, "BTC/KRW", "1h", Params{"rsi_period": 2, "oversold": 50})
	sig, err = s.GetSignal(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.SignalHold, sig)
}

func TestRSISurfacesFetchError(t *testing.T) {
	md := &fakeMarketData{candlesErr: errors.New("ohlcv down")}
	s := NewRSI(md, "BTC/KRW", "1h", nil)

	sig, err := s.GetSignal(context.Background())
	assert.ErrorContains(t, err, "ohlcv down")
	assert.Equal(t, models.SignalHold, sig)
}
