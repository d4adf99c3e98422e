package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"upbit_bot/internal/models"
)

// Upbit отдаёт не больше 200 свечей за запрос.
const maxCandleCount = 200

func candlePath(tf string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(tf)) {
	case "1m":
		return "minutes/1", nil
	case "3m":
		return "minutes/3", nil
	case "5m":
		return "minutes/5", nil
	case "10m":
		return "minutes/10", nil
	case "15m":
		return "minutes/15", nil
	case "30m":
		return "minutes/30", nil
	case "60m", "1h":
		return "minutes/60", nil
	case "240m", "4h":
		return "minutes/240", nil
	case "1d":
		return "days", nil
	case "1w":
		return "weeks", nil
	case "1mo", "1mth":
		return "months", nil
	}
	return "", fmt.Errorf("unsupported timeframe %q", tf)
}

// FetchOHLCV возвращает свечи строго по возрастанию времени, свежая последняя.
// Upbit шлёт их в обратном порядке, разворачиваем здесь, чтобы стратегии
// об этом не знали.
func (c *Client) FetchOHLCV(ctx context.Context, symbol, timeframe string, limit int) ([]models.Candle, error) {
	code, err := symbolToCode(symbol)
	if err != nil {
		return nil, err
	}

	path, err := candlePath(timeframe)
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = 1
	}
	if limit > maxCandleCount {
		limit = maxCandleCount
	}

	reqURL := fmt.Sprintf("%s/v1/candles/%s?market=%s&count=%d",
		c.restURL, path, url.QueryEscape(code), limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("FetchOHLCV new request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("FetchOHLCV do: %w", err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("FetchOHLCV http %d: %s", resp.StatusCode, apiErrorText(data))
	}

	var items []candleItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("FetchOHLCV decode: %w", err)
	}

	candles := make([]models.Candle, 0, len(items))
	for i := len(items) - 1; i >= 0; i-- {
		it := items[i]

		ts, err := time.Parse("2006-01-02T15:04:05", it.DateTimeUTC)
		if err != nil {
			continue
		}
		if it.Trade <= 0 {
			continue
		}

		candles = append(candles, models.Candle{
			Timestamp: ts.UTC(),
			Open:      it.Opening,
			High:      it.High,
			Low:       it.Low,
			Close:     it.Trade,
			Volume:    it.AccVolume,
		})
	}

	return candles, nil
}
