package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"upbit_bot/internal/models"
)

// Кэш из WS-стрима считаем живым, пока цене меньше 10 секунд.
// Дальше честный REST, даже если сокет висит.
const streamStaleAfter = 10 * time.Second

func (c *Client) FetchTicker(ctx context.Context, symbol string) (models.Ticker, error) {
	code, err := symbolToCode(symbol)
	if err != nil {
		return models.Ticker{}, err
	}

	if c.stream != nil {
		if px, at, ok := c.stream.lastPrice(code); ok && time.Since(at) < streamStaleAfter {
			return models.Ticker{Symbol: symbol, Last: px, Time: at}, nil
		}
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodGet,
		c.restURL+"/v1/ticker?markets="+url.QueryEscape(code),
		nil,
	)
	if err != nil {
		return models.Ticker{}, fmt.Errorf("FetchTicker new request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return models.Ticker{}, fmt.Errorf("FetchTicker do: %w", err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		return models.Ticker{}, fmt.Errorf("FetchTicker http %d: %s", resp.StatusCode, apiErrorText(data))
	}

	var items []tickerItem
	if err := json.Unmarshal(data, &items); err != nil {
		return models.Ticker{}, fmt.Errorf("FetchTicker decode: %w", err)
	}
	if len(items) == 0 {
		return models.Ticker{}, fmt.Errorf("FetchTicker: empty response for %s", code)
	}
	if items[0].TradePrice <= 0 {
		return models.Ticker{}, fmt.Errorf("FetchTicker: bad trade_price %v for %s", items[0].TradePrice, code)
	}

	return models.Ticker{
		Symbol: symbol,
		Last:   items[0].TradePrice,
		Time:   time.UnixMilli(items[0].TimestampMs),
	}, nil
}
