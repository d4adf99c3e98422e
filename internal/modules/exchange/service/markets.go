package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"upbit_bot/internal/models"
)

// symbolToCode: "BTC/KRW" -> "KRW-BTC" (у Upbit котируемая валюта первая).
func symbolToCode(symbol string) (string, error) {
	base, quote, ok := strings.Cut(symbol, "/")
	if !ok || base == "" || quote == "" {
		return "", fmt.Errorf("bad symbol %q, want BASE/QUOTE", symbol)
	}
	return quote + "-" + base, nil
}

// codeToSymbol: "KRW-BTC" -> "BTC/KRW".
func codeToSymbol(code string) (string, error) {
	quote, base, ok := strings.Cut(code, "-")
	if !ok || base == "" || quote == "" {
		return "", fmt.Errorf("bad market code %q, want QUOTE-BASE", code)
	}
	return base + "/" + quote, nil
}

// LoadMarkets тянет справочник торгуемых пар и кэширует его.
// Зовётся один раз на старте, до первого тика.
func (c *Client) LoadMarkets(ctx context.Context) error {
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodGet,
		c.restURL+"/v1/market/all?isDetails=false",
		nil,
	)
	if err != nil {
		return fmt.Errorf("LoadMarkets new request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("LoadMarkets do: %w", err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("LoadMarkets http %d: %s", resp.StatusCode, apiErrorText(data))
	}

	var items []marketItem
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("LoadMarkets decode: %w", err)
	}
	if len(items) == 0 {
		return fmt.Errorf("LoadMarkets: empty market list")
	}

	markets := make(map[string]models.Market, len(items))
	for _, it := range items {
		symbol, err := codeToSymbol(it.Market)
		if err != nil {
			continue
		}
		markets[symbol] = models.Market{
			Symbol: symbol,
			Code:   it.Market,
			Name:   it.EnglishName,
		}
	}

	c.mu.Lock()
	c.markets = markets
	c.mu.Unlock()

	return nil
}

// Market возвращает запись справочника. Ошибка = пара не торгуется
// либо LoadMarkets ещё не звали.
func (c *Client) Market(symbol string) (models.Market, error) {
	c.mu.RLock()
	m, ok := c.markets[symbol]
	c.mu.RUnlock()

	if !ok {
		return models.Market{}, fmt.Errorf("market %s not found", symbol)
	}
	return m, nil
}

func apiErrorText(body []byte) string {
	var e apiError
	if err := json.Unmarshal(body, &e); err == nil && e.Error.Message != "" {
		return e.Error.Message
	}
	return string(body)
}
