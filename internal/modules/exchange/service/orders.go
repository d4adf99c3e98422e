package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"upbit_bot/internal/models"
	"upbit_bot/pkg/logger"

	"github.com/bytedance/sonic"
)

// CreateMarketBuyOrder покупает qty базовой валюты по рынку.
// Маркет-покупка у Upbit принимает только сумму в котируемой валюте
// (ord_type=price), поэтому qty пересчитывается по тикеру, сумма
// округляется вниз до целого KRW.
func (c *Client) CreateMarketBuyOrder(ctx context.Context, symbol string, qty float64) (models.Order, error) {
	if qty <= 0 {
		return models.Order{}, fmt.Errorf("CreateMarketBuyOrder: qty <= 0")
	}

	code, err := symbolToCode(symbol)
	if err != nil {
		return models.Order{}, err
	}

	ticker, err := c.FetchTicker(ctx, symbol)
	if err != nil {
		return models.Order{}, fmt.Errorf("CreateMarketBuyOrder ticker: %w", err)
	}

	cost := math.Floor(qty * ticker.Last)
	if cost < 1 {
		return models.Order{}, fmt.Errorf("CreateMarketBuyOrder: order cost %v too small", cost)
	}

	params := url.Values{}
	params.Set("market", code)
	params.Set("side", "bid")
	params.Set("ord_type", "price")
	params.Set("price", strconv.FormatFloat(cost, 'f', -1, 64))

	placed, err := c.placeOrder(ctx, params)
	if err != nil {
		return models.Order{}, fmt.Errorf("CreateMarketBuyOrder: %w", err)
	}

	order := models.Order{
		ID:     placed.UUID,
		Symbol: symbol,
		Side:   models.OrderSideBuy,
	}
	c.resolveFill(ctx, &order)

	return order, nil
}

// CreateMarketSellOrder продаёт qty базовой валюты по рынку (ord_type=market).
func (c *Client) CreateMarketSellOrder(ctx context.Context, symbol string, qty float64) (models.Order, error) {
	if qty <= 0 {
		return models.Order{}, fmt.Errorf("CreateMarketSellOrder: qty <= 0")
	}

	code, err := symbolToCode(symbol)
	if err != nil {
		return models.Order{}, err
	}

	params := url.Values{}
	params.Set("market", code)
	params.Set("side", "ask")
	params.Set("ord_type", "market")
	params.Set("volume", strconv.FormatFloat(qty, 'f', 8, 64))

	placed, err := c.placeOrder(ctx, params)
	if err != nil {
		return models.Order{}, fmt.Errorf("CreateMarketSellOrder: %w", err)
	}

	order := models.Order{
		ID:     placed.UUID,
		Symbol: symbol,
		Side:   models.OrderSideSell,
	}
	c.resolveFill(ctx, &order)

	return order, nil
}

func (c *Client) placeOrder(ctx context.Context, params url.Values) (orderResp, error) {
	token, err := c.authToken(params)
	if err != nil {
		return orderResp{}, err
	}

	body := make(map[string]string, len(params))
	for k := range params {
		body[k] = params.Get(k)
	}
	payload, err := sonic.Marshal(body)
	if err != nil {
		return orderResp{}, fmt.Errorf("marshal order: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.restURL+"/v1/orders",
		bytes.NewReader(payload),
	)
	if err != nil {
		return orderResp{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return orderResp{}, fmt.Errorf("do: %w", err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		return orderResp{}, fmt.Errorf("http %d: %s", resp.StatusCode, apiErrorText(data))
	}

	var r orderResp
	if err := json.Unmarshal(data, &r); err != nil {
		return orderResp{}, fmt.Errorf("decode: %w; body=%s", err, string(data))
	}
	if r.UUID == "" {
		return orderResp{}, fmt.Errorf("empty order uuid, body=%s", string(data))
	}

	return r, nil
}

// resolveFill дотягивает среднюю цену и объём исполнения по сделкам ордера.
// Ошибку наружу не отдаём: нули в Order значат "биржа не ответила",
// вызывающий обязан подставить свои фолбэки.
func (c *Client) resolveFill(ctx context.Context, order *models.Order) {
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(500 * time.Millisecond):
			}
		}

		avg, vol, err := c.fetchFill(ctx, order.ID)
		if err != nil {
			logger.Warn("[ORDER] fill lookup %s: %v", order.ID, err)
			continue
		}
		if vol > 0 {
			order.AvgPrice = avg
			order.FilledQty = vol
			return
		}
	}
}

func (c *Client) fetchFill(ctx context.Context, id string) (avg, vol float64, err error) {
	params := url.Values{}
	params.Set("uuid", id)

	token, err := c.authToken(params)
	if err != nil {
		return 0, 0, err
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodGet,
		c.restURL+"/v1/order?"+params.Encode(),
		nil,
	)
	if err != nil {
		return 0, 0, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, 0, err
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		return 0, 0, fmt.Errorf("http %d: %s", resp.StatusCode, apiErrorText(data))
	}

	var r orderResp
	if err := json.Unmarshal(data, &r); err != nil {
		return 0, 0, fmt.Errorf("decode: %w", err)
	}

	var funds, volume float64
	for _, t := range r.Trades {
		f, err1 := strconv.ParseFloat(t.Funds, 64)
		v, err2 := strconv.ParseFloat(t.Volume, 64)
		if err1 != nil || err2 != nil || v <= 0 {
			continue
		}
		funds += f
		volume += v
	}
	if volume <= 0 {
		return 0, 0, nil
	}

	return funds / volume, volume, nil
}
