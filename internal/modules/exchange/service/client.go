package service

import (
	"net/http"
	"sync"
	"time"

	"upbit_bot/internal/models"
	"upbit_bot/internal/modules/config"
	"upbit_bot/pkg/logger"

	"github.com/gorilla/websocket"
)

const (
	defaultRestURL = "https://api.upbit.com"
	defaultWSURL   = "wss://api.upbit.com/websocket/v1"
)

// Client — REST+WS клиент Upbit. Все публичные методы безопасны для
// конкурентного вызова.
type Client struct {
	http     *http.Client
	wsDialer *websocket.Dialer

	restURL string
	wsURL   string

	accessKey string
	secretKey string

	mu      sync.RWMutex
	markets map[string]models.Market // symbol -> market, после LoadMarkets

	stream *tickerStream // nil = стрим выключен конфигом
}

func NewClient(cfg *config.Config) *Client {
	c := &Client{
		http:      &http.Client{Timeout: 10 * time.Second},
		wsDialer:  &websocket.Dialer{},
		restURL:   defaultRestURL,
		wsURL:     defaultWSURL,
		accessKey: cfg.Exchange.AccessKey,
		secretKey: cfg.Exchange.SecretKey,
		markets:   make(map[string]models.Market),
	}

	if cfg.Exchange.UsePriceStream {
		code, err := symbolToCode(cfg.Symbol)
		if err != nil {
			logger.Error("[WS] bad symbol %q, price stream disabled: %v", cfg.Symbol, err)
		} else {
			c.stream = newTickerStream(c.wsDialer, c.wsURL, code)
		}
	}

	return c
}

func (c *Client) Close() {
	c.http.CloseIdleConnections()
}
