package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"upbit_bot/pkg/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// tickerStream держит одно WS-соединение с Upbit и кэширует последнюю
// сделку по подписанному инструменту. Упал сокет — переподключаемся,
// потребители в это время ходят REST-ом.
type tickerStream struct {
	dialer *websocket.Dialer
	url    string
	code   string

	mu   sync.RWMutex
	last float64
	at   time.Time
}

func newTickerStream(dialer *websocket.Dialer, url, code string) *tickerStream {
	return &tickerStream{
		dialer: dialer,
		url:    url,
		code:   code,
	}
}

func (s *tickerStream) lastPrice(code string) (float64, time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if code != s.code || s.last <= 0 {
		return 0, time.Time{}, false
	}
	return s.last, s.at, true
}

func (s *tickerStream) setPrice(px float64, at time.Time) {
	s.mu.Lock()
	s.last = px
	s.at = at
	s.mu.Unlock()
}

// RunStream гоняет стрим до отмены ctx. Запускать отдельной горутиной.
func (c *Client) RunStream(ctx context.Context) {
	if c.stream == nil {
		return
	}
	c.stream.run(ctx)
}

func (s *tickerStream) run(ctx context.Context) {
	for {
		logger.Info("[WS] connect ticker %s", s.code)
		conn, _, err := s.dialer.DialContext(ctx, s.url, nil)
		if err != nil {
			logger.Error("[WS] dial error %s: %v", s.code, err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		sub := []map[string]any{
			{"ticket": uuid.NewString()},
			{"type": "ticker", "codes": []string{s.code}},
		}
		if err := conn.WriteJSON(sub); err != nil {
			logger.Error("[WS] subscribe error %s: %v", s.code, err)
			_ = conn.Close()
			continue
		}

		// keepalive PING каждые 20s, иначе Upbit рвёт соединение по idle
		stopPing := make(chan struct{})
		go func() {
			t := time.NewTicker(20 * time.Second)
			defer t.Stop()
			for {
				select {
				case <-ctx.Done():
					_ = conn.Close() // будим заблокированный ReadMessage
					return
				case <-stopPing:
					return
				case <-t.C:
					_ = conn.WriteMessage(websocket.TextMessage, []byte("PING"))
				}
			}
		}()

		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				logger.Error("[WS] read error %s: %v", s.code, err)
				_ = conn.Close()
				break
			}

			var frame wsTickerFrame
			if err := json.Unmarshal(msg, &frame); err != nil {
				continue
			}
			if frame.Status != "" {
				continue // ответ на PING
			}
			if frame.Type != "ticker" || frame.Code != s.code || frame.TradePrice <= 0 {
				continue
			}

			s.setPrice(frame.TradePrice, time.Now())
		}
		close(stopPing)

		select {
		case <-ctx.Done():
			return
		default:
			time.Sleep(time.Second)
		}
	}
}
