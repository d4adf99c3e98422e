package service

import (
	"fmt"
	"strings"

	"upbit_bot/internal/modules/config"
)

// New собирает стратегию по имени из конфига. Имя регистронезависимое,
// пустое имя = VolatilityBreakout.
func New(cfg *config.Config, md MarketData) (Strategy, error) {
	params := Params(cfg.Strategy.Params)

	switch strings.ToLower(strings.TrimSpace(cfg.Strategy.Name)) {
	case "volatilitybreakout", "breakout", "":
		return NewVolatilityBreakout(md, cfg.Symbol, cfg.Strategy.Timeframe, params), nil
	case "rsi":
		return NewRSI(md, cfg.Symbol, cfg.Strategy.Timeframe, params), nil
	}

	return nil, fmt.Errorf("unknown strategy %q", cfg.Strategy.Name)
}
