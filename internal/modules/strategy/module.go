package strategy

import (
	exchsvc "upbit_bot/internal/modules/exchange/service"
	"upbit_bot/internal/modules/strategy/service"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("strategy",
		fx.Provide(
			func(c *exchsvc.Client) service.MarketData { return c },
			service.New, // service.Strategy по имени из конфига
		),
	)
}
