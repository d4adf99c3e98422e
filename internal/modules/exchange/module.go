package exchange

import (
	"context"

	"upbit_bot/internal/modules/config"
	"upbit_bot/internal/modules/exchange/service"

	"go.uber.org/fx"
)

// Module поднимает клиент Upbit и, если включено конфигом, WS-стрим цены.
func Module() fx.Option {
	return fx.Module("exchange",
		fx.Provide(
			service.NewClient,
		),
		fx.Invoke(func(lc fx.Lifecycle, c *service.Client, cfg *config.Config) {
			// Свой ctx: контекст OnStart живёт только на время старта.
			streamCtx, cancel := context.WithCancel(context.Background())

			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					if cfg.Exchange.UsePriceStream {
						go c.RunStream(streamCtx)
					}
					return nil
				},
				OnStop: func(context.Context) error {
					cancel()
					c.Close()
					return nil
				},
			})
		}),
	)
}
