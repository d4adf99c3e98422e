package trader

import (
	"context"

	exchsvc "upbit_bot/internal/modules/exchange/service"
	recsvc "upbit_bot/internal/modules/recorder/service"
	"upbit_bot/internal/notify"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("trader",
		fx.Provide(
			func(c *exchsvc.Client) Gateway { return c },
			func(r recsvc.Recorder) Journal { return r },
			NewManager,
			NewLoop,
		),
		fx.Invoke(func(lc fx.Lifecycle, l *Loop, n notify.Notifier) {
			// цикл живёт на своём ctx: контекст OnStart умирает после старта
			runCtx, cancel := context.WithCancel(context.Background())

			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					if err := l.Startup(ctx); err != nil {
						cancel()
						// прощальное сообщение и здесь: старт не удался — бот умер
						n.Send("💤 Бот остановлен")
						return err
					}
					go l.Run(runCtx)
					return nil
				},
				OnStop: func(ctx context.Context) error {
					cancel()
					l.Wait(ctx)
					n.Send("💤 Бот остановлен")
					return nil
				},
			})
		}),
	)
}
