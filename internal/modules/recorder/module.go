package recorder

import (
	"context"
	"fmt"

	"upbit_bot/internal/modules/config"
	"upbit_bot/internal/modules/recorder/service"
	"upbit_bot/pkg/db"

	"go.uber.org/fx"
)

// Module собирает журнал сделок по recorder.type из конфига.
// Пул postgres поднимается только когда он реально выбран.
func Module() fx.Option {
	return fx.Module("recorder",
		fx.Provide(
			func(cfg *config.Config) (service.Recorder, error) {
				switch cfg.Recorder.Type {
				case "csv", "":
					return service.NewCSVRecorder(cfg.Recorder.CSVPath)

				case "postgres":
					ctx := context.Background()
					pool, err := db.NewPool(ctx, db.PoolConfig{
						DSN: cfg.Recorder.DBDSN,
					})
					if err != nil {
						return nil, fmt.Errorf("failed to create poolMaster: %w", err)
					}
					return service.NewPgRecorder(ctx, db.NewPgTxManager(pool))
				}

				return nil, fmt.Errorf("unknown recorder type %q", cfg.Recorder.Type)
			},
		),
		fx.Invoke(func(lc fx.Lifecycle, r service.Recorder) {
			lc.Append(fx.Hook{
				OnStop: func(context.Context) error {
					return r.Close()
				},
			})
		}),
	)
}
