package main

import (
	"context"
	"fmt"

	"upbit_bot/internal/modules/config"
	"upbit_bot/internal/modules/exchange"
	"upbit_bot/internal/modules/recorder"
	"upbit_bot/internal/modules/strategy"
	"upbit_bot/internal/notify"
	"upbit_bot/internal/trader"
	"upbit_bot/pkg/logger"
	"upbit_bot/pkg/tracing"

	"go.uber.org/fx"
)

const serviceName = "upbit-bot"

func main() {
	app := fx.New(
		config.Module(),

		// логгер первым: дальше все модули пишут через него
		fx.Invoke(initLogger),
		fx.Invoke(initTracing),

		exchange.Module(),
		strategy.Module(),
		recorder.Module(),
		notify.Module(),
		trader.Module(),
	)
	app.Run()
}

func initLogger(lc fx.Lifecycle, cfg *config.Config) error {
	logger.SetServiceName(serviceName)

	var paths []string
	if cfg.LogFile != "" {
		paths = append(paths, cfg.LogFile)
	}
	if err := logger.Init(paths...); err != nil {
		return err
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			logger.Sync()
			return nil
		},
	})
	return nil
}

func initTracing(lc fx.Lifecycle, cfg *config.Config) error {
	if !cfg.Tracing.Enabled {
		return nil
	}

	_, closer, err := tracing.InitTracer(tracing.Config{
		ServiceName: serviceName,
		Host:        cfg.Tracing.Host,
		Port:        cfg.Tracing.Port,
	})
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			closer()
			return nil
		},
	})
	return nil
}
