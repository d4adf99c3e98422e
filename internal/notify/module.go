package notify

import (
	"upbit_bot/internal/modules/config"
	"upbit_bot/pkg/logger"

	"go.uber.org/fx"
)

// Module выбирает нотифайер: Telegram если настроен, иначе stdout.
// Кривой токен не валит приложение, просто остаёмся на stdout.
func Module() fx.Option {
	return fx.Module("notify",
		fx.Provide(
			func(cfg *config.Config) Notifier {
				if cfg.Telegram.Token != "" && cfg.Telegram.ChatID != 0 {
					tg, err := NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID)
					if err == nil {
						return tg
					}
					logger.Error("[NOTIFY] telegram init: %v, falling back to stdout", err)
				} else {
					logger.Warn("[NOTIFY] telegram not configured, notifications go to stdout")
				}
				return NewStdout()
			},
		),
	)
}
