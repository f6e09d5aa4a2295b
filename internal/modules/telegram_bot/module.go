package telegram

import (
	"context"

	"go.uber.org/fx"

	health "signal_bot/internal/modules/health/service"
	"signal_bot/internal/modules/telegram_bot/service"
	"signal_bot/internal/trader"
)

func Module() fx.Option {
	return fx.Module("telegram",
		// адаптеры под интерфейсы сервиса
		fx.Provide(
			func(t *trader.Trader) service.Trader { return t },
			func(s *health.State) service.SignalTracker { return s },
		),

		fx.Provide(
			service.NewTelegram,
		),

		// Запуск основного цикла через Lifecycle
		fx.Invoke(
			func(lc fx.Lifecycle, t *service.Telegram) {
				lc.Append(fx.Hook{
					OnStart: func(context.Context) error {
						// ctx хука живёт только до конца старта
						return t.Start(context.Background())
					},
					OnStop: func(context.Context) error {
						t.Stop()
						return nil
					},
				})
			},
		),
	)
}
