package main

import (
	"go.uber.org/fx"

	"signal_bot/internal/modules/config"
	"signal_bot/internal/modules/exchange"
	"signal_bot/internal/modules/health"
	"signal_bot/internal/modules/postgres"
	telegram "signal_bot/internal/modules/telegram_bot"
	"signal_bot/internal/modules/tracing"
	"signal_bot/internal/modules/trader"
)

func main() {
	fx.New(
		config.Module(),
		tracing.Module(),
		postgres.Module(),
		exchange.Module(),
		trader.Module(),
		telegram.Module(),
		// последним: readyz отдаёт ok только когда всё выше стартовало
		health.Module(),
	).Run()
}
