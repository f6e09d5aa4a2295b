package trader

import (
	"go.uber.org/fx"

	"signal_bot/internal/exchange"
	"signal_bot/internal/journal"
	"signal_bot/internal/ledger"
	"signal_bot/internal/modules/config"
	"signal_bot/internal/sizing"
	"signal_bot/internal/trader"
)

func NewConfig(cfg *config.Config) trader.Config {
	return trader.Config{
		Sizing: sizing.Config{
			QuoteAsset:             cfg.Trading.QuoteAsset,
			MaxPositionSize:        cfg.Trading.MaxPositionSize,
			PositionSizePercentage: cfg.Trading.PositionSizePercentage,
		},
		EnableStopLoss:   cfg.Trading.EnableStopLoss,
		EnableTakeProfit: cfg.Trading.EnableTakeProfit,
	}
}

func NewTrader(c exchange.Client, l *ledger.Ledger, rec journal.Recorder, cfg trader.Config) *trader.Trader {
	return trader.New(c, l, rec, cfg)
}

func Module() fx.Option {
	return fx.Module("trader",
		fx.Provide(
			ledger.New,
			NewConfig,
			NewTrader,
		),
	)
}
