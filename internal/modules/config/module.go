package config

import (
	"context"

	"go.uber.org/fx"

	"signal_bot/pkg/logger"
)

// Module конфиг + инициализация логгера из него.
func Module() fx.Option {
	return fx.Module("config",
		fx.Provide(
			NewConfig,
		),
		fx.Invoke(initLogger),
	)
}

func initLogger(lc fx.Lifecycle, cfg *Config) error {
	logger.SetServiceName(cfg.Service.Name)
	if _, err := logger.Init(cfg.Log); err != nil {
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
