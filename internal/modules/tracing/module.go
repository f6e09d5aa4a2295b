package tracing

import (
	"context"

	"go.uber.org/fx"

	"signal_bot/internal/modules/config"
	"signal_bot/pkg/logger"
	"signal_bot/pkg/tracing"
)

func initTracer(lc fx.Lifecycle, cfg *config.Config) error {
	tracing.SetServiceName(cfg.Service.Name)
	conf := tracing.Config{Host: cfg.Tracing.Host, Port: cfg.Tracing.Port}
	_, closeFn, err := tracing.InitTracer(conf)
	if err != nil {
		return err
	}
	if conf.Enabled() {
		logger.Info("jaeger agent %s:%d", conf.Host, conf.Port)
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			closeFn()
			return nil
		},
	})
	return nil
}

func Module() fx.Option {
	return fx.Module("tracing",
		fx.Invoke(initTracer),
	)
}
