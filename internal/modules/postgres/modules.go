package postgres

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/fx"

	"signal_bot/internal/journal"
	"signal_bot/internal/modules/config"
	"signal_bot/pkg/db"
	"signal_bot/pkg/logger"
)

// NewRecorder журнал сигналов. Без db_dsn пишем в никуда.
func NewRecorder(lc fx.Lifecycle, cfg *config.Config) (journal.Recorder, error) {
	if cfg.DB == "" {
		logger.Info("db_dsn empty, signal journal disabled")
		return journal.Nop{}, nil
	}

	ctx := context.Background()
	poolMaster, err := db.NewPool(ctx, db.PoolConfig{
		DSN:      cfg.DB,
		MaxConns: 4,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create poolMaster")
	}
	if err = poolMaster.Ping(ctx); err != nil {
		poolMaster.Close()
		return nil, errors.Wrap(err, "ping postgres")
	}

	tm := db.NewPgTxManager(poolMaster)
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			tm.Close()
			return nil
		},
	})
	return journal.NewPgRecorder(tm), nil
}

func Module() fx.Option {
	return fx.Module("postgres",
		fx.Provide(
			NewRecorder,
		),
	)
}
