package exchange

import (
	"go.uber.org/fx"

	"signal_bot/internal/exchange"
	"signal_bot/internal/exchange/binance"
	"signal_bot/internal/exchange/okx"
	"signal_bot/internal/exchange/paper"
	"signal_bot/internal/modules/config"
	"signal_bot/pkg/logger"
)

// NewRegistry все поддерживаемые биржи.
func NewRegistry() *exchange.Registry {
	r := exchange.NewRegistry()
	r.Register(paper.Name, paper.Factory)
	r.Register(okx.Name, okx.Factory)
	r.Register(binance.Name, binance.Factory)
	return r
}

// NewClient биржа выбирается один раз по exchange.name.
func NewClient(r *exchange.Registry, cfg *config.Config) (exchange.Client, error) {
	e := cfg.Exchange
	c, err := r.New(e.Name, exchange.Options{
		APIKey:       e.APIKey,
		APISecret:    e.APISecret,
		Passphrase:   e.Passphrase,
		Testnet:      e.Testnet,
		BaseURL:      e.BaseURL,
		PaperBalance: e.PaperBalance,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("exchange: %s (testnet=%v)", c.Name(), e.Testnet)
	return c, nil
}

func Module() fx.Option {
	return fx.Module("exchange",
		fx.Provide(
			NewRegistry,
			NewClient,
		),
	)
}
