package exchange

import (
	"context"

	"github.com/pkg/errors"

	"signal_bot/internal/models"
)

// DefaultMinOrderSize если биржа не знает инструмент.
const DefaultMinOrderSize = 0.001

var (
	ErrOrderRejected        = errors.New("order rejected")
	ErrUnsupportedOrderType = errors.New("order type not supported")
	ErrNoPrice              = errors.New("no ticker price")
	ErrNoCredentials        = errors.New("api credentials empty")
)

// Client всё, что торговому ядру нужно от биржи. Одна реализация на биржу.
type Client interface {
	Name() string

	GetBalance(ctx context.Context, asset string) (float64, error)
	GetTickerPrice(ctx context.Context, symbol string) (float64, error)
	GetMinOrderSize(ctx context.Context, symbol string) (float64, error)

	PlaceLimitOrder(ctx context.Context, symbol string, side models.Side, amount, price float64) (models.OrderRef, error)
	PlaceMarketOrder(ctx context.Context, symbol string, side models.Side, amount float64) (models.OrderRef, error)
	// PlaceStopLossOrder защитный стоп на продажу. Фолбэк на лимитку делает вызывающий.
	PlaceStopLossOrder(ctx context.Context, symbol string, amount, stopPrice float64) (models.OrderRef, error)
	// PlaceTakeProfitOrder обычная лимитная продажа.
	PlaceTakeProfitOrder(ctx context.Context, symbol string, amount, targetPrice float64) (models.OrderRef, error)

	FormatSymbol(base, quote string) string
}

// Options то, из чего фабрика собирает клиента.
type Options struct {
	APIKey     string
	APISecret  string
	Passphrase string
	Testnet    bool
	BaseURL    string // пусто => боевой/тестовый url биржи

	// только для paper
	PaperBalance float64
}
