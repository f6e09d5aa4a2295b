package exchange

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Instrument ограничения пары. Нулевой шаг значит "биржа не прислала", не округляем.
type Instrument struct {
	MinSize  float64
	LotStep  float64
	TickStep float64
}

// Normalize объём вниз к шагу лота (больше запрошенного не ставим), цена к ближайшему тику.
// price == 0 для рыночных ордеров.
func (i Instrument) Normalize(amount, price float64) (float64, float64, error) {
	sz := FloorToStep(amount, i.LotStep)
	if sz <= 0 {
		return 0, 0, errors.Wrapf(ErrOrderRejected, "amount %v below lot step %v", amount, i.LotStep)
	}
	px := RoundToStep(price, i.TickStep)
	if price > 0 && px <= 0 {
		return 0, 0, errors.Wrapf(ErrOrderRejected, "price %v below tick %v", price, i.TickStep)
	}
	return sz, px, nil
}

func FloorToStep(v, step float64) float64 {
	if step <= 0 {
		return v
	}
	s := decimal.NewFromFloat(step)
	return decimal.NewFromFloat(v).Div(s).Floor().Mul(s).InexactFloat64()
}

func RoundToStep(v, step float64) float64 {
	if step <= 0 {
		return v
	}
	s := decimal.NewFromFloat(step)
	return decimal.NewFromFloat(v).Div(s).Round(0).Mul(s).InexactFloat64()
}

// InstrumentCache шаги пары почти не меняются: один запрос на символ за жизнь клиента.
// Нулевое значение готово к работе.
type InstrumentCache struct {
	mu sync.Mutex
	m  map[string]Instrument
}

func (c *InstrumentCache) Get(ctx context.Context, symbol string, fetch func(context.Context, string) (Instrument, error)) (Instrument, error) {
	c.mu.Lock()
	inst, ok := c.m[symbol]
	c.mu.Unlock()
	if ok {
		return inst, nil
	}

	inst, err := fetch(ctx, symbol)
	if err != nil {
		return Instrument{}, err
	}

	c.mu.Lock()
	if c.m == nil {
		c.m = make(map[string]Instrument)
	}
	c.m[symbol] = inst
	c.mu.Unlock()
	return inst, nil
}
