package trader

import (
	"context"
	"fmt"
	"sync"

	"signal_bot/internal/exchange"
	"signal_bot/internal/models"
)

type call struct {
	Method string
	Side   models.Side
	Amount float64
	Price  float64
}

// fakeExchange скриптуемая биржа: ответы по умолчанию успешные,
// ошибки задаются по методу и номеру вызова.
type fakeExchange struct {
	mu sync.Mutex

	balance    float64
	balanceErr error
	minSize    float64
	minSizeErr error
	// lot > 0: объём ордера округляется вниз, как делают реальные клиенты
	lot float64

	// method -> номер вызова (с 1) -> ошибка; номер 0 значит "всегда"
	fail  map[string]map[int]error
	seen  map[string]int
	calls []call
}

func newFake(balance, minSize float64) *fakeExchange {
	return &fakeExchange{
		balance: balance,
		minSize: minSize,
		fail:    make(map[string]map[int]error),
		seen:    make(map[string]int),
	}
}

var _ exchange.Client = (*fakeExchange)(nil)

func (f *fakeExchange) failOn(method string, n int, err error) *fakeExchange {
	if f.fail[method] == nil {
		f.fail[method] = make(map[int]error)
	}
	f.fail[method][n] = err
	return f
}

func (f *fakeExchange) hit(c call) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
	f.seen[c.Method]++
	if m := f.fail[c.Method]; m != nil {
		if err, ok := m[0]; ok {
			return err
		}
		if err, ok := m[f.seen[c.Method]]; ok {
			return err
		}
	}
	return nil
}

func (f *fakeExchange) Calls() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

func (f *fakeExchange) methods() []string {
	var out []string
	for _, c := range f.Calls() {
		out = append(out, c.Method)
	}
	return out
}

func (f *fakeExchange) Name() string { return "fake" }

func (f *fakeExchange) FormatSymbol(base, quote string) string { return base + "-" + quote }

func (f *fakeExchange) GetBalance(context.Context, string) (float64, error) {
	if err := f.hit(call{Method: "GetBalance"}); err != nil {
		return 0, err
	}
	return f.balance, f.balanceErr
}

func (f *fakeExchange) GetTickerPrice(context.Context, string) (float64, error) {
	return 0, f.hit(call{Method: "GetTickerPrice"})
}

func (f *fakeExchange) GetMinOrderSize(context.Context, string) (float64, error) {
	if err := f.hit(call{Method: "GetMinOrderSize"}); err != nil {
		return 0, err
	}
	return f.minSize, f.minSizeErr
}

func (f *fakeExchange) order(method string, symbol string, side models.Side, kind models.OrderKind, amount, price float64) (models.OrderRef, error) {
	if f.lot > 0 {
		amount = exchange.FloorToStep(amount, f.lot)
	}
	if err := f.hit(call{Method: method, Side: side, Amount: amount, Price: price}); err != nil {
		return models.OrderRef{}, err
	}
	f.mu.Lock()
	id := fmt.Sprintf("%s-%d", method, len(f.calls))
	f.mu.Unlock()
	return models.OrderRef{ID: id, Symbol: symbol, Side: side, Kind: kind, Amount: amount, Price: price}, nil
}

func (f *fakeExchange) PlaceLimitOrder(_ context.Context, symbol string, side models.Side, amount, price float64) (models.OrderRef, error) {
	return f.order("PlaceLimitOrder", symbol, side, models.OrderLimit, amount, price)
}

func (f *fakeExchange) PlaceMarketOrder(_ context.Context, symbol string, side models.Side, amount float64) (models.OrderRef, error) {
	return f.order("PlaceMarketOrder", symbol, side, models.OrderMarket, amount, 0)
}

func (f *fakeExchange) PlaceStopLossOrder(_ context.Context, symbol string, amount, stopPrice float64) (models.OrderRef, error) {
	return f.order("PlaceStopLossOrder", symbol, models.SideSell, models.OrderStopLoss, amount, stopPrice)
}

func (f *fakeExchange) PlaceTakeProfitOrder(_ context.Context, symbol string, amount, targetPrice float64) (models.OrderRef, error) {
	return f.order("PlaceTakeProfitOrder", symbol, models.SideSell, models.OrderLimit, amount, targetPrice)
}
