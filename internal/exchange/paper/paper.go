package paper

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"signal_bot/internal/exchange"
	"signal_bot/internal/models"
)

const (
	Name           = "paper"
	DefaultBalance = 1000.0
	quoteAsset     = "USDT"
)

var _ exchange.Client = (*Client)(nil)

// Client бумажная биржа: ордера не уходят наружу, лимитные покупки сразу
// резервируют котируемую валюту. Для локального прогона и cli.
type Client struct {
	mu          sync.Mutex
	balances    map[string]float64
	prices      map[string]float64
	minSizes    map[string]float64
	orders      []models.OrderRef
	noStopLoss  bool
	rejectKinds map[models.OrderKind]bool
}

func New(balance float64) *Client {
	return &Client{
		balances:    map[string]float64{quoteAsset: balance},
		prices:      make(map[string]float64),
		minSizes:    make(map[string]float64),
		rejectKinds: make(map[models.OrderKind]bool),
	}
}

func Factory(o exchange.Options) (exchange.Client, error) {
	b := o.PaperBalance
	if b <= 0 {
		b = DefaultBalance
	}
	return New(b), nil
}

func (c *Client) Name() string { return Name }

func (c *Client) FormatSymbol(base, quote string) string { return base + "/" + quote }

func (c *Client) SetBalance(asset string, v float64) {
	c.mu.Lock()
	c.balances[asset] = v
	c.mu.Unlock()
}

func (c *Client) SetPrice(symbol string, price float64) {
	c.mu.Lock()
	c.prices[symbol] = price
	c.mu.Unlock()
}

func (c *Client) SetMinOrderSize(symbol string, v float64) {
	c.mu.Lock()
	c.minSizes[symbol] = v
	c.mu.Unlock()
}

// DisableStopLoss биржа "не умеет" стоп-ордера, как часть реальных пар.
func (c *Client) DisableStopLoss() {
	c.mu.Lock()
	c.noStopLoss = true
	c.mu.Unlock()
}

// Reject все ордера данного вида будут отклонены.
func (c *Client) Reject(kind models.OrderKind) {
	c.mu.Lock()
	c.rejectKinds[kind] = true
	c.mu.Unlock()
}

// Orders копия всех принятых ордеров в порядке выставления.
func (c *Client) Orders() []models.OrderRef {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.OrderRef(nil), c.orders...)
}

func (c *Client) GetBalance(_ context.Context, asset string) (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.balances[asset], nil
}

func (c *Client) GetTickerPrice(_ context.Context, symbol string) (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.prices[symbol]
	if !ok {
		return 0, errors.Wrap(exchange.ErrNoPrice, symbol)
	}
	return p, nil
}

func (c *Client) GetMinOrderSize(_ context.Context, symbol string) (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.minSizes[symbol]; ok {
		return v, nil
	}
	return exchange.DefaultMinOrderSize, nil
}

func (c *Client) place(ref models.OrderRef) (models.OrderRef, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.rejectKinds[ref.Kind] {
		return models.OrderRef{}, errors.Wrapf(exchange.ErrOrderRejected, "paper: %s orders rejected", ref.Kind)
	}
	if ref.Kind == models.OrderStopLoss && c.noStopLoss {
		return models.OrderRef{}, exchange.ErrUnsupportedOrderType
	}
	if ref.Side == models.SideBuy {
		price := ref.Price
		if ref.Kind == models.OrderMarket {
			p, ok := c.prices[ref.Symbol]
			if !ok {
				return models.OrderRef{}, errors.Wrap(exchange.ErrNoPrice, ref.Symbol)
			}
			price = p
		}
		cost := ref.Amount * price
		if cost > c.balances[quoteAsset] {
			return models.OrderRef{}, errors.Wrapf(exchange.ErrOrderRejected, "paper: insufficient %s: need %.4f have %.4f", quoteAsset, cost, c.balances[quoteAsset])
		}
		c.balances[quoteAsset] -= cost
	}

	ref.ID = uuid.NewString()
	c.orders = append(c.orders, ref)
	return ref, nil
}

func (c *Client) PlaceLimitOrder(_ context.Context, symbol string, side models.Side, amount, price float64) (models.OrderRef, error) {
	if amount <= 0 || price <= 0 {
		return models.OrderRef{}, errors.Errorf("PlaceLimitOrder: amount=%v price=%v", amount, price)
	}
	return c.place(models.OrderRef{Symbol: symbol, Side: side, Kind: models.OrderLimit, Amount: amount, Price: price})
}

func (c *Client) PlaceMarketOrder(_ context.Context, symbol string, side models.Side, amount float64) (models.OrderRef, error) {
	if amount <= 0 {
		return models.OrderRef{}, errors.Errorf("PlaceMarketOrder: amount=%v", amount)
	}
	return c.place(models.OrderRef{Symbol: symbol, Side: side, Kind: models.OrderMarket, Amount: amount})
}

func (c *Client) PlaceStopLossOrder(_ context.Context, symbol string, amount, stopPrice float64) (models.OrderRef, error) {
	if amount <= 0 || stopPrice <= 0 {
		return models.OrderRef{}, errors.Errorf("PlaceStopLossOrder: amount=%v stop=%v", amount, stopPrice)
	}
	return c.place(models.OrderRef{Symbol: symbol, Side: models.SideSell, Kind: models.OrderStopLoss, Amount: amount, Price: stopPrice})
}

func (c *Client) PlaceTakeProfitOrder(ctx context.Context, symbol string, amount, targetPrice float64) (models.OrderRef, error) {
	return c.PlaceLimitOrder(ctx, symbol, models.SideSell, amount, targetPrice)
}
