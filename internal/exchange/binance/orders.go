package binance

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"signal_bot/internal/exchange"
	"signal_bot/internal/models"
)

type orderResp struct {
	Symbol        string `json:"symbol"`
	OrderID       int64  `json:"orderId"`
	ClientOrderID string `json:"clientOrderId"`
	Status        string `json:"status"`
}

func (c *Client) placeOrder(ctx context.Context, params url.Values) (orderResp, error) {
	params.Set("newClientOrderId", strings.ReplaceAll(uuid.NewString(), "-", ""))
	var r orderResp
	err := c.do(ctx, http.MethodPost, "/api/v3/order", params, true, &r)
	if err == nil {
		return r, nil
	}
	var ae *apiError
	if errors.As(err, &ae) {
		if ae.Code == codeBadType || strings.Contains(strings.ToLower(ae.Msg), "not supported") {
			return orderResp{}, errors.Wrap(exchange.ErrUnsupportedOrderType, ae.Error())
		}
		return orderResp{}, errors.Wrap(exchange.ErrOrderRejected, ae.Error())
	}
	return orderResp{}, err
}

// normalize quantity к stepSize, price к tickSize: иначе LOT_SIZE / PRICE_FILTER.
func (c *Client) normalize(ctx context.Context, symbol string, amount, price float64) (float64, float64, error) {
	inst, err := c.instrument(ctx, symbol)
	if err != nil {
		return 0, 0, errors.Wrap(err, "instrument")
	}
	return inst.Normalize(amount, price)
}

func side(s models.Side) string { return strings.ToUpper(string(s)) }

func (c *Client) PlaceLimitOrder(ctx context.Context, symbol string, s models.Side, amount, price float64) (models.OrderRef, error) {
	if amount <= 0 || price <= 0 {
		return models.OrderRef{}, errors.Errorf("PlaceLimitOrder: amount=%v price=%v", amount, price)
	}
	amount, price, err := c.normalize(ctx, symbol, amount, price)
	if err != nil {
		return models.OrderRef{}, errors.Wrap(err, "PlaceLimitOrder")
	}
	r, err := c.placeOrder(ctx, url.Values{
		"symbol":      {symbol},
		"side":        {side(s)},
		"type":        {"LIMIT"},
		"timeInForce": {"GTC"},
		"quantity":    {exchange.FormatDecimal(amount)},
		"price":       {exchange.FormatDecimal(price)},
	})
	if err != nil {
		return models.OrderRef{}, errors.Wrap(err, "PlaceLimitOrder")
	}
	return models.OrderRef{ID: strconv.FormatInt(r.OrderID, 10), Symbol: symbol, Side: s, Kind: models.OrderLimit, Amount: amount, Price: price}, nil
}

func (c *Client) PlaceMarketOrder(ctx context.Context, symbol string, s models.Side, amount float64) (models.OrderRef, error) {
	if amount <= 0 {
		return models.OrderRef{}, errors.Errorf("PlaceMarketOrder: amount=%v", amount)
	}
	amount, _, err := c.normalize(ctx, symbol, amount, 0)
	if err != nil {
		return models.OrderRef{}, errors.Wrap(err, "PlaceMarketOrder")
	}
	r, err := c.placeOrder(ctx, url.Values{
		"symbol":   {symbol},
		"side":     {side(s)},
		"type":     {"MARKET"},
		"quantity": {exchange.FormatDecimal(amount)},
	})
	if err != nil {
		return models.OrderRef{}, errors.Wrap(err, "PlaceMarketOrder")
	}
	return models.OrderRef{ID: strconv.FormatInt(r.OrderID, 10), Symbol: symbol, Side: s, Kind: models.OrderMarket, Amount: amount}, nil
}

// PlaceStopLossOrder STOP_LOSS: по stopPrice уходит рыночная продажа.
// Не на всех парах разрешён, тогда вернётся ErrUnsupportedOrderType.
func (c *Client) PlaceStopLossOrder(ctx context.Context, symbol string, amount, stopPrice float64) (models.OrderRef, error) {
	if amount <= 0 || stopPrice <= 0 {
		return models.OrderRef{}, errors.Errorf("PlaceStopLossOrder: amount=%v stop=%v", amount, stopPrice)
	}
	amount, stopPrice, err := c.normalize(ctx, symbol, amount, stopPrice)
	if err != nil {
		return models.OrderRef{}, errors.Wrap(err, "PlaceStopLossOrder")
	}
	r, err := c.placeOrder(ctx, url.Values{
		"symbol":    {symbol},
		"side":      {"SELL"},
		"type":      {"STOP_LOSS"},
		"quantity":  {exchange.FormatDecimal(amount)},
		"stopPrice": {exchange.FormatDecimal(stopPrice)},
	})
	if err != nil {
		return models.OrderRef{}, errors.Wrap(err, "PlaceStopLossOrder")
	}
	return models.OrderRef{ID: strconv.FormatInt(r.OrderID, 10), Symbol: symbol, Side: models.SideSell, Kind: models.OrderStopLoss, Amount: amount, Price: stopPrice}, nil
}

func (c *Client) PlaceTakeProfitOrder(ctx context.Context, symbol string, amount, targetPrice float64) (models.OrderRef, error) {
	return c.PlaceLimitOrder(ctx, symbol, models.SideSell, amount, targetPrice)
}
