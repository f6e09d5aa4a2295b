package okx

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"signal_bot/internal/exchange"
	"signal_bot/internal/models"
)

type orderAck struct {
	OrdID   string `json:"ordId"`
	ClOrdID string `json:"clOrdId"`
	AlgoID  string `json:"algoId"`
	SCode   string `json:"sCode"`
	SMsg    string `json:"sMsg"`
}

// 51000 неверный параметр, 51279/51280 тип ордера не поддержан инструментом
var unsupportedCodes = map[string]bool{"51279": true, "51280": true, "51000": true}

func clientOrderID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func (c *Client) placeOrder(ctx context.Context, path string, body map[string]string) (orderAck, error) {
	data, err := call[orderAck](ctx, c, http.MethodPost, path, body, true)
	// детальный статус важнее общего кода
	if len(data) > 0 && data[0].SCode != "" && data[0].SCode != "0" {
		if unsupportedCodes[data[0].SCode] && body["ordType"] == "conditional" {
			return orderAck{}, errors.Wrapf(exchange.ErrUnsupportedOrderType, "sCode=%s sMsg=%s", data[0].SCode, data[0].SMsg)
		}
		return orderAck{}, errors.Wrapf(exchange.ErrOrderRejected, "sCode=%s sMsg=%s", data[0].SCode, data[0].SMsg)
	}
	if err != nil {
		var ae *apiError
		if errors.As(err, &ae) {
			return orderAck{}, errors.Wrap(exchange.ErrOrderRejected, ae.Error())
		}
		return orderAck{}, err
	}
	if len(data) == 0 {
		return orderAck{}, errors.Wrap(exchange.ErrOrderRejected, "empty ack")
	}
	return data[0], nil
}

// normalize sz к lotSz, px к tickSz: иначе OKX отвечает ошибкой точности.
func (c *Client) normalize(ctx context.Context, symbol string, amount, price float64) (float64, float64, error) {
	inst, err := c.instrument(ctx, symbol)
	if err != nil {
		return 0, 0, errors.Wrap(err, "instrument")
	}
	return inst.Normalize(amount, price)
}

func (c *Client) PlaceLimitOrder(ctx context.Context, symbol string, side models.Side, amount, price float64) (models.OrderRef, error) {
	if amount <= 0 || price <= 0 {
		return models.OrderRef{}, errors.Errorf("PlaceLimitOrder: amount=%v price=%v", amount, price)
	}
	amount, price, err := c.normalize(ctx, symbol, amount, price)
	if err != nil {
		return models.OrderRef{}, errors.Wrap(err, "PlaceLimitOrder")
	}
	ack, err := c.placeOrder(ctx, "/api/v5/trade/order", map[string]string{
		"instId":  symbol,
		"tdMode":  "cash",
		"side":    string(side),
		"ordType": "limit",
		"sz":      exchange.FormatDecimal(amount),
		"px":      exchange.FormatDecimal(price),
		"clOrdId": clientOrderID(),
	})
	if err != nil {
		return models.OrderRef{}, errors.Wrap(err, "PlaceLimitOrder")
	}
	return models.OrderRef{ID: ack.OrdID, Symbol: symbol, Side: side, Kind: models.OrderLimit, Amount: amount, Price: price}, nil
}

func (c *Client) PlaceMarketOrder(ctx context.Context, symbol string, side models.Side, amount float64) (models.OrderRef, error) {
	if amount <= 0 {
		return models.OrderRef{}, errors.Errorf("PlaceMarketOrder: amount=%v", amount)
	}
	amount, _, err := c.normalize(ctx, symbol, amount, 0)
	if err != nil {
		return models.OrderRef{}, errors.Wrap(err, "PlaceMarketOrder")
	}
	ack, err := c.placeOrder(ctx, "/api/v5/trade/order", map[string]string{
		"instId":  symbol,
		"tdMode":  "cash",
		"side":    string(side),
		"ordType": "market",
		"sz":      exchange.FormatDecimal(amount),
		// без tgtCcy рыночная покупка на споте считает sz в котируемой валюте
		"tgtCcy":  "base_ccy",
		"clOrdId": clientOrderID(),
	})
	if err != nil {
		return models.OrderRef{}, errors.Wrap(err, "PlaceMarketOrder")
	}
	return models.OrderRef{ID: ack.OrdID, Symbol: symbol, Side: side, Kind: models.OrderMarket, Amount: amount}, nil
}

// PlaceStopLossOrder условный алго-ордер: по триггеру продаёт по рынку.
func (c *Client) PlaceStopLossOrder(ctx context.Context, symbol string, amount, stopPrice float64) (models.OrderRef, error) {
	if amount <= 0 || stopPrice <= 0 {
		return models.OrderRef{}, errors.Errorf("PlaceStopLossOrder: amount=%v stop=%v", amount, stopPrice)
	}
	amount, stopPrice, err := c.normalize(ctx, symbol, amount, stopPrice)
	if err != nil {
		return models.OrderRef{}, errors.Wrap(err, "PlaceStopLossOrder")
	}
	ack, err := c.placeOrder(ctx, "/api/v5/trade/order-algo", map[string]string{
		"instId":          symbol,
		"tdMode":          "cash",
		"side":            string(models.SideSell),
		"ordType":         "conditional",
		"sz":              exchange.FormatDecimal(amount),
		"slTriggerPx":     exchange.FormatDecimal(stopPrice),
		"slOrdPx":         "-1",
		"slTriggerPxType": "last",
	})
	if err != nil {
		return models.OrderRef{}, errors.Wrap(err, "PlaceStopLossOrder")
	}
	return models.OrderRef{ID: ack.AlgoID, Symbol: symbol, Side: models.SideSell, Kind: models.OrderStopLoss, Amount: amount, Price: stopPrice}, nil
}

func (c *Client) PlaceTakeProfitOrder(ctx context.Context, symbol string, amount, targetPrice float64) (models.OrderRef, error) {
	return c.PlaceLimitOrder(ctx, symbol, models.SideSell, amount, targetPrice)
}
