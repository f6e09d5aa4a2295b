package okx

import (
	"context"
	"net/http"
	"net/url"

	"github.com/pkg/errors"

	"signal_bot/internal/exchange"
)

type balanceData struct {
	Details []struct {
		Ccy      string `json:"ccy"`
		AvailBal string `json:"availBal"`
	} `json:"details"`
}

// GetBalance доступный (не в ордерах) остаток. Нет валюты на счёте => 0.
func (c *Client) GetBalance(ctx context.Context, asset string) (float64, error) {
	path := "/api/v5/account/balance?" + url.Values{"ccy": {asset}}.Encode()
	data, err := call[balanceData](ctx, c, http.MethodGet, path, nil, true)
	if err != nil {
		return 0, errors.Wrap(err, "GetBalance")
	}
	for _, acc := range data {
		for _, d := range acc.Details {
			if d.Ccy == asset {
				return exchange.ParseDecimal(d.AvailBal)
			}
		}
	}
	return 0, nil
}

type tickerData struct {
	InstID string `json:"instId"`
	Last   string `json:"last"`
}

func (c *Client) GetTickerPrice(ctx context.Context, symbol string) (float64, error) {
	path := "/api/v5/market/ticker?" + url.Values{"instId": {symbol}}.Encode()
	data, err := call[tickerData](ctx, c, http.MethodGet, path, nil, false)
	if err != nil {
		return 0, errors.Wrap(err, "GetTickerPrice")
	}
	if len(data) == 0 || data[0].Last == "" {
		return 0, errors.Wrap(exchange.ErrNoPrice, symbol)
	}
	return exchange.ParseDecimal(data[0].Last)
}

type instrument struct {
	InstID string `json:"instId"`
	MinSz  string `json:"minSz"`
	LotSz  string `json:"lotSz"`
	TickSz string `json:"tickSz"`
	State  string `json:"state"`
}

// GetMinOrderSize minSz спотового инструмента. Неизвестный => DefaultMinOrderSize.
func (c *Client) GetMinOrderSize(ctx context.Context, symbol string) (float64, error) {
	inst, err := c.instrument(ctx, symbol)
	if err != nil {
		return 0, errors.Wrap(err, "GetMinOrderSize")
	}
	return inst.MinSize, nil
}

func (c *Client) instrument(ctx context.Context, symbol string) (exchange.Instrument, error) {
	return c.instruments.Get(ctx, symbol, c.fetchInstrument)
}

func (c *Client) fetchInstrument(ctx context.Context, symbol string) (exchange.Instrument, error) {
	inst := exchange.Instrument{MinSize: exchange.DefaultMinOrderSize}

	q := url.Values{"instType": {"SPOT"}, "instId": {symbol}}
	data, err := call[instrument](ctx, c, http.MethodGet, "/api/v5/public/instruments?"+q.Encode(), nil, false)
	if err != nil {
		var ae *apiError
		if errors.As(err, &ae) {
			return inst, nil
		}
		return exchange.Instrument{}, err
	}
	if len(data) == 0 {
		return inst, nil
	}
	if v, err := exchange.ParseDecimal(data[0].MinSz); err == nil && v > 0 {
		inst.MinSize = v
	}
	inst.LotStep, _ = exchange.ParseDecimal(data[0].LotSz)
	inst.TickStep, _ = exchange.ParseDecimal(data[0].TickSz)
	return inst, nil
}
