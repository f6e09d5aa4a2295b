package binance

import (
	"context"
	"net/http"
	"net/url"

	"github.com/pkg/errors"

	"signal_bot/internal/exchange"
)

type accountResp struct {
	Balances []struct {
		Asset  string `json:"asset"`
		Free   string `json:"free"`
		Locked string `json:"locked"`
	} `json:"balances"`
}

func (c *Client) GetBalance(ctx context.Context, asset string) (float64, error) {
	var r accountResp
	if err := c.do(ctx, http.MethodGet, "/api/v3/account", url.Values{"omitZeroBalances": {"true"}}, true, &r); err != nil {
		return 0, errors.Wrap(err, "GetBalance")
	}
	for _, b := range r.Balances {
		if b.Asset == asset {
			return exchange.ParseDecimal(b.Free)
		}
	}
	return 0, nil
}

func (c *Client) GetTickerPrice(ctx context.Context, symbol string) (float64, error) {
	var r struct {
		Symbol string `json:"symbol"`
		Price  string `json:"price"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v3/ticker/price", url.Values{"symbol": {symbol}}, false, &r); err != nil {
		return 0, errors.Wrap(err, "GetTickerPrice")
	}
	if r.Price == "" {
		return 0, errors.Wrap(exchange.ErrNoPrice, symbol)
	}
	return exchange.ParseDecimal(r.Price)
}

type exchangeInfo struct {
	Symbols []struct {
		Symbol  string `json:"symbol"`
		Filters []struct {
			FilterType string `json:"filterType"`
			MinQty     string `json:"minQty"`
			StepSize   string `json:"stepSize"`
			TickSize   string `json:"tickSize"`
		} `json:"filters"`
	} `json:"symbols"`
}

// GetMinOrderSize minQty фильтра LOT_SIZE.
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

// fetchInstrument LOT_SIZE (minQty, stepSize) и PRICE_FILTER (tickSize).
func (c *Client) fetchInstrument(ctx context.Context, symbol string) (exchange.Instrument, error) {
	inst := exchange.Instrument{MinSize: exchange.DefaultMinOrderSize}

	var r exchangeInfo
	if err := c.do(ctx, http.MethodGet, "/api/v3/exchangeInfo", url.Values{"symbol": {symbol}}, false, &r); err != nil {
		var ae *apiError
		if errors.As(err, &ae) && ae.Code == codeBadSym {
			return inst, nil
		}
		return exchange.Instrument{}, err
	}
	for _, s := range r.Symbols {
		if s.Symbol != symbol {
			continue
		}
		for _, f := range s.Filters {
			switch f.FilterType {
			case "LOT_SIZE":
				if v, err := exchange.ParseDecimal(f.MinQty); err == nil && v > 0 {
					inst.MinSize = v
				}
				inst.LotStep, _ = exchange.ParseDecimal(f.StepSize)
			case "PRICE_FILTER":
				inst.TickStep, _ = exchange.ParseDecimal(f.TickSize)
			}
		}
	}
	return inst, nil
}
