package okx

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signal_bot/internal/exchange"
	"signal_bot/internal/models"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New("key", "secret", "pass", true, WithBaseURL(srv.URL), WithClock(func() time.Time { return fixedNow }))
}

func TestSignature(t *testing.T) {
	c := New("key", "secret", "pass", false)
	// base64(hmac_sha256("secret", ts+method+path+body)) для пустого тела
	got := c.sign("2024-03-01T12:00:00.000Z", "GET", "/api/v5/account/balance?ccy=USDT", "")
	assert.Len(t, got, 44)
	assert.Equal(t, got, c.sign("2024-03-01T12:00:00.000Z", "GET", "/api/v5/account/balance?ccy=USDT", ""))
	assert.NotEqual(t, got, c.sign("2024-03-01T12:00:00.000Z", "POST", "/api/v5/account/balance?ccy=USDT", ""))
}

func TestGetBalance(t *testing.T) {
	var headers http.Header
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		headers = r.Header.Clone()
		assert.Equal(t, "/api/v5/account/balance", r.URL.Path)
		assert.Equal(t, "USDT", r.URL.Query().Get("ccy"))
		_, _ = io.WriteString(w, `{"code":"0","msg":"","data":[{"details":[{"ccy":"USDT","availBal":"100.5"}]}]}`)
	})

	bal, err := c.GetBalance(context.Background(), "USDT")
	require.NoError(t, err)
	assert.Equal(t, 100.5, bal)

	assert.Equal(t, "key", headers.Get("OK-ACCESS-KEY"))
	assert.Equal(t, "pass", headers.Get("OK-ACCESS-PASSPHRASE"))
	assert.Equal(t, "2024-03-01T12:00:00.000Z", headers.Get("OK-ACCESS-TIMESTAMP"))
	assert.Equal(t, c.sign("2024-03-01T12:00:00.000Z", "GET", "/api/v5/account/balance?ccy=USDT", ""), headers.Get("OK-ACCESS-SIGN"))
	assert.Equal(t, "1", headers.Get("x-simulated-trading"))
}

func TestGetBalanceMissingAsset(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"code":"0","msg":"","data":[{"details":[]}]}`)
	})
	bal, err := c.GetBalance(context.Background(), "USDT")
	require.NoError(t, err)
	assert.Zero(t, bal)
}

func TestGetBalanceAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"code":"50113","msg":"Invalid Sign","data":[]}`)
	})
	_, err := c.GetBalance(context.Background(), "USDT")
	assert.ErrorContains(t, err, "Invalid Sign")
}

func TestGetTickerPrice(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("OK-ACCESS-SIGN"))
		assert.Equal(t, "LSK-USDT", r.URL.Query().Get("instId"))
		_, _ = io.WriteString(w, `{"code":"0","msg":"","data":[{"instId":"LSK-USDT","last":"0.2101"}]}`)
	})
	p, err := c.GetTickerPrice(context.Background(), "LSK-USDT")
	require.NoError(t, err)
	assert.Equal(t, 0.2101, p)
}

func TestGetMinOrderSize(t *testing.T) {
	t.Run("known", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "SPOT", r.URL.Query().Get("instType"))
			_, _ = io.WriteString(w, `{"code":"0","msg":"","data":[{"instId":"LSK-USDT","minSz":"1","lotSz":"0.0001"}]}`)
		})
		v, err := c.GetMinOrderSize(context.Background(), "LSK-USDT")
		require.NoError(t, err)
		assert.Equal(t, 1.0, v)
	})

	t.Run("unknown instrument", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"code":"51001","msg":"Instrument ID does not exist","data":[]}`)
		})
		v, err := c.GetMinOrderSize(context.Background(), "XYZ-USDT")
		require.NoError(t, err)
		assert.Equal(t, exchange.DefaultMinOrderSize, v)
	})
}

const lskInstrument = `{"code":"0","msg":"","data":[{"instId":"LSK-USDT","minSz":"0.1","lotSz":"0.01","tickSz":"0.0001"}]}`

// withInstrument отвечает на запрос инструмента, остальное отдаёт в h.
func withInstrument(inst string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v5/public/instruments" {
			_, _ = io.WriteString(w, inst)
			return
		}
		h(w, r)
	}
}

func TestPlaceLimitOrder(t *testing.T) {
	var (
		body map[string]string
		c    *Client
	)
	c = newTestClient(t, withInstrument(lskInstrument, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v5/trade/order", r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		assert.NoError(t, sonic.Unmarshal(raw, &body))
		assert.Equal(t, c.sign(r.Header.Get("OK-ACCESS-TIMESTAMP"), "POST", "/api/v5/trade/order", string(raw)), r.Header.Get("OK-ACCESS-SIGN"))
		_, _ = io.WriteString(w, `{"code":"0","msg":"","data":[{"ordId":"777","clOrdId":"x","sCode":"0","sMsg":""}]}`)
	}))
	ref, err := c.PlaceLimitOrder(context.Background(), "LSK-USDT", models.SideBuy, 300, 0.209)
	require.NoError(t, err)
	assert.Equal(t, "777", ref.ID)
	assert.Equal(t, models.OrderLimit, ref.Kind)
	assert.Equal(t, 300.0, ref.Amount)
	assert.Equal(t, "LSK-USDT", body["instId"])
	assert.Equal(t, "cash", body["tdMode"])
	assert.Equal(t, "buy", body["side"])
	assert.Equal(t, "limit", body["ordType"])
	assert.Equal(t, "300", body["sz"])
	assert.Equal(t, "0.209", body["px"])
	assert.Len(t, body["clOrdId"], 32)
}

func TestPlaceLimitOrderRoundsToSteps(t *testing.T) {
	var (
		bodies   []map[string]string
		instReqs int
	)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v5/public/instruments" {
			instReqs++
			_, _ = io.WriteString(w, lskInstrument)
			return
		}
		var body map[string]string
		raw, _ := io.ReadAll(r.Body)
		assert.NoError(t, sonic.Unmarshal(raw, &body))
		bodies = append(bodies, body)
		_, _ = io.WriteString(w, `{"code":"0","msg":"","data":[{"ordId":"1","sCode":"0"}]}`)
	})

	// 60 USDT на первую часть по середине диапазона 0.208-0.210
	ref, err := c.PlaceLimitOrder(context.Background(), "LSK-USDT", models.SideBuy, 60/0.209, 0.20943)
	require.NoError(t, err)
	assert.Equal(t, 287.08, ref.Amount)
	assert.Equal(t, 0.2094, ref.Price)

	_, err = c.PlaceTakeProfitOrder(context.Background(), "LSK-USDT", 95.69, 0.209*1.05)
	require.NoError(t, err)

	require.Len(t, bodies, 2)
	assert.Equal(t, "287.08", bodies[0]["sz"])
	assert.Equal(t, "0.2094", bodies[0]["px"])
	assert.Equal(t, "95.69", bodies[1]["sz"])
	assert.Equal(t, "0.2195", bodies[1]["px"])
	assert.Equal(t, 1, instReqs, "instrument is cached per symbol")
}

func TestPlaceOrderBelowLotStep(t *testing.T) {
	c := newTestClient(t, withInstrument(lskInstrument, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("order must not be sent, got %s", r.URL.Path)
	}))
	_, err := c.PlaceLimitOrder(context.Background(), "LSK-USDT", models.SideSell, 0.004, 0.3)
	assert.True(t, errors.Is(err, exchange.ErrOrderRejected))
}

func TestPlaceLimitOrderRejected(t *testing.T) {
	c := newTestClient(t, withInstrument(lskInstrument, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"code":"1","msg":"All operations failed","data":[{"ordId":"","sCode":"51008","sMsg":"Order failed. Insufficient balance"}]}`)
	}))
	_, err := c.PlaceLimitOrder(context.Background(), "LSK-USDT", models.SideBuy, 300, 0.209)
	require.Error(t, err)
	assert.True(t, errors.Is(err, exchange.ErrOrderRejected))
	assert.Contains(t, err.Error(), "Insufficient balance")
}

func TestPlaceMarketOrderUsesBaseCurrency(t *testing.T) {
	var body map[string]string
	c := newTestClient(t, withInstrument(lskInstrument, func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		assert.NoError(t, sonic.Unmarshal(raw, &body))
		_, _ = io.WriteString(w, `{"code":"0","msg":"","data":[{"ordId":"5","sCode":"0"}]}`)
	}))
	ref, err := c.PlaceMarketOrder(context.Background(), "LSK-USDT", models.SideSell, 12.5)
	require.NoError(t, err)
	assert.Equal(t, models.OrderMarket, ref.Kind)
	assert.Equal(t, "market", body["ordType"])
	assert.Equal(t, "base_ccy", body["tgtCcy"])
	assert.Equal(t, "12.5", body["sz"])
}

func TestPlaceStopLossOrder(t *testing.T) {
	var body map[string]string
	c := newTestClient(t, withInstrument(lskInstrument, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v5/trade/order-algo", r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		assert.NoError(t, sonic.Unmarshal(raw, &body))
		_, _ = io.WriteString(w, `{"code":"0","msg":"","data":[{"algoId":"A1","sCode":"0"}]}`)
	}))
	ref, err := c.PlaceStopLossOrder(context.Background(), "LSK-USDT", 480.123, 0.15)
	require.NoError(t, err)
	assert.Equal(t, "A1", ref.ID)
	assert.Equal(t, models.OrderStopLoss, ref.Kind)
	assert.Equal(t, models.SideSell, ref.Side)
	assert.Equal(t, 480.12, ref.Amount)
	assert.Equal(t, "conditional", body["ordType"])
	assert.Equal(t, "480.12", body["sz"])
	assert.Equal(t, "0.15", body["slTriggerPx"])
	assert.Equal(t, "-1", body["slOrdPx"])
}

func TestPlaceStopLossUnsupported(t *testing.T) {
	c := newTestClient(t, withInstrument(lskInstrument, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"code":"1","msg":"","data":[{"algoId":"","sCode":"51279","sMsg":"not supported"}]}`)
	}))
	_, err := c.PlaceStopLossOrder(context.Background(), "LSK-USDT", 480, 0.15)
	assert.True(t, errors.Is(err, exchange.ErrUnsupportedOrderType))
}

func TestHTTPError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	_, err := c.GetTickerPrice(context.Background(), "LSK-USDT")
	assert.ErrorContains(t, err, "http 502")
}

func TestFactory(t *testing.T) {
	_, err := Factory(exchange.Options{APIKey: "k"})
	assert.True(t, errors.Is(err, exchange.ErrNoCredentials))

	cl, err := Factory(exchange.Options{APIKey: "k", APISecret: "s", Passphrase: "p"})
	require.NoError(t, err)
	assert.Equal(t, "okx", cl.Name())
	assert.Equal(t, "LSK-USDT", cl.FormatSymbol("LSK", "USDT"))
}
