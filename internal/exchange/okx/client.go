package okx

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"signal_bot/internal/exchange"
)

const (
	Name    = "okx"
	baseURL = "https://www.okx.com"
)

var _ exchange.Client = (*Client)(nil)

type Client struct {
	http    *resty.Client
	apiKey  string
	secret  string
	passph  string
	testnet bool
	now     func() time.Time

	instruments exchange.InstrumentCache
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.http.SetBaseURL(u) }
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

func New(apiKey, secret, passph string, testnet bool, opts ...Option) *Client {
	c := &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(10 * time.Second).
			SetHeader("Content-Type", "application/json"),
		apiKey:  apiKey,
		secret:  secret,
		passph:  passph,
		testnet: testnet,
		now:     time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Factory для exchange.Registry.
func Factory(o exchange.Options) (exchange.Client, error) {
	if o.APIKey == "" || o.APISecret == "" || o.Passphrase == "" {
		return nil, exchange.ErrNoCredentials
	}
	var opts []Option
	if o.BaseURL != "" {
		opts = append(opts, WithBaseURL(o.BaseURL))
	}
	return New(o.APIKey, o.APISecret, o.Passphrase, o.Testnet, opts...), nil
}

func (c *Client) Name() string { return Name }

func (c *Client) FormatSymbol(base, quote string) string { return base + "-" + quote }

func (c *Client) sign(ts, method, path, body string) string {
	mac := hmac.New(sha256.New, []byte(c.secret))
	mac.Write([]byte(ts + method + path + body))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

type envelope[T any] struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
	Data []T    `json:"data"`
}

// call один REST вызов. path включает query string: так же он идёт в подпись.
func call[T any](ctx context.Context, c *Client, method, path string, body any, signed bool) ([]T, error) {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = sonic.Marshal(body); err != nil {
			return nil, errors.Wrap(err, "marshal")
		}
	}

	req := c.http.R().SetContext(ctx)
	if payload != nil {
		req.SetBody(payload)
	}
	if signed {
		ts := c.now().UTC().Format("2006-01-02T15:04:05.000Z")
		req.SetHeader("OK-ACCESS-KEY", c.apiKey).
			SetHeader("OK-ACCESS-SIGN", c.sign(ts, method, path, string(payload))).
			SetHeader("OK-ACCESS-TIMESTAMP", ts).
			SetHeader("OK-ACCESS-PASSPHRASE", c.passph)
	}
	if c.testnet {
		req.SetHeader("x-simulated-trading", "1")
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", method, path)
	}
	data := resp.Body()
	if resp.StatusCode()/100 != 2 {
		return nil, errors.Errorf("%s %s: http %d: %s", method, path, resp.StatusCode(), string(data))
	}

	var r envelope[T]
	if err := sonic.Unmarshal(data, &r); err != nil {
		return nil, errors.Wrapf(err, "decode %s; body=%s", path, string(data))
	}
	if r.Code != "0" {
		return r.Data, &apiError{Code: r.Code, Msg: r.Msg}
	}
	return r.Data, nil
}

type apiError struct {
	Code string
	Msg  string
}

func (e *apiError) Error() string { return "okx code=" + e.Code + " msg=" + e.Msg }
