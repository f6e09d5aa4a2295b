package binance

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"signal_bot/internal/exchange"
)

const (
	Name        = "binance"
	baseURL     = "https://api.binance.com"
	testnetURL  = "https://testnet.binance.vision"
	recvWindow  = "5000"
	codeBadType = -1116 // Invalid orderType.
	codeBadSym  = -1121 // Invalid symbol.
)

var _ exchange.Client = (*Client)(nil)

type Client struct {
	http   *resty.Client
	apiKey string
	secret string
	now    func() time.Time

	instruments exchange.InstrumentCache
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.http.SetBaseURL(u) }
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

func New(apiKey, secret string, testnet bool, opts ...Option) *Client {
	u := baseURL
	if testnet {
		u = testnetURL
	}
	c := &Client{
		http:   resty.New().SetBaseURL(u).SetTimeout(10 * time.Second),
		apiKey: apiKey,
		secret: secret,
		now:    time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func Factory(o exchange.Options) (exchange.Client, error) {
	if o.APIKey == "" || o.APISecret == "" {
		return nil, exchange.ErrNoCredentials
	}
	var opts []Option
	if o.BaseURL != "" {
		opts = append(opts, WithBaseURL(o.BaseURL))
	}
	return New(o.APIKey, o.APISecret, o.Testnet, opts...), nil
}

func (c *Client) Name() string { return Name }

func (c *Client) FormatSymbol(base, quote string) string { return base + quote }

// sign hex(hmac_sha256(secret, query)).
func (c *Client) sign(query string) string {
	mac := hmac.New(sha256.New, []byte(c.secret))
	mac.Write([]byte(query))
	return hex.EncodeToString(mac.Sum(nil))
}

type apiError struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

func (e *apiError) Error() string { return "binance code=" + strconv.Itoa(e.Code) + " msg=" + e.Msg }

// do параметры всегда в query string, для POST тоже: так подпись считается по одной строке.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, signed bool, out any) error {
	if params == nil {
		params = url.Values{}
	}
	req := c.http.R().SetContext(ctx)
	query := params.Encode()
	if signed {
		params.Set("timestamp", strconv.FormatInt(c.now().UnixMilli(), 10))
		params.Set("recvWindow", recvWindow)
		query = params.Encode()
		query += "&signature=" + c.sign(query)
		req.SetHeader("X-MBX-APIKEY", c.apiKey)
	}
	if query != "" {
		path += "?" + query
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, strings.SplitN(path, "?", 2)[0])
	}
	data := resp.Body()
	if resp.StatusCode()/100 != 2 {
		var ae apiError
		if sonic.Unmarshal(data, &ae) == nil && ae.Code != 0 {
			return &ae
		}
		return errors.Errorf("%s: http %d: %s", strings.SplitN(path, "?", 2)[0], resp.StatusCode(), string(data))
	}
	if out == nil {
		return nil
	}
	if err := sonic.Unmarshal(data, out); err != nil {
		return errors.Wrapf(err, "decode; body=%s", string(data))
	}
	return nil
}
