package exchange

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signal_bot/internal/modules/config"
)

func TestNewClient(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, []string{"binance", "okx", "paper"}, r.Names())

	cfg := &config.Config{}
	cfg.Exchange.Name = "paper"
	c, err := NewClient(r, cfg)
	require.NoError(t, err)
	assert.Equal(t, "paper", c.Name())

	cfg.Exchange.Name = "okx"
	_, err = NewClient(r, cfg)
	assert.Error(t, err, "okx without keys")

	cfg.Exchange.Name = "bitfinex"
	_, err = NewClient(r, cfg)
	assert.ErrorContains(t, err, "unknown exchange")
}
