package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signal_bot/internal/models"
)

const lskText = "Buying $LSK\nFirst buying: 0.208-0.210\nSecond buying: 0.205\nCMP: 0.209\nTargets: 5%, 10%, 15%\nSL: 0.195"

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestParse(t *testing.T) {
	out, err := run(t, lskText, "parse")
	require.NoError(t, err)
	assert.Equal(t, "$LSK first=0.208-0.21 second=0.205 cmp=0.209 targets=[5%, 10%, 15%] sl=0.195\n", out)

	_, err = run(t, "gm", "parse")
	assert.ErrorIs(t, err, errNotParsed)
}

func TestPlanFloorsFirstTranche(t *testing.T) {
	out, err := run(t, lskText, "plan", "--balance", "1000", "--min-size", "300", "--json")
	require.NoError(t, err)

	var p models.SizingPlan
	require.NoError(t, sonic.Unmarshal([]byte(out), &p))
	assert.Equal(t, 100.0, p.Budget)
	assert.Equal(t, 300.0, p.First.BaseAmount)
	assert.InDelta(t, 62.7, p.First.QuoteAmount, 1e-9)
	assert.True(t, p.Second.Skip)
}

func TestPlanInsufficientBalance(t *testing.T) {
	_, err := run(t, lskText, "plan", "--balance", "5")
	assert.Error(t, err)
}

func TestRunPaper(t *testing.T) {
	out, err := run(t, lskText, "run", "--stop-unsupported", "--json")
	require.NoError(t, err)

	var rec models.TradeRecord
	require.NoError(t, sonic.Unmarshal([]byte(out), &rec))
	assert.Equal(t, "LSK/USDT", rec.ExchangeSymbol)
	require.NotNil(t, rec.SecondOrder)
	require.NotNil(t, rec.StopLossOrder)
	assert.Equal(t, models.OrderLimit, rec.StopLossOrder.Kind)
	assert.Len(t, rec.TakeProfitOrders, 3)
}
