package ledger

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signal_bot/internal/models"
)

func record(symbol string) models.TradeRecord {
	return models.TradeRecord{
		Symbol:           symbol,
		ExchangeSymbol:   symbol + "-USDT",
		FirstOrder:       models.OrderRef{ID: "1"},
		TakeProfitOrders: []models.OrderRef{{ID: "tp1"}},
		TotalAmount:      10,
		AvgEntryPrice:    2,
		Signal:           models.Signal{Symbol: symbol, Targets: []float64{5, 10}, StopLoss: 1},
	}
}

func TestReserveBlocksDuplicates(t *testing.T) {
	l := New()

	require.NoError(t, l.Reserve("LSK"))
	err := l.Reserve("LSK")
	assert.True(t, errors.Is(err, ErrDuplicatePosition))

	l.Release("LSK")
	require.NoError(t, l.Reserve("LSK"))

	l.Upsert("LSK", record("LSK"))
	err = l.Reserve("LSK")
	assert.True(t, errors.Is(err, ErrDuplicatePosition))

	// другой символ не мешает
	assert.NoError(t, l.Reserve("BTC"))
}

func TestReservationInvisible(t *testing.T) {
	l := New()
	require.NoError(t, l.Reserve("LSK"))

	_, ok := l.Get("LSK")
	assert.False(t, ok)
	assert.Empty(t, l.Snapshot())
	assert.Equal(t, 0, l.Len())
}

func TestRemoveFreesSlot(t *testing.T) {
	l := New()
	l.Upsert("LSK", record("LSK"))

	assert.True(t, l.Remove("LSK"))
	assert.False(t, l.Remove("LSK"))
	assert.NoError(t, l.Reserve("LSK"))
}

func TestSnapshotDoesNotAlias(t *testing.T) {
	l := New()
	l.Upsert("LSK", record("LSK"))

	snap := l.Snapshot()
	rec := snap["LSK"]
	rec.Signal.Targets[0] = 999
	rec.TakeProfitOrders[0].ID = "changed"
	rec.TotalAmount = 0
	snap["BTC"] = record("BTC")

	got, ok := l.Get("LSK")
	require.True(t, ok)
	assert.Equal(t, 5.0, got.Signal.Targets[0])
	assert.Equal(t, "tp1", got.TakeProfitOrders[0].ID)
	assert.Equal(t, 10.0, got.TotalAmount)
	assert.Equal(t, 1, l.Len())
}

func TestConcurrentReserveSingleWinner(t *testing.T) {
	l := New()

	var (
		wg   sync.WaitGroup
		wins atomic.Int32
	)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Reserve("LSK") == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
}
