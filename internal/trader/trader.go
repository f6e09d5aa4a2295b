package trader

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"signal_bot/internal/exchange"
	"signal_bot/internal/journal"
	"signal_bot/internal/ledger"
	"signal_bot/internal/models"
	"signal_bot/internal/parser"
	"signal_bot/internal/sizing"
	"signal_bot/pkg/logger"
)

var (
	ErrFirstBuyFailed     = errors.New("first buy failed")
	ErrBalanceUnavailable = errors.New("balance unavailable")
)

type Config struct {
	Sizing           sizing.Config
	EnableStopLoss   bool
	EnableTakeProfit bool
}

// Trader связывает парсер, сайзер, биржу и ledger.
type Trader struct {
	client  exchange.Client
	ledger  *ledger.Ledger
	journal journal.Recorder
	cfg     Config
	now     func() time.Time
}

func New(client exchange.Client, l *ledger.Ledger, rec journal.Recorder, cfg Config) *Trader {
	if rec == nil {
		rec = journal.Nop{}
	}
	return &Trader{
		client:  client,
		ledger:  l,
		journal: rec,
		cfg:     cfg,
		now:     time.Now,
	}
}

func (t *Trader) ExchangeName() string { return t.client.Name() }

func (t *Trader) QuoteAsset() string { return t.cfg.Sizing.QuoteAsset }

// ExecuteSignal единая точка входа: текст -> сигнал -> сделка.
func (t *Trader) ExecuteSignal(ctx context.Context, text string) bool {
	sig, ok := parser.Extract(text)
	if !ok {
		logger.Info("signal not parsed, skip")
		return false
	}
	if _, err := t.Execute(ctx, sig); err != nil {
		logger.Warn("%s: execution failed: %v", sig.Symbol, err)
		return false
	}
	return true
}

func (t *Trader) ActiveTrades() map[string]models.TradeSummary {
	snap := t.ledger.Snapshot()
	out := make(map[string]models.TradeSummary, len(snap))
	for sym, rec := range snap {
		out[sym] = rec.Summary()
	}
	return out
}

// ActiveCount число активных сделок без копирования снапшота.
func (t *Trader) ActiveCount() int { return t.ledger.Len() }

func (t *Trader) Trade(symbol string) (models.TradeRecord, bool) {
	return t.ledger.Get(symbol)
}

// Remove ручное закрытие: слот символа снова свободен для новых сигналов.
func (t *Trader) Remove(symbol string) bool {
	ok := t.ledger.Remove(symbol)
	if ok {
		logger.Info("%s: removed from active trades", symbol)
	}
	return ok
}

func (t *Trader) Balance(ctx context.Context) (float64, error) {
	return t.client.GetBalance(ctx, t.cfg.Sizing.QuoteAsset)
}
