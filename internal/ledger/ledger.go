package ledger

import (
	"sync"

	"github.com/pkg/errors"

	"signal_bot/internal/models"
)

var ErrDuplicatePosition = errors.New("active trade already exists")

// Ledger активные сделки по символу сигнала (LSK, не LSK-USDT).
// Только в памяти: после рестарта пусто.
//
// Reserve занимает слот до первой закупки, чтобы два почти одновременных
// сигнала по одному символу не открыли две позиции.
type Ledger struct {
	mu       sync.RWMutex
	trades   map[string]models.TradeRecord
	reserved map[string]struct{}
}

func New() *Ledger {
	return &Ledger{
		trades:   make(map[string]models.TradeRecord),
		reserved: make(map[string]struct{}),
	}
}

// Reserve атомарно: проверка дубля + резерв.
func (l *Ledger) Reserve(symbol string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.trades[symbol]; ok {
		return errors.Wrap(ErrDuplicatePosition, symbol)
	}
	if _, ok := l.reserved[symbol]; ok {
		return errors.Wrapf(ErrDuplicatePosition, "%s (execution in progress)", symbol)
	}
	l.reserved[symbol] = struct{}{}
	return nil
}

// Release снимает резерв, если сделка так и не записалась.
func (l *Ledger) Release(symbol string) {
	l.mu.Lock()
	delete(l.reserved, symbol)
	l.mu.Unlock()
}

// Upsert пишет сделку и снимает резерв.
func (l *Ledger) Upsert(symbol string, rec models.TradeRecord) {
	l.mu.Lock()
	l.trades[symbol] = rec.Clone()
	delete(l.reserved, symbol)
	l.mu.Unlock()
}

func (l *Ledger) Get(symbol string) (models.TradeRecord, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	rec, ok := l.trades[symbol]
	if !ok {
		return models.TradeRecord{}, false
	}
	return rec.Clone(), true
}

// Remove освобождает слот (ручное закрытие / внешний мониторинг).
func (l *Ledger) Remove(symbol string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.trades[symbol]; !ok {
		return false
	}
	delete(l.trades, symbol)
	return true
}

// Snapshot копия всех сделок, резервы не попадают.
func (l *Ledger) Snapshot() map[string]models.TradeRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[string]models.TradeRecord, len(l.trades))
	for k, v := range l.trades {
		out[k] = v.Clone()
	}
	return out
}

func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.trades)
}
