package journal

import (
	"context"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"

	"signal_bot/pkg/db"
)

const insertEntry = `
INSERT INTO signal_journal
    (symbol, exchange, success, reason, total_amount, avg_entry_price, orders_placed, signal, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

type PgRecorder struct {
	tx db.TxManager
}

func NewPgRecorder(tx db.TxManager) *PgRecorder {
	return &PgRecorder{tx: tx}
}

func (r *PgRecorder) Record(ctx context.Context, e Entry) error {
	sig, err := sonic.Marshal(e.Signal)
	if err != nil {
		return errors.Wrap(err, "marshal signal")
	}
	return r.tx.RunMaster(ctx, func(ctxTx context.Context, tx db.Transaction) error {
		_, err := tx.Exec(ctxTx, insertEntry,
			e.Symbol, e.Exchange, e.Success, e.Reason,
			e.TotalAmount, e.AvgEntryPrice, e.OrdersPlaced,
			string(sig), e.At,
		)
		return errors.Wrap(err, "insert signal_journal")
	})
}
