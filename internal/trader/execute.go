package trader

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"signal_bot/internal/exchange"
	"signal_bot/internal/journal"
	"signal_bot/internal/models"
	"signal_bot/internal/sizing"
	"signal_bot/pkg/logger"
)

// Execute полный цикл по одному сигналу.
//
// Порядок строгий: резерв символа -> баланс -> мин. размер -> план ->
// первая закупка -> вторая -> стоп -> тейки -> запись в ledger.
// Ошибкой заканчивается только то, что случилось до первой закупки включительно.
func (t *Trader) Execute(ctx context.Context, sig models.Signal) (rec models.TradeRecord, err error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "trader.Execute")
	span.SetTag("symbol", sig.Symbol)
	span.SetTag("exchange", t.client.Name())

	symbol := t.client.FormatSymbol(sig.Symbol, t.cfg.Sizing.QuoteAsset)
	defer func() {
		if err != nil {
			ext.Error.Set(span, true)
			span.LogKV("error", err.Error())
		}
		span.Finish()
		t.journalize(ctx, sig, symbol, rec, err)
	}()

	if err = t.ledger.Reserve(sig.Symbol); err != nil {
		return models.TradeRecord{}, err
	}
	committed := false
	defer func() {
		if !committed {
			t.ledger.Release(sig.Symbol)
		}
	}()

	balance, err := t.client.GetBalance(ctx, t.cfg.Sizing.QuoteAsset)
	if err != nil {
		return models.TradeRecord{}, errors.Wrapf(ErrBalanceUnavailable, "%v", err)
	}

	minSize, err := t.client.GetMinOrderSize(ctx, symbol)
	if err != nil {
		logger.Warn("%s: min order size unavailable, using %v: %v", symbol, exchange.DefaultMinOrderSize, err)
		minSize = exchange.DefaultMinOrderSize
	}

	plan, err := sizing.Plan(balance, sig, t.cfg.Sizing, minSize)
	if err != nil {
		return models.TradeRecord{}, err
	}
	if plan.FirstFloored {
		logger.Info("%s: first tranche raised to min size %v (cost %.4f %s)", symbol, minSize, plan.First.QuoteAmount, t.cfg.Sizing.QuoteAsset)
	}

	rec, err = t.orchestrate(ctx, symbol, sig, plan)
	if err != nil {
		return models.TradeRecord{}, err
	}

	t.ledger.Upsert(sig.Symbol, rec)
	committed = true

	logger.Info("%s: trade opened amount=%.6f avg=%.8f sl=%v tp=%d/%d",
		symbol, rec.TotalAmount, rec.AvgEntryPrice, rec.StopLossOrder != nil, len(rec.TakeProfitOrders), len(sig.Targets))
	return rec, nil
}

func (t *Trader) orchestrate(ctx context.Context, symbol string, sig models.Signal, plan models.SizingPlan) (models.TradeRecord, error) {
	first, err := t.buy(ctx, "first_buy", symbol, plan.First)
	if err != nil {
		logger.Error("%s: first buy failed: %v", symbol, err)
		return models.TradeRecord{}, errors.Wrapf(ErrFirstBuyFailed, "%s: %v", symbol, err)
	}

	rec := models.TradeRecord{
		Symbol:         sig.Symbol,
		ExchangeSymbol: symbol,
		FirstOrder:     first,
		Signal:         sig.Clone(),
		OpenedAt:       t.now(),
	}

	// биржа могла округлить объём и цену к шагам инструмента: считаем по принятым ордерам
	totalAmount := first.Amount
	totalCost := first.Amount * first.Price

	switch {
	case plan.Second.Skip:
		logger.Info("%s: second buy skipped, amount %.6f < min %v", symbol, plan.Second.BaseAmount, plan.MinOrderSize)
	default:
		second, err := t.buy(ctx, "second_buy", symbol, plan.Second)
		if err != nil {
			logger.Warn("%s: second buy failed, continue with first only: %v", symbol, err)
			break
		}
		rec.SecondOrder = &second
		totalAmount += second.Amount
		totalCost += second.Amount * second.Price
	}

	rec.TotalAmount = totalAmount
	if totalAmount > 0 {
		rec.AvgEntryPrice = totalCost / totalAmount
	} else {
		rec.AvgEntryPrice = first.Price
	}

	if t.cfg.EnableStopLoss {
		rec.StopLossOrder = t.placeStopLoss(ctx, symbol, rec.TotalAmount, sig.StopLoss)
	}

	if t.cfg.EnableTakeProfit && len(sig.Targets) > 0 {
		rec.TakeProfitOrders = t.placeTakeProfits(ctx, symbol, rec.TotalAmount, rec.AvgEntryPrice, sig.Targets)
	}

	return rec, nil
}

func (t *Trader) buy(ctx context.Context, step, symbol string, tr models.Tranche) (models.OrderRef, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "trader."+step)
	defer span.Finish()
	span.SetTag("amount", tr.BaseAmount)
	span.SetTag("price", tr.Price)

	ref, err := t.client.PlaceLimitOrder(ctx, symbol, models.SideBuy, tr.BaseAmount, tr.Price)
	if err != nil {
		ext.Error.Set(span, true)
		return models.OrderRef{}, err
	}
	return ref, nil
}

// placeStopLoss стоп, при отказе обычная лимитная продажа по той же цене.
// nil значит позиция осталась без защиты, сделка всё равно активна.
func (t *Trader) placeStopLoss(ctx context.Context, symbol string, amount, price float64) *models.OrderRef {
	span, ctx := opentracing.StartSpanFromContext(ctx, "trader.stop_loss")
	defer span.Finish()

	ref, err := t.client.PlaceStopLossOrder(ctx, symbol, amount, price)
	if err == nil {
		return &ref
	}
	logger.Warn("%s: stop-loss rejected, fallback to limit sell at %v: %v", symbol, price, err)
	span.LogKV("stop_loss_error", err.Error())

	ref, err = t.client.PlaceLimitOrder(ctx, symbol, models.SideSell, amount, price)
	if err != nil {
		ext.Error.Set(span, true)
		logger.Error("%s: stop-loss fallback failed, position has no downside protection: %v", symbol, err)
		return nil
	}
	return &ref
}

// placeTakeProfits объём делится поровну между целями, каждая цель независима.
func (t *Trader) placeTakeProfits(ctx context.Context, symbol string, amount, avg float64, targets []float64) []models.OrderRef {
	span, ctx := opentracing.StartSpanFromContext(ctx, "trader.take_profit")
	defer span.Finish()

	per := amount / float64(len(targets))
	var (
		refs []models.OrderRef
		errs error
	)
	for i, pct := range targets {
		price := avg * (1 + pct/100)
		ref, err := t.client.PlaceTakeProfitOrder(ctx, symbol, per, price)
		if err != nil {
			logger.Warn("%s: take-profit #%d (%v%%) at %.8f failed: %v", symbol, i+1, pct, price, err)
			errs = multierr.Append(errs, errors.Wrapf(err, "tp#%d", i+1))
			continue
		}
		refs = append(refs, ref)
	}
	if errs != nil {
		ext.Error.Set(span, true)
		logger.Warn("%s: %d of %d take-profit orders failed: %v", symbol, len(multierr.Errors(errs)), len(targets), errs)
	}
	return refs
}

func (t *Trader) journalize(ctx context.Context, sig models.Signal, symbol string, rec models.TradeRecord, execErr error) {
	e := journal.Entry{
		Symbol:        sig.Symbol,
		Exchange:      t.client.Name(),
		Success:       execErr == nil,
		TotalAmount:   rec.TotalAmount,
		AvgEntryPrice: rec.AvgEntryPrice,
		OrdersPlaced:  ordersPlaced(rec, execErr),
		Signal:        sig,
		At:            t.now(),
	}
	if execErr != nil {
		e.Reason = execErr.Error()
	}
	if err := t.journal.Record(ctx, e); err != nil {
		logger.Warn("%s: journal write failed: %v", symbol, err)
	}
}

func ordersPlaced(rec models.TradeRecord, err error) int {
	if err != nil {
		return 0
	}
	n := 1 + len(rec.TakeProfitOrders)
	if rec.SecondOrder != nil {
		n++
	}
	if rec.StopLossOrder != nil {
		n++
	}
	return n
}
