package models

import "time"

type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

type OrderKind string

const (
	OrderLimit    OrderKind = "limit"
	OrderMarket   OrderKind = "market"
	OrderStopLoss OrderKind = "stop_loss"
)

// OrderRef то, что биржа вернула на выставленный ордер.
type OrderRef struct {
	ID     string    `json:"id"`
	Symbol string    `json:"symbol"` // в формате биржи
	Side   Side      `json:"side"`
	Kind   OrderKind `json:"kind"`
	Amount float64   `json:"amount"`
	Price  float64   `json:"price"`
}

// TradeRecord активная сделка. Пишется в ledger только после успешной первой закупки.
type TradeRecord struct {
	Symbol         string `json:"symbol"`
	ExchangeSymbol string `json:"exchange_symbol"`

	FirstOrder       OrderRef   `json:"first_order"`
	SecondOrder      *OrderRef  `json:"second_order,omitempty"`
	StopLossOrder    *OrderRef  `json:"stop_loss_order,omitempty"`
	TakeProfitOrders []OrderRef `json:"take_profit_orders"`

	TotalAmount   float64 `json:"total_amount"`
	AvgEntryPrice float64 `json:"avg_entry_price"`

	Signal   Signal    `json:"signal"`
	OpenedAt time.Time `json:"opened_at"`
}

// Clone чтобы снапшоты не делили слайсы и указатели с ledger.
func (t TradeRecord) Clone() TradeRecord {
	out := t
	out.Signal = t.Signal.Clone()
	if t.SecondOrder != nil {
		o := *t.SecondOrder
		out.SecondOrder = &o
	}
	if t.StopLossOrder != nil {
		o := *t.StopLossOrder
		out.StopLossOrder = &o
	}
	if t.TakeProfitOrders != nil {
		out.TakeProfitOrders = append([]OrderRef(nil), t.TakeProfitOrders...)
	}
	return out
}

// Summary короткая выжимка для /status, /trades и http.
func (t TradeRecord) Summary() TradeSummary {
	return TradeSummary{
		TotalAmount:   t.TotalAmount,
		AvgEntryPrice: t.AvgEntryPrice,
		StopLoss:      t.Signal.StopLoss,
		Targets:       append([]float64(nil), t.Signal.Targets...),
	}
}

type TradeSummary struct {
	TotalAmount   float64   `json:"total_amount"`
	AvgEntryPrice float64   `json:"avg_entry_price"`
	StopLoss      float64   `json:"stop_loss"`
	Targets       []float64 `json:"targets"`
}
