package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"signal_bot/internal/ledger"
	"signal_bot/internal/models"
	"signal_bot/internal/sizing"
	"signal_bot/internal/trader"
)

const helpText = "Я исполняю торговые сигналы из этого чата.\n\n" +
	"Формат:\n" +
	"Buying $LSK\n" +
	"First buying: 0.208-0.210\n" +
	"Second buying: 0.205\n" +
	"CMP: 0.209\n" +
	"Targets: 5%, 10%, 15%\n" +
	"SL: 0.195\n\n" +
	"/status - биржа, баланс, число сделок\n" +
	"/trades - активные сделки\n" +
	"/remove SYMBOL - убрать сделку из активных"

func formatSignal(s models.Signal) string {
	return fmt.Sprintf(
		"📡 Сигнал %s\n"+
			"Первая закупка: %s-%s\n"+
			"Вторая закупка: %s\n"+
			"CMP: %s\n"+
			"Цели: %s\n"+
			"SL: %s",
		s.Symbol,
		price(s.FirstBuy.Min), price(s.FirstBuy.Max),
		price(s.SecondBuy),
		price(s.CMP),
		s.TargetsString(),
		price(s.StopLoss),
	)
}

func formatTrade(r models.TradeRecord, quote string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ Сделка %s открыта\n", r.ExchangeSymbol)
	fmt.Fprintf(&b, "Объём: %s\n", amount(r.TotalAmount))
	fmt.Fprintf(&b, "Средняя цена входа: %s %s\n", price(r.AvgEntryPrice), quote)
	fmt.Fprintf(&b, "Вторая закупка: %s\n", placed(r.SecondOrder != nil))
	if r.StopLossOrder != nil {
		fmt.Fprintf(&b, "Стоп: %s (%s)\n", price(r.StopLossOrder.Price), r.StopLossOrder.Kind)
	} else {
		b.WriteString("Стоп: ⚠️ не выставлен\n")
	}
	fmt.Fprintf(&b, "Тейки: %d/%d", len(r.TakeProfitOrders), len(r.Signal.Targets))
	return b.String()
}

func formatFailure(symbol string, err error) string {
	var reason string
	switch {
	case errors.Is(err, ledger.ErrDuplicatePosition):
		reason = "по символу уже есть активная сделка"
	case errors.Is(err, sizing.ErrInsufficientBalance):
		reason = "недостаточно средств"
	case errors.Is(err, trader.ErrBalanceUnavailable):
		reason = "биржа не вернула баланс"
	case errors.Is(err, trader.ErrFirstBuyFailed):
		reason = "первая закупка не выставлена"
	default:
		reason = err.Error()
	}
	return fmt.Sprintf("❌ %s: %s", symbol, reason)
}

func formatStatus(exchange, quote string, balance float64, balanceErr error, active int) string {
	bal := amount(balance) + " " + quote
	if balanceErr != nil {
		bal = "недоступен"
	}
	return fmt.Sprintf(
		"📊 Статус\n"+
			"Биржа: %s\n"+
			"Баланс: %s\n"+
			"Активных сделок: %d",
		exchange, bal, active,
	)
}

func formatTrades(trades map[string]models.TradeSummary) string {
	if len(trades) == 0 {
		return "📭 Активных сделок нет"
	}
	symbols := make([]string, 0, len(trades))
	for s := range trades {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	var b strings.Builder
	b.WriteString("📈 Активные сделки:\n")
	for _, s := range symbols {
		t := trades[s]
		fmt.Fprintf(&b, "- %s: %s @ %s, SL %s, цели %s\n",
			s, amount(t.TotalAmount), price(t.AvgEntryPrice), price(t.StopLoss), percents(t.Targets))
	}
	return strings.TrimRight(b.String(), "\n")
}
