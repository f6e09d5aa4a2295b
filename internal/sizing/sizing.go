package sizing

import (
	"github.com/pkg/errors"

	"signal_bot/internal/models"
)

// MinBalance ниже этого баланса (в quote) не торгуем вообще.
const MinBalance = 10.0

const (
	firstShare  = 0.6
	secondShare = 0.4
)

var ErrInsufficientBalance = errors.New("insufficient balance")

// Config то, что нужно сайзеру из общего конфига.
type Config struct {
	QuoteAsset             string
	MaxPositionSize        float64 // абсолютный потолок на сделку, в quote
	PositionSizePercentage float64 // процент от баланса на сделку
}

// Budget = min(balance * pct/100, max).
func (c Config) Budget(balance float64) float64 {
	budget := balance * (c.PositionSizePercentage / 100)
	if budget > c.MaxPositionSize {
		budget = c.MaxPositionSize
	}
	return budget
}

// Plan раскладывает бюджет 60/40 на две закупки.
//
// Первая часть ниже minOrderSize поднимается до минимума (стоимость растёт и
// из бюджета не вычитается). Вторая часть ниже минимума помечается Skip.
// Ошибка только одна: баланс ниже MinBalance.
func Plan(balance float64, sig models.Signal, cfg Config, minOrderSize float64) (models.SizingPlan, error) {
	if balance < MinBalance {
		return models.SizingPlan{}, errors.Wrapf(ErrInsufficientBalance, "%.4f %s < %.0f", balance, cfg.QuoteAsset, MinBalance)
	}

	budget := cfg.Budget(balance)
	plan := models.SizingPlan{
		Balance:      balance,
		Budget:       budget,
		MinOrderSize: minOrderSize,
	}

	firstPrice := sig.FirstBuy.Mid()
	plan.First = models.Tranche{
		QuoteAmount: budget * firstShare,
		Price:       firstPrice,
	}
	plan.First.BaseAmount = plan.First.QuoteAmount / firstPrice
	if plan.First.BaseAmount < minOrderSize {
		plan.First.BaseAmount = minOrderSize
		plan.First.QuoteAmount = minOrderSize * firstPrice
		plan.FirstFloored = true
	}

	plan.Second = models.Tranche{
		QuoteAmount: budget * secondShare,
		Price:       sig.SecondBuy,
	}
	plan.Second.BaseAmount = plan.Second.QuoteAmount / sig.SecondBuy
	if plan.Second.BaseAmount < minOrderSize {
		plan.Second.Skip = true
	}

	return plan, nil
}
