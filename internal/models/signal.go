package models

import (
	"fmt"
	"strings"
)

// BuyRange диапазон первой закупки в том порядке, в каком он пришёл в тексте.
// Min > Max не переставляем.
type BuyRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Mid средняя цена диапазона, по ней ставится первый лимитник.
func (r BuyRange) Mid() float64 {
	return (r.Min + r.Max) / 2
}

// Signal распарсенный торговый сигнал. Создаётся только парсером, дальше не меняется.
type Signal struct {
	Symbol    string    `json:"symbol"` // LSK, BTC ...
	FirstBuy  BuyRange  `json:"first_buy"`
	SecondBuy float64   `json:"second_buy"`
	CMP       float64   `json:"cmp"`
	Targets   []float64 `json:"targets"` // проценты, по возрастанию
	StopLoss  float64   `json:"stop_loss"`
}

// Clone глубокая копия (Targets это слайс).
func (s Signal) Clone() Signal {
	out := s
	if s.Targets != nil {
		out.Targets = append([]float64(nil), s.Targets...)
	}
	return out
}

// Equal сравнивает сигналы поэлементно.
func (s Signal) Equal(o Signal) bool {
	if s.Symbol != o.Symbol || s.FirstBuy != o.FirstBuy || s.SecondBuy != o.SecondBuy ||
		s.CMP != o.CMP || s.StopLoss != o.StopLoss || len(s.Targets) != len(o.Targets) {
		return false
	}
	for i := range s.Targets {
		if s.Targets[i] != o.Targets[i] {
			return false
		}
	}
	return true
}

func (s Signal) TargetsString() string {
	parts := make([]string, 0, len(s.Targets))
	for _, t := range s.Targets {
		parts = append(parts, fmt.Sprintf("%g%%", t))
	}
	return strings.Join(parts, ", ")
}

func (s Signal) String() string {
	return fmt.Sprintf("$%s first=%g-%g second=%g cmp=%g targets=[%s] sl=%g",
		s.Symbol, s.FirstBuy.Min, s.FirstBuy.Max, s.SecondBuy, s.CMP, s.TargetsString(), s.StopLoss)
}
