package models

// Tranche одна часть входа.
type Tranche struct {
	QuoteAmount float64 `json:"quote_amount"` // стоимость в quote (USDT)
	BaseAmount  float64 `json:"base_amount"`  // объём в монете
	Price       float64 `json:"price"`
	Skip        bool    `json:"skip,omitempty"` // только для второй части: ниже minSz
}

// SizingPlan считается заново на каждую попытку исполнения, нигде не хранится.
type SizingPlan struct {
	Balance      float64 `json:"balance"`
	Budget       float64 `json:"budget"`
	MinOrderSize float64 `json:"min_order_size"`
	First        Tranche `json:"first"`
	Second       Tranche `json:"second"`
	// FirstFloored первая часть поднята до minSz, стоимость пересчитана.
	FirstFloored bool `json:"first_floored,omitempty"`
}
