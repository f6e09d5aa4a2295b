package exchange

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// FormatDecimal число для тела ордера: без экспоненты и хвостов float.
func FormatDecimal(v float64) string {
	return decimal.NewFromFloat(v).Round(10).String()
}

// ParseDecimal биржи отдают цены/объёмы строками.
func ParseDecimal(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, errors.Wrapf(err, "parse %q", s)
	}
	f, _ := d.Float64()
	return f, nil
}
