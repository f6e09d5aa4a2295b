package service

import (
	"strconv"
	"strings"
)

func placed(v bool) string {
	if v {
		return "выставлена"
	}
	return "нет"
}

// price без лишних нулей: 0.209, а не 0.20900000
func price(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func amount(v float64) string {
	s := strconv.FormatFloat(v, 'f', 4, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

func percents(p []float64) string {
	out := make([]string, len(p))
	for i, v := range p {
		out[i] = strconv.FormatFloat(v, 'f', -1, 64) + "%"
	}
	return strings.Join(out, ", ")
}
