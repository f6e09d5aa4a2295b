// Package parser разбирает текстовые алерты вида
//
//	Buying $LSK
//	First buying: 0.208-0.210
//	Second buying: 0.205
//	CMP: 0.209
//	Targets: 5%, 10%, 15%
//	SL: 0.195
//
// в models.Signal.
package parser

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"signal_bot/internal/models"
)

var (
	reSymbol    = regexp.MustCompile(`(?i)\$([A-Z0-9]+)`)
	reFirstBuy  = regexp.MustCompile(`(?i)first\s+buying[:\s]+([\d.]+)[\s–-]+([\d.]+)`)
	reSecondBuy = regexp.MustCompile(`(?i)second\s+buying[:\s]+([\d.]+)`)
	reCMP       = regexp.MustCompile(`(?i)cmp[:\s]+([\d.]+)`)
	rePercent   = regexp.MustCompile(`(\d+)%`)
	reTargets   = regexp.MustCompile(`(?i)targets?\s*[:\n]+([\d%\s,]+)`)
	reStopLoss  = regexp.MustCompile(`(?i)sl[:\s]+([\d.]+)`)

	// для быстрого фильтра
	reBuying  = regexp.MustCompile(`(?i)buying`)
	reCMPWord = regexp.MustCompile(`(?i)cmp`)
)

// LooksLikeSignal дешёвый префильтр: есть $TICKER, слово buying и хотя бы одно из cmp / N% / sl: число.
// true это повод попробовать Extract, а не гарантия валидного сигнала.
func LooksLikeSignal(text string) bool {
	if !reSymbol.MatchString(text) || !reBuying.MatchString(text) {
		return false
	}
	return reCMPWord.MatchString(text) || rePercent.MatchString(text) || reStopLoss.MatchString(text)
}

// Extract возвращает сигнал только если все поля нашлись и распарсились.
// Частичных сигналов не бывает.
func Extract(text string) (models.Signal, bool) {
	m := reSymbol.FindStringSubmatch(text)
	if m == nil {
		return models.Signal{}, false
	}
	symbol := strings.ToUpper(m[1])

	m = reFirstBuy.FindStringSubmatch(text)
	if m == nil {
		return models.Signal{}, false
	}
	firstMin, ok := parseNum(m[1])
	if !ok {
		return models.Signal{}, false
	}
	firstMax, ok := parseNum(m[2])
	if !ok {
		return models.Signal{}, false
	}

	second, ok := single(reSecondBuy, text)
	if !ok {
		return models.Signal{}, false
	}

	cmp, ok := single(reCMP, text)
	if !ok {
		return models.Signal{}, false
	}

	targets := percents(text)
	if len(targets) == 0 {
		// запасной вариант: блок "Targets:" до пустой строки
		if sec := reTargets.FindStringSubmatch(text); sec != nil {
			targets = percents(sec[1])
		}
	}
	if len(targets) == 0 {
		return models.Signal{}, false
	}
	sort.Float64s(targets)

	sl, ok := single(reStopLoss, text)
	if !ok {
		return models.Signal{}, false
	}

	return models.Signal{
		Symbol:    symbol,
		FirstBuy:  models.BuyRange{Min: firstMin, Max: firstMax},
		SecondBuy: second,
		CMP:       cmp,
		Targets:   targets,
		StopLoss:  sl,
	}, true
}

func single(re *regexp.Regexp, text string) (float64, bool) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	return parseNum(m[1])
}

// percents все "<int>%" в порядке появления; 0% не цель, пропускаем.
func percents(text string) []float64 {
	var out []float64
	for _, m := range rePercent.FindAllStringSubmatch(text, -1) {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil || v <= 0 {
			continue
		}
		out = append(out, v)
	}
	return out
}

// parseNum "[\d.]+" может поймать "." или "1.2.3", такое не число.
func parseNum(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
