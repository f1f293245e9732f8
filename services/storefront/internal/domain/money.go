package domain

import (
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FormatPrice renders whole rubles with Russian digit grouping, e.g. "3 990 ₽".
func FormatPrice(rubles int64) string {
	return message.NewPrinter(language.Russian).Sprintf("%d ₽", rubles)
}

// FormatRating renders an average with one decimal, e.g. "4.5".
func FormatRating(avg float64) string {
	return strconv.FormatFloat(avg, 'f', 1, 64)
}
