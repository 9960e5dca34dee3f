package services

import (
	"fmt"
	"math"
)

// CurrencyFormatter renders minor-unit amounts for display. The exchange
// rate is fixed configuration (córdobas per dollar), not a live feed.
type CurrencyFormatter struct {
	baseCurrency string
	rate         float64
}

func NewCurrencyFormatter(baseCurrency string, rate float64) *CurrencyFormatter {
	return &CurrencyFormatter{baseCurrency: baseCurrency, rate: rate}
}

func (f *CurrencyFormatter) BaseCurrency() string {
	return f.baseCurrency
}

// Supported reports whether amounts can be shown in the given currency.
func (f *CurrencyFormatter) Supported(currency string) bool {
	return currency == f.baseCurrency || currency == "USD"
}

// Format renders a minor-unit amount as a display string, converting through
// the fixed rate when USD is requested. Whole units only, matching the
// client's presentation.
func (f *CurrencyFormatter) Format(minorUnits int64, currency string) string {
	value := float64(minorUnits) / 100
	symbol := "C$"
	if currency == "USD" && f.baseCurrency != "USD" {
		value /= f.rate
		symbol = "$"
	}

	sign := ""
	if value < 0 {
		sign = "-"
		value = -value
	}
	return fmt.Sprintf("%s%s%s", sign, symbol, groupThousands(int64(math.Round(value))))
}

func groupThousands(v int64) string {
	s := fmt.Sprintf("%d", v)
	if len(s) <= 3 {
		return s
	}
	var out []byte
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, byte(r))
	}
	return string(out)
}
