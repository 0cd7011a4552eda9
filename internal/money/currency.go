package money

import "strings"

// CurrencyLookup resolves an ISO 4217 code to its minor-unit digit count.
type CurrencyLookup interface {
	MinorUnits(code string) (int32, bool)
}

// Table is a static CurrencyLookup.
type Table map[string]int32

// MinorUnits implements CurrencyLookup.
func (t Table) MinorUnits(code string) (int32, bool) {
	digits, ok := t[NormalizeCode(code)]
	return digits, ok
}

// ISO4217 covers the currencies philatelic auction houses commonly settle in.
var ISO4217 = Table{
	"AUD": 2,
	"BHD": 3,
	"CAD": 2,
	"CHF": 2,
	"CNY": 2,
	"CZK": 2,
	"DKK": 2,
	"EUR": 2,
	"GBP": 2,
	"HKD": 2,
	"HUF": 2,
	"ILS": 2,
	"JPY": 0,
	"KRW": 0,
	"KWD": 3,
	"NOK": 2,
	"NZD": 2,
	"PLN": 2,
	"SEK": 2,
	"SGD": 2,
	"UAH": 2,
	"USD": 2,
}

// NormalizeCode upper-cases and trims a currency code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
