// Package money implements an immutable, currency-tagged exact-decimal amount.
//
// A Money value can only be produced by the constructors in this package, and
// every arithmetic or comparison operation checks that both operands carry the
// same currency. Amounts are never negative.
package money

import (
	"encoding/json"
	"fmt"

	"philabid/internal/biddingerrors"

	"github.com/shopspring/decimal"
)

// Money is an exact-decimal amount tagged with an ISO 4217 currency code.
type Money struct {
	amount   decimal.Decimal
	currency string
	digits   int32
}

// Registry builds Money values against a CurrencyLookup.
type Registry struct {
	lookup CurrencyLookup
}

// NewRegistry returns a Registry backed by lookup.
func NewRegistry(lookup CurrencyLookup) *Registry {
	return &Registry{lookup: lookup}
}

// Default resolves currencies against the ISO4217 table.
var Default = NewRegistry(ISO4217)

// New parses a decimal literal in the given currency using the Default registry.
func New(literal, currency string) (Money, error) {
	return Default.New(literal, currency)
}

// FromDecimal wraps amount in the given currency using the Default registry.
func FromDecimal(amount decimal.Decimal, currency string) (Money, error) {
	return Default.FromDecimal(amount, currency)
}

// Zero returns a zero amount in currency using the Default registry.
func Zero(currency string) (Money, error) {
	return Default.FromDecimal(decimal.Zero, currency)
}

// MustNew is New that panics on error. Intended for fixtures and tests.
func MustNew(literal, currency string) Money {
	m, err := New(literal, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// New parses literal as an exact decimal in currency.
func (r *Registry) New(literal, currency string) (Money, error) {
	amount, err := decimal.NewFromString(literal)
	if err != nil {
		return Money{}, fmt.Errorf("parse %q: %w", literal, biddingerrors.ErrInvalidAmount)
	}
	return r.FromDecimal(amount, currency)
}

// FromDecimal validates amount against the currency's minor-unit precision.
func (r *Registry) FromDecimal(amount decimal.Decimal, currency string) (Money, error) {
	code := NormalizeCode(currency)
	digits, ok := r.lookup.MinorUnits(code)
	if !ok {
		return Money{}, fmt.Errorf("currency %q: %w", currency, biddingerrors.ErrUnknownCurrency)
	}
	if amount.IsNegative() {
		return Money{}, fmt.Errorf("amount %s is negative: %w", amount.String(), biddingerrors.ErrInvalidAmount)
	}
	// trailing zeros beyond the minor unit are fine, significant digits are not
	if !amount.Round(digits).Equal(amount) {
		return Money{}, fmt.Errorf("amount %s exceeds %d fractional digits for %s: %w",
			amount.String(), digits, code, biddingerrors.ErrInvalidAmount)
	}
	return Money{amount: amount.Round(digits), currency: code, digits: digits}, nil
}

// Currency returns the ISO 4217 code.
func (m Money) Currency() string {
	return m.currency
}

// Amount renders the amount with exactly the currency's minor-unit digits.
func (m Money) Amount() string {
	return m.amount.StringFixed(m.digits)
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// IsValid reports whether m was produced by a constructor.
func (m Money) IsValid() bool {
	return m.currency != ""
}

// String renders "60.00 USD".
func (m Money) String() string {
	if !m.IsValid() {
		return "<invalid money>"
	}
	return m.Amount() + " " + m.currency
}

// Equal reports whether both values have the same currency and amount.
func (m Money) Equal(o Money) bool {
	return m.currency == o.currency && m.amount.Equal(o.amount)
}

func (m Money) sameCurrency(o Money) error {
	if !m.IsValid() || !o.IsValid() {
		return fmt.Errorf("uninitialized money: %w", biddingerrors.ErrUnknownCurrency)
	}
	if m.currency != o.currency {
		return fmt.Errorf("%s vs %s: %w", m.currency, o.currency, biddingerrors.ErrCurrencyMismatch)
	}
	return nil
}

// Add returns m + o.
func (m Money) Add(o Money) (Money, error) {
	if err := m.sameCurrency(o); err != nil {
		return Money{}, err
	}
	return Money{amount: m.amount.Add(o.amount), currency: m.currency, digits: m.digits}, nil
}

// Subtract returns m - o. A negative result is rejected.
func (m Money) Subtract(o Money) (Money, error) {
	if err := m.sameCurrency(o); err != nil {
		return Money{}, err
	}
	diff := m.amount.Sub(o.amount)
	if diff.IsNegative() {
		return Money{}, fmt.Errorf("%s - %s is negative: %w", m, o, biddingerrors.ErrInvalidAmount)
	}
	return Money{amount: diff, currency: m.currency, digits: m.digits}, nil
}

// Compare returns -1, 0 or +1 as m is less than, equal to or greater than o.
func (m Money) Compare(o Money) (int, error) {
	if err := m.sameCurrency(o); err != nil {
		return 0, err
	}
	return m.amount.Cmp(o.amount), nil
}

// GreaterThan reports m > o.
func (m Money) GreaterThan(o Money) (bool, error) {
	c, err := m.Compare(o)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}

// Max returns the larger of a and b.
func Max(a, b Money) (Money, error) {
	c, err := a.Compare(b)
	if err != nil {
		return Money{}, err
	}
	if c >= 0 {
		return a, nil
	}
	return b, nil
}

// Convert applies an explicit exchange rate, rounding half away from zero to
// the target currency's minor unit.
func (m Money) Convert(rate decimal.Decimal, target string) (Money, error) {
	return Default.Convert(m, rate, target)
}

// Convert applies rate to m and expresses the result in target.
func (r *Registry) Convert(m Money, rate decimal.Decimal, target string) (Money, error) {
	if !m.IsValid() {
		return Money{}, fmt.Errorf("uninitialized money: %w", biddingerrors.ErrUnknownCurrency)
	}
	if !rate.IsPositive() {
		return Money{}, fmt.Errorf("rate %s must be positive: %w", rate.String(), biddingerrors.ErrInvalidAmount)
	}
	code := NormalizeCode(target)
	digits, ok := r.lookup.MinorUnits(code)
	if !ok {
		return Money{}, fmt.Errorf("currency %q: %w", target, biddingerrors.ErrUnknownCurrency)
	}
	return r.FromDecimal(m.amount.Mul(rate).Round(digits), code)
}

type wireMoney struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

// MarshalJSON renders {"amount":"60.00","currency":"USD"}.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireMoney{Amount: m.Amount(), Currency: m.currency})
}

// UnmarshalJSON parses the MarshalJSON form through the Default registry.
func (m *Money) UnmarshalJSON(data []byte) error {
	var w wireMoney
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	parsed, err := New(w.Amount, w.Currency)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
