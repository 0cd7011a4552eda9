package money

import (
	"encoding/json"
	"errors"
	"testing"

	"philabid/internal/biddingerrors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		literal    string
		currency   string
		wantAmount string
		wantErr    error
	}{
		{name: "whole_usd", literal: "60", currency: "USD", wantAmount: "60.00"},
		{name: "cents_usd", literal: "50.25", currency: "usd", wantAmount: "50.25"},
		{name: "trailing_zeros_allowed", literal: "50.2500", currency: "USD", wantAmount: "50.25"},
		{name: "zero", literal: "0", currency: "EUR", wantAmount: "0.00"},
		{name: "yen_whole", literal: "1200", currency: "JPY", wantAmount: "1200"},
		{name: "dinar_three_digits", literal: "1.125", currency: "KWD", wantAmount: "1.125"},
		{name: "negative", literal: "-1", currency: "USD", wantErr: biddingerrors.ErrInvalidAmount},
		{name: "too_many_digits", literal: "10.001", currency: "USD", wantErr: biddingerrors.ErrInvalidAmount},
		{name: "yen_fraction", literal: "10.5", currency: "JPY", wantErr: biddingerrors.ErrInvalidAmount},
		{name: "not_a_number", literal: "ten", currency: "USD", wantErr: biddingerrors.ErrInvalidAmount},
		{name: "unknown_currency", literal: "10", currency: "XYZ", wantErr: biddingerrors.ErrUnknownCurrency},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m, err := New(tc.literal, tc.currency)
			if tc.wantErr != nil {
				require.Error(t, err)
				require.True(t, errors.Is(err, tc.wantErr), "expected %v, got %v", tc.wantErr, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.wantAmount, m.Amount())
			require.Equal(t, NormalizeCode(tc.currency), m.Currency())
		})
	}
}

func TestArithmetic(t *testing.T) {
	usd60 := MustNew("60", "USD")
	usd15 := MustNew("15.50", "USD")
	eur10 := MustNew("10", "EUR")

	sum, err := usd60.Add(usd15)
	require.NoError(t, err)
	require.Equal(t, "75.50 USD", sum.String())

	diff, err := usd60.Subtract(usd15)
	require.NoError(t, err)
	require.Equal(t, "44.50", diff.Amount())

	_, err = usd15.Subtract(usd60)
	require.ErrorIs(t, err, biddingerrors.ErrInvalidAmount)

	_, err = usd60.Add(eur10)
	require.ErrorIs(t, err, biddingerrors.ErrCurrencyMismatch)

	_, err = usd60.Compare(eur10)
	require.ErrorIs(t, err, biddingerrors.ErrCurrencyMismatch)

	gt, err := usd60.GreaterThan(usd15)
	require.NoError(t, err)
	require.True(t, gt)

	larger, err := Max(usd15, usd60)
	require.NoError(t, err)
	require.True(t, larger.Equal(usd60))

	_, err = Money{}.Add(usd60)
	require.ErrorIs(t, err, biddingerrors.ErrUnknownCurrency)
}

func TestConvert(t *testing.T) {
	usd := MustNew("10.00", "USD")

	pln, err := usd.Convert(decimal.RequireFromString("3.9875"), "PLN")
	require.NoError(t, err)
	require.Equal(t, "39.88 PLN", pln.String())

	yen, err := usd.Convert(decimal.RequireFromString("149.55"), "JPY")
	require.NoError(t, err)
	require.Equal(t, "1496 JPY", yen.String())

	_, err = usd.Convert(decimal.Zero, "PLN")
	require.ErrorIs(t, err, biddingerrors.ErrInvalidAmount)

	_, err = usd.Convert(decimal.NewFromInt(1), "XXX")
	require.ErrorIs(t, err, biddingerrors.ErrUnknownCurrency)
}

func TestJSONRoundTrip(t *testing.T) {
	in := MustNew("75", "USD")
	raw, err := json.Marshal(in)
	require.NoError(t, err)
	require.JSONEq(t, `{"amount":"75.00","currency":"USD"}`, string(raw))

	var out Money
	require.NoError(t, json.Unmarshal(raw, &out))
	require.True(t, in.Equal(out))

	err = json.Unmarshal([]byte(`{"amount":"-3","currency":"USD"}`), &out)
	require.ErrorIs(t, err, biddingerrors.ErrInvalidAmount)
}

func cents() *rapid.Generator[Money] {
	return rapid.Custom(func(t *rapid.T) Money {
		c := rapid.Int64Range(0, 1_000_000_00).Draw(t, "cents")
		m, err := FromDecimal(decimal.New(c, -2), "USD")
		if err != nil {
			t.Fatalf("FromDecimal: %v", err)
		}
		return m
	})
}

func TestProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := cents().Draw(t, "a")
		b := cents().Draw(t, "b")

		ab, err := a.Add(b)
		if err != nil {
			t.Fatalf("add: %v", err)
		}
		ba, _ := b.Add(a)
		if !ab.Equal(ba) {
			t.Fatalf("add not commutative: %s vs %s", ab, ba)
		}

		back, err := ab.Subtract(b)
		if err != nil {
			t.Fatalf("subtract: %v", err)
		}
		if !back.Equal(a) {
			t.Fatalf("(a+b)-b = %s, want %s", back, a)
		}

		cab, _ := a.Compare(b)
		cba, _ := b.Compare(a)
		if cab != -cba {
			t.Fatalf("compare not antisymmetric: %d vs %d", cab, cba)
		}

		eur, _ := FromDecimal(decimal.NewFromInt(1), "EUR")
		if _, err := a.Add(eur); !errors.Is(err, biddingerrors.ErrCurrencyMismatch) {
			t.Fatalf("expected currency mismatch, got %v", err)
		}
	})
}
