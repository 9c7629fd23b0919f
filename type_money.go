package fundsxml

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money is a decimal amount tagged with an ISO 4217 currency code, as found in
// an <Amount ccy="..."> element.
type Money struct {
	value decimal.Decimal // as major unit value
	cur   string
}

func M[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T, currency string) Money {
	return Money{value: newDecimal(value), cur: currency}
}

// currency returns the money's currency
func (m Money) currency() money.Currency {
	// to get a never nil currency I need to call the Money constructor
	return *money.New(0, m.cur).Currency()
}

// String returns the string representation of the money value, rounded to the
// currency's minor unit. Codes outside ISO 4217 are printed as is.
func (m Money) String() string {
	if money.GetCurrency(m.cur) == nil {
		return m.value.String() + " " + m.cur
	}
	cur := m.currency()
	dec := m.value.Round(int32(cur.Fraction)).Shift(int32(cur.Fraction))
	return cur.Formatter().Format(dec.IntPart())
}

func (m Money) Currency() string       { return m.cur }
func (m Money) Value() decimal.Decimal { return m.value }
func (m Money) Equal(n Money) bool     { return m.value.Equal(n.value) && m.cur == n.cur }
func (m Money) IsZero() bool           { return m.value.IsZero() }
func (m Money) Sign() int              { return m.value.Sign() }

func (m Money) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Optional("currency", m.cur)
	w.Append("amount", m.value)
	return w.MarshalJSON()
}

// Amounts is the set of currency representations of a single value, in
// document order. FundsXML reports a position value in several currencies at
// once; they are alternative views, never addends.
type Amounts []Money

// In returns the amount tagged with the currency ccy.
func (a Amounts) In(ccy string) (Money, bool) {
	for _, m := range a {
		if m.cur == ccy {
			return m, true
		}
	}
	return Money{}, false
}

// Currencies returns the currency tags in document order.
func (a Amounts) Currencies() []string {
	ccys := make([]string, 0, len(a))
	for _, m := range a {
		ccys = append(ccys, m.cur)
	}
	return ccys
}

// MixedSigns reports whether the set contains both a strictly positive and a
// strictly negative amount.
func (a Amounts) MixedSigns() bool {
	var pos, neg bool
	for _, m := range a {
		switch m.Sign() {
		case 1:
			pos = true
		case -1:
			neg = true
		}
	}
	return pos && neg
}
