package fundsxml

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// newDecimal is a convenient factory for decimal.Decimal
func newDecimal[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T) decimal.Decimal {
	switch v := any(value).(type) {
	case decimal.Decimal:
		return v
	case float32:
		return decimal.NewFromFloat32(v)
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int32:
		return decimal.NewFromInt32(v)
	case int64:
		return decimal.NewFromInt(v)
	case uint:
		return decimal.NewFromUint64(uint64(v))
	case uint32:
		return decimal.NewFromUint64(uint64(v))
	case uint64:
		return decimal.NewFromUint64(v)
	default:
		panic("unsupported type")
	}
}

// D is a short decimal factory, mostly for tolerances and tests.
func D[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T) decimal.Decimal {
	return newDecimal(value)
}

// relDiff returns |a-b| / |base| * 100. ok is false when base is zero.
func relDiff(a, b, base decimal.Decimal) (pct decimal.Decimal, ok bool) {
	if base.IsZero() {
		return decimal.Zero, false
	}
	return a.Sub(b).Abs().Div(base.Abs()).Mul(hundred), true
}

// fmtDec formats a decimal with a fixed number of places for messages.
func fmtDec(d decimal.Decimal, places int32) string { return d.StringFixed(places) }
