package fundsxml

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type Percent float64

// PercentOf returns part/total*100. ok is false when total is zero.
func PercentOf(part, total decimal.Decimal) (Percent, bool) {
	if total.IsZero() {
		return 0, false
	}
	return Percent(part.Div(total).Mul(hundred).InexactFloat64()), true
}

func (p Percent) String() string {
	return fmt.Sprintf("%.2f%%", p)
}
