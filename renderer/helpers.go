package renderer

import (
	"fmt"
	"strings"

	"github.com/etnz/fundsxml"
	"github.com/shopspring/decimal"
)

// verdict is the one word result of a report.
func verdict(passed bool) string {
	if passed {
		return "PASSED"
	}
	return "FAILED"
}

func severityLabel(s fundsxml.Severity) string {
	switch s {
	case fundsxml.SeverityPass:
		return "✅ pass"
	case fundsxml.SeverityWarning:
		return "⚠️ warning"
	default:
		return "❌ error"
	}
}

// optString formats an optional value, "n/a" when absent.
func optString[T fmt.Stringer](o fundsxml.Opt[T]) string {
	v, ok := o.Get()
	if !ok {
		return "n/a"
	}
	return v.String()
}

// share formats an optional percentage.
func share(o fundsxml.Opt[fundsxml.Percent]) string {
	p, ok := o.Get()
	if !ok {
		return ""
	}
	return p.String()
}

// amount formats a value in the fund currency.
func amount(v decimal.Decimal, ccy string) string {
	if ccy == "" {
		return v.StringFixed(2)
	}
	return fundsxml.M(v, ccy).String()
}

// title2 capitalizes the first letter of a category name.
func title2(s string) string {
	if s == "" {
		return s
	}
	if s == "nav" {
		return "NAV"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func fundTitle(fa *fundsxml.FundAggregates) string {
	if fa.Name != "" {
		return fmt.Sprintf("%s (%s)", fa.Name, fa.Key)
	}
	return fa.Key
}

func code(s string) string { return "`" + s + "`" }

// escape keeps free text from breaking a table row.
func escape(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
