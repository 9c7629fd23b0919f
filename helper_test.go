package fundsxml

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/etnz/fundsxml/date"
)

// EUR is a helper for test to create euro money from const
func EUR(v float64) Money { return M(v, "EUR") }

// USD is a helper for test to create usd money from const
func USD(v float64) Money { return M(v, "USD") }

// testNow is the evaluation time of the fixtures: two days after their content date.
var testNow = time.Date(2024, 1, 3, 10, 0, 0, 0, time.UTC)

// decodeString decodes an inline document or fails the test.
func decodeString(t *testing.T, xml string) *Document {
	t.Helper()
	doc, err := Decode(strings.NewReader(xml))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	return doc
}

// decodeFile decodes a fixture or fails the test.
func decodeFile(t *testing.T, path string) *Document {
	t.Helper()
	doc, err := DecodeFile(path)
	if err != nil {
		t.Fatalf("DecodeFile(%q) error = %v", path, err)
	}
	return doc
}

// input builds the rule input of doc with the default profile.
func input(doc *Document, today date.Date) *Input {
	in := &Input{Doc: doc, Index: doc.Index(), Tol: DefaultTolerances(), Today: today}
	for _, f := range doc.Funds {
		in.Funds = append(in.Funds, Aggregate(doc, f, in.Tol.TopHoldings))
	}
	return in
}

// severities returns the severity of each finding, keyed by entity key.
func severities(fs []Finding) map[string]Severity {
	m := make(map[string]Severity, len(fs))
	for _, f := range fs {
		m[f.Entity.Key] = f.Severity
	}
	return m
}

// worst returns the highest severity of fs, SeverityPass when empty.
func worst(fs []Finding) Severity {
	s := SeverityPass
	for _, f := range fs {
		if f.Severity > s {
			s = f.Severity
		}
	}
	return s
}

// wrap builds a minimal document around a Funds and an Assets section body.
func wrap(funds, assets string) string {
	return `<?xml version="1.0"?>
<FundsXML4>
  <ControlData>
    <UniqueDocumentID>T-1</UniqueDocumentID>
    <DocumentGenerated>2024-01-02</DocumentGenerated>
    <ContentDate>2024-01-01</ContentDate>
  </ControlData>
  <Funds>` + funds + `</Funds>
  <Assets>` + assets + `</Assets>
</FundsXML4>`
}

// near reports whether p is want within rounding.
func near(p Percent, want float64) bool {
	return math.Abs(float64(p)-want) < 0.0001
}
