package renderer

import (
	"strings"
	"testing"
	"time"

	"github.com/etnz/fundsxml"
)

var testNow = time.Date(2024, 1, 3, 10, 0, 0, 0, time.UTC)

func evaluate(t *testing.T, path string) *fundsxml.Report {
	t.Helper()
	doc, err := fundsxml.DecodeFile(path)
	if err != nil {
		t.Fatalf("DecodeFile(%q) error = %v", path, err)
	}
	return fundsxml.Evaluate(doc, testNow)
}

// assertContains checks that every want is in got.
func assertContains(t *testing.T, got string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(got, want) {
			t.Errorf("output does not contain %q:\n%s", want, got)
		}
	}
}

func assertNotContains(t *testing.T, got string, unwanted ...string) {
	t.Helper()
	for _, u := range unwanted {
		if strings.Contains(got, u) {
			t.Errorf("output contains %q:\n%s", u, got)
		}
	}
}

func TestReportMarkdown(t *testing.T) {
	r := evaluate(t, "../testdata/fund.xml")

	full := ReportMarkdown(r, ReportRenderOptions{})
	assertContains(t, full,
		"# Validation Report for FXML-2024-0001",
		"PASSED",
		"2024-01-03",
		"## Summary",
		"## Structural",
		"## NAV",
		"`structure.control-data`",
		"`identifier.coverage`",
		"ISIN coverage 75.00%",
		"## Example Balanced Fund (Fund[1])",
	)

	failures := ReportMarkdown(r, ReportRenderOptions{FailuresOnly: true, SkipFunds: true})
	assertContains(t, failures, "`identifier.coverage`", "## Identifier")
	assertNotContains(t, failures, "`structure.control-data`", "## Structural", "## Example Balanced Fund")
}

func TestReportMarkdownFailed(t *testing.T) {
	r := evaluate(t, "../testdata/master_data.xml")
	got := ReportMarkdown(r, ReportRenderOptions{FailuresOnly: true})
	assertContains(t, got,
		"# Validation Report\n",
		"FAILED",
		"`portfolio.orphaned-position`",
		"ID_999",
		"12,5",
	)
}

func TestEscape(t *testing.T) {
	if got, want := escape("a|b\nc"), `a\|b c`; got != want {
		t.Errorf("escape() = %q, want %q", got, want)
	}
}

func TestLadderMarkdown(t *testing.T) {
	r := evaluate(t, "../testdata/fund.xml")
	got := LadderMarkdown(r.Funds)
	assertContains(t, got, "# Maturity Ladder", "Example Balanced Fund", "Expired", "1-3Y", "10Y+", "100.00%")
	assertNotContains(t, got, "no maturity data")

	noDate := fundsxml.Evaluate(mustDecode(t, `<FundsXML4><Funds><Fund/></Funds></FundsXML4>`), testNow)
	assertContains(t, LadderMarkdown(noDate.Funds), "Not available")
}

func TestHoldingsMarkdown(t *testing.T) {
	r := evaluate(t, "../testdata/fund.xml")
	got := HoldingsMarkdown(r.Funds)
	assertContains(t, got,
		"# Holdings",
		"### Top Holdings",
		"ID_EQ1",
		"40.00%",
		"### By Asset Type",
		"### By Currency",
		"### Exposures",
		"Interest",
		"### Concentration",
		"Herfindahl index",
	)
}

func TestRulesMarkdown(t *testing.T) {
	got := RulesMarkdown(fundsxml.Rules(), fundsxml.ReconciliationTolerances())
	for _, r := range fundsxml.Rules() {
		assertContains(t, got, "`"+r.ID+"`")
	}
	assertContains(t, got, `Tolerance Profile "reconciliation"`, "```yaml", "percentage_sum:", "mode: relative")
}

func mustDecode(t *testing.T, xml string) *fundsxml.Document {
	t.Helper()
	doc, err := fundsxml.Decode(strings.NewReader(xml))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	return doc
}
