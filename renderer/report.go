package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/fundsxml"
	md "github.com/nao1215/markdown"
)

// ReportRenderOptions holds configuration for rendering a validation report.
type ReportRenderOptions struct {
	FailuresOnly bool // Do not render passing findings.
	SkipFunds    bool // Do not render the per fund sections.
}

// ReportMarkdown renders a validation report: a header, the summary per
// category, then one table of findings per category.
func ReportMarkdown(r *fundsxml.Report, opts ReportRenderOptions) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	title := "Validation Report"
	if id, ok := r.DocumentID.Get(); ok && id != "" {
		title = fmt.Sprintf("Validation Report for %s", id)
	}
	doc.H1(title)

	s := r.Summary()
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{md.Bold("Result"), md.Bold(verdict(s.Passed))},
		Rows: [][]string{
			{"Profile", r.Profile},
			{"Evaluated on", r.Today.String()},
			{"Content date", optString(r.ContentDate)},
			{"Findings", fmt.Sprintf("%d", s.Total)},
			{"Errors", fmt.Sprintf("%d", s.Error)},
			{"Warnings", fmt.Sprintf("%d", s.Warning)},
		},
	})

	doc.H2("Summary")
	summary := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight},
		Header:    []string{"Category", "Pass", "Warning", "Error"},
		Rows:      [][]string{},
	}
	for _, c := range r.Categories() {
		cs := count(r.ByCategory(c))
		summary.Rows = append(summary.Rows, []string{c.String(), fmt.Sprint(cs[0]), fmt.Sprint(cs[1]), fmt.Sprint(cs[2])})
	}
	doc.Table(summary)

	for _, c := range r.Categories() {
		rows := findingRows(r.ByCategory(c), opts.FailuresOnly)
		if len(rows) == 0 {
			continue
		}
		doc.H2(title2(c.String()))
		doc.Table(md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignRight, md.AlignRight},
			Header:    []string{"Severity", "Rule", "Entity", "Message", "Measured", "Expected"},
			Rows:      rows,
		})
	}

	if !opts.SkipFunds {
		for _, fa := range r.Funds {
			doc.H2(fundTitle(fa))
			fs := r.ByFund(fa.Key)
			cs := count(fs)
			doc.PlainText(fmt.Sprintf("%d finding(s): %d error(s), %d warning(s).", len(fs), cs[2], cs[1]))
			if tna, ok := fa.TNA.Get(); ok {
				doc.PlainText(fmt.Sprintf("Total net asset value: %s", tna))
			}
		}
	}

	return doc.String()
}

// findingRows returns one table row per finding.
func findingRows(fs []fundsxml.Finding, failuresOnly bool) [][]string {
	rows := [][]string{}
	for _, f := range fs {
		if failuresOnly && f.Severity == fundsxml.SeverityPass {
			continue
		}
		rows = append(rows, []string{
			severityLabel(f.Severity),
			code(f.RuleID),
			f.Entity.String(),
			escape(f.Message),
			escape(f.Measured),
			escape(f.Expected),
		})
	}
	return rows
}

// count returns the number of pass, warning and error findings.
func count(fs []fundsxml.Finding) [3]int {
	var c [3]int
	for _, f := range fs {
		c[f.Severity]++
	}
	return c
}
