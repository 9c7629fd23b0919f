package fundsxml

import (
	"encoding/json"

	"github.com/etnz/fundsxml/date"
)

// Report accumulates the findings of one evaluation. Findings are never
// discarded and keep their insertion order.
type Report struct {
	Profile     string         // name of the tolerance profile
	Today       date.Date      // injected evaluation date
	ContentDate Opt[date.Date] // as-of date of the document
	DocumentID  Opt[string]

	// Funds holds the aggregates of every fund, for renderers.
	Funds []*FundAggregates

	findings []Finding
}

// NewReport returns an empty report.
func NewReport(profile string, today date.Date) *Report {
	return &Report{Profile: profile, Today: today}
}

// Add appends findings.
func (r *Report) Add(fs ...Finding) { r.findings = append(r.findings, fs...) }

// Findings returns every finding in insertion order.
func (r *Report) Findings() []Finding { return r.findings }

// Total returns the number of findings.
func (r *Report) Total() int { return len(r.findings) }

// Count returns the number of findings of severity s.
func (r *Report) Count(s Severity) int {
	n := 0
	for _, f := range r.findings {
		if f.Severity == s {
			n++
		}
	}
	return n
}

// Passed reports whether no finding is an error.
func (r *Report) Passed() bool { return r.Count(SeverityError) == 0 }

// Summary counts findings by severity.
type Summary struct {
	Total   int  `json:"total"`
	Pass    int  `json:"pass"`
	Warning int  `json:"warning"`
	Error   int  `json:"error"`
	Passed  bool `json:"passed"`
}

// Summary returns the counts of the whole report.
func (r *Report) Summary() Summary { return summarize(r.findings) }

func summarize(fs []Finding) Summary {
	s := Summary{Total: len(fs)}
	for _, f := range fs {
		switch f.Severity {
		case SeverityPass:
			s.Pass++
		case SeverityWarning:
			s.Warning++
		case SeverityError:
			s.Error++
		}
	}
	s.Passed = s.Error == 0
	return s
}

// Categories returns the categories having at least one finding, in report order.
func (r *Report) Categories() []Category {
	present := make(map[Category]bool)
	for _, f := range r.findings {
		present[f.Category] = true
	}
	var cs []Category
	for _, c := range AllCategories() {
		if present[c] {
			cs = append(cs, c)
		}
	}
	return cs
}

// ByCategory returns the findings of category c, in insertion order.
func (r *Report) ByCategory(c Category) []Finding {
	return r.filter(func(f Finding) bool { return f.Category == c })
}

// ByFund returns the findings about fund key or any of its parts.
func (r *Report) ByFund(key string) []Finding {
	return r.filter(func(f Finding) bool { return f.Entity.Fund == key })
}

// ByEntity returns the findings about one entity.
func (r *Report) ByEntity(kind EntityKind, key string) []Finding {
	return r.filter(func(f Finding) bool { return f.Entity.Kind == kind && f.Entity.Key == key })
}

// ByRule returns the findings of one rule.
func (r *Report) ByRule(id string) []Finding {
	return r.filter(func(f Finding) bool { return f.RuleID == id })
}

// Failures returns the warnings and errors.
func (r *Report) Failures() []Finding {
	return r.filter(func(f Finding) bool { return f.Severity != SeverityPass })
}

func (r *Report) filter(keep func(Finding) bool) []Finding {
	var out []Finding
	for _, f := range r.findings {
		if keep(f) {
			out = append(out, f)
		}
	}
	return out
}

// categorySummary is the JSON shape of one category section.
type categorySummary struct {
	Category Category
	Findings []Finding
}

func (c categorySummary) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("category", c.Category)
	w.Embed(mustJSON(summarize(c.Findings)))
	return w.MarshalJSON()
}

// MarshalJSON encodes the report with a fixed field order. Two evaluations of
// the same document on the same date encode to the same bytes.
func (r *Report) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("profile", r.Profile)
	w.Append("today", r.Today)
	w.Append("contentDate", r.ContentDate)
	w.Append("documentId", r.DocumentID)
	w.Append("summary", r.Summary())
	categories := make([]categorySummary, 0, len(AllCategories()))
	for _, c := range r.Categories() {
		categories = append(categories, categorySummary{Category: c, Findings: r.ByCategory(c)})
	}
	w.Append("categories", categories)
	findings := r.findings
	if findings == nil {
		findings = []Finding{}
	}
	w.Append("findings", findings)
	funds := r.Funds
	if funds == nil {
		funds = []*FundAggregates{}
	}
	w.Append("funds", funds)
	return w.MarshalJSON()
}

// mustJSON marshals values that cannot fail to marshal.
func mustJSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
