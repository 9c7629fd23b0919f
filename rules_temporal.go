package fundsxml

import "fmt"

// FreshnessClass is the age class of a document.
type FreshnessClass string

const (
	Fresh  FreshnessClass = "fresh"
	Recent FreshnessClass = "recent"
	Aging  FreshnessClass = "aging"
	Stale  FreshnessClass = "stale"
)

// Freshness classifies a document that is days old.
func Freshness(days int, b FreshnessBand) FreshnessClass {
	switch {
	case days < b.Fresh:
		return Fresh
	case days < b.Recent:
		return Recent
	case days < b.Aging:
		return Aging
	default:
		return Stale
	}
}

// Severity grades the class: fresh and recent documents pass.
func (c FreshnessClass) Severity() Severity {
	switch c {
	case Fresh, Recent:
		return SeverityPass
	case Aging:
		return SeverityWarning
	default:
		return SeverityError
	}
}

func temporalRules() []Rule {
	return []Rule{
		{
			ID:          "temporal.future-content",
			Category:    CategoryTemporal,
			Description: "The content date is not after the evaluation date.",
			Check:       checkFutureContent,
		},
		{
			ID:          "temporal.freshness",
			Category:    CategoryTemporal,
			Description: "The content date is recent enough: fresh or recent pass, aging warns, stale fails.",
			Check:       checkFreshness,
		},
		{
			ID:          "temporal.processing-delay",
			Category:    CategoryTemporal,
			Description: "The document was generated soon after its content date.",
			Check:       checkProcessingDelay,
		},
		{
			ID:          "temporal.inception",
			Category:    CategoryTemporal,
			Description: "A fund was launched on or before the content date.",
			Check:       checkInception,
		},
		{
			ID:          "temporal.nav-date",
			Category:    CategoryTemporal,
			Description: "Fund and portfolio NAV dates equal the content date.",
			Check:       checkNavDates,
		},
	}
}

func checkFutureContent(in *Input) []Finding {
	var fs findings
	content, ok := in.contentDate()
	if !ok {
		return nil
	}
	if content.After(in.Today) {
		fs.add(SeverityError, documentEntity(), content.String(), "on or before "+in.Today.String(),
			"content date %s is %d day(s) in the future", content, content.Sub(in.Today))
		return fs
	}
	fs.pass(documentEntity(), "content date %s is not in the future", content)
	return fs
}

func checkFreshness(in *Input) []Finding {
	var fs findings
	content, ok := in.contentDate()
	if !ok {
		return nil
	}
	days := in.Today.Sub(content)
	if days < 0 {
		return nil // reported by temporal.future-content
	}
	b := in.Tol.Freshness
	class := Freshness(days, b)
	fs.add(class.Severity(), documentEntity(), fmt.Sprintf("%d", days),
		fmt.Sprintf("< %d fresh, < %d recent, < %d aging", b.Fresh, b.Recent, b.Aging),
		"content is %s: %d day(s) old on %s", class, days, in.Today)
	return fs
}

func checkProcessingDelay(in *Input) []Finding {
	var fs findings
	cd := in.Doc.ControlData
	if cd == nil {
		return nil
	}
	generated, okG := cd.DocumentGenerated.Get()
	content, okC := cd.ContentDate.Get()
	if !okG || !okC {
		return nil
	}
	delay := generated.Sub(content)
	b := in.Tol.ProcessingDelay
	expected := fmt.Sprintf("< %d pass, < %d warning", b.Pass, b.Warn)
	if delay < 0 {
		fs.add(SeverityWarning, documentEntity(), fmt.Sprintf("%d", delay), expected,
			"document generated on %s, before its content date %s", generated, content)
		return fs
	}
	fs.add(b.Grade(delay), documentEntity(), fmt.Sprintf("%d", delay), expected,
		"generated %d day(s) after the content date", delay)
	return fs
}

func checkInception(in *Input) []Finding {
	var fs findings
	content, ok := in.contentDate()
	if !ok {
		return nil
	}
	for _, f := range in.Doc.Funds {
		inception, ok := f.InceptionDate.Get()
		if !ok {
			continue
		}
		if inception.After(content) {
			fs.add(SeverityError, fundEntity(f), inception.String(), "on or before "+content.String(),
				"incepted on %s, after the content date %s", inception, content)
			continue
		}
		fs.pass(fundEntity(f), "incepted on %s", inception)
	}
	return fs
}

func checkNavDates(in *Input) []Finding {
	var fs findings
	content, ok := in.contentDate()
	if !ok {
		return nil
	}
	for _, f := range in.Doc.Funds {
		if d, ok := f.NavDate.Get(); ok && d != content {
			fs.add(SeverityWarning, fundEntity(f), d.String(), content.String(),
				"fund NAV date %s differs from the content date %s", d, content)
		}
		for _, p := range f.AllPortfolios() {
			if d, ok := p.NavDate.Get(); ok && d != content {
				fs.add(SeverityWarning, portfolioEntity(p), d.String(), content.String(),
					"portfolio NAV date %s differs from the content date %s", d, content)
			}
		}
	}
	if len(in.Doc.Funds) > 0 {
		fs.passIfEmpty("NAV dates match the content date %s", content)
	}
	return fs
}
