package fundsxml

import (
	"time"

	"github.com/etnz/fundsxml/date"
	"github.com/rs/zerolog"
)

// Evaluator runs the rules over documents with one tolerance profile.
// It holds no state between evaluations and is safe for concurrent use.
type Evaluator struct {
	tol   Tolerances
	rules []Rule
	log   zerolog.Logger
}

// NewEvaluator returns an evaluator running every rule with tol.
func NewEvaluator(tol Tolerances, log zerolog.Logger) *Evaluator {
	return &Evaluator{
		tol:   tol,
		rules: Rules(),
		log:   log.With().Str("component", "evaluator").Str("profile", tol.Name).Logger(),
	}
}

// Tolerances returns the profile in use.
func (e *Evaluator) Tolerances() Tolerances { return e.tol }

// Evaluate runs every rule over doc. now is the evaluation time used by the
// date based rules; only its calendar day matters.
func (e *Evaluator) Evaluate(doc *Document, now time.Time) *Report {
	today := date.Of(now)
	in := &Input{
		Doc:   doc,
		Index: doc.Index(),
		Tol:   e.tol,
		Today: today,
	}
	for _, f := range doc.Funds {
		in.Funds = append(in.Funds, Aggregate(doc, f, e.tol.TopHoldings))
	}

	report := NewReport(e.tol.Name, today)
	report.Funds = in.Funds
	if doc.ControlData != nil {
		report.ContentDate = doc.ControlData.ContentDate
		report.DocumentID = doc.ControlData.UniqueDocumentID
	}

	for _, r := range e.rules {
		start := time.Now()
		fs := r.Check(in)
		for i := range fs {
			fs[i].RuleID = r.ID
			fs[i].Category = r.Category
			fs[i].ID = fingerprint(fs[i])
		}
		report.Add(fs...)
		e.log.Debug().
			Str("rule", r.ID).
			Int("findings", len(fs)).
			Dur("took", time.Since(start)).
			Msg("rule evaluated")
	}

	e.log.Debug().
		Int("total", report.Total()).
		Int("errors", report.Count(SeverityError)).
		Int("warnings", report.Count(SeverityWarning)).
		Msg("document evaluated")
	return report
}

// Evaluate runs every rule over doc with the default profile.
func Evaluate(doc *Document, now time.Time) *Report {
	return NewEvaluator(DefaultTolerances(), zerolog.Nop()).Evaluate(doc, now)
}
