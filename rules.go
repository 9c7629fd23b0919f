package fundsxml

import (
	"fmt"

	"github.com/etnz/fundsxml/date"
)

// Input is everything a rule may read. It is built once per evaluation and
// must not be modified by rules.
type Input struct {
	Doc   *Document
	Index *AssetIndex
	// Funds holds the aggregates of Doc.Funds, in the same order.
	Funds []*FundAggregates
	Tol   Tolerances
	// Today is the evaluation date, injected by the caller.
	Today date.Date
}

// Rule is a named validation check.
//
// Check is a pure function of its input. The findings it returns carry
// severity, entity, message and figures; the evaluator stamps the rule ID,
// category and finding ID.
type Rule struct {
	ID          string
	Category    Category
	Description string
	Check       func(*Input) []Finding
}

// Rules returns every rule in evaluation order: categories in report order,
// rules in a fixed order within each category.
func Rules() []Rule {
	var all []Rule
	all = append(all, structuralRules()...)
	all = append(all, navRules()...)
	all = append(all, portfolioRules()...)
	all = append(all, assetRules()...)
	all = append(all, temporalRules()...)
	all = append(all, identifierRules()...)
	all = append(all, currencyRules()...)
	return all
}

// RuleByID returns the rule with the given ID.
func RuleByID(id string) (Rule, error) {
	for _, r := range Rules() {
		if r.ID == id {
			return r, nil
		}
	}
	return Rule{}, fmt.Errorf("unknown rule %q", id)
}

// positions returns every position of the input document.
func (in *Input) positions() []*Position { return in.Doc.Positions() }

// contentDate returns the as-of date of the input document.
func (in *Input) contentDate() (date.Date, bool) { return in.Doc.ContentDate() }

// holdings returns every position of the document with its resolved asset.
func (in *Input) holdings() []Holding { return Holdings(in.positions(), in.Index) }

// heldAssets returns the distinct assets referenced by at least one position,
// in order of first reference.
func (in *Input) heldAssets() []*Asset {
	seen := make(map[*Asset]bool)
	var assets []*Asset
	for _, h := range in.holdings() {
		if h.Asset == nil || seen[h.Asset] {
			continue
		}
		seen[h.Asset] = true
		assets = append(assets, h.Asset)
	}
	return assets
}

// passIfEmpty adds a single document level pass when no finding was added.
func (fs *findings) passIfEmpty(format string, args ...any) {
	if len(*fs) == 0 {
		fs.pass(documentEntity(), format, args...)
	}
}
