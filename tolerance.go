package fundsxml

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// NAVMode selects how the NAV reconciliation difference is measured.
type NAVMode string

const (
	// NAVAbsolute compares the difference in currency units.
	NAVAbsolute NAVMode = "absolute"
	// NAVRelative compares the difference in percent of the fund TNA, and
	// falls back to NAVAbsolute when the fund TNA is not positive.
	NAVRelative NAVMode = "relative"
)

// Band grades a non-negative difference: below Pass passes, below Warn warns,
// anything else is an error.
type Band struct {
	Pass decimal.Decimal `yaml:"pass"`
	Warn decimal.Decimal `yaml:"warn"`
}

// Grade returns the severity of diff.
func (b Band) Grade(diff decimal.Decimal) Severity {
	switch {
	case diff.LessThan(b.Pass):
		return SeverityPass
	case diff.LessThan(b.Warn):
		return SeverityWarning
	default:
		return SeverityError
	}
}

// NAVBand configures the fund TNA versus share class TNA reconciliation.
type NAVBand struct {
	Mode     NAVMode `yaml:"mode"`
	Absolute Band    `yaml:"absolute"` // currency units
	Relative Band    `yaml:"relative"` // percent of fund TNA
}

// PercentSumBand configures the sum of position percentages against Target.
//
// A difference up to Max passes. With WarnNearMiss, a difference strictly
// between Exact and Max is a warning instead.
type PercentSumBand struct {
	Target       decimal.Decimal `yaml:"target"`
	Exact        decimal.Decimal `yaml:"exact"`
	Max          decimal.Decimal `yaml:"max"`
	WarnNearMiss bool            `yaml:"warn_near_miss"`
}

// Grade returns the severity of a percentage sum.
func (b PercentSumBand) Grade(sum decimal.Decimal) (Severity, decimal.Decimal) {
	diff := sum.Sub(b.Target).Abs()
	switch {
	case diff.GreaterThan(b.Max):
		return SeverityError, diff
	case b.WarnNearMiss && diff.GreaterThan(b.Exact) && diff.LessThan(b.Max):
		return SeverityWarning, diff
	default:
		return SeverityPass, diff
	}
}

// LimitBand is binary: a difference strictly above Max fails.
type LimitBand struct {
	Max decimal.Decimal `yaml:"max"`
}

// Grade returns the severity of diff.
func (b LimitBand) Grade(diff decimal.Decimal) Severity {
	if diff.GreaterThan(b.Max) {
		return SeverityError
	}
	return SeverityPass
}

// CoverageBand grades a coverage percentage: at least Pass passes, at least
// Warn warns, below is an error.
type CoverageBand struct {
	Pass decimal.Decimal `yaml:"pass"`
	Warn decimal.Decimal `yaml:"warn"`
}

// Grade returns the severity of a coverage percentage.
func (b CoverageBand) Grade(pct decimal.Decimal) Severity {
	switch {
	case pct.GreaterThanOrEqual(b.Pass):
		return SeverityPass
	case pct.GreaterThanOrEqual(b.Warn):
		return SeverityWarning
	default:
		return SeverityError
	}
}

// CoverageBands holds one band per identifier type.
type CoverageBands struct {
	ISIN   CoverageBand `yaml:"isin"`
	LEI    CoverageBand `yaml:"lei"`
	SEDOL  CoverageBand `yaml:"sedol"`
	WKN    CoverageBand `yaml:"wkn"`
	Ticker CoverageBand `yaml:"ticker"`
}

// DayBand grades a number of days: below Pass passes, below Warn warns.
type DayBand struct {
	Pass int `yaml:"pass"`
	Warn int `yaml:"warn"`
}

// Grade returns the severity of days.
func (b DayBand) Grade(days int) Severity {
	switch {
	case days < b.Pass:
		return SeverityPass
	case days < b.Warn:
		return SeverityWarning
	default:
		return SeverityError
	}
}

// FreshnessBand classifies the age of a document in days.
type FreshnessBand struct {
	Fresh  int `yaml:"fresh"`
	Recent int `yaml:"recent"`
	Aging  int `yaml:"aging"`
}

// Tolerances is a named set of thresholds. Report variants disagree on some
// bands for the same check, so each variant is a profile of its own.
type Tolerances struct {
	Name             string         `yaml:"name"`
	NAV              NAVBand        `yaml:"nav"`
	PercentageSum    PercentSumBand `yaml:"percentage_sum"`
	PriceTimesShares Band           `yaml:"price_times_shares"` // percent of reported TNA
	PortfolioTotal   LimitBand      `yaml:"portfolio_total"`    // currency units
	ShareClassRatio  Band           `yaml:"share_class_ratio"`  // percentage points
	FXConsistency    LimitBand      `yaml:"fx_consistency"`     // percent
	Coverage         CoverageBands  `yaml:"coverage"`
	Freshness        FreshnessBand  `yaml:"freshness"`
	ProcessingDelay  DayBand        `yaml:"processing_delay"`
	TopHoldings      int            `yaml:"top_holdings"`
}

// DefaultTolerances is the dashboard profile: absolute NAV bands and no
// near-miss band on percentage sums.
func DefaultTolerances() Tolerances {
	return Tolerances{
		Name: "default",
		NAV: NAVBand{
			Mode:     NAVAbsolute,
			Absolute: Band{Pass: D(0.01), Warn: D(1)},
			Relative: Band{Pass: D(0.01), Warn: D(1)},
		},
		PercentageSum:    PercentSumBand{Target: D(100), Exact: D(0.01), Max: D(1)},
		PriceTimesShares: Band{Pass: D(1), Warn: D(5)},
		PortfolioTotal:   LimitBand{Max: D(1)},
		ShareClassRatio:  Band{Pass: D(0.01), Warn: D(1)},
		FXConsistency:    LimitBand{Max: D(1)},
		Coverage: CoverageBands{
			ISIN:   CoverageBand{Pass: D(90), Warn: D(70)},
			LEI:    CoverageBand{Pass: D(90), Warn: D(70)},
			SEDOL:  CoverageBand{Pass: D(50), Warn: D(25)},
			WKN:    CoverageBand{Pass: D(50), Warn: D(25)},
			Ticker: CoverageBand{Pass: D(50), Warn: D(25)},
		},
		Freshness:       FreshnessBand{Fresh: 7, Recent: 30, Aging: 90},
		ProcessingDelay: DayBand{Pass: 7, Warn: 30},
		TopHoldings:     15,
	}
}

// ReconciliationTolerances is the NAV reconciliation report profile: NAV
// differences relative to the fund TNA and near-miss warnings on percentage sums.
func ReconciliationTolerances() Tolerances {
	t := DefaultTolerances()
	t.Name = "reconciliation"
	t.NAV.Mode = NAVRelative
	t.PercentageSum.WarnNearMiss = true
	return t
}

var profiles = map[string]func() Tolerances{
	"default":        DefaultTolerances,
	"reconciliation": ReconciliationTolerances,
}

// Profiles returns the names of the built-in profiles, sorted.
func Profiles() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Profile returns a built-in profile by name.
func Profile(name string) (Tolerances, error) {
	f, ok := profiles[name]
	if !ok {
		return Tolerances{}, fmt.Errorf("unknown tolerance profile %q, want one of %v", name, Profiles())
	}
	return f(), nil
}

// ParseTolerances reads a YAML document over base. Keys absent from the
// document keep the base value. A top level `base: <profile>` key replaces
// base by that built-in profile first.
func ParseTolerances(data []byte, base Tolerances) (Tolerances, error) {
	var header struct {
		Base string `yaml:"base"`
	}
	if err := yaml.Unmarshal(data, &header); err != nil {
		return Tolerances{}, fmt.Errorf("invalid tolerances: %w", err)
	}
	if header.Base != "" {
		p, err := Profile(header.Base)
		if err != nil {
			return Tolerances{}, err
		}
		base = p
	}
	t := base
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Tolerances{}, fmt.Errorf("invalid tolerances: %w", err)
	}
	if err := t.Validate(); err != nil {
		return Tolerances{}, err
	}
	return t, nil
}

// LoadTolerances reads a YAML tolerances file over base.
func LoadTolerances(path string, base Tolerances) (Tolerances, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Tolerances{}, fmt.Errorf("could not read tolerances %q: %w", path, err)
	}
	t, err := ParseTolerances(data, base)
	if err != nil {
		return Tolerances{}, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Validate checks that every band is ordered.
func (t Tolerances) Validate() error {
	var errs []error
	band := func(name string, b Band) {
		if b.Pass.GreaterThan(b.Warn) {
			errs = append(errs, fmt.Errorf("%s: pass %s is above warn %s", name, b.Pass, b.Warn))
		}
	}
	coverage := func(name string, b CoverageBand) {
		if b.Warn.GreaterThan(b.Pass) {
			errs = append(errs, fmt.Errorf("%s: warn %s is above pass %s", name, b.Warn, b.Pass))
		}
	}
	band("nav.absolute", t.NAV.Absolute)
	band("nav.relative", t.NAV.Relative)
	band("price_times_shares", t.PriceTimesShares)
	band("share_class_ratio", t.ShareClassRatio)
	coverage("coverage.isin", t.Coverage.ISIN)
	coverage("coverage.lei", t.Coverage.LEI)
	coverage("coverage.sedol", t.Coverage.SEDOL)
	coverage("coverage.wkn", t.Coverage.WKN)
	coverage("coverage.ticker", t.Coverage.Ticker)
	if t.NAV.Mode != NAVAbsolute && t.NAV.Mode != NAVRelative {
		errs = append(errs, fmt.Errorf("nav.mode: unknown mode %q", t.NAV.Mode))
	}
	if t.PercentageSum.Exact.GreaterThan(t.PercentageSum.Max) {
		errs = append(errs, fmt.Errorf("percentage_sum: exact %s is above max %s", t.PercentageSum.Exact, t.PercentageSum.Max))
	}
	if !(t.Freshness.Fresh <= t.Freshness.Recent && t.Freshness.Recent <= t.Freshness.Aging) {
		errs = append(errs, fmt.Errorf("freshness: bands %d/%d/%d are not ordered", t.Freshness.Fresh, t.Freshness.Recent, t.Freshness.Aging))
	}
	if t.ProcessingDelay.Pass > t.ProcessingDelay.Warn {
		errs = append(errs, fmt.Errorf("processing_delay: pass %d is above warn %d", t.ProcessingDelay.Pass, t.ProcessingDelay.Warn))
	}
	if t.TopHoldings < 0 {
		errs = append(errs, fmt.Errorf("top_holdings: must not be negative, got %d", t.TopHoldings))
	}
	return errors.Join(errs...)
}
