package fundsxml

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Severity grades a finding.
type Severity int

const (
	SeverityPass Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityPass:
		return "pass"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// ParseSeverity parses a string into a Severity.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pass", "ok":
		return SeverityPass, nil
	case "warning", "warn":
		return SeverityWarning, nil
	case "error", "fail":
		return SeverityError, nil
	default:
		return 0, fmt.Errorf("unknown severity: %q", s)
	}
}

func (s Severity) MarshalJSON() ([]byte, error) { return json.Marshal(s.String()) }

// Category groups rules in the report.
type Category int

const (
	CategoryStructural Category = iota
	CategoryNAV
	CategoryPortfolio
	CategoryAsset
	CategoryTemporal
	CategoryIdentifier
	CategoryCurrency
)

// AllCategories returns the categories in report order.
func AllCategories() []Category {
	return []Category{
		CategoryStructural, CategoryNAV, CategoryPortfolio, CategoryAsset,
		CategoryTemporal, CategoryIdentifier, CategoryCurrency,
	}
}

func (c Category) String() string {
	switch c {
	case CategoryStructural:
		return "structural"
	case CategoryNAV:
		return "nav"
	case CategoryPortfolio:
		return "portfolio"
	case CategoryAsset:
		return "asset"
	case CategoryTemporal:
		return "temporal"
	case CategoryIdentifier:
		return "identifier"
	case CategoryCurrency:
		return "currency"
	default:
		return "unknown"
	}
}

func (c Category) MarshalJSON() ([]byte, error) { return json.Marshal(c.String()) }

// EntityKind names the kind of element a finding is about.
type EntityKind string

const (
	KindDocument   EntityKind = "document"
	KindFund       EntityKind = "fund"
	KindShareClass EntityKind = "share-class"
	KindPortfolio  EntityKind = "portfolio"
	KindPosition   EntityKind = "position"
	KindAsset      EntityKind = "asset"
)

// Entity references the element a finding is about.
type Entity struct {
	Kind  EntityKind
	Key   string // positional key, e.g. Fund[1]/Portfolio[1]/Position[3]
	Label string // human reference: name, ISIN or UniqueID
	Fund  string // key of the owning fund, "" for document level entities and assets
}

func (e Entity) String() string {
	if e.Label == "" {
		return e.Key
	}
	return fmt.Sprintf("%s (%s)", e.Key, e.Label)
}

func (e Entity) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("kind", e.Kind)
	w.Append("key", e.Key)
	w.Optional("label", e.Label)
	w.Optional("fund", e.Fund)
	return w.MarshalJSON()
}

// Finding is the outcome of one rule on one entity.
type Finding struct {
	ID       uuid.UUID // stable fingerprint of rule, entity and message
	RuleID   string
	Severity Severity
	Category Category
	Entity   Entity
	Message  string
	Measured string // "" when the rule has no measured figure
	Expected string // expected value or tolerance
}

// findingNamespace roots the name based finding IDs.
var findingNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/etnz/fundsxml/finding"))

// fingerprint computes the deterministic ID of f.
func fingerprint(f Finding) uuid.UUID {
	name := strings.Join([]string{f.RuleID, string(f.Entity.Kind), f.Entity.Key, f.Message}, "\x00")
	return uuid.NewSHA1(findingNamespace, []byte(name))
}

func (f Finding) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", f.ID.String())
	w.Append("rule", f.RuleID)
	w.Append("severity", f.Severity)
	w.Append("category", f.Category)
	w.Append("entity", f.Entity)
	w.Append("message", f.Message)
	w.Optional("measured", f.Measured)
	w.Optional("expected", f.Expected)
	return w.MarshalJSON()
}

func (f Finding) String() string {
	return fmt.Sprintf("[%s] %s %s: %s", f.Severity, f.RuleID, f.Entity, f.Message)
}

// findings accumulates the outcome of one rule. Rule ID, category and ID are
// stamped by the evaluator.
type findings []Finding

func (fs *findings) add(sev Severity, e Entity, measured, expected string, format string, args ...any) {
	*fs = append(*fs, Finding{
		Severity: sev,
		Entity:   e,
		Message:  fmt.Sprintf(format, args...),
		Measured: measured,
		Expected: expected,
	})
}

func (fs *findings) pass(e Entity, format string, args ...any) {
	fs.add(SeverityPass, e, "", "", format, args...)
}

func (fs *findings) warn(e Entity, format string, args ...any) {
	fs.add(SeverityWarning, e, "", "", format, args...)
}

func (fs *findings) fail(e Entity, format string, args ...any) {
	fs.add(SeverityError, e, "", "", format, args...)
}

// entity constructors

func documentEntity() Entity { return Entity{Kind: KindDocument, Key: RootElement} }

func fundEntity(f *Fund) Entity {
	label := f.OfficialName.Or("")
	if label == "" {
		label = f.LEI.Or("")
	}
	return Entity{Kind: KindFund, Key: f.Key, Label: label, Fund: f.Key}
}

func shareClassEntity(sc *ShareClass) Entity {
	return Entity{Kind: KindShareClass, Key: sc.Key, Label: sc.ISIN.Or(""), Fund: sc.Fund.Key}
}

func portfolioEntity(p *Portfolio) Entity {
	return Entity{Kind: KindPortfolio, Key: p.Key, Fund: p.Fund.Key}
}

func positionEntity(p *Position) Entity {
	return Entity{Kind: KindPosition, Key: p.Key, Label: p.UniqueID.Or(""), Fund: p.Portfolio.Fund.Key}
}

func assetEntity(a *Asset) Entity {
	return Entity{Kind: KindAsset, Key: a.Key, Label: a.UniqueID.Or("")}
}
