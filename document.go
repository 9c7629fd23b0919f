package fundsxml

import (
	"github.com/etnz/fundsxml/date"
	"github.com/shopspring/decimal"
)

// Document is the read-only model of one FundsXML4 file.
//
// Sections missing from the file are represented as nil (ControlData) or as
// empty collections together with a presence flag, so that structural rules
// can report them while every other rule keeps working on what is there.
type Document struct {
	ControlData *ControlData
	Funds       []*Fund
	Assets      []*Asset

	HasFunds  bool // the <Funds> section exists
	HasAssets bool // at least one accepted asset container exists

	// AssetSections lists the containers that contributed assets, in document order.
	AssetSections []string

	// Issues are values that could not be parsed. They are reported, not fatal.
	Issues []Issue

	index *AssetIndex
}

// ControlData is the document header.
type ControlData struct {
	UniqueDocumentID  Opt[string]
	DocumentGenerated Opt[date.Date]
	ContentDate       Opt[date.Date]
	Version           Opt[string]
	Language          Opt[string]
	DataSupplier      DataSupplier
}

// DataSupplier identifies who produced the document.
type DataSupplier struct {
	Name    Opt[string]
	Short   Opt[string]
	Country Opt[string]
}

// Fund is a single fund with its share classes and portfolios.
type Fund struct {
	Key           string // stable reference used in findings
	Currency      Opt[string]
	OfficialName  Opt[string]
	LEI           Opt[string]
	InceptionDate Opt[date.Date]
	NavDate       Opt[date.Date]

	// TotalNetAssetValue holds the fund TNA in each reported currency.
	TotalNetAssetValue Amounts

	Portfolios   []*Portfolio
	ShareClasses []*ShareClass
}

// TNA returns the fund TNA in the fund currency.
func (f *Fund) TNA() (Money, bool) {
	ccy, ok := f.Currency.Get()
	if !ok {
		return Money{}, false
	}
	return f.TotalNetAssetValue.In(ccy)
}

// AllPortfolios returns the fund portfolios followed by the share class ones.
func (f *Fund) AllPortfolios() []*Portfolio {
	all := append([]*Portfolio(nil), f.Portfolios...)
	for _, sc := range f.ShareClasses {
		all = append(all, sc.Portfolios...)
	}
	return all
}

// ShareClass is a tranche of a fund.
type ShareClass struct {
	Key               string
	Fund              *Fund
	ISIN              Opt[string]
	Currency          Opt[string]
	NavPrice          Opt[decimal.Decimal]
	SharesOutstanding Opt[decimal.Decimal]
	Ratio             Opt[decimal.Decimal] // reported share of the fund, in percent

	TotalNetAssetValue Amounts
	Portfolios         []*Portfolio
}

// Portfolio is an ordered list of positions owned by a fund or a share class.
type Portfolio struct {
	Key        string
	Fund       *Fund
	ShareClass *ShareClass // nil when owned by the fund
	NavDate    Opt[date.Date]
	Currency   Opt[string]
	Positions  []*Position
}

// Position is one holding of a portfolio.
type Position struct {
	Key        string
	Portfolio  *Portfolio
	UniqueID   Opt[string]
	Currency   Opt[string]
	TotalValue Amounts
	Percentage Opt[decimal.Decimal]
	FXRates    []FXRate
	Exposures  []Exposure
}

// FXRate converts one unit of From into To.
type FXRate struct {
	From, To string
	Rate     decimal.Decimal
}

// Exposure is a typed risk figure attached to a position.
type Exposure struct {
	Type  Opt[string]
	Value Opt[decimal.Decimal]
}

// Identifiers are the codes an asset can be known by.
type Identifiers struct {
	ISIN   Opt[string]
	LEI    Opt[string]
	SEDOL  Opt[string]
	WKN    Opt[string]
	Ticker Opt[string]
	Other  Opt[string]
}

// Asset is a master data record, referenced by positions through UniqueID.
type Asset struct {
	Key         string
	UniqueID    Opt[string]
	Type        AssetType
	TypeCode    Opt[string] // raw value, the grouping key of distributions
	Identifiers Identifiers
	Name        Opt[string]
	Currency    Opt[string]
	Country     Opt[string]
	Details     Details // nil for types without a detail block
}

// Details is the type specific block of an asset. The set of variants is closed.
type Details interface {
	assetDetails()
}

// BondDetails holds the schedule of a bond.
type BondDetails struct {
	IssueDate       Opt[date.Date]
	MaturityDate    Opt[date.Date]
	DateFirstCoupon Opt[date.Date]
	InterestRate    Opt[decimal.Decimal]
	IssuerName      Opt[string]
	IssuerLEI       Opt[string]
}

// EquityDetails holds the issuer of an equity.
type EquityDetails struct {
	IssuerName Opt[string]
	IssuerLEI  Opt[string]
}

// AccountDetails holds the bank of a cash account.
type AccountDetails struct {
	CounterpartyName Opt[string]
	CounterpartyBIC  Opt[string]
}

// FXForwardDetails holds the legs of a currency forward.
type FXForwardDetails struct {
	BuyCurrency  Opt[string]
	SellCurrency Opt[string]
	MaturityDate Opt[date.Date]
}

func (*BondDetails) assetDetails()      {}
func (*EquityDetails) assetDetails()    {}
func (*AccountDetails) assetDetails()   {}
func (*FXForwardDetails) assetDetails() {}

// Bond returns the bond details of the asset, if any.
func (a *Asset) Bond() (*BondDetails, bool) {
	b, ok := a.Details.(*BondDetails)
	return b, ok
}

// BondSchedule returns the bond details of a bond asset: AssetType BO with a
// Bond block. It is the single definition of a bond for rules and ladders.
func (a *Asset) BondSchedule() (*BondDetails, bool) {
	if a == nil || a.Type != Bond {
		return nil, false
	}
	return a.Bond()
}

// IsBond reports whether the asset is a bond with its schedule.
func (a *Asset) IsBond() bool {
	_, ok := a.BondSchedule()
	return ok
}

// detailsBlock returns the element name of a details block.
func detailsBlock(d Details) string {
	switch d.(type) {
	case *BondDetails:
		return "Bond"
	case *EquityDetails:
		return "Equity"
	case *AccountDetails:
		return "Account"
	case *FXForwardDetails:
		return "FXForward"
	default:
		return "none"
	}
}

// ContentDate returns the as-of date of the document.
func (d *Document) ContentDate() (date.Date, bool) {
	if d.ControlData == nil {
		return date.Date{}, false
	}
	return d.ControlData.ContentDate.Get()
}

// Positions returns every position of every portfolio of the document.
func (d *Document) Positions() []*Position {
	var all []*Position
	for _, f := range d.Funds {
		for _, p := range f.AllPortfolios() {
			all = append(all, p.Positions...)
		}
	}
	return all
}

// Index returns the UniqueID index of the asset master data, built on first use.
func (d *Document) Index() *AssetIndex {
	if d.index == nil {
		d.index = NewAssetIndex(d.Assets)
	}
	return d.index
}

// Issue is a value that could not be parsed while decoding.
type Issue struct {
	Path  string // element path, e.g. Funds/Fund[1]/Currency
	Value string
	Err   error
}
