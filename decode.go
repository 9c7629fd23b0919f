package fundsxml

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/etnz/fundsxml/date"
	"github.com/shopspring/decimal"
)

// RootElement is the name of the document element of a FundsXML4 file.
const RootElement = "FundsXML4"

// Asset containers. Both hold the same Asset records; which one is used
// depends on the schema version that produced the file.
const (
	AssetsSection          = "Assets"
	AssetMasterDataSection = "AssetMasterData"
)

// DecodeOptions tunes the decoder.
type DecodeOptions struct {
	// AssetSections lists the accepted asset containers. Assets are merged in
	// this order. Defaults to Assets then AssetMasterData.
	AssetSections []string
}

// DefaultDecodeOptions accepts both asset containers.
func DefaultDecodeOptions() DecodeOptions {
	return DecodeOptions{AssetSections: []string{AssetsSection, AssetMasterDataSection}}
}

// ParseError is a fatal decoding error: the input cannot be read as a FundsXML4 document.
type ParseError struct {
	Msg string
	Err error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fundsxml: %s: %v", e.Msg, e.Err)
	}
	return "fundsxml: " + e.Msg
}

func (e *ParseError) Unwrap() error { return e.Err }

// DecodeFile reads and decodes the document at path.
func DecodeFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open %q: %w", path, err)
	}
	defer f.Close()
	doc, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("could not decode %q: %w", path, err)
	}
	return doc, nil
}

// Decode decodes a FundsXML4 document with the default options.
func Decode(r io.Reader) (*Document, error) {
	return DecodeWith(r, DefaultDecodeOptions())
}

// DecodeWith decodes a FundsXML4 document.
//
// It fails only when the input is not well-formed XML or has no FundsXML4
// root. Missing sections and malformed values are kept in the Document for
// the rules to report.
func DecodeWith(r io.Reader, opts DecodeOptions) (*Document, error) {
	if len(opts.AssetSections) == 0 {
		opts = DefaultDecodeOptions()
	}
	dec := xml.NewDecoder(r)

	start, err := rootElement(dec)
	if err != nil {
		return nil, err
	}
	if start.Name.Local != RootElement {
		return nil, &ParseError{Msg: fmt.Sprintf("unexpected root element <%s>, want <%s>", start.Name.Local, RootElement)}
	}
	var raw xmlRoot
	if err := dec.DecodeElement(&raw, &start); err != nil {
		return nil, &ParseError{Msg: "document is not well-formed", Err: err}
	}
	// The rest of the input must be well-formed too, and hold no second root.
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &ParseError{Msg: "document is not well-formed", Err: err}
		}
		if se, ok := tok.(xml.StartElement); ok {
			return nil, &ParseError{Msg: fmt.Sprintf("unexpected element <%s> after the root element", se.Name.Local)}
		}
	}

	c := &converter{}
	doc := c.document(&raw, opts)
	doc.Issues = c.issues
	doc.index = NewAssetIndex(doc.Assets)
	return doc, nil
}

// rootElement skips the prolog and returns the first start element.
func rootElement(dec *xml.Decoder) (xml.StartElement, error) {
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return xml.StartElement{}, &ParseError{Msg: "root element is missing"}
		}
		if err != nil {
			return xml.StartElement{}, &ParseError{Msg: "document is not well-formed", Err: err}
		}
		if se, ok := tok.(xml.StartElement); ok {
			return se, nil
		}
	}
}

// raw XML shapes. Optional text is a *string so that absence survives decoding.

type xmlRoot struct {
	ControlData     *xmlControlData `xml:"ControlData"`
	Funds           *xmlFunds       `xml:"Funds"`
	Assets          *xmlAssetList   `xml:"Assets"`
	AssetMasterData *xmlAssetList   `xml:"AssetMasterData"`
}

type xmlControlData struct {
	UniqueDocumentID  *string `xml:"UniqueDocumentID"`
	DocumentGenerated *string `xml:"DocumentGenerated"`
	ContentDate       *string `xml:"ContentDate"`
	Version           *string `xml:"Version"`
	Language          *string `xml:"Language"`
	DataSupplier      struct {
		SystemCountry *string `xml:"SystemCountry"`
		Short         *string `xml:"Short"`
		Name          *string `xml:"Name"`
	} `xml:"DataSupplier"`
}

type xmlFunds struct {
	Fund []xmlFund `xml:"Fund"`
}

type xmlFund struct {
	Currency    *string `xml:"Currency"`
	Identifiers struct {
		LEI *string `xml:"LEI"`
	} `xml:"Identifiers"`
	Names struct {
		OfficialName *string `xml:"OfficialName"`
	} `xml:"Names"`
	FundStaticData struct {
		InceptionDate *string `xml:"InceptionDate"`
	} `xml:"FundStaticData"`
	FundDynamicData struct {
		TotalAssetValues []xmlTotalAssetValue `xml:"TotalAssetValues>TotalAssetValue"`
		Portfolios       []xmlPortfolio       `xml:"Portfolios>Portfolio"`
	} `xml:"FundDynamicData"`
	ShareClasses []xmlShareClass `xml:"SingleFund>ShareClasses>ShareClass"`
}

type xmlTotalAssetValue struct {
	NavDate            *string     `xml:"NavDate"`
	TotalNetAssetValue []xmlAmount `xml:"TotalNetAssetValue>Amount"`
	SharesOutstanding  *string     `xml:"SharesOutstanding"`
	Ratio              *string     `xml:"Ratio"`
}

type xmlAmount struct {
	Ccy   string `xml:"ccy,attr"`
	Value string `xml:",chardata"`
}

type xmlShareClass struct {
	Identifiers struct {
		ISIN *string `xml:"ISIN"`
	} `xml:"Identifiers"`
	Currency *string `xml:"Currency"`
	Prices   []struct {
		NavDate  *string `xml:"NavDate"`
		NavPrice *string `xml:"NavPrice"`
	} `xml:"Prices>Price"`
	TotalAssetValues []xmlTotalAssetValue `xml:"TotalAssetValues>TotalAssetValue"`
	Portfolios       []xmlPortfolio       `xml:"Portfolios>Portfolio"`
}

type xmlPortfolio struct {
	NavDate           *string       `xml:"NavDate"`
	PortfolioCurrency *string       `xml:"PortfolioCurrency"`
	Positions         []xmlPosition `xml:"Positions>Position"`
}

type xmlPosition struct {
	UniqueID        *string     `xml:"UniqueID"`
	Currency        *string     `xml:"Currency"`
	TotalValue      []xmlAmount `xml:"TotalValue>Amount"`
	TotalPercentage *string     `xml:"TotalPercentage"`
	FXRates         []struct {
		FromCcy string `xml:"fromCcy,attr"`
		ToCcy   string `xml:"toCcy,attr"`
		Value   string `xml:",chardata"`
	} `xml:"FXRates>FXRate"`
	Exposures []struct {
		Type  *string `xml:"Type"`
		Value *string `xml:"Value"`
	} `xml:"Exposures>Exposure"`
}

type xmlAssetList struct {
	Asset []xmlAsset `xml:"Asset"`
}

type xmlIssuer struct {
	Name        *string `xml:"Name"`
	Identifiers struct {
		LEI *string `xml:"LEI"`
	} `xml:"Identifiers"`
}

type xmlAsset struct {
	UniqueID    *string `xml:"UniqueID"`
	AssetType   *string `xml:"AssetType"`
	Name        *string `xml:"Name"`
	Currency    *string `xml:"Currency"`
	Country     *string `xml:"Country"`
	Identifiers struct {
		ISIN    *string `xml:"ISIN"`
		LEI     *string `xml:"LEI"`
		SEDOL   *string `xml:"SEDOL"`
		WKN     *string `xml:"WKN"`
		Ticker  *string `xml:"Ticker"`
		OtherID *string `xml:"OtherID"`
	} `xml:"Identifiers"`
	AssetDetails struct {
		Bond *struct {
			IssueDate       *string   `xml:"IssueDate"`
			MaturityDate    *string   `xml:"MaturityDate"`
			DateFirstCoupon *string   `xml:"DateFirstCoupon"`
			InterestRate    *string   `xml:"InterestRate"`
			Issuer          xmlIssuer `xml:"Issuer"`
		} `xml:"Bond"`
		Equity *struct {
			Issuer xmlIssuer `xml:"Issuer"`
		} `xml:"Equity"`
		Account *struct {
			Counterparty struct {
				Name *string `xml:"Name"`
				BIC  *string `xml:"BIC"`
			} `xml:"Counterparty"`
		} `xml:"Account"`
		FXForward *struct {
			CurrencyBuy  *string `xml:"CurrencyBuy"`
			CurrencySell *string `xml:"CurrencySell"`
			MaturityDate *string `xml:"MaturityDate"`
		} `xml:"FXForward"`
	} `xml:"AssetDetails"`
}

// converter turns raw XML shapes into the model, collecting value issues.
type converter struct {
	issues []Issue
}

func (c *converter) issue(path, value string, err error) {
	c.issues = append(c.issues, Issue{Path: path, Value: value, Err: err})
}

func (c *converter) text(p *string) Opt[string] {
	if p == nil {
		return Opt[string]{}
	}
	return Some(strings.TrimSpace(*p))
}

func (c *converter) decimal(path string, p *string) Opt[decimal.Decimal] {
	if p == nil {
		return Opt[decimal.Decimal]{}
	}
	s := strings.TrimSpace(*p)
	v, err := decimal.NewFromString(s)
	if err != nil {
		c.issue(path, s, fmt.Errorf("invalid number: %w", err))
		return Opt[decimal.Decimal]{}
	}
	return Some(v)
}

func (c *converter) date(path string, p *string) Opt[date.Date] {
	if p == nil {
		return Opt[date.Date]{}
	}
	s := strings.TrimSpace(*p)
	d, err := date.Parse(s)
	if err != nil {
		c.issue(path, s, err)
		return Opt[date.Date]{}
	}
	return Some(d)
}

func (c *converter) dateTime(path string, p *string) Opt[date.Date] {
	if p == nil {
		return Opt[date.Date]{}
	}
	s := strings.TrimSpace(*p)
	d, err := date.ParseDateTime(s)
	if err != nil {
		c.issue(path, s, err)
		return Opt[date.Date]{}
	}
	return Some(d)
}

func (c *converter) amounts(path string, xs []xmlAmount) Amounts {
	var out Amounts
	for i, x := range xs {
		s := strings.TrimSpace(x.Value)
		v, err := decimal.NewFromString(s)
		if err != nil {
			c.issue(fmt.Sprintf("%s/Amount[%d]", path, i+1), s, fmt.Errorf("invalid amount: %w", err))
			continue
		}
		out = append(out, M(v, strings.TrimSpace(x.Ccy)))
	}
	return out
}

func (c *converter) document(raw *xmlRoot, opts DecodeOptions) *Document {
	doc := &Document{}
	if raw.ControlData != nil {
		doc.ControlData = c.controlData(raw.ControlData)
	}
	var content Opt[date.Date]
	if doc.ControlData != nil {
		content = doc.ControlData.ContentDate
	}
	if raw.Funds != nil {
		doc.HasFunds = true
		for i := range raw.Funds.Fund {
			doc.Funds = append(doc.Funds, c.fund(i, &raw.Funds.Fund[i], content))
		}
	}

	containers := map[string]*xmlAssetList{
		AssetsSection:          raw.Assets,
		AssetMasterDataSection: raw.AssetMasterData,
	}
	for _, name := range opts.AssetSections {
		list := containers[name]
		if list == nil {
			continue
		}
		delete(containers, name) // a section listed twice is read once
		doc.HasAssets = true
		doc.AssetSections = append(doc.AssetSections, name)
		for i := range list.Asset {
			doc.Assets = append(doc.Assets, c.asset(name, i, len(doc.Assets), &list.Asset[i]))
		}
	}
	return doc
}

func (c *converter) controlData(x *xmlControlData) *ControlData {
	return &ControlData{
		UniqueDocumentID:  c.text(x.UniqueDocumentID),
		DocumentGenerated: c.dateTime("ControlData/DocumentGenerated", x.DocumentGenerated),
		ContentDate:       c.date("ControlData/ContentDate", x.ContentDate),
		Version:           c.text(x.Version),
		Language:          c.text(x.Language),
		DataSupplier: DataSupplier{
			Name:    c.text(x.DataSupplier.Name),
			Short:   c.text(x.DataSupplier.Short),
			Country: c.text(x.DataSupplier.SystemCountry),
		},
	}
}

// pickTotalAssetValue returns the entry dated on the content date, else the first one.
func pickTotalAssetValue(xs []xmlTotalAssetValue, content Opt[date.Date]) (int, *xmlTotalAssetValue) {
	if len(xs) == 0 {
		return -1, nil
	}
	if cd, ok := content.Get(); ok {
		for i := range xs {
			if xs[i].NavDate == nil {
				continue
			}
			if d, err := date.Parse(strings.TrimSpace(*xs[i].NavDate)); err == nil && d == cd {
				return i, &xs[i]
			}
		}
	}
	return 0, &xs[0]
}

func (c *converter) fund(i int, x *xmlFund, content Opt[date.Date]) *Fund {
	path := fmt.Sprintf("Funds/Fund[%d]", i+1)
	f := &Fund{
		Key:           fmt.Sprintf("Fund[%d]", i+1),
		Currency:      c.text(x.Currency),
		OfficialName:  c.text(x.Names.OfficialName),
		LEI:           c.text(x.Identifiers.LEI),
		InceptionDate: c.date(path+"/FundStaticData/InceptionDate", x.FundStaticData.InceptionDate),
	}
	if j, tav := pickTotalAssetValue(x.FundDynamicData.TotalAssetValues, content); tav != nil {
		tpath := fmt.Sprintf("%s/FundDynamicData/TotalAssetValues/TotalAssetValue[%d]", path, j+1)
		f.NavDate = c.date(tpath+"/NavDate", tav.NavDate)
		f.TotalNetAssetValue = c.amounts(tpath+"/TotalNetAssetValue", tav.TotalNetAssetValue)
	}
	for j := range x.FundDynamicData.Portfolios {
		key := fmt.Sprintf("%s/Portfolio[%d]", f.Key, j+1)
		ppath := fmt.Sprintf("%s/FundDynamicData/Portfolios/Portfolio[%d]", path, j+1)
		p := c.portfolio(key, ppath, &x.FundDynamicData.Portfolios[j])
		p.Fund = f
		f.Portfolios = append(f.Portfolios, p)
	}
	for j := range x.ShareClasses {
		sc := c.shareClass(f, j, path, &x.ShareClasses[j], content)
		f.ShareClasses = append(f.ShareClasses, sc)
	}
	return f
}

func (c *converter) shareClass(f *Fund, j int, fundPath string, x *xmlShareClass, content Opt[date.Date]) *ShareClass {
	path := fmt.Sprintf("%s/SingleFund/ShareClasses/ShareClass[%d]", fundPath, j+1)
	sc := &ShareClass{
		Key:      fmt.Sprintf("%s/ShareClass[%d]", f.Key, j+1),
		Fund:     f,
		ISIN:     c.text(x.Identifiers.ISIN),
		Currency: c.text(x.Currency),
	}
	if len(x.Prices) > 0 {
		k := 0
		if cd, ok := content.Get(); ok {
			for i, p := range x.Prices {
				if p.NavDate == nil {
					continue
				}
				if d, err := date.Parse(strings.TrimSpace(*p.NavDate)); err == nil && d == cd {
					k = i
					break
				}
			}
		}
		sc.NavPrice = c.decimal(fmt.Sprintf("%s/Prices/Price[%d]/NavPrice", path, k+1), x.Prices[k].NavPrice)
	}
	if k, tav := pickTotalAssetValue(x.TotalAssetValues, content); tav != nil {
		tpath := fmt.Sprintf("%s/TotalAssetValues/TotalAssetValue[%d]", path, k+1)
		sc.TotalNetAssetValue = c.amounts(tpath+"/TotalNetAssetValue", tav.TotalNetAssetValue)
		sc.SharesOutstanding = c.decimal(tpath+"/SharesOutstanding", tav.SharesOutstanding)
		sc.Ratio = c.decimal(tpath+"/Ratio", tav.Ratio)
	}
	for k := range x.Portfolios {
		key := fmt.Sprintf("%s/Portfolio[%d]", sc.Key, k+1)
		ppath := fmt.Sprintf("%s/Portfolios/Portfolio[%d]", path, k+1)
		p := c.portfolio(key, ppath, &x.Portfolios[k])
		p.Fund = f
		p.ShareClass = sc
		sc.Portfolios = append(sc.Portfolios, p)
	}
	return sc
}

func (c *converter) portfolio(key, path string, x *xmlPortfolio) *Portfolio {
	p := &Portfolio{
		Key:      key,
		NavDate:  c.date(path+"/NavDate", x.NavDate),
		Currency: c.text(x.PortfolioCurrency),
	}
	for i := range x.Positions {
		pos := c.position(fmt.Sprintf("%s/Position[%d]", key, i+1), fmt.Sprintf("%s/Positions/Position[%d]", path, i+1), &x.Positions[i])
		pos.Portfolio = p
		p.Positions = append(p.Positions, pos)
	}
	return p
}

func (c *converter) position(key, path string, x *xmlPosition) *Position {
	pos := &Position{
		Key:        key,
		UniqueID:   c.text(x.UniqueID),
		Currency:   c.text(x.Currency),
		TotalValue: c.amounts(path+"/TotalValue", x.TotalValue),
		Percentage: c.decimal(path+"/TotalPercentage", x.TotalPercentage),
	}
	for i, r := range x.FXRates {
		s := strings.TrimSpace(r.Value)
		v, err := decimal.NewFromString(s)
		if err != nil {
			c.issue(fmt.Sprintf("%s/FXRates/FXRate[%d]", path, i+1), s, fmt.Errorf("invalid rate: %w", err))
			continue
		}
		pos.FXRates = append(pos.FXRates, FXRate{From: strings.TrimSpace(r.FromCcy), To: strings.TrimSpace(r.ToCcy), Rate: v})
	}
	for i, e := range x.Exposures {
		pos.Exposures = append(pos.Exposures, Exposure{
			Type:  c.text(e.Type),
			Value: c.decimal(fmt.Sprintf("%s/Exposures/Exposure[%d]/Value", path, i+1), e.Value),
		})
	}
	return pos
}

func (c *converter) asset(section string, i, n int, x *xmlAsset) *Asset {
	path := fmt.Sprintf("%s/Asset[%d]", section, i+1)
	a := &Asset{
		Key:      fmt.Sprintf("Asset[%d]", n+1),
		UniqueID: c.text(x.UniqueID),
		TypeCode: c.text(x.AssetType),
		Name:     c.text(x.Name),
		Currency: c.text(x.Currency),
		Country:  c.text(x.Country),
		Identifiers: Identifiers{
			ISIN:   c.text(x.Identifiers.ISIN),
			LEI:    c.text(x.Identifiers.LEI),
			SEDOL:  c.text(x.Identifiers.SEDOL),
			WKN:    c.text(x.Identifiers.WKN),
			Ticker: c.text(x.Identifiers.Ticker),
			Other:  c.text(x.Identifiers.OtherID),
		},
	}
	if code, ok := a.TypeCode.Get(); ok {
		a.Type, _ = ParseAssetType(code) // unknown codes are reported by the asset.type rule
	}
	det := &x.AssetDetails
	switch {
	case det.Bond != nil:
		b := det.Bond
		a.Details = &BondDetails{
			IssueDate:       c.date(path+"/AssetDetails/Bond/IssueDate", b.IssueDate),
			MaturityDate:    c.date(path+"/AssetDetails/Bond/MaturityDate", b.MaturityDate),
			DateFirstCoupon: c.date(path+"/AssetDetails/Bond/DateFirstCoupon", b.DateFirstCoupon),
			InterestRate:    c.decimal(path+"/AssetDetails/Bond/InterestRate", b.InterestRate),
			IssuerName:      c.text(b.Issuer.Name),
			IssuerLEI:       c.text(b.Issuer.Identifiers.LEI),
		}
	case det.Equity != nil:
		a.Details = &EquityDetails{
			IssuerName: c.text(det.Equity.Issuer.Name),
			IssuerLEI:  c.text(det.Equity.Issuer.Identifiers.LEI),
		}
	case det.Account != nil:
		a.Details = &AccountDetails{
			CounterpartyName: c.text(det.Account.Counterparty.Name),
			CounterpartyBIC:  c.text(det.Account.Counterparty.BIC),
		}
	case det.FXForward != nil:
		fx := det.FXForward
		a.Details = &FXForwardDetails{
			BuyCurrency:  c.text(fx.CurrencyBuy),
			SellCurrency: c.text(fx.CurrencySell),
			MaturityDate: c.date(path+"/AssetDetails/FXForward/MaturityDate", fx.MaturityDate),
		}
	}
	_, hasBond := a.Details.(*BondDetails)
	code := a.TypeCode.Or("")
	switch {
	case a.Type == Bond && a.Details == nil:
		a.Details = &BondDetails{} // a bond without schedule still has a (empty) bond block
	case a.Type == Bond && !hasBond:
		c.issue(path+"/AssetDetails", code, fmt.Errorf("%s block does not match AssetType %s", detailsBlock(a.Details), code))
	case hasBond && a.Type != Bond && a.Type != UnknownAssetType:
		c.issue(path+"/AssetDetails", code, fmt.Errorf("Bond block does not match AssetType %s", code))
	}
	return a
}
