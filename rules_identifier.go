package fundsxml

import (
	"fmt"

	"github.com/shopspring/decimal"
)

func identifierRules() []Rule {
	return []Rule{
		{
			ID:          "identifier.fund-lei",
			Category:    CategoryIdentifier,
			Description: "Each fund has a well-formed LEI.",
			Check:       checkFundLEI,
		},
		{
			ID:          "identifier.share-class-isin",
			Category:    CategoryIdentifier,
			Description: "Each share class has a well-formed ISIN, unique in the document.",
			Check:       checkShareClassISIN,
		},
		{
			ID:          "identifier.asset-isin",
			Category:    CategoryIdentifier,
			Description: "Asset ISINs are well-formed.",
			Check:       checkAssetISIN,
		},
		{
			ID:          "identifier.asset-lei",
			Category:    CategoryIdentifier,
			Description: "Asset and issuer LEIs are well-formed.",
			Check:       checkAssetLEI,
		},
		{
			ID:          "identifier.bic",
			Category:    CategoryIdentifier,
			Description: "Account counterparty BICs are well-formed.",
			Check:       checkBIC,
		},
		{
			ID:          "identifier.coverage",
			Category:    CategoryIdentifier,
			Description: "Enough assets carry each kind of identifier.",
			Check:       checkCoverage,
		},
		{
			ID:          "identifier.isin-check-digit",
			Category:    CategoryIdentifier,
			Description: "Well-formed ISINs carry a correct check digit.",
			Check:       checkISINCheckDigits,
		},
	}
}

func checkFundLEI(in *Input) []Finding {
	var fs findings
	for _, f := range in.Doc.Funds {
		lei, ok := f.LEI.Get()
		if !ok || lei == "" {
			fs.warn(fundEntity(f), "fund has no LEI")
			continue
		}
		if err := ValidateLEI(lei); err != nil {
			fs.add(SeverityError, fundEntity(f), lei, "", "LEI %q: %v", lei, err)
			continue
		}
		fs.pass(fundEntity(f), "LEI %s", lei)
	}
	return fs
}

func checkShareClassISIN(in *Input) []Finding {
	var fs findings
	first := make(map[string]*ShareClass)
	for _, f := range in.Doc.Funds {
		for _, sc := range f.ShareClasses {
			isin, ok := sc.ISIN.Get()
			if !ok || isin == "" {
				fs.warn(shareClassEntity(sc), "share class has no ISIN")
				continue
			}
			if err := ValidateISIN(isin); err != nil {
				fs.add(SeverityError, shareClassEntity(sc), isin, "", "ISIN %q: %v", isin, err)
				continue
			}
			if prev, dup := first[isin]; dup {
				fs.add(SeverityError, shareClassEntity(sc), isin, "", "ISIN %s is already used by %s", isin, prev.Key)
				continue
			}
			first[isin] = sc
		}
	}
	if len(first) > 0 {
		fs.passIfEmpty("%d share class ISIN(s) are well-formed and unique", len(first))
	}
	return fs
}

func checkAssetISIN(in *Input) []Finding {
	var fs findings
	checked := 0
	for _, a := range in.Doc.Assets {
		isin, ok := a.Identifiers.ISIN.Get()
		if !ok || isin == "" {
			continue
		}
		checked++
		if err := ValidateISIN(isin); err != nil {
			fs.add(SeverityError, assetEntity(a), isin, "", "ISIN %q: %v", isin, err)
		}
	}
	if checked > 0 {
		fs.passIfEmpty("%d asset ISIN(s) are well-formed", checked)
	}
	return fs
}

// assetLEIs returns the LEIs an asset carries, with the element they come from.
func assetLEIs(a *Asset) [][2]string {
	var out [][2]string
	add := func(where string, o Opt[string]) {
		if v, ok := o.Get(); ok && v != "" {
			out = append(out, [2]string{where, v})
		}
	}
	add("Identifiers/LEI", a.Identifiers.LEI)
	switch d := a.Details.(type) {
	case *BondDetails:
		add("Issuer LEI", d.IssuerLEI)
	case *EquityDetails:
		add("Issuer LEI", d.IssuerLEI)
	}
	return out
}

func checkAssetLEI(in *Input) []Finding {
	var fs findings
	checked := 0
	for _, a := range in.Doc.Assets {
		for _, l := range assetLEIs(a) {
			checked++
			if err := ValidateLEI(l[1]); err != nil {
				fs.add(SeverityError, assetEntity(a), l[1], "", "%s %q: %v", l[0], l[1], err)
			}
		}
	}
	if checked > 0 {
		fs.passIfEmpty("%d asset LEI(s) are well-formed", checked)
	}
	return fs
}

func checkBIC(in *Input) []Finding {
	var fs findings
	checked := 0
	for _, a := range in.Doc.Assets {
		acc, ok := a.Details.(*AccountDetails)
		if !ok {
			continue
		}
		bic, ok := acc.CounterpartyBIC.Get()
		if !ok || bic == "" {
			continue
		}
		checked++
		if err := ValidateBIC(bic); err != nil {
			fs.add(SeverityError, assetEntity(a), bic, "", "counterparty BIC %q: %v", bic, err)
		}
	}
	if checked > 0 {
		fs.passIfEmpty("%d BIC(s) are well-formed", checked)
	}
	return fs
}

// coverageOf returns the share of assets where id returns a non-empty value.
func coverageOf(assets []*Asset, id func(*Asset) Opt[string]) (n int, pct decimal.Decimal, ok bool) {
	for _, a := range assets {
		if nonEmpty(id(a)) {
			n++
		}
	}
	if len(assets) == 0 {
		return n, decimal.Zero, false
	}
	return n, decimal.NewFromInt(int64(n)).Div(decimal.NewFromInt(int64(len(assets)))).Mul(hundred), true
}

func checkCoverage(in *Input) []Finding {
	var fs findings
	bands := in.Tol.Coverage
	kinds := []struct {
		name string
		band CoverageBand
		id   func(*Asset) Opt[string]
	}{
		{"ISIN", bands.ISIN, func(a *Asset) Opt[string] { return a.Identifiers.ISIN }},
		{"LEI", bands.LEI, func(a *Asset) Opt[string] { return a.Identifiers.LEI }},
		{"SEDOL", bands.SEDOL, func(a *Asset) Opt[string] { return a.Identifiers.SEDOL }},
		{"WKN", bands.WKN, func(a *Asset) Opt[string] { return a.Identifiers.WKN }},
		{"Ticker", bands.Ticker, func(a *Asset) Opt[string] { return a.Identifiers.Ticker }},
	}
	for _, k := range kinds {
		n, pct, ok := coverageOf(in.Doc.Assets, k.id)
		if !ok {
			continue
		}
		e := Entity{Kind: KindDocument, Key: RootElement, Label: k.name}
		fs.add(k.band.Grade(pct), e, fmtDec(pct, 2), fmt.Sprintf(">= %s pass, >= %s warning", k.band.Pass, k.band.Warn),
			"%s coverage %s%% (%d of %d assets)", k.name, fmtDec(pct, 2), n, len(in.Doc.Assets))
	}
	return fs
}

func checkISINCheckDigits(in *Input) []Finding {
	var fs findings
	checked := 0
	check := func(e Entity, o Opt[string]) {
		isin, ok := o.Get()
		if !ok || ValidateISIN(isin) != nil {
			return // format errors are reported by the ISIN format rules
		}
		checked++
		if err := ValidateISINCheckDigit(isin); err != nil {
			fs.add(SeverityWarning, e, isin, "", "ISIN %s: %v", isin, err)
		}
	}
	for _, f := range in.Doc.Funds {
		for _, sc := range f.ShareClasses {
			check(shareClassEntity(sc), sc.ISIN)
		}
	}
	for _, a := range in.Doc.Assets {
		check(assetEntity(a), a.Identifiers.ISIN)
	}
	if checked > 0 {
		fs.passIfEmpty("%d ISIN check digit(s) are correct", checked)
	}
	return fs
}
