package fundsxml

import (
	"fmt"

	"github.com/shopspring/decimal"
)

func currencyRules() []Rule {
	return []Rule{
		{
			ID:          "currency.codes",
			Category:    CategoryCurrency,
			Description: "Every currency code has three uppercase letters and is an ISO 4217 currency.",
			Check:       checkCurrencyCodes,
		},
		{
			ID:          "currency.portfolio",
			Category:    CategoryCurrency,
			Description: "A portfolio is kept in the currency of its fund.",
			Check:       checkPortfolioCurrency,
		},
		{
			ID:          "currency.position-asset",
			Category:    CategoryCurrency,
			Description: "A position is in the currency of the asset it holds.",
			Check:       checkPositionAssetCurrency,
		},
		{
			ID:          "currency.fx-consistency",
			Category:    CategoryCurrency,
			Description: "The fund currency value of a position equals its local value times the reported FX rate.",
			Check:       checkFXConsistency,
		},
	}
}

// currencyUse is a currency code and the first place it was found.
type currencyUse struct {
	code   string
	entity Entity
	count  int
}

// currencyUses lists every currency code of the document, in order of first use.
func currencyUses(doc *Document) []*currencyUse {
	var uses []*currencyUse
	byCode := make(map[string]*currencyUse)
	add := func(e Entity, code string) {
		if u, ok := byCode[code]; ok {
			u.count++
			return
		}
		u := &currencyUse{code: code, entity: e, count: 1}
		byCode[code] = u
		uses = append(uses, u)
	}
	opt := func(e Entity, o Opt[string]) {
		if v, ok := o.Get(); ok {
			add(e, v)
		}
	}
	amounts := func(e Entity, a Amounts) {
		for _, ccy := range a.Currencies() {
			add(e, ccy)
		}
	}
	for _, f := range doc.Funds {
		opt(fundEntity(f), f.Currency)
		amounts(fundEntity(f), f.TotalNetAssetValue)
		for _, sc := range f.ShareClasses {
			opt(shareClassEntity(sc), sc.Currency)
			amounts(shareClassEntity(sc), sc.TotalNetAssetValue)
		}
		for _, p := range f.AllPortfolios() {
			opt(portfolioEntity(p), p.Currency)
			for _, pos := range p.Positions {
				opt(positionEntity(pos), pos.Currency)
				amounts(positionEntity(pos), pos.TotalValue)
				for _, r := range pos.FXRates {
					add(positionEntity(pos), r.From)
					add(positionEntity(pos), r.To)
				}
			}
		}
	}
	for _, a := range doc.Assets {
		opt(assetEntity(a), a.Currency)
		if fx, ok := a.Details.(*FXForwardDetails); ok {
			opt(assetEntity(a), fx.BuyCurrency)
			opt(assetEntity(a), fx.SellCurrency)
		}
	}
	return uses
}

func checkCurrencyCodes(in *Input) []Finding {
	var fs findings
	uses := currencyUses(in.Doc)
	for _, u := range uses {
		if err := ValidateCurrency(u.code); err != nil {
			fs.add(SeverityError, u.entity, u.code, "ISO 4217 code", "currency %q (used %d time(s)): %v", u.code, u.count, err)
			continue
		}
		if !KnownCurrency(u.code) {
			fs.add(SeverityWarning, u.entity, u.code, "ISO 4217 code", "currency %s (used %d time(s)) is not a known ISO 4217 currency", u.code, u.count)
		}
	}
	if len(uses) > 0 {
		fs.passIfEmpty("%d currency code(s) are valid", len(uses))
	}
	return fs
}

func checkPortfolioCurrency(in *Input) []Finding {
	var fs findings
	checked := 0
	for _, f := range in.Doc.Funds {
		fundCcy, ok := f.Currency.Get()
		if !ok {
			continue
		}
		for _, p := range f.AllPortfolios() {
			ccy, ok := p.Currency.Get()
			if !ok {
				continue
			}
			checked++
			if ccy != fundCcy {
				fs.add(SeverityWarning, portfolioEntity(p), ccy, fundCcy, "portfolio currency %s differs from the fund currency %s", ccy, fundCcy)
			}
		}
	}
	if checked > 0 {
		fs.passIfEmpty("portfolios are kept in their fund currency")
	}
	return fs
}

func checkPositionAssetCurrency(in *Input) []Finding {
	var fs findings
	checked := 0
	for _, h := range in.holdings() {
		if h.Asset == nil {
			continue
		}
		posCcy, okP := h.Position.Currency.Get()
		assetCcy, okA := h.Asset.Currency.Get()
		if !okP || !okA {
			continue
		}
		checked++
		if posCcy != assetCcy {
			fs.add(SeverityWarning, positionEntity(h.Position), posCcy, assetCcy,
				"position currency %s differs from the currency %s of asset %s", posCcy, assetCcy, h.Asset.Key)
		}
	}
	if checked > 0 {
		fs.passIfEmpty("positions are in the currency of their asset")
	}
	return fs
}

// rateBetween returns the rate converting from into to, using the inverse
// quote when only that one is reported.
func rateBetween(rates []FXRate, from, to string) (decimal.Decimal, bool) {
	for _, r := range rates {
		if r.From == from && r.To == to {
			return r.Rate, true
		}
	}
	for _, r := range rates {
		if r.From == to && r.To == from && !r.Rate.IsZero() {
			return decimal.NewFromInt(1).Div(r.Rate), true
		}
	}
	return decimal.Zero, false
}

func checkFXConsistency(in *Input) []Finding {
	var fs findings
	band := in.Tol.FXConsistency
	expected := fmt.Sprintf("<= %s%%", band.Max)
	for _, fa := range in.Funds {
		if fa.Currency == "" {
			continue
		}
		for _, p := range fa.Fund.AllPortfolios() {
			for _, pos := range p.Positions {
				local, ok := pos.Currency.Get()
				if !ok || local == fa.Currency {
					continue
				}
				rate, ok := rateBetween(pos.FXRates, local, fa.Currency)
				if !ok {
					continue
				}
				lv, okL := pos.TotalValue.In(local)
				fv, okF := pos.TotalValue.In(fa.Currency)
				if !okL || !okF {
					continue
				}
				converted := lv.Value().Mul(rate)
				pct, ok := relDiff(converted, fv.Value(), fv.Value())
				if !ok {
					continue
				}
				fs.add(band.Grade(pct), positionEntity(pos), fmtDec(converted, 2), expected,
					"%s x %s = %s %s against reported %s (%s%%)", lv, rate, fmtDec(converted, 2), fa.Currency, fv, fmtDec(pct, 2))
			}
		}
	}
	return fs
}
