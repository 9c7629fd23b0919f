package fundsxml

import "fmt"

func navRules() []Rule {
	return []Rule{
		{
			ID:          "nav.fund-tna",
			Category:    CategoryNAV,
			Description: "Each fund reports its total net asset value in the fund currency.",
			Check:       checkFundTNA,
		},
		{
			ID:          "nav.share-class-sum",
			Category:    CategoryNAV,
			Description: "The fund TNA equals the sum of its share class TNAs, in the fund currency.",
			Check:       checkShareClassSum,
		},
		{
			ID:          "nav.price-times-shares",
			Category:    CategoryNAV,
			Description: "A share class NAV price times its shares outstanding matches its reported TNA.",
			Check:       checkPriceTimesShares,
		},
		{
			ID:          "nav.share-class-ratio",
			Category:    CategoryNAV,
			Description: "A share class reported ratio matches its TNA over the fund TNA.",
			Check:       checkShareClassRatio,
		},
	}
}

// bandText describes a graded band for the expected figure of a finding.
func bandText(b Band, unit string) string {
	return fmt.Sprintf("< %s%s pass, < %s%s warning", b.Pass, unit, b.Warn, unit)
}

func checkFundTNA(in *Input) []Finding {
	var fs findings
	for _, f := range in.Doc.Funds {
		ccy, ok := f.Currency.Get()
		switch {
		case !ok || ccy == "":
			fs.fail(fundEntity(f), "fund currency is missing")
		default:
			tna, ok := f.TNA()
			if !ok {
				fs.add(SeverityError, fundEntity(f), "", ccy, "no TotalNetAssetValue in the fund currency %s", ccy)
				continue
			}
			fs.add(SeverityPass, fundEntity(f), tna.Value().String(), ccy, "fund TNA %s", tna)
		}
	}
	return fs
}

func checkShareClassSum(in *Input) []Finding {
	var fs findings
	tol := in.Tol.NAV
	for i, f := range in.Doc.Funds {
		fa := in.Funds[i]
		if len(f.ShareClasses) == 0 {
			continue
		}
		tna, ok := f.TNA()
		if !ok {
			continue // reported by nav.fund-tna
		}
		if fa.ShareClassMissing > 0 {
			fs.warn(fundEntity(f), "cannot reconcile: %d of %d share class(es) have no TNA in %s",
				fa.ShareClassMissing, len(f.ShareClasses), fa.Currency)
			continue
		}
		sum := fa.ShareClassTNA
		diff := sum.Sub(tna.Value()).Abs()
		measured := fmtDec(sum, 2)

		if tol.Mode == NAVRelative && tna.Value().IsPositive() {
			pct, _ := relDiff(sum, tna.Value(), tna.Value())
			sev := tol.Relative.Grade(pct)
			fs.add(sev, fundEntity(f), measured, bandText(tol.Relative, "%"),
				"share classes sum to %s against fund TNA %s: %s (%s%%)", fmtDec(sum, 2), tna, navVerdict(sev), fmtDec(pct, 4))
			continue
		}
		sev := tol.Absolute.Grade(diff)
		fs.add(sev, fundEntity(f), measured, bandText(tol.Absolute, ""),
			"share classes sum to %s against fund TNA %s: %s (difference %s)", fmtDec(sum, 2), tna, navVerdict(sev), fmtDec(diff, 2))
	}
	return fs
}

func navVerdict(sev Severity) string {
	switch sev {
	case SeverityPass:
		return "match"
	case SeverityWarning:
		return "rounding difference"
	default:
		return "mismatch"
	}
}

// shareClassCurrency returns the currency a share class is priced in,
// defaulting to the fund currency.
func shareClassCurrency(sc *ShareClass) string {
	if ccy, ok := sc.Currency.Get(); ok && ccy != "" {
		return ccy
	}
	return sc.Fund.Currency.Or("")
}

func checkPriceTimesShares(in *Input) []Finding {
	var fs findings
	for _, f := range in.Doc.Funds {
		for _, sc := range f.ShareClasses {
			price, okP := sc.NavPrice.Get()
			shares, okS := sc.SharesOutstanding.Get()
			if !okP || !okS {
				continue
			}
			ccy := shareClassCurrency(sc)
			tna, ok := sc.TotalNetAssetValue.In(ccy)
			if !ok {
				continue
			}
			computed := price.Mul(shares)
			pct, ok := relDiff(computed, tna.Value(), tna.Value())
			if !ok {
				continue
			}
			sev := in.Tol.PriceTimesShares.Grade(pct)
			fs.add(sev, shareClassEntity(sc), fmtDec(computed, 2), bandText(in.Tol.PriceTimesShares, "%"),
				"%s x %s = %s against reported TNA %s (%s%%)", price, shares, fmtDec(computed, 2), tna, fmtDec(pct, 2))
		}
	}
	return fs
}

func checkShareClassRatio(in *Input) []Finding {
	var fs findings
	for _, f := range in.Doc.Funds {
		fundTNA, ok := f.TNA()
		if !ok || fundTNA.IsZero() {
			continue
		}
		for _, sc := range f.ShareClasses {
			ratio, ok := sc.Ratio.Get()
			if !ok {
				continue
			}
			tna, ok := sc.TotalNetAssetValue.In(fundTNA.Currency())
			if !ok {
				continue
			}
			computed := tna.Value().Div(fundTNA.Value()).Mul(hundred)
			diff := ratio.Sub(computed).Abs()
			sev := in.Tol.ShareClassRatio.Grade(diff)
			fs.add(sev, shareClassEntity(sc), ratio.String(), fmtDec(computed, 4),
				"reported ratio %s%% against computed %s%%", ratio, fmtDec(computed, 4))
		}
	}
	return fs
}

