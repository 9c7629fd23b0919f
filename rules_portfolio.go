package fundsxml

import (
	"fmt"
	"strings"
)

func portfolioRules() []Rule {
	return []Rule{
		{
			ID:          "portfolio.percentage-sum",
			Category:    CategoryPortfolio,
			Description: "Position percentages of a portfolio sum to 100.",
			Check:       checkPercentageSum,
		},
		{
			ID:          "portfolio.total-value",
			Category:    CategoryPortfolio,
			Description: "Position values of a portfolio sum to the TNA of its owner, in the fund currency.",
			Check:       checkPortfolioTotal,
		},
		{
			ID:          "portfolio.fund-currency-amount",
			Category:    CategoryPortfolio,
			Description: "Every position reports its value in the fund currency.",
			Check:       checkFundCurrencyAmount,
		},
		{
			ID:          "portfolio.mixed-sign",
			Category:    CategoryPortfolio,
			Description: "The currency amounts of one position all have the same sign.",
			Check:       checkMixedSign,
		},
		{
			ID:          "portfolio.orphaned-position",
			Category:    CategoryPortfolio,
			Description: "Every position references an asset of the master data.",
			Check:       checkOrphanedPositions,
		},
		{
			ID:          "portfolio.unused-asset",
			Category:    CategoryPortfolio,
			Description: "Every asset of the master data is referenced by a position.",
			Check:       checkUnusedAssets,
		},
		{
			ID:          "portfolio.duplicate-position",
			Category:    CategoryPortfolio,
			Description: "A portfolio holds an asset in a single position.",
			Check:       checkDuplicatePositions,
		},
	}
}

func checkPercentageSum(in *Input) []Finding {
	var fs findings
	band := in.Tol.PercentageSum
	expected := fmt.Sprintf("%s ± %s", band.Target, band.Max)
	for _, fa := range in.Funds {
		for _, pa := range fa.Portfolios {
			if pa.Positions == 0 || pa.PercentMissing == pa.Positions {
				continue
			}
			sev, diff := band.Grade(pa.PercentSum)
			var note string
			if pa.PercentMissing > 0 {
				note = fmt.Sprintf(", %d position(s) without percentage", pa.PercentMissing)
			}
			fs.add(sev, portfolioEntity(pa.Portfolio), pa.PercentSum.String(), expected,
				"percentages sum to %s%% (difference %s)%s", pa.PercentSum, diff, note)
		}
	}
	return fs
}

func checkPortfolioTotal(in *Input) []Finding {
	var fs findings
	for _, fa := range in.Funds {
		for _, pa := range fa.Portfolios {
			if pa.Positions == 0 {
				continue
			}
			p := pa.Portfolio
			var owner Amounts
			var what string
			if p.ShareClass != nil {
				owner, what = p.ShareClass.TotalNetAssetValue, "share class TNA"
			} else {
				owner, what = p.Fund.TotalNetAssetValue, "fund TNA"
			}
			tna, ok := owner.In(fa.Currency)
			if !ok {
				continue
			}
			diff := pa.Value.Sub(tna.Value()).Abs()
			sev := in.Tol.PortfolioTotal.Grade(diff)
			var note string
			if pa.ValueMissing > 0 {
				note = fmt.Sprintf(", %d position(s) without a %s amount", pa.ValueMissing, fa.Currency)
			}
			fs.add(sev, portfolioEntity(p), fmtDec(pa.Value, 2), fmt.Sprintf("%s ± %s", fmtDec(tna.Value(), 2), in.Tol.PortfolioTotal.Max),
				"positions sum to %s against %s %s (difference %s)%s", fmtDec(pa.Value, 2), what, tna, fmtDec(diff, 2), note)
		}
	}
	return fs
}

func checkFundCurrencyAmount(in *Input) []Finding {
	var fs findings
	for _, fa := range in.Funds {
		if fa.Currency == "" {
			continue
		}
		for _, p := range fa.Fund.AllPortfolios() {
			for _, pos := range p.Positions {
				if _, ok := pos.TotalValue.In(fa.Currency); ok {
					continue
				}
				got := strings.Join(pos.TotalValue.Currencies(), ", ")
				if got == "" {
					got = "none"
				}
				fs.add(SeverityWarning, positionEntity(pos), got, fa.Currency,
					"no value in the fund currency %s (has: %s), excluded from fund currency sums", fa.Currency, got)
			}
		}
	}
	fs.passIfEmpty("every position has a value in its fund currency")
	return fs
}

func checkMixedSign(in *Input) []Finding {
	var fs findings
	for _, pos := range in.positions() {
		if !pos.TotalValue.MixedSigns() {
			continue
		}
		var parts []string
		for _, m := range pos.TotalValue {
			parts = append(parts, m.Value().String()+" "+m.Currency())
		}
		fs.warn(positionEntity(pos), "amounts have different signs: %s", strings.Join(parts, ", "))
	}
	fs.passIfEmpty("no position mixes signs")
	return fs
}

func checkOrphanedPositions(in *Input) []Finding {
	var fs findings
	positions := in.positions()
	for _, pos := range in.Index.Orphans(positions) {
		id, ok := pos.UniqueID.Get()
		if !ok || id == "" {
			fs.fail(positionEntity(pos), "position has no UniqueID")
			continue
		}
		fs.add(SeverityError, positionEntity(pos), id, "", "orphaned: UniqueID %q has no asset in the master data", id)
	}
	if len(positions) > 0 {
		fs.passIfEmpty("all %d position(s) resolve to an asset", len(positions))
	}
	return fs
}

func checkUnusedAssets(in *Input) []Finding {
	var fs findings
	for _, a := range in.Index.Unused(in.Doc.Assets, in.positions()) {
		fs.warn(assetEntity(a), "unused: no position references asset %q", a.UniqueID.Or(""))
	}
	if len(in.Doc.Assets) > 0 {
		fs.passIfEmpty("every asset is referenced")
	}
	return fs
}

func checkDuplicatePositions(in *Input) []Finding {
	var fs findings
	for _, fa := range in.Funds {
		for _, p := range fa.Fund.AllPortfolios() {
			first := make(map[string]*Position)
			for _, pos := range p.Positions {
				id, ok := pos.UniqueID.Get()
				if !ok || id == "" {
					continue
				}
				if prev, dup := first[id]; dup {
					fs.warn(positionEntity(pos), "UniqueID %q is already held by %s", id, prev.Key)
					continue
				}
				first[id] = pos
			}
		}
	}
	fs.passIfEmpty("no portfolio holds an asset twice")
	return fs
}
