package fundsxml

func assetRules() []Rule {
	return []Rule{
		{
			ID:          "asset.duplicate-id",
			Category:    CategoryAsset,
			Description: "Every asset has a UniqueID, and no two assets share one.",
			Check:       checkAssetIDs,
		},
		{
			ID:          "asset.type",
			Category:    CategoryAsset,
			Description: "Every asset has a known AssetType.",
			Check:       checkAssetTypes,
		},
		{
			ID:          "asset.bond-dates",
			Category:    CategoryAsset,
			Description: "A bond is issued before it matures, and pays its first coupon after issue.",
			Check:       checkBondDates,
		},
		{
			ID:          "asset.matured",
			Category:    CategoryAsset,
			Description: "No held bond matured before the content date.",
			Check:       checkMaturedBonds,
		},
		{
			ID:          "asset.maturity-missing",
			Category:    CategoryAsset,
			Description: "Every bond has a MaturityDate.",
			Check:       checkMaturityMissing,
		},
	}
}

func checkAssetIDs(in *Input) []Finding {
	var fs findings
	for _, a := range in.Doc.Assets {
		if !nonEmpty(a.UniqueID) {
			fs.fail(assetEntity(a), "asset has no UniqueID")
		}
	}
	for _, a := range in.Index.Duplicates() {
		first, _ := in.Index.Lookup(a.UniqueID.Or(""))
		fs.fail(assetEntity(a), "UniqueID %q is already used by %s", a.UniqueID.Or(""), first.Key)
	}
	if len(in.Doc.Assets) > 0 {
		fs.passIfEmpty("%d distinct UniqueID(s)", in.Index.Len())
	}
	return fs
}

func checkAssetTypes(in *Input) []Finding {
	var fs findings
	for _, a := range in.Doc.Assets {
		code, ok := a.TypeCode.Get()
		switch {
		case !ok || code == "":
			fs.fail(assetEntity(a), "AssetType is missing")
		case a.Type == UnknownAssetType:
			fs.add(SeverityError, assetEntity(a), code, "", "unknown AssetType %q", code)
		}
	}
	if len(in.Doc.Assets) > 0 {
		fs.passIfEmpty("every asset has a known type")
	}
	return fs
}

// bondAsset is a bond with its schedule.
type bondAsset struct {
	asset *Asset
	bond  *BondDetails
}

// bonds returns the bond assets.
func bonds(assets []*Asset) []bondAsset {
	var out []bondAsset
	for _, a := range assets {
		if b, ok := a.BondSchedule(); ok {
			out = append(out, bondAsset{asset: a, bond: b})
		}
	}
	return out
}

func checkBondDates(in *Input) []Finding {
	var fs findings
	all := bonds(in.Doc.Assets)
	for _, ba := range all {
		a, b := ba.asset, ba.bond
		issue, hasIssue := b.IssueDate.Get()
		if !hasIssue {
			continue
		}
		if maturity, ok := b.MaturityDate.Get(); ok && !issue.Before(maturity) {
			fs.add(SeverityError, assetEntity(a), maturity.String(), "after "+issue.String(),
				"matures on %s, not after its issue date %s", maturity, issue)
		}
		if coupon, ok := b.DateFirstCoupon.Get(); ok && coupon.Before(issue) {
			fs.add(SeverityError, assetEntity(a), coupon.String(), "on or after "+issue.String(),
				"first coupon on %s, before its issue date %s", coupon, issue)
		}
	}
	if len(all) > 0 {
		fs.passIfEmpty("bond dates are consistent")
	}
	return fs
}

func checkMaturedBonds(in *Input) []Finding {
	var fs findings
	content, ok := in.contentDate()
	if !ok {
		return nil
	}
	held := bonds(in.heldAssets())
	for _, ba := range held {
		a, b := ba.asset, ba.bond
		maturity, ok := b.MaturityDate.Get()
		if !ok || !maturity.Before(content) {
			continue
		}
		fs.add(SeverityWarning, assetEntity(a), maturity.String(), "on or after "+content.String(),
			"held bond matured on %s, %d day(s) before the content date", maturity, content.Sub(maturity))
	}
	if len(held) > 0 {
		fs.passIfEmpty("no held bond has matured")
	}
	return fs
}

func checkMaturityMissing(in *Input) []Finding {
	var fs findings
	all := bonds(in.Doc.Assets)
	for _, ba := range all {
		a, b := ba.asset, ba.bond
		if !b.MaturityDate.Present() {
			fs.warn(assetEntity(a), "bond has no MaturityDate, left out of the maturity ladder")
		}
	}
	if len(all) > 0 {
		fs.passIfEmpty("every bond has a maturity date")
	}
	return fs
}
