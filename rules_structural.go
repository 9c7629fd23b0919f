package fundsxml

import "strings"

func structuralRules() []Rule {
	return []Rule{
		{
			ID:          "structure.control-data",
			Category:    CategoryStructural,
			Description: "The ControlData header section is present.",
			Check:       checkControlData,
		},
		{
			ID:          "structure.funds",
			Category:    CategoryStructural,
			Description: "The Funds section is present and holds at least one Fund.",
			Check:       checkFundsSection,
		},
		{
			ID:          "structure.assets",
			Category:    CategoryStructural,
			Description: "Asset master data is present (Assets or AssetMasterData).",
			Check:       checkAssetsSection,
		},
		{
			ID:          "structure.content-date",
			Category:    CategoryStructural,
			Description: "ControlData carries a readable ContentDate.",
			Check:       checkContentDatePresent,
		},
		{
			ID:          "structure.document-id",
			Category:    CategoryStructural,
			Description: "ControlData carries a UniqueDocumentID.",
			Check:       checkDocumentID,
		},
		{
			ID:          "structure.malformed-value",
			Category:    CategoryStructural,
			Description: "Every number and date in the document can be read.",
			Check:       checkMalformedValues,
		},
	}
}

func checkControlData(in *Input) []Finding {
	var fs findings
	if in.Doc.ControlData == nil {
		fs.fail(documentEntity(), "ControlData section is missing")
		return fs
	}
	fs.pass(documentEntity(), "ControlData section is present")
	return fs
}

func checkFundsSection(in *Input) []Finding {
	var fs findings
	switch {
	case !in.Doc.HasFunds:
		fs.fail(documentEntity(), "Funds section is missing")
	case len(in.Doc.Funds) == 0:
		fs.warn(documentEntity(), "Funds section holds no Fund")
	default:
		fs.pass(documentEntity(), "%d fund(s)", len(in.Doc.Funds))
	}
	return fs
}

func checkAssetsSection(in *Input) []Finding {
	var fs findings
	if in.Doc.HasAssets {
		fs.pass(documentEntity(), "%d asset(s) in %s", len(in.Doc.Assets), strings.Join(in.Doc.AssetSections, ", "))
		return fs
	}
	n := len(in.positions())
	if n > 0 {
		fs.fail(documentEntity(), "asset master data is missing while %d position(s) reference assets", n)
		return fs
	}
	fs.warn(documentEntity(), "asset master data is missing")
	return fs
}

func checkContentDatePresent(in *Input) []Finding {
	var fs findings
	cd := in.Doc.ControlData
	if cd == nil {
		return nil // reported by structure.control-data
	}
	d, ok := cd.ContentDate.Get()
	if !ok {
		fs.fail(documentEntity(), "ContentDate is missing or unreadable")
		return fs
	}
	fs.pass(documentEntity(), "content date %s", d)
	return fs
}

func checkDocumentID(in *Input) []Finding {
	var fs findings
	cd := in.Doc.ControlData
	if cd == nil {
		return nil
	}
	if !nonEmpty(cd.UniqueDocumentID) {
		fs.warn(documentEntity(), "UniqueDocumentID is missing")
		return fs
	}
	fs.pass(documentEntity(), "document %s", cd.UniqueDocumentID.Or(""))
	return fs
}

func checkMalformedValues(in *Input) []Finding {
	var fs findings
	for _, issue := range in.Doc.Issues {
		e := Entity{Kind: KindDocument, Key: issue.Path}
		fs.add(SeverityWarning, e, issue.Value, "", "cannot read %q: %v", issue.Value, issue.Err)
	}
	fs.passIfEmpty("every value is readable")
	return fs
}
