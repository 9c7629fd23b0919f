package fundsxml

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/etnz/fundsxml/date"
	"github.com/google/go-cmp/cmp"
)

func TestDecodeFile(t *testing.T) {
	doc := decodeFile(t, "testdata/fund.xml")

	cd := doc.ControlData
	if cd == nil {
		t.Fatal("ControlData is nil")
	}
	if got, want := cd.UniqueDocumentID.Or(""), "FXML-2024-0001"; got != want {
		t.Errorf("UniqueDocumentID = %q, want %q", got, want)
	}
	if got, want := cd.ContentDate.Or(date.Date{}), date.New(2024, 1, 1); got != want {
		t.Errorf("ContentDate = %v, want %v", got, want)
	}
	if got, want := cd.DocumentGenerated.Or(date.Date{}), date.New(2024, 1, 3); got != want {
		t.Errorf("DocumentGenerated = %v, want %v", got, want)
	}
	if got, want := cd.DataSupplier.Short.Or(""), "EXA"; got != want {
		t.Errorf("DataSupplier.Short = %q, want %q", got, want)
	}

	if len(doc.Funds) != 1 {
		t.Fatalf("len(Funds) = %d, want 1", len(doc.Funds))
	}
	f := doc.Funds[0]
	if got, want := f.Key, "Fund[1]"; got != want {
		t.Errorf("Fund.Key = %q, want %q", got, want)
	}
	tna, ok := f.TNA()
	if !ok || !tna.Equal(EUR(1000000)) {
		t.Errorf("Fund.TNA() = %v, %v, want %v", tna, ok, EUR(1000000))
	}
	if got, want := f.TotalNetAssetValue.Currencies(), []string{"EUR", "USD"}; !cmp.Equal(got, want) {
		t.Errorf("TNA currencies mismatch (-got +want):\n%s", cmp.Diff(got, want))
	}
	if got, want := len(f.ShareClasses), 2; got != want {
		t.Fatalf("len(ShareClasses) = %d, want %d", got, want)
	}
	sc := f.ShareClasses[1]
	if got, want := sc.Key, "Fund[1]/ShareClass[2]"; got != want {
		t.Errorf("ShareClass.Key = %q, want %q", got, want)
	}
	if got := sc.NavPrice.Or(D(0)); !got.Equal(D(50)) {
		t.Errorf("NavPrice = %v, want 50", got)
	}
	if got := sc.SharesOutstanding.Or(D(0)); !got.Equal(D(8000)) {
		t.Errorf("SharesOutstanding = %v, want 8000", got)
	}

	positions := doc.Positions()
	if got, want := len(positions), 4; got != want {
		t.Fatalf("len(Positions) = %d, want %d", got, want)
	}
	usd := positions[2]
	if got, want := usd.Key, "Fund[1]/Portfolio[1]/Position[3]"; got != want {
		t.Errorf("Position.Key = %q, want %q", got, want)
	}
	if got, want := usd.FXRates, []FXRate{{From: "USD", To: "EUR", Rate: D(0.921659)}}; len(got) != 1 || got[0].From != want[0].From || got[0].To != want[0].To || !got[0].Rate.Equal(want[0].Rate) {
		t.Errorf("FXRates = %v, want %v", got, want)
	}

	if got, want := doc.AssetSections, []string{AssetsSection}; !cmp.Equal(got, want) {
		t.Errorf("AssetSections mismatch (-got +want):\n%s", cmp.Diff(got, want))
	}
	if got, want := len(doc.Assets), 4; got != want {
		t.Fatalf("len(Assets) = %d, want %d", got, want)
	}
	bond, ok := doc.Assets[1].Bond()
	if !ok {
		t.Fatalf("Assets[1] has no bond details")
	}
	if got, want := bond.MaturityDate.Or(date.Date{}), date.New(2026, 2, 15); got != want {
		t.Errorf("MaturityDate = %v, want %v", got, want)
	}
	if got, want := doc.Assets[3].Type, Account; got != want {
		t.Errorf("Assets[3].Type = %v, want %v", got, want)
	}
	acc, ok := doc.Assets[3].Details.(*AccountDetails)
	if !ok || acc.CounterpartyBIC.Or("") != "DEUTDEFF" {
		t.Errorf("Assets[3].Details = %#v, want an account with BIC DEUTDEFF", doc.Assets[3].Details)
	}
	if len(doc.Issues) != 0 {
		t.Errorf("Issues = %v, want none", doc.Issues)
	}
}

func TestDecodeAssetMasterData(t *testing.T) {
	doc := decodeFile(t, "testdata/master_data.xml")
	if !doc.HasAssets {
		t.Fatal("HasAssets = false, want true")
	}
	if got, want := doc.AssetSections, []string{AssetMasterDataSection}; !cmp.Equal(got, want) {
		t.Errorf("AssetSections mismatch (-got +want):\n%s", cmp.Diff(got, want))
	}
	if _, ok := doc.Index().Lookup("ID_2"); !ok {
		t.Error("Lookup(ID_2) not found")
	}
	// a bond without details still exposes an empty bond block
	bond, ok := doc.Assets[0].Bond()
	if !ok || bond.MaturityDate.Present() {
		t.Errorf("Assets[0].Bond() = %v, %v, want an empty bond block", bond, ok)
	}
	if got, want := len(doc.Issues), 1; got != want {
		t.Fatalf("len(Issues) = %d, want %d", got, want)
	}
	if got, want := doc.Issues[0].Path, "Funds/Fund[1]/FundDynamicData/Portfolios/Portfolio[1]/Positions/Position[3]/TotalValue/Amount[1]"; got != want {
		t.Errorf("Issue.Path = %q, want %q", got, want)
	}
}

func TestDecodeBothAssetSections(t *testing.T) {
	xml := `<FundsXML4>
  <Assets><Asset><UniqueID>A</UniqueID><AssetType>EQ</AssetType></Asset></Assets>
  <AssetMasterData><Asset><UniqueID>B</UniqueID><AssetType>BO</AssetType></Asset></AssetMasterData>
</FundsXML4>`

	tests := []struct {
		name     string
		sections []string
		want     []string // UniqueIDs in merge order
	}{
		{"default", nil, []string{"A", "B"}},
		{"master data first", []string{AssetMasterDataSection, AssetsSection}, []string{"B", "A"}},
		{"assets only", []string{AssetsSection}, []string{"A"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := DecodeWith(strings.NewReader(xml), DecodeOptions{AssetSections: tt.sections})
			if err != nil {
				t.Fatalf("DecodeWith() error = %v", err)
			}
			var got []string
			for _, a := range doc.Assets {
				got = append(got, a.UniqueID.Or(""))
			}
			if !cmp.Equal(got, tt.want) {
				t.Errorf("assets mismatch (-got +want):\n%s", cmp.Diff(got, tt.want))
			}
			if got, want := doc.Assets[len(doc.Assets)-1].Key, fmt.Sprintf("Asset[%d]", len(tt.want)); got != want {
				t.Errorf("last asset key = %q, want %q", got, want)
			}
		})
	}
}

func TestDecodeFatal(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"prolog only", `<?xml version="1.0"?>`},
		{"not well formed", `<FundsXML4><ControlData></FundsXML4>`},
		{"wrong root", `<Portfolio></Portfolio>`},
		{"two roots", `<FundsXML4></FundsXML4><FundsXML4></FundsXML4>`},
		{"trailing garbage", `<FundsXML4></FundsXML4><`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("Decode() succeeded, want an error")
			}
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Errorf("Decode() error = %T %v, want a *ParseError", err, err)
			}
		})
	}
}

func TestDecodeMissingSections(t *testing.T) {
	doc := decodeString(t, `<FundsXML4></FundsXML4>`)
	if doc.ControlData != nil {
		t.Error("ControlData is not nil")
	}
	if doc.HasFunds || doc.HasAssets {
		t.Errorf("HasFunds = %v, HasAssets = %v, want false, false", doc.HasFunds, doc.HasAssets)
	}
	if _, ok := doc.ContentDate(); ok {
		t.Error("ContentDate() found a date")
	}
}

func TestDecodeAbsentVersusEmpty(t *testing.T) {
	doc := decodeString(t, wrap(`
<Fund><Currency>EUR</Currency><Identifiers><LEI></LEI></Identifiers></Fund>
<Fund><Currency>EUR</Currency></Fund>`, ``))

	lei, ok := doc.Funds[0].LEI.Get()
	if !ok || lei != "" {
		t.Errorf("Funds[0].LEI = %q, %v, want present and empty", lei, ok)
	}
	if doc.Funds[1].LEI.Present() {
		t.Error("Funds[1].LEI is present, want absent")
	}
}

func TestDecodeMalformedValues(t *testing.T) {
	doc := decodeString(t, wrap(`
<Fund>
  <Currency>EUR</Currency>
  <FundStaticData><InceptionDate>2010-13-45</InceptionDate></FundStaticData>
  <FundDynamicData><Portfolios><Portfolio><Positions>
    <Position><UniqueID>A</UniqueID><TotalPercentage>ten</TotalPercentage></Position>
  </Positions></Portfolio></Portfolios></FundDynamicData>
</Fund>`, `<Asset><UniqueID>A</UniqueID><AssetType>EQ</AssetType></Asset>`))

	var paths []string
	for _, issue := range doc.Issues {
		paths = append(paths, issue.Path)
	}
	want := []string{
		"Funds/Fund[1]/FundStaticData/InceptionDate",
		"Funds/Fund[1]/FundDynamicData/Portfolios/Portfolio[1]/Positions/Position[1]/TotalPercentage",
	}
	if !cmp.Equal(paths, want) {
		t.Errorf("issue paths mismatch (-got +want):\n%s", cmp.Diff(paths, want))
	}
	if doc.Funds[0].InceptionDate.Present() {
		t.Error("a malformed InceptionDate is present")
	}
	if doc.Positions()[0].Percentage.Present() {
		t.Error("a malformed TotalPercentage is present")
	}
}

func TestDecodePicksContentDateValues(t *testing.T) {
	doc := decodeString(t, wrap(`
<Fund>
  <Currency>EUR</Currency>
  <FundDynamicData><TotalAssetValues>
    <TotalAssetValue><NavDate>2023-12-31</NavDate><TotalNetAssetValue><Amount ccy="EUR">90</Amount></TotalNetAssetValue></TotalAssetValue>
    <TotalAssetValue><NavDate>2024-01-01</NavDate><TotalNetAssetValue><Amount ccy="EUR">100</Amount></TotalNetAssetValue></TotalAssetValue>
  </TotalAssetValues></FundDynamicData>
</Fund>`, ``))

	tna, ok := doc.Funds[0].TNA()
	if !ok || !tna.Equal(EUR(100)) {
		t.Errorf("TNA() = %v, %v, want %v", tna, ok, EUR(100))
	}
	if got, want := doc.Funds[0].NavDate.Or(date.Date{}), date.New(2024, 1, 1); got != want {
		t.Errorf("NavDate = %v, want %v", got, want)
	}
}

func TestDecodeBondDetailsMismatch(t *testing.T) {
	doc := decodeString(t, wrap(`<Fund><Currency>EUR</Currency></Fund>`, `
<Asset><UniqueID>A</UniqueID><AssetType>BO</AssetType><AssetDetails><Equity><Issuer><Name>X</Name></Issuer></Equity></AssetDetails></Asset>
<Asset><UniqueID>B</UniqueID><AssetType>EQ</AssetType><AssetDetails><Bond><MaturityDate>2030-01-01</MaturityDate></Bond></AssetDetails></Asset>
<Asset><UniqueID>C</UniqueID><AssetType>BO</AssetType></Asset>
<Asset><UniqueID>D</UniqueID><AssetType>BO</AssetType><AssetDetails><Bond><MaturityDate>2030-01-01</MaturityDate></Bond></AssetDetails></Asset>`))

	tests := []struct {
		key    string
		isBond bool
	}{
		{"Asset[1]", false},
		{"Asset[2]", false},
		{"Asset[3]", true},
		{"Asset[4]", true},
	}
	for i, tt := range tests {
		a := doc.Assets[i]
		if a.Key != tt.key {
			t.Fatalf("Assets[%d].Key = %q, want %q", i, a.Key, tt.key)
		}
		if got := a.IsBond(); got != tt.isBond {
			t.Errorf("%s.IsBond() = %v, want %v", tt.key, got, tt.isBond)
		}
	}

	var paths []string
	for _, issue := range doc.Issues {
		paths = append(paths, issue.Path)
	}
	want := []string{"Assets/Asset[1]/AssetDetails", "Assets/Asset[2]/AssetDetails"}
	if !cmp.Equal(paths, want) {
		t.Errorf("issue paths mismatch (-got +want):\n%s", cmp.Diff(paths, want))
	}
}

func TestDecodeZonedDates(t *testing.T) {
	doc := decodeString(t, strings.ReplaceAll(wrap(`<Fund><Currency>EUR</Currency></Fund>`,
		`<Asset><UniqueID>A</UniqueID><AssetType>BO</AssetType><AssetDetails><Bond><MaturityDate>2030-01-01+01:00</MaturityDate></Bond></AssetDetails></Asset>`),
		"<ContentDate>2024-01-01</ContentDate>", "<ContentDate>2024-01-01Z</ContentDate>"))

	if len(doc.Issues) != 0 {
		t.Fatalf("Issues = %v, want none", doc.Issues)
	}
	if got, ok := doc.ContentDate(); !ok || got != date.New(2024, 1, 1) {
		t.Errorf("ContentDate() = %v, %v, want 2024-01-01", got, ok)
	}
	b, ok := doc.Assets[0].BondSchedule()
	if !ok || b.MaturityDate.Or(date.Date{}) != date.New(2030, 1, 1) {
		t.Errorf("MaturityDate = %v, want 2030-01-01", b)
	}
}
