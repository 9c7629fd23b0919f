package fundsxml

import (
	"fmt"
	"strings"
)

// AssetType is the closed set of instrument kinds of the asset master data.
type AssetType int

const (
	UnknownAssetType AssetType = iota
	Equity
	Bond
	ShareClassAsset
	Warrant
	Certificate
	Option
	Future
	FXForward
	Swap
	Repo
	FixedTimeDeposit
	CallMoney
	Account
	Fee
	RealEstate
	REIT
	Loan
	Right
	Commodity
	PrivateEquity
	CommercialPaper
	Index
	Crypto
)

// assetTypeNames and assetTypeCodes are indexed by AssetType.
var assetTypeNames = [...]string{
	"Unknown", "Equity", "Bond", "ShareClass", "Warrant", "Certificate", "Option", "Future",
	"FXForward", "Swap", "Repo", "FixedTimeDeposit", "CallMoney", "Account", "Fee",
	"RealEstate", "REIT", "Loan", "Right", "Commodity", "PrivateEquity", "CommercialPaper",
	"Index", "Crypto",
}

var assetTypeCodes = [...]string{
	"", "EQ", "BO", "SC", "WA", "CE", "OP", "FU",
	"FX", "SW", "RP", "FT", "CM", "AC", "FE",
	"RE", "RT", "LO", "RI", "CO", "PE", "CP",
	"IN", "CR",
}

func (t AssetType) String() string {
	if t < 0 || int(t) >= len(assetTypeNames) {
		return "Unknown"
	}
	return assetTypeNames[t]
}

// Code returns the FundsXML two-letter code, or "" for UnknownAssetType.
func (t AssetType) Code() string {
	if t < 0 || int(t) >= len(assetTypeCodes) {
		return ""
	}
	return assetTypeCodes[t]
}

// AssetTypes returns every known asset type in declaration order.
func AssetTypes() []AssetType {
	types := make([]AssetType, 0, len(assetTypeNames)-1)
	for t := Equity; t <= Crypto; t++ {
		types = append(types, t)
	}
	return types
}

// ParseAssetType accepts either the long name (case-insensitive) or the
// two-letter code.
func ParseAssetType(s string) (AssetType, error) {
	s = strings.TrimSpace(s)
	for _, t := range AssetTypes() {
		if strings.EqualFold(s, t.String()) || strings.EqualFold(s, t.Code()) {
			return t, nil
		}
	}
	return UnknownAssetType, fmt.Errorf("unknown asset type: %q", s)
}
