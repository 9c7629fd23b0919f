package fundsxml

import (
	"sort"

	"github.com/etnz/fundsxml/date"
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// unresolvedKey groups positions whose asset is not in the master data.
const unresolvedKey = "(unresolved)"

// SumIn adds, for every amount set, the amount tagged with ccy. A set with no
// amount in ccy contributes zero and is counted in missing.
func SumIn(sets []Amounts, ccy string) (sum decimal.Decimal, missing int) {
	for _, a := range sets {
		m, ok := a.In(ccy)
		if !ok {
			missing++
			continue
		}
		sum = sum.Add(m.Value())
	}
	return sum, missing
}

// Group is one entry of a count distribution.
type Group struct {
	Key   string       `json:"key"`
	Count int          `json:"count"`
	Share Opt[Percent] `json:"share"` // Count / Total * 100
}

// Distribution counts values by key. Groups are in first-seen order.
type Distribution struct {
	Total  int     `json:"total"`
	Groups []Group `json:"groups"`
}

// GroupCount builds the distribution of keys.
func GroupCount(keys []string) Distribution {
	d := Distribution{Total: len(keys)}
	pos := make(map[string]int)
	for _, k := range keys {
		i, ok := pos[k]
		if !ok {
			i = len(d.Groups)
			pos[k] = i
			d.Groups = append(d.Groups, Group{Key: k})
		}
		d.Groups[i].Count++
	}
	total := decimal.NewFromInt(int64(d.Total))
	for i := range d.Groups {
		if pct, ok := PercentOf(decimal.NewFromInt(int64(d.Groups[i].Count)), total); ok {
			d.Groups[i].Share = Some(pct)
		}
	}
	return d
}

// SortByCount returns a copy ordered by count descending, ties in first-seen order.
func (d Distribution) SortByCount() Distribution {
	groups := append([]Group(nil), d.Groups...)
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Count > groups[j].Count })
	return Distribution{Total: d.Total, Groups: groups}
}

// ValueGroup is one entry of a value breakdown.
type ValueGroup struct {
	Key   string          `json:"key"`
	Count int             `json:"count"`
	Value decimal.Decimal `json:"value"`
	Share Opt[Percent]    `json:"share"` // Value / Σ Value * 100
}

// GroupSum adds values by key. Groups are in first-seen order.
func GroupSum(keys []string, values []decimal.Decimal) []ValueGroup {
	var groups []ValueGroup
	pos := make(map[string]int)
	var total decimal.Decimal
	for i, k := range keys {
		j, ok := pos[k]
		if !ok {
			j = len(groups)
			pos[k] = j
			groups = append(groups, ValueGroup{Key: k})
		}
		groups[j].Count++
		groups[j].Value = groups[j].Value.Add(values[i])
		total = total.Add(values[i])
	}
	for i := range groups {
		if pct, ok := PercentOf(groups[i].Value, total); ok {
			groups[i].Share = Some(pct)
		}
	}
	return groups
}

// Holding is a position with its resolved asset (nil for an orphan).
type Holding struct {
	Position *Position
	Asset    *Asset
}

func (h Holding) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("position", h.Position.Key)
	w.Append("uniqueId", h.Position.UniqueID)
	if h.Asset != nil {
		w.Append("name", h.Asset.Name)
		w.Append("assetType", h.Asset.TypeCode)
	}
	w.Append("percentage", h.Position.Percentage)
	w.Append("value", h.Position.TotalValue)
	return w.MarshalJSON()
}

// Holdings resolves positions against the asset index.
func Holdings(positions []*Position, idx *AssetIndex) []Holding {
	hs := make([]Holding, 0, len(positions))
	for _, p := range positions {
		h := Holding{Position: p}
		if id, ok := p.UniqueID.Get(); ok {
			h.Asset, _ = idx.Lookup(id)
		}
		hs = append(hs, h)
	}
	return hs
}

// TopHoldings returns the n largest holdings by percentage, descending. Ties
// keep document order and holdings without percentage come last.
func TopHoldings(hs []Holding, n int) []Holding {
	sorted := append([]Holding(nil), hs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		pi, oki := sorted[i].Position.Percentage.Get()
		pj, okj := sorted[j].Position.Percentage.Get()
		if oki != okj {
			return oki
		}
		return oki && pi.GreaterThan(pj)
	})
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// Concentration summarizes how weights are spread among holdings.
type Concentration struct {
	Count  int             `json:"count"` // holdings with a percentage
	Top5   decimal.Decimal `json:"top5"`
	Top10  decimal.Decimal `json:"top10"`
	HHI    float64         `json:"hhi"` // Σ w², w in percent (0..10000)
	Mean   float64         `json:"mean"`
	StdDev float64         `json:"stdDev"`
}

// ConcentrationOf computes the concentration of hs.
func ConcentrationOf(hs []Holding) Concentration {
	ranked := TopHoldings(hs, -1)
	var c Concentration
	var weights []float64
	for i, h := range ranked {
		p, ok := h.Position.Percentage.Get()
		if !ok {
			break // ranked puts the missing ones last
		}
		if i < 5 {
			c.Top5 = c.Top5.Add(p)
		}
		if i < 10 {
			c.Top10 = c.Top10.Add(p)
		}
		weights = append(weights, p.InexactFloat64())
	}
	c.Count = len(weights)
	if c.Count == 0 {
		return c
	}
	c.HHI = floats.Dot(weights, weights)
	c.Mean = stat.Mean(weights, nil)
	if c.Count > 1 {
		c.StdDev = stat.StdDev(weights, nil)
	}
	return c
}

// distinct counts the distinct non-empty values.
func distinct(values []string) int {
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		if v != "" {
			seen[v] = true
		}
	}
	return len(seen)
}

// PortfolioAggregates are the figures of one portfolio.
type PortfolioAggregates struct {
	Portfolio      *Portfolio      `json:"-"`
	Key            string          `json:"key"`
	Positions      int             `json:"positions"`
	PercentSum     decimal.Decimal `json:"percentSum"`
	PercentMissing int             `json:"percentMissing"`
	Value          decimal.Decimal `json:"value"` // in fund currency
	ValueMissing   int             `json:"valueMissing"`
}

// FundAggregates are the derived figures the rules and reports of a fund need.
type FundAggregates struct {
	Fund     *Fund  `json:"-"`
	Key      string `json:"key"`
	Name     string `json:"name,omitempty"`
	Currency string `json:"currency,omitempty"`

	TNA Opt[Money] `json:"tna"`

	ShareClassTNA     decimal.Decimal `json:"shareClassTna"`
	ShareClassMissing int             `json:"shareClassMissing"`

	// PositionValue sums the fund level portfolios only.
	PositionValue   decimal.Decimal `json:"positionValue"`
	PositionMissing int             `json:"positionMissing"`

	Portfolios []PortfolioAggregates `json:"portfolios"`

	ByAssetType      Distribution `json:"byAssetType"`
	ValueByAssetType []ValueGroup `json:"valueByAssetType"`
	ValueByCurrency  []ValueGroup `json:"valueByCurrency"`
	Exposures        []ValueGroup `json:"exposures"`

	TopHoldings   []Holding     `json:"topHoldings"`
	Concentration Concentration `json:"concentration"`

	Currencies int    `json:"currencies"` // distinct position currencies
	AssetTypes int    `json:"assetTypes"` // distinct asset types held
	Ladder     Ladder `json:"ladder"`
}

// Aggregate computes the figures of fund f.
func Aggregate(doc *Document, f *Fund, topN int) *FundAggregates {
	ccy := f.Currency.Or("")
	fa := &FundAggregates{
		Fund:     f,
		Key:      f.Key,
		Name:     f.OfficialName.Or(""),
		Currency: ccy,
	}
	if tna, ok := f.TNA(); ok {
		fa.TNA = Some(tna)
	}

	scTNA := make([]Amounts, 0, len(f.ShareClasses))
	for _, sc := range f.ShareClasses {
		scTNA = append(scTNA, sc.TotalNetAssetValue)
	}
	fa.ShareClassTNA, fa.ShareClassMissing = SumIn(scTNA, ccy)

	var positions []*Position
	for _, p := range f.AllPortfolios() {
		pa := PortfolioAggregates{Portfolio: p, Key: p.Key, Positions: len(p.Positions)}
		values := make([]Amounts, 0, len(p.Positions))
		for _, pos := range p.Positions {
			values = append(values, pos.TotalValue)
			if pct, ok := pos.Percentage.Get(); ok {
				pa.PercentSum = pa.PercentSum.Add(pct)
			} else {
				pa.PercentMissing++
			}
		}
		pa.Value, pa.ValueMissing = SumIn(values, ccy)
		if p.ShareClass == nil {
			fa.PositionValue = fa.PositionValue.Add(pa.Value)
			fa.PositionMissing += pa.ValueMissing
		}
		fa.Portfolios = append(fa.Portfolios, pa)
		positions = append(positions, p.Positions...)
	}

	hs := Holdings(positions, doc.Index())
	var typeKeys, currencyKeys, valueTypeKeys, valueCurrencyKeys, exposureKeys []string
	var typeValues, currencyValues, exposureValues []decimal.Decimal
	var bonds []Holding
	for _, h := range hs {
		key := unresolvedKey
		if h.Asset != nil {
			key = h.Asset.TypeCode.Or(unresolvedKey)
			if h.Asset.IsBond() {
				bonds = append(bonds, h)
			}
		}
		typeKeys = append(typeKeys, key)
		pccy := h.Position.Currency.Or("")
		currencyKeys = append(currencyKeys, pccy)
		if v, ok := h.Position.TotalValue.In(ccy); ok {
			valueTypeKeys = append(valueTypeKeys, key)
			typeValues = append(typeValues, v.Value())
			valueCurrencyKeys = append(valueCurrencyKeys, pccy)
			currencyValues = append(currencyValues, v.Value())
		}
		for _, e := range h.Position.Exposures {
			if v, ok := e.Value.Get(); ok {
				exposureKeys = append(exposureKeys, e.Type.Or(""))
				exposureValues = append(exposureValues, v)
			}
		}
	}
	fa.ByAssetType = GroupCount(typeKeys)
	fa.ValueByAssetType = GroupSum(valueTypeKeys, typeValues)
	fa.ValueByCurrency = GroupSum(valueCurrencyKeys, currencyValues)
	fa.Exposures = GroupSum(exposureKeys, exposureValues)
	fa.TopHoldings = TopHoldings(hs, topN)
	fa.Concentration = ConcentrationOf(hs)
	fa.Currencies = distinct(currencyKeys)
	var resolvedTypes []string
	for _, k := range typeKeys {
		if k != unresolvedKey {
			resolvedTypes = append(resolvedTypes, k)
		}
	}
	fa.AssetTypes = distinct(resolvedTypes)

	var content Opt[date.Date]
	if doc.ControlData != nil {
		content = doc.ControlData.ContentDate
	}
	fa.Ladder = NewLadder(content, bonds, ccy)
	return fa
}
