package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/fundsxml"
	md "github.com/nao1215/markdown"
)

// HoldingsMarkdown renders the top holdings, breakdowns and concentration of
// every fund.
func HoldingsMarkdown(funds []*fundsxml.FundAggregates) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Holdings")
	for _, fa := range funds {
		doc.H2(fundTitle(fa))
		if tna, ok := fa.TNA.Get(); ok {
			doc.PlainText(fmt.Sprintf("Total net asset value: %s", tna))
		}

		if len(fa.TopHoldings) > 0 {
			doc.H3("Top Holdings")
			table := md.TableSet{
				Alignment: []md.TableAlignment{md.AlignRight, md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignRight, md.AlignRight},
				Header:    []string{"#", "UniqueID", "Name", "Type", "Weight", "Value"},
				Rows:      [][]string{},
			}
			for i, h := range fa.TopHoldings {
				name, typ := "(unresolved)", ""
				if h.Asset != nil {
					name, typ = h.Asset.Name.Or(""), h.Asset.TypeCode.Or("")
				}
				weight := ""
				if p, ok := h.Position.Percentage.Get(); ok {
					weight = p.StringFixed(2) + "%"
				}
				value := ""
				if v, ok := h.Position.TotalValue.In(fa.Currency); ok {
					value = v.String()
				}
				table.Rows = append(table.Rows, []string{
					fmt.Sprint(i + 1),
					h.Position.UniqueID.Or(""),
					escape(name),
					typ,
					weight,
					value,
				})
			}
			doc.Table(table)
		}

		valueTable(doc, "By Asset Type", "Type", fa.ValueByAssetType, fa.Currency)
		valueTable(doc, "By Currency", "Currency", fa.ValueByCurrency, fa.Currency)
		valueTable(doc, "Exposures", "Exposure", fa.Exposures, fa.Currency)

		c := fa.Concentration
		if c.Count > 0 {
			doc.H3("Concentration")
			doc.Table(md.TableSet{
				Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
				Header:    []string{"Measure", "Value"},
				Rows: [][]string{
					{"Weighted positions", fmt.Sprint(c.Count)},
					{"Top 5", c.Top5.StringFixed(2) + "%"},
					{"Top 10", c.Top10.StringFixed(2) + "%"},
					{"Herfindahl index", fmt.Sprintf("%.0f", c.HHI)},
					{"Mean weight", fmt.Sprintf("%.2f%%", c.Mean)},
					{"Weight std. dev.", fmt.Sprintf("%.2f", c.StdDev)},
				},
			})
		}
	}
	return doc.String()
}

// valueTable renders a value breakdown, nothing when empty.
func valueTable(doc *md.Markdown, title, key string, groups []fundsxml.ValueGroup, ccy string) {
	if len(groups) == 0 {
		return
	}
	doc.H3(title)
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight},
		Header:    []string{key, "Positions", "Value", "Share"},
		Rows:      [][]string{},
	}
	for _, g := range groups {
		label := g.Key
		if label == "" {
			label = "(none)"
		}
		table.Rows = append(table.Rows, []string{label, fmt.Sprint(g.Count), amount(g.Value, ccy), share(g.Share)})
	}
	doc.Table(table)
}
