package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/fundsxml"
	md "github.com/nao1215/markdown"
)

// LadderMarkdown renders the maturity ladder of every fund.
func LadderMarkdown(funds []*fundsxml.FundAggregates) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Maturity Ladder")
	for _, fa := range funds {
		doc.H2(fundTitle(fa))
		l := fa.Ladder
		if !l.Available {
			doc.PlainText("Not available: the document has no content date.")
			continue
		}
		if l.Dated == 0 && l.NoMaturity == 0 {
			doc.PlainText("No bond position.")
			continue
		}
		table := md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight},
			Header:    []string{"Bucket", "Bonds", "Value", "Share"},
			Rows:      [][]string{},
		}
		for _, r := range l.Rungs {
			table.Rows = append(table.Rows, []string{
				r.Bucket.String(),
				fmt.Sprint(r.Count),
				amount(r.Value, fa.Currency),
				share(r.Share),
			})
		}
		doc.Table(table)
		if l.NoMaturity > 0 {
			doc.PlainText(fmt.Sprintf("%d bond position(s) with no maturity data, left out of the shares.", l.NoMaturity))
		}
	}
	return doc.String()
}
