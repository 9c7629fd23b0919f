package renderer

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/etnz/fundsxml"
	md "github.com/nao1215/markdown"
	"gopkg.in/yaml.v3"
)

// RulesMarkdown renders the rule catalog and the tolerance profile in use.
func RulesMarkdown(rules []fundsxml.Rule, tol fundsxml.Tolerances) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Rules")
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignLeft},
		Header:    []string{"Rule", "Category", "Description"},
		Rows:      [][]string{},
	}
	for _, r := range rules {
		table.Rows = append(table.Rows, []string{code(r.ID), r.Category.String(), escape(r.Description)})
	}
	doc.Table(table)

	doc.H2(fmt.Sprintf("Tolerance Profile %q", tol.Name))
	data, err := yaml.Marshal(tol)
	if err != nil {
		doc.PlainText(fmt.Sprintf("cannot encode the profile: %v", err))
		return doc.String()
	}
	doc.PlainText("```yaml\n" + strings.TrimSpace(string(data)) + "\n```")
	return doc.String()
}
