package output

import (
	"bytes"
	"fmt"

	"github.com/ctrlmap-tools/cmapsync/internal/domain"
)

// Index bullets, emitted in this order when the metadata field is set.
var indexFields = []struct {
	label string
	key   string
}{
	{"Owner", "owner"},
	{"Status", "status"},
	{"Severity", "severity"},
	{"Classification", "classification"},
	{"Tier", "tier"},
	{"Review Date", "review_date"},
}

// renderIndex produces the per-domain index.md: a document count line and
// one linked heading with a short metadata summary per document. The
// content is fully regenerated each run and carries no timestamps, so an
// unchanged export produces an identical file.
func renderIndex(kind domain.Kind, docs []*domain.Document, stems []string) []byte {
	var buf bytes.Buffer

	buf.WriteString("---\n")
	fmt.Fprintf(&buf, "document_count: %d\n", len(docs))
	buf.WriteString("---\n\n")
	fmt.Fprintf(&buf, "# %s\n\n", indexTitle(kind))
	fmt.Fprintf(&buf, "%d %s exported.\n", len(docs), indexNoun(kind, len(docs)))

	for i, doc := range docs {
		buf.WriteString("\n")
		fmt.Fprintf(&buf, "## [%s](%s.md)", doc.Label(), stems[i])
		if doc.Title != "" {
			fmt.Fprintf(&buf, " — %s", doc.Title)
		}
		buf.WriteString("\n\n")
		for _, field := range indexFields {
			if value := doc.Meta.String(field.key); value != "" {
				fmt.Fprintf(&buf, "- **%s:** %s\n", field.label, value)
			}
		}
	}

	return buf.Bytes()
}

func indexTitle(kind domain.Kind) string {
	switch kind {
	case domain.KindGovernance:
		return "Governance Documents"
	case domain.KindPolicy:
		return "Policies"
	case domain.KindProcedure:
		return "Procedures"
	case domain.KindRisk:
		return "Risks"
	case domain.KindVendor:
		return "Vendors"
	}
	return string(kind)
}

func indexNoun(kind domain.Kind, n int) string {
	singular := map[domain.Kind]string{
		domain.KindGovernance: "governance document",
		domain.KindPolicy:     "policy",
		domain.KindProcedure:  "procedure",
		domain.KindRisk:       "risk",
		domain.KindVendor:     "vendor",
	}[kind]
	if singular == "" {
		singular = "document"
	}
	if n == 1 {
		return singular
	}
	if kind == domain.KindPolicy {
		return "policies"
	}
	return singular + "s"
}
