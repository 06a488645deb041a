package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ctrlmap-tools/cmapsync/internal/domain"
)

// Format selects an on-disk serialization.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
)

// Ext returns the file extension for a format.
func (f Format) Ext() string {
	switch f {
	case FormatJSON:
		return ".json"
	case FormatYAML:
		return ".yaml"
	}
	return ".md"
}

// Render serializes a document in the given format.
func Render(doc *domain.Document, format Format) ([]byte, error) {
	switch format {
	case FormatMarkdown:
		return renderMarkdown(doc)
	case FormatJSON:
		return renderJSON(doc)
	case FormatYAML:
		return renderYAML(doc)
	}
	return nil, fmt.Errorf("unknown output format %q", format)
}

// renderMarkdown produces the frontmatter block, a title heading and the
// document body.
func renderMarkdown(doc *domain.Document) ([]byte, error) {
	front, err := frontmatter(doc)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(front)
	buf.WriteString("---\n\n")
	buf.WriteString("# " + doc.Label())
	if doc.Title != "" {
		buf.WriteString(" — " + doc.Title)
	}
	buf.WriteString("\n")
	if body := strings.TrimSpace(doc.Body); body != "" {
		buf.WriteString("\n" + body + "\n")
	}
	return buf.Bytes(), nil
}

// frontmatter builds the ordered YAML metadata block: identity fields
// first, the domain metadata in remote order, relation code lists last.
func frontmatter(doc *domain.Document) ([]byte, error) {
	fields := domain.Metadata{
		{Key: "id", Value: doc.Label()},
		{Key: "title", Value: doc.Title},
	}
	fields = append(fields, doc.Meta...)

	for _, rel := range []struct {
		key  string
		kind domain.RelationKind
	}{
		{"controls", domain.RelationControl},
		{"policies", domain.RelationPolicy},
		{"requirements", domain.RelationRequirement},
	} {
		if hasRelation(doc, rel.kind) {
			codes := doc.RelationCodes(rel.kind)
			if codes == nil {
				codes = []string{}
			}
			fields = append(fields, domain.Field{Key: rel.key, Value: codes})
		}
	}

	return yaml.Marshal(fields)
}

func hasRelation(doc *domain.Document, kind domain.RelationKind) bool {
	for _, r := range doc.Relations {
		if r.Kind == kind {
			return true
		}
	}
	return false
}

func renderJSON(doc *domain.Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func renderYAML(doc *domain.Document) ([]byte, error) {
	return yaml.Marshal(doc)
}
