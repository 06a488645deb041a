package resolver

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ctrlmap-tools/cmapsync/internal/converter"
	"github.com/ctrlmap-tools/cmapsync/internal/domain"
)

// parseFunc builds a Document (minus relations) from a decoded detail
// payload. Payload fields are untrusted: every accessor tolerates missing
// keys and wrong types and degrades to the zero value.
type parseFunc func(conv *converter.Converter, detail map[string]any) *domain.Document

func parseGovernance(conv *converter.Converter, detail map[string]any) *domain.Document {
	doc := baseDocument(domain.KindGovernance, detail, "procedureCode")
	doc.Meta = standardMeta(detail, "contributors", false)
	doc.Body = conv.Decode(asString(detail["description"]))
	return doc
}

func parseProcedure(conv *converter.Converter, detail map[string]any) *domain.Document {
	doc := baseDocument(domain.KindProcedure, detail, "procedureCode")
	doc.Meta = standardMeta(detail, "procedureContributors", true)
	doc.Body = conv.Decode(asString(detail["description"]))
	return doc
}

func parsePolicy(conv *converter.Converter, detail map[string]any) *domain.Document {
	doc := baseDocument(domain.KindPolicy, detail, "policyCode")
	doc.Meta = standardMeta(detail, "policyContributors", false)
	doc.Body = policyBody(conv, detail, doc.Title)
	return doc
}

func parseRisk(conv *converter.Converter, detail map[string]any) *domain.Document {
	doc := baseDocument(domain.KindRisk, detail, "riskCode", "code")

	meta := domain.Metadata{
		{Key: "status", Value: nameOrString(detail["status"])},
		{Key: "severity", Value: nameOrString(detail["severity"])},
		{Key: "owner", Value: fullName(detail["owner"])},
	}
	if treatment := nameOrString(detail["treatment"]); treatment != "" {
		meta = append(meta, domain.Field{Key: "treatment", Value: treatment})
	}
	meta = append(meta,
		domain.Field{Key: "review_date", Value: extractDate(detail, "reviewDate", "nextReviewDate")},
		domain.Field{Key: "updated", Value: extractDate(detail, "updatedate", "updatedAt")},
	)
	doc.Meta = meta
	doc.Body = conv.Decode(asString(detail["description"]))
	return doc
}

func parseVendor(conv *converter.Converter, detail map[string]any) *domain.Document {
	doc := baseDocument(domain.KindVendor, detail, "code")
	if doc.Title == "" {
		doc.Title = strings.TrimSpace(asString(detail["vendorName"]))
	}

	doc.Meta = domain.Metadata{
		{Key: "status", Value: objName(detail["vendorStatus"])},
		{Key: "vendor_type", Value: objName(detail["vendorType"])},
		{Key: "owner", Value: fullName(detail["internalContact"])},
		{Key: "tier", Value: objName(detail["vendorTier"])},
		{Key: "risk_score", Value: asFloat(detail["avgRiskScore"])},
	}
	if tags := tagNames(detail["tags"]); len(tags) > 0 {
		doc.Meta = append(doc.Meta, domain.Field{Key: "tags", Value: tags})
	}

	// Vendor descriptions are free text, not encoded HTML.
	doc.Body = strings.TrimSpace(asString(detail["description"]))
	return doc
}

// baseDocument fills the fields every domain shares. The document code is
// taken from the first non-empty codeKey.
func baseDocument(kind domain.Kind, detail map[string]any, codeKeys ...string) *domain.Document {
	doc := &domain.Document{
		ID:     itemID(detail["id"]),
		Domain: kind,
		Title:  strings.TrimSpace(asString(detail["name"])),
	}
	for _, key := range codeKeys {
		if code := asString(detail[key]); code != "" {
			doc.Code = code
			break
		}
	}
	if doc.Title == "" {
		doc.Title = strings.TrimSpace(asString(detail["title"]))
	}
	return doc
}

// standardMeta covers the shared frontmatter of governance documents,
// policies and procedures.
func standardMeta(detail map[string]any, contributorsKey string, withFrequency bool) domain.Metadata {
	meta := domain.Metadata{
		{Key: "status", Value: objName(detail["status"])},
		{Key: "version", Value: versionString(detail)},
		{Key: "owner", Value: fullName(detail["owner"])},
		{Key: "approver", Value: fullName(detail["approver"])},
		{Key: "contributors", Value: fullNames(detail[contributorsKey])},
		{Key: "classification", Value: firstString(detail, "dataClassification", "classification")},
	}
	if withFrequency {
		meta = append(meta, domain.Field{Key: "frequency", Value: objName(detail["frequency"])})
	}
	meta = append(meta,
		domain.Field{Key: "review_date", Value: extractDate(detail, "reviewDate", "nextReviewDate")},
		domain.Field{Key: "updated", Value: extractDate(detail, "updatedate", "updatedAt", "updateDate")},
	)
	return meta
}

// policyBody renders the policy sections array. A single section titled
// like the policy itself keeps its content with headings starting at h2;
// otherwise every section title becomes an h2 and section content shifts
// below h3.
func policyBody(conv *converter.Converter, detail map[string]any, policyName string) string {
	raw, ok := detail["sections"].([]any)
	if !ok || len(raw) == 0 {
		return conv.Decode(asString(detail["description"]))
	}

	type section struct {
		title string
		body  string
	}
	var sections []section
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		sections = append(sections, section{
			title: strings.TrimSpace(asString(m["title"])),
			body:  conv.Decode(asString(m["description"])),
		})
	}
	if len(sections) == 0 {
		return ""
	}

	single := len(sections) == 1 && sections[0].title == strings.TrimSpace(policyName)

	var parts []string
	for _, s := range sections {
		if single {
			parts = append(parts, converter.NormalizeHeadings(s.body, 2))
			continue
		}
		body := converter.NormalizeHeadings(s.body, 3)
		parts = append(parts, "## "+s.title+"\n\n"+body)
	}
	return strings.TrimSpace(strings.Join(parts, "\n\n"))
}

// itemID renders a remote identifier as a string. JSON numbers arrive as
// float64.
func itemID(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		return strconv.FormatInt(int64(id), 10)
	case int:
		return strconv.Itoa(id)
	}
	return ""
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0
		}
		return f
	}
	return 0
}

func asInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0
		}
		return i
	}
	return 0
}

// objName extracts the "name" field of a nested object.
func objName(v any) string {
	if m, ok := v.(map[string]any); ok {
		return strings.TrimSpace(asString(m["name"]))
	}
	return ""
}

// nameOrString accepts either a nested {"name": ...} object or a bare
// string; the API is inconsistent between tenants.
func nameOrString(v any) string {
	if name := objName(v); name != "" {
		return name
	}
	return strings.TrimSpace(asString(v))
}

// fullName extracts the "fullname" of a nested user object.
func fullName(v any) string {
	if m, ok := v.(map[string]any); ok {
		return strings.TrimSpace(asString(m["fullname"]))
	}
	return ""
}

// fullNames always returns a non-nil slice so empty contributor lists
// serialize as [] rather than null.
func fullNames(v any) []string {
	names := []string{}
	items, ok := v.([]any)
	if !ok {
		return names
	}
	for _, item := range items {
		if name := fullName(item); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func tagNames(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	var tags []string
	for _, item := range items {
		switch t := item.(type) {
		case string:
			if t != "" {
				tags = append(tags, t)
			}
		case map[string]any:
			name := asString(t["name"])
			if name == "" {
				name = asString(t["displayName"])
			}
			if name != "" {
				tags = append(tags, name)
			}
		}
	}
	return tags
}

func firstString(detail map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := detail[key]; ok && v != nil {
			if s := strings.TrimSpace(fmt.Sprint(v)); s != "" {
				return s
			}
		}
	}
	return ""
}

// extractDate returns the date portion of the first matching timestamp
// field.
func extractDate(detail map[string]any, keys ...string) string {
	s := firstString(detail, keys...)
	if len(s) > 10 {
		return s[:10]
	}
	return s
}

// versionString renders the major.minor document version.
func versionString(detail map[string]any) string {
	return fmt.Sprintf("%d.%d", asInt(detail["majorVersion"]), asInt(detail["minorVersion"]))
}
