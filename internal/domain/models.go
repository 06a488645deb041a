package domain

// Kind identifies one exportable document category. The remote API stores
// governance documents, policies, procedures and risks in the same
// "procedures" collection and tells them apart with a type field; vendors
// live in their own collection.
type Kind string

const (
	KindGovernance Kind = "governance"
	KindPolicy     Kind = "policy"
	KindProcedure  Kind = "procedure"
	KindRisk       Kind = "risk"
	KindVendor     Kind = "vendor"
)

// AllKinds lists every exportable kind in the order domains are exported.
var AllKinds = []Kind{KindGovernance, KindPolicy, KindProcedure, KindRisk, KindVendor}

// Dir returns the output folder name for a kind.
func (k Kind) Dir() string {
	switch k {
	case KindGovernance:
		return "govs"
	case KindPolicy:
		return "policies"
	case KindProcedure:
		return "procedures"
	case KindRisk:
		return "risks"
	case KindVendor:
		return "vendors"
	}
	return string(k)
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindGovernance, KindPolicy, KindProcedure, KindRisk, KindVendor:
		return true
	}
	return false
}

// RelationKind identifies the type of a cross-link edge.
type RelationKind string

const (
	RelationControl     RelationKind = "control"
	RelationPolicy      RelationKind = "policy"
	RelationRequirement RelationKind = "requirement"
)

// Relation is a resolved cross-link to another entity. It is informational
// only: the writer never follows it to fetch more content. TargetTitle is
// empty when the related-entity fetch failed (the edge is kept anyway).
type Relation struct {
	Kind        RelationKind `json:"kind" yaml:"kind"`
	TargetID    string       `json:"target_id" yaml:"target_id"`
	TargetTitle string       `json:"target_title,omitempty" yaml:"target_title,omitempty"`
}

// Stub is a partially populated reference to a remote entity, as returned
// by listing and related-entity calls.
type Stub struct {
	ID    string
	Title string
}

// Field is one ordered metadata entry surfaced as frontmatter.
type Field struct {
	Key   string
	Value any
}

// Metadata is an ordered set of scalar frontmatter fields. Order is
// preserved through YAML serialization, matching the remote field order
// within a domain.
type Metadata []Field

// Get returns the value for key, or nil.
func (m Metadata) Get(key string) any {
	for _, f := range m {
		if f.Key == key {
			return f.Value
		}
	}
	return nil
}

// String returns the value for key as a string, or "".
func (m Metadata) String(key string) string {
	if v, ok := m.Get(key).(string); ok {
		return v
	}
	return ""
}

// Document is one resolved compliance artifact. Construction is owned by
// the resolver; once built it is read-only to downstream consumers.
type Document struct {
	ID        string     `json:"id" yaml:"id"`
	Domain    Kind       `json:"domain" yaml:"domain"`
	Code      string     `json:"code,omitempty" yaml:"code,omitempty"`
	Title     string     `json:"title" yaml:"title"`
	Body      string     `json:"body_markdown" yaml:"body_markdown"`
	Meta      Metadata   `json:"metadata" yaml:"metadata"`
	Relations []Relation `json:"relations,omitempty" yaml:"relations,omitempty"`
}

// Label returns the short display label used in index entries and file
// headings: the document code when present, otherwise a prefixed id.
func (d *Document) Label() string {
	if d.Code != "" {
		return d.Code
	}
	return codePrefix(d.Domain) + "-" + d.ID
}

func codePrefix(k Kind) string {
	switch k {
	case KindGovernance:
		return "GOV"
	case KindPolicy:
		return "POL"
	case KindProcedure:
		return "PRO"
	case KindRisk:
		return "RISK"
	case KindVendor:
		return "VEN"
	}
	return "DOC"
}

// RelationCodes returns the resolved labels of relations of a given kind,
// in relation order. Unresolved relations fall back to their target id.
func (d *Document) RelationCodes(kind RelationKind) []string {
	var codes []string
	for _, r := range d.Relations {
		if r.Kind != kind {
			continue
		}
		switch {
		case r.TargetTitle != "":
			codes = append(codes, r.TargetTitle)
		case r.TargetID != "":
			codes = append(codes, r.TargetID)
		}
	}
	return codes
}

// SkippedItem records one listed item that failed individual resolution.
type SkippedItem struct {
	ID     string
	Reason string
}

// ExportResult is the per-domain outcome of one resolver run. Documents
// keep the listing order returned by the API.
type ExportResult struct {
	Domain    Kind
	Documents []*Document
	Skipped   []SkippedItem
}

// WriteReport summarizes one writer run over an ExportResult.
type WriteReport struct {
	Created     int
	Overwritten int
	Unchanged   int
	Conflicts   []string // paths that differ on disk while force is unset
}

// Changed reports whether the run modified anything on disk.
func (r *WriteReport) Changed() bool {
	return r.Created > 0 || r.Overwritten > 0
}
