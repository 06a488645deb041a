package resolver

import (
	"github.com/ctrlmap-tools/cmapsync/internal/domain"
)

// Descriptor drives the resolution of one document domain. The remote API
// keeps governance documents, policies, procedures and risks in a shared
// collection told apart by a type rule; vendors have their own endpoints.
// One table entry per domain replaces per-domain exporter types.
type Descriptor struct {
	Kind       domain.Kind
	ListPath   string                // POST listing endpoint
	TypeFilter string                // rule value, empty for unfiltered listings
	DetailPath string                // GET detail endpoint, %s = item id
	Relations  []domain.RelationKind // related-entity collections to fetch

	parse parseFunc
}

var descriptors = []Descriptor{
	{
		Kind:       domain.KindGovernance,
		ListPath:   "procedures",
		TypeFilter: "governance",
		DetailPath: "procedure/%s",
		Relations:  []domain.RelationKind{domain.RelationControl, domain.RelationRequirement},
		parse:      parseGovernance,
	},
	{
		Kind:       domain.KindPolicy,
		ListPath:   "procedures",
		TypeFilter: "policy",
		DetailPath: "procedure/%s",
		Relations:  []domain.RelationKind{domain.RelationControl, domain.RelationRequirement},
		parse:      parsePolicy,
	},
	{
		Kind:       domain.KindProcedure,
		ListPath:   "procedures",
		TypeFilter: "procedure",
		DetailPath: "procedure/%s",
		Relations: []domain.RelationKind{
			domain.RelationControl,
			domain.RelationPolicy,
			domain.RelationRequirement,
		},
		parse: parseProcedure,
	},
	{
		Kind:       domain.KindRisk,
		ListPath:   "procedures",
		TypeFilter: "risk",
		DetailPath: "procedure/%s",
		Relations:  []domain.RelationKind{domain.RelationControl},
		parse:      parseRisk,
	},
	{
		Kind:       domain.KindVendor,
		ListPath:   "vendors",
		DetailPath: "vendor/%s",
		parse:      parseVendor,
	},
}

// DescriptorFor returns the descriptor for a kind.
func DescriptorFor(kind domain.Kind) (Descriptor, bool) {
	for _, d := range descriptors {
		if d.Kind == kind {
			return d, true
		}
	}
	return Descriptor{}, false
}

// relationPath maps a relation kind to its sub-collection path segment.
func relationPath(kind domain.RelationKind) string {
	switch kind {
	case domain.RelationControl:
		return "controls"
	case domain.RelationPolicy:
		return "policies"
	case domain.RelationRequirement:
		return "requirements"
	}
	return string(kind)
}

// relationCodeKeys lists the detail fields tried, in order, for the display
// label of a related-entity stub.
func relationCodeKeys(kind domain.RelationKind) []string {
	switch kind {
	case domain.RelationControl:
		return []string{"controlCode", "code", "name"}
	case domain.RelationPolicy:
		return []string{"policyCode", "code", "name"}
	case domain.RelationRequirement:
		return []string{"requirementCode", "code", "name"}
	}
	return []string{"code", "name"}
}
