package resolver

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctrlmap-tools/cmapsync/internal/domain"
)

// fakeTransport serves canned payloads: one sequence of listing pages for
// POST calls and a per-path payload or error for GET calls.
type fakeTransport struct {
	pages     [][]map[string]any
	responses map[string]any
	errors    map[string]error

	listCalls int
	getPaths  []string
}

func (f *fakeTransport) PostJSON(_ context.Context, path string, body, out any) error {
	var page []map[string]any
	if f.listCalls < len(f.pages) {
		page = f.pages[f.listCalls]
	}
	f.listCalls++
	return roundTrip(page, out)
}

func (f *fakeTransport) GetJSON(_ context.Context, path string, out any) error {
	f.getPaths = append(f.getPaths, path)
	if err, ok := f.errors[path]; ok {
		return err
	}
	payload, ok := f.responses[path]
	if !ok {
		return domain.NewAPIError(path, 404, domain.ErrNotFound)
	}
	return roundTrip(payload, out)
}

func (f *fakeTransport) Close() error { return nil }

func roundTrip(payload, out any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func listItem(id int, name string) map[string]any {
	return map[string]any{"id": id, "name": name}
}

func govDetail(id int, code, name string) map[string]any {
	return map[string]any{
		"id":            id,
		"procedureCode": code,
		"name":          name,
		"status":        map[string]any{"name": "Published"},
		"majorVersion":  2,
		"minorVersion":  1,
		"owner":         map[string]any{"fullname": "Jamie Ortiz"},
		"approver":      map[string]any{"fullname": "Sam Lee"},
		"contributors":  []any{map[string]any{"fullname": "Dana Kim"}},
		"reviewDate":    "2026-03-15T00:00:00Z",
		"updatedate":    "2026-01-02T10:30:00Z",
		"description":   "%253Cp%253EKeep%2520records.%253C%252Fp%253E",
	}
}

func TestResolve_Governance(t *testing.T) {
	ft := &fakeTransport{
		pages: [][]map[string]any{{listItem(7, "Data Retention")}},
		responses: map[string]any{
			"procedure/7": govDetail(7, "GOV-7", "Data Retention"),
			"procedure/7/controls": []map[string]any{
				{"id": 31, "controlCode": "AC-1"},
				{"id": 32, "controlCode": "AC-2"},
			},
			"procedure/7/requirements": []map[string]any{
				{"id": 90, "requirementCode": "ISO-5.1"},
			},
		},
	}

	result, err := New(ft, Options{}).Resolve(context.Background(), domain.KindGovernance)
	require.NoError(t, err)
	require.Len(t, result.Documents, 1)
	assert.Empty(t, result.Skipped)

	doc := result.Documents[0]
	assert.Equal(t, "7", doc.ID)
	assert.Equal(t, "GOV-7", doc.Code)
	assert.Equal(t, "Data Retention", doc.Title)
	assert.Equal(t, domain.KindGovernance, doc.Domain)
	assert.Contains(t, doc.Body, "Keep records.")

	assert.Equal(t, "Published", doc.Meta.String("status"))
	assert.Equal(t, "2.1", doc.Meta.String("version"))
	assert.Equal(t, "Jamie Ortiz", doc.Meta.String("owner"))
	assert.Equal(t, "2026-03-15", doc.Meta.String("review_date"))
	assert.Equal(t, "2026-01-02", doc.Meta.String("updated"))

	assert.Equal(t, []string{"AC-1", "AC-2"}, doc.RelationCodes(domain.RelationControl))
	assert.Equal(t, []string{"ISO-5.1"}, doc.RelationCodes(domain.RelationRequirement))
}

func TestResolve_PartialFailureIsolation(t *testing.T) {
	ft := &fakeTransport{
		pages: [][]map[string]any{{
			listItem(1, "First"),
			listItem(2, "Second"),
			listItem(3, "Third"),
		}},
		responses: map[string]any{
			"procedure/1":              govDetail(1, "GOV-1", "First"),
			"procedure/1/controls":     []map[string]any{},
			"procedure/1/requirements": []map[string]any{},
			"procedure/3":              govDetail(3, "GOV-3", "Third"),
			"procedure/3/controls":     []map[string]any{},
			"procedure/3/requirements": []map[string]any{},
		},
		errors: map[string]error{
			"procedure/2": domain.NewAPIError("procedure/2", 404, domain.ErrNotFound),
		},
	}

	result, err := New(ft, Options{}).Resolve(context.Background(), domain.KindGovernance)
	require.NoError(t, err)

	require.Len(t, result.Documents, 2)
	assert.Equal(t, "First", result.Documents[0].Title)
	assert.Equal(t, "Third", result.Documents[1].Title)

	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "2", result.Skipped[0].ID)
	assert.Contains(t, result.Skipped[0].Reason, "not found")
}

func TestResolve_RelationDegradation(t *testing.T) {
	ft := &fakeTransport{
		pages: [][]map[string]any{{listItem(5, "Access Review")}},
		responses: map[string]any{
			"procedure/5": govDetail(5, "GOV-5", "Access Review"),
			"procedure/5/requirements": []map[string]any{
				{"id": 9, "requirementCode": "SOC2-CC6"},
			},
		},
		errors: map[string]error{
			"procedure/5/controls": domain.NewAPIError("procedure/5/controls", 500, domain.ErrTransient),
		},
	}

	result, err := New(ft, Options{}).Resolve(context.Background(), domain.KindGovernance)
	require.NoError(t, err)
	require.Len(t, result.Documents, 1)
	assert.Empty(t, result.Skipped)

	doc := result.Documents[0]
	require.Len(t, doc.Relations, 2)
	assert.Equal(t, domain.RelationControl, doc.Relations[0].Kind)
	assert.Empty(t, doc.Relations[0].TargetTitle)
	assert.Equal(t, "SOC2-CC6", doc.Relations[1].TargetTitle)
}

func TestResolve_AuthAborts(t *testing.T) {
	ft := &fakeTransport{
		pages: [][]map[string]any{{listItem(1, "First")}},
		errors: map[string]error{
			"procedure/1": domain.NewAPIError("procedure/1", 401, domain.ErrAuth),
		},
	}

	result, err := New(ft, Options{}).Resolve(context.Background(), domain.KindGovernance)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAuth)
	assert.Nil(t, result)
}

func TestResolve_NetworkAbortsDomain(t *testing.T) {
	ft := &fakeTransport{
		pages: [][]map[string]any{{listItem(1, "First"), listItem(2, "Second")}},
		errors: map[string]error{
			"procedure/1": domain.NewAPIError("procedure/1", 0, domain.ErrNetwork),
		},
	}

	_, err := New(ft, Options{}).Resolve(context.Background(), domain.KindGovernance)
	assert.ErrorIs(t, err, domain.ErrNetwork)
}

func TestResolve_ListingOrderPreserved(t *testing.T) {
	detail := func(id int, name string) map[string]any {
		d := govDetail(id, "", name)
		delete(d, "procedureCode")
		return d
	}
	ft := &fakeTransport{
		pages: [][]map[string]any{{
			listItem(3, "Charlie"),
			listItem(1, "Alpha"),
			listItem(2, "Bravo"),
		}},
		responses: map[string]any{
			"procedure/3": detail(3, "Charlie"),
			"procedure/1": detail(1, "Alpha"),
			"procedure/2": detail(2, "Bravo"),
		},
	}

	result, err := New(ft, Options{}).Resolve(context.Background(), domain.KindGovernance)
	require.NoError(t, err)

	var titles []string
	for _, doc := range result.Documents {
		titles = append(titles, doc.Title)
	}
	assert.Equal(t, []string{"Charlie", "Alpha", "Bravo"}, titles)
}

func TestResolve_VendorDomain(t *testing.T) {
	ft := &fakeTransport{
		pages: [][]map[string]any{{listItem(42, "Acme Corp")}},
		responses: map[string]any{
			"vendor/42": map[string]any{
				"id":              42,
				"code":            "VND-42",
				"vendorName":      "Acme Corp",
				"vendorStatus":    map[string]any{"name": "Active"},
				"vendorType":      map[string]any{"name": "SaaS"},
				"internalContact": map[string]any{"fullname": "Jamie Ortiz"},
				"vendorTier":      map[string]any{"name": "Tier 1"},
				"avgRiskScore":    2.4,
				"tags":            []any{map[string]any{"name": "critical"}, "cloud"},
				"description":     "Hosting provider for production workloads.",
			},
		},
	}

	result, err := New(ft, Options{}).Resolve(context.Background(), domain.KindVendor)
	require.NoError(t, err)
	require.Len(t, result.Documents, 1)

	doc := result.Documents[0]
	assert.Equal(t, "VND-42", doc.Code)
	assert.Equal(t, "Acme Corp", doc.Title)
	assert.Equal(t, "Active", doc.Meta.String("status"))
	assert.Equal(t, "Tier 1", doc.Meta.String("tier"))
	assert.Equal(t, 2.4, doc.Meta.Get("risk_score"))
	assert.Equal(t, []string{"critical", "cloud"}, doc.Meta.Get("tags"))
	assert.Equal(t, "Hosting provider for production workloads.", doc.Body)
	assert.Empty(t, doc.Relations)
	// Vendors have no related-entity sub-collections.
	assert.Equal(t, []string{"vendor/42"}, ft.getPaths)
}

func TestResolve_UnknownKind(t *testing.T) {
	_, err := New(&fakeTransport{}, Options{}).Resolve(context.Background(), domain.Kind("widget"))
	assert.Error(t, err)
}
