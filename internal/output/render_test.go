package output

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctrlmap-tools/cmapsync/internal/domain"
)

func sampleDocument() *domain.Document {
	return &domain.Document{
		ID:     "7",
		Domain: domain.KindGovernance,
		Code:   "GOV-7",
		Title:  "Data Retention",
		Body:   "Records are kept for seven years.",
		Meta: domain.Metadata{
			{Key: "status", Value: "Published"},
			{Key: "version", Value: "2.1"},
			{Key: "owner", Value: "Jamie Ortiz"},
			{Key: "contributors", Value: []string{"Dana Kim"}},
			{Key: "review_date", Value: "2026-03-15"},
		},
		Relations: []domain.Relation{
			{Kind: domain.RelationControl, TargetID: "31", TargetTitle: "AC-1"},
			{Kind: domain.RelationControl, TargetID: "32", TargetTitle: "AC-2"},
			{Kind: domain.RelationRequirement, TargetID: "90", TargetTitle: "ISO-5.1"},
		},
	}
}

func TestRenderMarkdown(t *testing.T) {
	content, err := Render(sampleDocument(), FormatMarkdown)
	require.NoError(t, err)
	text := string(content)

	assert.True(t, strings.HasPrefix(text, "---\n"))
	assert.Contains(t, text, "id: GOV-7\n")
	assert.Contains(t, text, "title: Data Retention\n")
	assert.Contains(t, text, "status: Published\n")
	assert.Contains(t, text, "# GOV-7 — Data Retention\n")
	assert.Contains(t, text, "Records are kept for seven years.")

	assert.Contains(t, text, "controls:\n")
	assert.Contains(t, text, "- AC-1")
	assert.Contains(t, text, "- AC-2")
	assert.Contains(t, text, "requirements:\n")
	assert.Contains(t, text, "- ISO-5.1")
	// No policy relations on this document, so no policies key.
	assert.NotContains(t, text, "policies:")
}

func TestRenderMarkdown_FrontmatterKeyOrder(t *testing.T) {
	content, err := Render(sampleDocument(), FormatMarkdown)
	require.NoError(t, err)
	text := string(content)

	order := []string{"id:", "title:", "status:", "version:", "owner:", "contributors:", "review_date:", "controls:", "requirements:"}
	last := -1
	for _, key := range order {
		pos := strings.Index(text, key)
		require.GreaterOrEqual(t, pos, 0, "missing frontmatter key %s", key)
		assert.Greater(t, pos, last, "%s out of order", key)
		last = pos
	}
}

func TestRenderMarkdown_DegradedRelation(t *testing.T) {
	doc := sampleDocument()
	doc.Relations = []domain.Relation{{Kind: domain.RelationControl, TargetID: "31"}}

	content, err := Render(doc, FormatMarkdown)
	require.NoError(t, err)

	// Unresolved relations fall back to the target id.
	assert.Contains(t, string(content), "controls:\n")
	assert.Contains(t, string(content), "- \"31\"")
}

func TestRenderMarkdown_NoCode(t *testing.T) {
	doc := sampleDocument()
	doc.Code = ""
	doc.Relations = nil

	content, err := Render(doc, FormatMarkdown)
	require.NoError(t, err)

	assert.Contains(t, string(content), "id: GOV-7\n")
	assert.Contains(t, string(content), "# GOV-7 — Data Retention")
}

func TestRenderMarkdown_EmptyBody(t *testing.T) {
	doc := sampleDocument()
	doc.Body = ""

	content, err := Render(doc, FormatMarkdown)
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(string(content), "# GOV-7 — Data Retention\n"))
}

func TestRenderJSON(t *testing.T) {
	content, err := Render(sampleDocument(), FormatJSON)
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(string(content), "\n"))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(content, &decoded))
	assert.Equal(t, "7", decoded["id"])
	assert.Equal(t, "governance", decoded["domain"])
	assert.Equal(t, "Records are kept for seven years.", decoded["body_markdown"])

	meta, ok := decoded["metadata"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Published", meta["status"])
}

func TestRenderYAML(t *testing.T) {
	content, err := Render(sampleDocument(), FormatYAML)
	require.NoError(t, err)
	text := string(content)

	assert.Contains(t, text, "id: \"7\"\n")
	assert.Contains(t, text, "domain: governance\n")
	assert.Contains(t, text, "target_title: AC-1")
}

func TestRenderUnknownFormat(t *testing.T) {
	_, err := Render(sampleDocument(), Format("toml"))
	assert.Error(t, err)
}

func TestFormatExt(t *testing.T) {
	assert.Equal(t, ".md", FormatMarkdown.Ext())
	assert.Equal(t, ".json", FormatJSON.Ext())
	assert.Equal(t, ".yaml", FormatYAML.Ext())
}
