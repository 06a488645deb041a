package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func orderedMeta() Metadata {
	// Deliberately not alphabetical: order must survive serialization.
	return Metadata{
		{Key: "status", Value: "Published"},
		{Key: "owner", Value: "Jamie Ortiz"},
		{Key: "contributors", Value: []string{"Dana Kim"}},
		{Key: "classification", Value: "Internal"},
	}
}

func TestMetadataYAMLOrder(t *testing.T) {
	data, err := yaml.Marshal(orderedMeta())
	require.NoError(t, err)
	text := string(data)

	assert.Less(t, strings.Index(text, "status:"), strings.Index(text, "owner:"))
	assert.Less(t, strings.Index(text, "owner:"), strings.Index(text, "contributors:"))
	assert.Less(t, strings.Index(text, "contributors:"), strings.Index(text, "classification:"))
}

func TestMetadataJSONOrder(t *testing.T) {
	data, err := json.Marshal(orderedMeta())
	require.NoError(t, err)
	text := string(data)

	assert.True(t, strings.HasPrefix(text, `{"status":"Published"`))
	assert.Less(t, strings.Index(text, `"owner"`), strings.Index(text, `"contributors"`))
}

func TestMetadataJSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(orderedMeta())
	require.NoError(t, err)

	var restored Metadata
	require.NoError(t, json.Unmarshal(data, &restored))

	require.Len(t, restored, 4)
	assert.Equal(t, "status", restored[0].Key)
	assert.Equal(t, "Published", restored[0].Value)
	assert.Equal(t, "classification", restored[3].Key)
}

func TestMetadataUnmarshalRejectsNonObject(t *testing.T) {
	var m Metadata
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &m))
}

func TestMetadataEmpty(t *testing.T) {
	data, err := json.Marshal(Metadata{})
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}
