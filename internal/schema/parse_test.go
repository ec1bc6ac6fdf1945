package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseChecklist_LegacyNormalizedToGeneral(t *testing.T) {
	raw := []byte(`{
		"title": "Site inspection",
		"items": [
			{"id": "item_1", "name": "Fire exits clear", "type": "yesno", "autoFail": true},
			{"id": "item_2", "name": "Evacuation plan", "type": "document"},
			{"id": "item_3", "name": "Extinguishers serviced", "type": "yesno"}
		]
	}`)

	s, err := ParseChecklist(raw)
	require.NoError(t, err)
	require.Len(t, s.Sections, 1)
	assert.Equal(t, "General", s.Sections[0].Name)
	assert.Equal(t, "Site inspection", s.Title)

	ids := make([]string, 0, 3)
	for _, item := range s.Sections[0].Items {
		ids = append(ids, item.ID)
	}
	assert.Equal(t, []string{"item_1", "item_2", "item_3"}, ids)
	assert.True(t, s.Sections[0].Items[0].AutoFail)
	assert.True(t, IsLegacyChecklist(raw))
}

func TestParseChecklist_SectionedKeptAsIs(t *testing.T) {
	raw := []byte(`{"title":"t","sections":[{"id":"s1","name":"Access","items":[{"id":"i1","name":"Badges","type":"yesno"}]},{"id":"s2","name":"Logs","items":[]}]}`)

	s, err := ParseChecklist(raw)
	require.NoError(t, err)
	require.Len(t, s.Sections, 2)
	assert.Equal(t, "Access", s.Sections[0].Name)
	assert.False(t, IsLegacyChecklist(raw))
}

func TestParseChecklist_EmptyLegacy(t *testing.T) {
	s, err := ParseChecklist([]byte(`{"title":"empty"}`))
	require.NoError(t, err)
	require.Len(t, s.Sections, 1)
	assert.Empty(t, s.Sections[0].Items)
}

func TestParse_InvalidJSON(t *testing.T) {
	_, err := ParseForm([]byte(`{"fields": [`))
	assert.ErrorIs(t, err, ErrInvalidJSON)
	assert.Equal(t, "Invalid JSON format for schema", err.Error())

	_, err = ParseChecklist([]byte(`not json`))
	assert.ErrorIs(t, err, ErrInvalidJSON)

	_, err = ParseChecklist([]byte(`[1,2]`))
	assert.ErrorIs(t, err, ErrInvalidJSON)
}

func TestNormalizeChecklist_DoesNotAliasInput(t *testing.T) {
	items := []Item{{ID: "a", Name: "A", Type: ItemTypeYesNo}}
	s := NormalizeChecklist("t", "", items)
	s.Sections[0].Items[0].Name = "changed"
	assert.Equal(t, "A", items[0].Name)
}
