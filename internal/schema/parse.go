package schema

import (
	"encoding/json"
	"errors"
)

// ErrInvalidJSON is returned for documents that are not valid JSON.
var ErrInvalidJSON = errors.New("Invalid JSON format for schema")

// LegacySectionName is the section that items of a flat checklist are moved into.
const LegacySectionName = "General"

const legacySectionID = "section_general"

// ParseForm decodes a form document. Only JSON well-formedness is checked here.
func ParseForm(raw []byte) (*FormSchema, error) {
	var s FormSchema
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, ErrInvalidJSON
	}
	return &s, nil
}

type legacyChecklist struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Items       []Item `json:"items"`
}

// ParseChecklist decodes a checklist document. A document without a
// "sections" key is the flat legacy shape and is normalized on the way in.
func ParseChecklist(raw []byte) (*ChecklistSchema, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return nil, ErrInvalidJSON
	}

	if _, ok := keys["sections"]; ok {
		var s ChecklistSchema
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, ErrInvalidJSON
		}
		return &s, nil
	}

	var legacy legacyChecklist
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return nil, ErrInvalidJSON
	}
	normalized := NormalizeChecklist(legacy.Title, legacy.Description, legacy.Items)
	return &normalized, nil
}

// IsLegacyChecklist reports whether raw is a checklist document without sections.
func IsLegacyChecklist(raw []byte) bool {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return false
	}
	_, ok := keys["sections"]
	return !ok
}

// NormalizeChecklist wraps flat items into a single "General" section,
// keeping their order.
func NormalizeChecklist(title, description string, items []Item) ChecklistSchema {
	copied := make([]Item, len(items))
	copy(copied, items)
	return ChecklistSchema{
		Title:       title,
		Description: description,
		Sections: []Section{{
			ID:    legacySectionID,
			Name:  LegacySectionName,
			Items: copied,
		}},
	}
}

// IsValidJSON reports whether raw parses as JSON.
func IsValidJSON(raw []byte) bool {
	return json.Valid(raw)
}
