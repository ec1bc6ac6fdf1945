// Package schema models the JSON documents describing compliance forms and
// checklists, and provides their validation, editing and scoring rules.
package schema

// FieldType is the input kind of a form field.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeTextarea FieldType = "textarea"
	FieldTypeSelect   FieldType = "select"
	FieldTypeCheckbox FieldType = "checkbox"
	FieldTypeRadio    FieldType = "radio"
	FieldTypeEmail    FieldType = "email"
	FieldTypeNumber   FieldType = "number"
	FieldTypeDate     FieldType = "date"
	FieldTypeImage    FieldType = "image"
)

var fieldTypes = map[FieldType]bool{
	FieldTypeText: true, FieldTypeTextarea: true, FieldTypeSelect: true,
	FieldTypeCheckbox: true, FieldTypeRadio: true, FieldTypeEmail: true,
	FieldTypeNumber: true, FieldTypeDate: true, FieldTypeImage: true,
}

// IsValid reports whether t is a known field type.
func (t FieldType) IsValid() bool {
	return fieldTypes[t]
}

// HasOptions reports whether answers to the type are picked from an option list.
func (t FieldType) HasOptions() bool {
	return t == FieldTypeSelect || t == FieldTypeCheckbox || t == FieldTypeRadio
}

// ItemType is the answer kind of a checklist item.
type ItemType string

const (
	ItemTypeDocument ItemType = "document"
	ItemTypeYesNo    ItemType = "yesno"
)

// IsValid reports whether t is a known item type.
func (t ItemType) IsValid() bool {
	return t == ItemTypeDocument || t == ItemTypeYesNo
}

// EnhancedOption is an option carrying scoring data.
type EnhancedOption struct {
	Value        string  `json:"value"`
	Points       float64 `json:"points,omitempty"`
	IsFailOption bool    `json:"isFailOption,omitempty"`
}

// Field is one entry of a form. A field with IsSection set is a section marker
// grouping the fields that follow it up to the next marker.
type Field struct {
	ID              string           `json:"id"`
	Type            FieldType        `json:"type"`
	Label           string           `json:"label"`
	Required        bool             `json:"required"`
	Placeholder     string           `json:"placeholder,omitempty"`
	Options         []string         `json:"options,omitempty"`
	EnhancedOptions []EnhancedOption `json:"enhancedOptions,omitempty"`
	Weightage       float64          `json:"weightage,omitempty"`
	AutoFail        bool             `json:"autoFail,omitempty"`
	IsSection       bool             `json:"isSection,omitempty"`
}

// FormSchema is the document stored in form.form_schema.
type FormSchema struct {
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Fields      []Field `json:"fields"`
}

// Item is one checklist entry.
type Item struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Type     ItemType `json:"type"`
	AutoFail bool     `json:"autoFail,omitempty"`
}

// Section groups checklist items.
type Section struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Items []Item `json:"items"`
}

// ChecklistSchema is the document stored in checklist.checklist_schema.
type ChecklistSchema struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Sections    []Section `json:"sections"`
}

// Items returns every item of the checklist in section order.
func (c ChecklistSchema) Items() []Item {
	var items []Item
	for _, s := range c.Sections {
		items = append(items, s.Items...)
	}
	return items
}

// UsesEnhancedOptions reports whether a field's active option list is
// EnhancedOptions rather than Options. Free-text types never use them.
func UsesEnhancedOptions(f Field) bool {
	if f.Type == FieldTypeText || f.Type == FieldTypeTextarea || f.Type == FieldTypeEmail {
		return false
	}
	return f.Weightage > 0 || f.AutoFail
}

// ActiveOptions returns the option values of whichever list is active for f.
func ActiveOptions(f Field) []string {
	if !UsesEnhancedOptions(f) {
		return f.Options
	}
	values := make([]string, 0, len(f.EnhancedOptions))
	for _, o := range f.EnhancedOptions {
		values = append(values, o.Value)
	}
	return values
}
