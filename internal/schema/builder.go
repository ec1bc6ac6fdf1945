package schema

import (
	"encoding/json"
	"fmt"
	"time"
)

// BuilderOption configures a builder.
type BuilderOption func(*idGenerator)

// WithClock replaces the time source used for generated ids.
func WithClock(now func() time.Time) BuilderOption {
	return func(g *idGenerator) { g.now = now }
}

// FieldUpdate is a partial update of a field. Nil members are left untouched.
type FieldUpdate struct {
	Type            *FieldType
	Label           *string
	Required        *bool
	Placeholder     *string
	Options         *[]string
	EnhancedOptions *[]EnhancedOption
	Weightage       *float64
	AutoFail        *bool
}

// FormBuilder is the editable in-memory state of a form schema.
type FormBuilder struct {
	schema FormSchema
	ids    *idGenerator
}

// NewFormBuilder starts an empty form.
func NewFormBuilder(title, description string, opts ...BuilderOption) *FormBuilder {
	b := &FormBuilder{
		schema: FormSchema{Title: title, Description: description, Fields: []Field{}},
		ids:    newIDGenerator(nil),
	}
	for _, opt := range opts {
		opt(b.ids)
	}
	return b
}

// LoadFormBuilder opens a stored form document for editing.
func LoadFormBuilder(raw []byte, opts ...BuilderOption) (*FormBuilder, error) {
	s, err := ParseForm(raw)
	if err != nil {
		return nil, err
	}
	b := NewFormBuilder(s.Title, s.Description, opts...)
	if s.Fields != nil {
		b.schema.Fields = s.Fields
	}
	for _, f := range b.schema.Fields {
		b.ids.reserve(f.ID)
	}
	return b, nil
}

func (b *FormBuilder) SetTitle(title string) { b.schema.Title = title }

func (b *FormBuilder) SetDescription(description string) { b.schema.Description = description }

// Fields returns a copy of the ordered field list.
func (b *FormBuilder) Fields() []Field {
	return cloneFields(b.schema.Fields)
}

// Schema returns a deep copy of the current document.
func (b *FormBuilder) Schema() FormSchema {
	s := b.schema
	s.Fields = cloneFields(b.schema.Fields)
	return s
}

// AddField appends a new field of the given type and returns its id.
func (b *FormBuilder) AddField(t FieldType) string {
	f := b.newField(t)
	b.schema.Fields = append(b.schema.Fields, f)
	return f.ID
}

// AddSection appends a section marker and returns its id.
func (b *FormBuilder) AddSection(label string) string {
	f := Field{ID: b.ids.next("section"), Type: FieldTypeText, Label: label, IsSection: true}
	b.schema.Fields = append(b.schema.Fields, f)
	return f.ID
}

// AddFieldToSection inserts a new field right after the last field of the
// section whose marker sits at sectionIndex.
func (b *FormBuilder) AddFieldToSection(sectionIndex int, t FieldType) (string, error) {
	if err := b.checkIndex(sectionIndex); err != nil {
		return "", err
	}
	if !b.schema.Fields[sectionIndex].IsSection {
		return "", fmt.Errorf("field %d is not a section", sectionIndex)
	}

	insertAt := sectionIndex + 1 + sectionFieldCount(b.schema.Fields, sectionIndex)
	f := b.newField(t)

	fields := make([]Field, 0, len(b.schema.Fields)+1)
	fields = append(fields, b.schema.Fields[:insertAt]...)
	fields = append(fields, f)
	fields = append(fields, b.schema.Fields[insertAt:]...)
	b.schema.Fields = fields
	return f.ID, nil
}

// UpdateField shallow-merges u into the field at index.
func (b *FormBuilder) UpdateField(index int, u FieldUpdate) error {
	if err := b.checkIndex(index); err != nil {
		return err
	}
	f := &b.schema.Fields[index]
	if u.Type != nil {
		f.Type = *u.Type
	}
	if u.Label != nil {
		f.Label = *u.Label
	}
	if u.Required != nil {
		f.Required = *u.Required
	}
	if u.Placeholder != nil {
		f.Placeholder = *u.Placeholder
	}
	if u.Options != nil {
		f.Options = append([]string(nil), (*u.Options)...)
	}
	if u.EnhancedOptions != nil {
		f.EnhancedOptions = append([]EnhancedOption(nil), (*u.EnhancedOptions)...)
	}
	if u.Weightage != nil {
		f.Weightage = *u.Weightage
	}
	if u.AutoFail != nil {
		f.AutoFail = *u.AutoFail
	}
	return nil
}

// RemoveField drops the field at index. Removing a section marker leaves its
// fields in place under the previous section.
func (b *FormBuilder) RemoveField(index int) error {
	if err := b.checkIndex(index); err != nil {
		return err
	}
	b.schema.Fields = append(b.schema.Fields[:index:index], b.schema.Fields[index+1:]...)
	return nil
}

// Validate runs the form structure checks.
func (b *FormBuilder) Validate() ValidationErrors {
	return ValidateForm(b.schema)
}

// JSON serializes the current document.
func (b *FormBuilder) JSON() ([]byte, error) {
	return json.Marshal(b.schema)
}

// Submit validates the document and hands its JSON to fn. fn is not called
// when validation fails; the validation errors are returned instead.
func (b *FormBuilder) Submit(fn func(schemaJSON []byte) error) error {
	if errs := b.Validate(); len(errs) > 0 {
		return errs
	}
	payload, err := b.JSON()
	if err != nil {
		return err
	}
	return fn(payload)
}

func (b *FormBuilder) newField(t FieldType) Field {
	f := Field{ID: b.ids.next("field"), Type: t}
	if t.HasOptions() {
		f.Options = []string{"Option 1"}
	}
	return f
}

func (b *FormBuilder) checkIndex(index int) error {
	if index < 0 || index >= len(b.schema.Fields) {
		return fmt.Errorf("field index %d out of range", index)
	}
	return nil
}

func cloneFields(in []Field) []Field {
	out := make([]Field, len(in))
	for i, f := range in {
		out[i] = f
		if f.Options != nil {
			out[i].Options = append([]string(nil), f.Options...)
		}
		if f.EnhancedOptions != nil {
			out[i].EnhancedOptions = append([]EnhancedOption(nil), f.EnhancedOptions...)
		}
	}
	return out
}

// ItemUpdate is a partial update of a checklist item.
type ItemUpdate struct {
	Name     *string
	Type     *ItemType
	AutoFail *bool
}

// ChecklistBuilder is the editable in-memory state of a checklist schema.
type ChecklistBuilder struct {
	schema ChecklistSchema
	ids    *idGenerator
}

// NewChecklistBuilder starts an empty checklist.
func NewChecklistBuilder(title, description string, opts ...BuilderOption) *ChecklistBuilder {
	b := &ChecklistBuilder{
		schema: ChecklistSchema{Title: title, Description: description, Sections: []Section{}},
		ids:    newIDGenerator(nil),
	}
	for _, opt := range opts {
		opt(b.ids)
	}
	return b
}

// LoadChecklistBuilder opens a stored checklist for editing. Legacy flat
// documents come back with a single "General" section.
func LoadChecklistBuilder(raw []byte, opts ...BuilderOption) (*ChecklistBuilder, error) {
	s, err := ParseChecklist(raw)
	if err != nil {
		return nil, err
	}
	b := NewChecklistBuilder(s.Title, s.Description, opts...)
	if s.Sections != nil {
		b.schema.Sections = s.Sections
	}
	for _, sec := range b.schema.Sections {
		b.ids.reserve(sec.ID)
		for _, item := range sec.Items {
			b.ids.reserve(item.ID)
		}
	}
	return b, nil
}

func (b *ChecklistBuilder) SetTitle(title string) { b.schema.Title = title }

func (b *ChecklistBuilder) SetDescription(description string) { b.schema.Description = description }

// Schema returns a deep copy of the current document.
func (b *ChecklistBuilder) Schema() ChecklistSchema {
	s := b.schema
	s.Sections = make([]Section, len(b.schema.Sections))
	for i, sec := range b.schema.Sections {
		s.Sections[i] = sec
		s.Sections[i].Items = append([]Item(nil), sec.Items...)
	}
	return s
}

// AddSection appends an empty section and returns its id.
func (b *ChecklistBuilder) AddSection(name string) string {
	sec := Section{ID: b.ids.next("section"), Name: name, Items: []Item{}}
	b.schema.Sections = append(b.schema.Sections, sec)
	return sec.ID
}

// RenameSection changes the name of the section at index.
func (b *ChecklistBuilder) RenameSection(index int, name string) error {
	if err := b.checkSection(index); err != nil {
		return err
	}
	b.schema.Sections[index].Name = name
	return nil
}

// RemoveSection drops the section at index with its items.
func (b *ChecklistBuilder) RemoveSection(index int) error {
	if err := b.checkSection(index); err != nil {
		return err
	}
	b.schema.Sections = append(b.schema.Sections[:index:index], b.schema.Sections[index+1:]...)
	return nil
}

// AddItem appends an item to the section at sectionIndex and returns its id.
func (b *ChecklistBuilder) AddItem(sectionIndex int, t ItemType) (string, error) {
	if err := b.checkSection(sectionIndex); err != nil {
		return "", err
	}
	item := Item{ID: b.ids.next("item"), Type: t}
	b.schema.Sections[sectionIndex].Items = append(b.schema.Sections[sectionIndex].Items, item)
	return item.ID, nil
}

// UpdateItem shallow-merges u into one item.
func (b *ChecklistBuilder) UpdateItem(sectionIndex, itemIndex int, u ItemUpdate) error {
	if err := b.checkItem(sectionIndex, itemIndex); err != nil {
		return err
	}
	item := &b.schema.Sections[sectionIndex].Items[itemIndex]
	if u.Name != nil {
		item.Name = *u.Name
	}
	if u.Type != nil {
		item.Type = *u.Type
	}
	if u.AutoFail != nil {
		item.AutoFail = *u.AutoFail
	}
	return nil
}

// RemoveItem drops one item.
func (b *ChecklistBuilder) RemoveItem(sectionIndex, itemIndex int) error {
	if err := b.checkItem(sectionIndex, itemIndex); err != nil {
		return err
	}
	items := b.schema.Sections[sectionIndex].Items
	b.schema.Sections[sectionIndex].Items = append(items[:itemIndex:itemIndex], items[itemIndex+1:]...)
	return nil
}

// Validate runs the checklist structure checks.
func (b *ChecklistBuilder) Validate() ValidationErrors {
	return ValidateChecklist(b.schema)
}

// JSON serializes the current document.
func (b *ChecklistBuilder) JSON() ([]byte, error) {
	return json.Marshal(b.schema)
}

// Submit validates and, only when valid, hands the JSON to fn.
func (b *ChecklistBuilder) Submit(fn func(schemaJSON []byte) error) error {
	if errs := b.Validate(); len(errs) > 0 {
		return errs
	}
	payload, err := b.JSON()
	if err != nil {
		return err
	}
	return fn(payload)
}

func (b *ChecklistBuilder) checkSection(index int) error {
	if index < 0 || index >= len(b.schema.Sections) {
		return fmt.Errorf("section index %d out of range", index)
	}
	return nil
}

func (b *ChecklistBuilder) checkItem(sectionIndex, itemIndex int) error {
	if err := b.checkSection(sectionIndex); err != nil {
		return err
	}
	if itemIndex < 0 || itemIndex >= len(b.schema.Sections[sectionIndex].Items) {
		return fmt.Errorf("item index %d out of range", itemIndex)
	}
	return nil
}
