package schema

import (
	"fmt"
	"strings"
)

// ValidationError is one structural problem in a document.
type ValidationError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ValidationErrors collects the problems of one document.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, e := range v {
		msgs = append(msgs, e.Message)
	}
	return strings.Join(msgs, "; ")
}

// OrNil returns nil for an empty list so callers can test against nil.
func (v ValidationErrors) OrNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// ValidateForm checks that every section holds at least one field and every
// checkbox or radio field has at least one non-empty option in its active list.
func ValidateForm(s FormSchema) ValidationErrors {
	var errs ValidationErrors

	for i, f := range s.Fields {
		path := fmt.Sprintf("fields[%d]", i)

		if f.IsSection {
			if sectionFieldCount(s.Fields, i) == 0 {
				errs = append(errs, ValidationError{
					Path:    path,
					Message: fmt.Sprintf("Section %q must contain at least one field", displayName(f.Label, i)),
				})
			}
			continue
		}

		if !f.Type.IsValid() {
			errs = append(errs, ValidationError{
				Path:    path + ".type",
				Message: fmt.Sprintf("Field %q has unknown type %q", displayName(f.Label, i), f.Type),
			})
			continue
		}

		if f.Type == FieldTypeCheckbox || f.Type == FieldTypeRadio {
			if !hasNonEmpty(ActiveOptions(f)) {
				errs = append(errs, ValidationError{
					Path:    path + ".options",
					Message: fmt.Sprintf("Field %q must have at least one option", displayName(f.Label, i)),
				})
			}
		}
	}
	return errs
}

// ValidateChecklist checks that the checklist has at least one named section,
// each holding at least one named item of a known type.
func ValidateChecklist(s ChecklistSchema) ValidationErrors {
	var errs ValidationErrors

	if len(s.Sections) == 0 {
		return append(errs, ValidationError{Path: "sections", Message: "Checklist must contain at least one section"})
	}

	for i, sec := range s.Sections {
		path := fmt.Sprintf("sections[%d]", i)
		if strings.TrimSpace(sec.Name) == "" {
			errs = append(errs, ValidationError{Path: path + ".name", Message: fmt.Sprintf("Section %d must have a name", i+1)})
		}
		if len(sec.Items) == 0 {
			errs = append(errs, ValidationError{
				Path:    path + ".items",
				Message: fmt.Sprintf("Section %q must contain at least one item", displayName(sec.Name, i)),
			})
		}
		for j, item := range sec.Items {
			itemPath := fmt.Sprintf("%s.items[%d]", path, j)
			if strings.TrimSpace(item.Name) == "" {
				errs = append(errs, ValidationError{Path: itemPath + ".name", Message: fmt.Sprintf("Item %d of section %q must have a name", j+1, displayName(sec.Name, i))})
			}
			if !item.Type.IsValid() {
				errs = append(errs, ValidationError{Path: itemPath + ".type", Message: fmt.Sprintf("Item %q has unknown type %q", displayName(item.Name, j), item.Type)})
			}
		}
	}
	return errs
}

// sectionFieldCount counts the non-section fields following the marker at idx.
func sectionFieldCount(fields []Field, idx int) int {
	n := 0
	for _, f := range fields[idx+1:] {
		if f.IsSection {
			break
		}
		n++
	}
	return n
}

func hasNonEmpty(values []string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return true
		}
	}
	return false
}

func displayName(name string, idx int) string {
	if strings.TrimSpace(name) == "" {
		return fmt.Sprintf("#%d", idx+1)
	}
	return name
}
