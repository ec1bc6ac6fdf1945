package schema

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/complyhub/compliance-management-api/internal/system/utils"
)

// Result is the outcome of a scored submission. The empty value means the
// document had nothing to score.
type Result string

const (
	ResultPass   Result = "pass"
	ResultFailed Result = "failed"
	ResultNone   Result = ""
)

// Answers maps form field ids to submitted values. Checkbox answers are lists.
type Answers map[string]interface{}

// ItemAnswer is the submitted state of one checklist item.
type ItemAnswer struct {
	Value       string `json:"value,omitempty"`
	DocumentKey string `json:"document_key,omitempty"`
}

// ChecklistAnswers maps checklist item ids to answers.
type ChecklistAnswers map[string]ItemAnswer

// Score is the computed outcome of a submission.
type Score struct {
	Marks      float64  `json:"marks"`
	MaxMarks   float64  `json:"max_marks"`
	Percentage float64  `json:"percentage"`
	Result     Result   `json:"result,omitempty"`
	AutoFailed bool     `json:"auto_failed"`
	FailedBy   []string `json:"failed_by,omitempty"`
}

// ScoreForm scores answers against a form. Enhanced-option fields earn the
// points of the selected options; other weighted fields earn their weightage
// when answered. Picking a fail option, or leaving an auto-fail field
// unanswered, fails the form regardless of points.
func ScoreForm(s FormSchema, answers Answers, passThreshold float64) Score {
	marks := decimal.Zero
	maxMarks := decimal.Zero
	var failedBy []string

	for _, f := range s.Fields {
		if f.IsSection {
			continue
		}
		selected := answerValues(answers[f.ID])

		switch {
		case UsesEnhancedOptions(f):
			if f.Type != FieldTypeCheckbox && len(selected) > 1 {
				selected = selected[:1]
			}
			fieldMax := decimal.Zero
			for _, o := range f.EnhancedOptions {
				points := decimal.NewFromFloat(o.Points)
				if f.Type == FieldTypeCheckbox {
					if points.IsPositive() {
						fieldMax = fieldMax.Add(points)
					}
				} else if points.GreaterThan(fieldMax) {
					fieldMax = points
				}
				if contains(selected, o.Value) {
					marks = marks.Add(points)
					if o.IsFailOption {
						failedBy = append(failedBy, f.ID)
					}
				}
			}
			maxMarks = maxMarks.Add(fieldMax)
			if f.AutoFail && len(selected) == 0 {
				failedBy = append(failedBy, f.ID)
			}

		case f.Weightage > 0:
			weight := decimal.NewFromFloat(f.Weightage)
			maxMarks = maxMarks.Add(weight)
			if len(selected) > 0 {
				marks = marks.Add(weight)
			}

		case f.AutoFail && len(selected) == 0:
			failedBy = append(failedBy, f.ID)
		}
	}

	return buildScore(marks, maxMarks, failedBy, passThreshold)
}

// ScoreChecklist scores checklist answers. Each item is worth one mark: a
// "yes" answer for yes/no items, an attached document for document items.
// An auto-fail item without its mark fails the checklist.
func ScoreChecklist(s ChecklistSchema, answers ChecklistAnswers, passThreshold float64) Score {
	marks := decimal.Zero
	maxMarks := decimal.Zero
	var failedBy []string

	for _, item := range s.Items() {
		maxMarks = maxMarks.Add(decimal.NewFromInt(1))
		if itemSatisfied(item, answers[item.ID]) {
			marks = marks.Add(decimal.NewFromInt(1))
		} else if item.AutoFail {
			failedBy = append(failedBy, item.ID)
		}
	}

	return buildScore(marks, maxMarks, failedBy, passThreshold)
}

func itemSatisfied(item Item, a ItemAnswer) bool {
	switch item.Type {
	case ItemTypeDocument:
		return strings.TrimSpace(a.DocumentKey) != ""
	default:
		return strings.EqualFold(strings.TrimSpace(a.Value), "yes")
	}
}

func buildScore(marks, maxMarks decimal.Decimal, failedBy []string, passThreshold float64) Score {
	score := Score{
		Marks:      marks.Round(2).InexactFloat64(),
		MaxMarks:   maxMarks.Round(2).InexactFloat64(),
		AutoFailed: len(failedBy) > 0,
		FailedBy:   failedBy,
	}

	if maxMarks.IsPositive() {
		score.Percentage = marks.Div(maxMarks).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
	}

	switch {
	case score.AutoFailed:
		score.Result = ResultFailed
	case !maxMarks.IsPositive():
		score.Result = ResultNone
	case score.Percentage >= passThreshold:
		score.Result = ResultPass
	default:
		score.Result = ResultFailed
	}
	return score
}

// CheckRequired reports unanswered required fields and malformed answers.
func CheckRequired(s FormSchema, answers Answers) ValidationErrors {
	var errs ValidationErrors
	for i, f := range s.Fields {
		if f.IsSection {
			continue
		}
		values := answerValues(answers[f.ID])
		name := displayName(f.Label, i)

		if len(values) == 0 {
			if f.Required {
				errs = append(errs, ValidationError{Path: f.ID, Message: fmt.Sprintf("%s is required", name)})
			}
			continue
		}

		switch f.Type {
		case FieldTypeEmail:
			if !utils.IsValidEmail(values[0]) {
				errs = append(errs, ValidationError{Path: f.ID, Message: fmt.Sprintf("%s must be a valid email address", name)})
			}
		case FieldTypeNumber:
			if _, err := strconv.ParseFloat(values[0], 64); err != nil {
				errs = append(errs, ValidationError{Path: f.ID, Message: fmt.Sprintf("%s must be a number", name)})
			}
		case FieldTypeSelect, FieldTypeRadio, FieldTypeCheckbox:
			if f.Type != FieldTypeCheckbox && len(values) > 1 {
				errs = append(errs, ValidationError{Path: f.ID, Message: fmt.Sprintf("%s accepts a single option", name)})
				continue
			}
			allowed := ActiveOptions(f)
			for _, v := range values {
				if !contains(allowed, v) {
					errs = append(errs, ValidationError{Path: f.ID, Message: fmt.Sprintf("%s has an unknown option %q", name, v)})
					break
				}
			}
		}
	}
	return errs
}

// CheckChecklistAnswers reports items without an answer.
func CheckChecklistAnswers(s ChecklistSchema, answers ChecklistAnswers) ValidationErrors {
	var errs ValidationErrors
	for _, sec := range s.Sections {
		for j, item := range sec.Items {
			a := answers[item.ID]
			if item.Type == ItemTypeDocument && strings.TrimSpace(a.DocumentKey) == "" {
				errs = append(errs, ValidationError{Path: item.ID, Message: fmt.Sprintf("%s requires a document", displayName(item.Name, j))})
			}
			if item.Type == ItemTypeYesNo && strings.TrimSpace(a.Value) == "" {
				errs = append(errs, ValidationError{Path: item.ID, Message: fmt.Sprintf("%s requires an answer", displayName(item.Name, j))})
			}
		}
	}
	return errs
}

// answerValues flattens a submitted value to its non-empty string parts.
func answerValues(v interface{}) []string {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		if strings.TrimSpace(val) == "" {
			return nil
		}
		return []string{val}
	case []string:
		return nonEmpty(val)
	case []interface{}:
		out := make([]string, 0, len(val))
		for _, item := range val {
			out = append(out, fmt.Sprint(item))
		}
		return nonEmpty(out)
	case bool:
		if !val {
			return nil
		}
		return []string{"true"}
	case float64:
		return []string{strconv.FormatFloat(val, 'f', -1, 64)}
	default:
		return []string{fmt.Sprint(val)}
	}
}

func nonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
