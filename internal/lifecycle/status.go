// Package lifecycle holds the status machine shared by frameworks, forms and checklists.
package lifecycle

import "fmt"

// Status is the publication state of a framework, form or checklist.
type Status string

const (
	StatusDraft   Status = "draft"
	StatusActive  Status = "active"
	StatusArchive Status = "archive"
)

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	return s == StatusDraft || s == StatusActive || s == StatusArchive
}

// Action is an explicit status change request.
type Action string

const (
	ActionActivate   Action = "activate"
	ActionArchive    Action = "archive"
	ActionReactivate Action = "reactivate"
)

var transitions = map[Action]struct{ from, to Status }{
	ActionActivate:   {StatusDraft, StatusActive},
	ActionArchive:    {StatusActive, StatusArchive},
	ActionReactivate: {StatusArchive, StatusActive},
}

// TransitionError reports an action that is not legal from the current status.
type TransitionError struct {
	From   Status
	Action Action
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s an item with status %s", e.Action, e.From)
}

// ParseAction validates an action name.
func ParseAction(s string) (Action, error) {
	a := Action(s)
	if _, ok := transitions[a]; !ok {
		return "", fmt.Errorf("unknown status action: %s", s)
	}
	return a, nil
}

// Apply returns the status reached by applying action to from.
func Apply(from Status, action Action) (Status, error) {
	t, ok := transitions[action]
	if !ok {
		return "", fmt.Errorf("unknown status action: %s", action)
	}
	if from != t.from {
		return "", &TransitionError{From: from, Action: action}
	}
	return t.to, nil
}
