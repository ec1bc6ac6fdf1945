package audit

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/complyhub/compliance-management-api/internal/audit/model"
)

const dateLayout = "2006-01-02"

// Sort keys accepted by history and export.
const (
	SortByCreatedAt  = "created_at"
	SortByPercentage = "percentage"
	SortByStatus     = "status"
	SortByResult     = "result"
)

// applyFilter narrows, searches and orders audits without touching the input slice.
func applyFilter(audits []model.Audit, filter model.Filter) ([]model.Audit, error) {
	from, to, err := dateRange(filter)
	if err != nil {
		return nil, err
	}
	search := strings.ToLower(strings.TrimSpace(filter.Search))

	out := make([]model.Audit, 0, len(audits))
	for _, a := range audits {
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		if filter.Result != "" && deref(a.Result) != filter.Result {
			continue
		}
		if filter.VerificationStatus != "" && deref(a.VerificationStatus) != filter.VerificationStatus {
			continue
		}
		if filter.ComplianceID != "" && a.ComplianceID != filter.ComplianceID {
			continue
		}
		if from != nil && a.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && !a.CreatedAt.Before(*to) {
			continue
		}
		if search != "" && !matches(a, search) {
			continue
		}
		out = append(out, a)
	}

	if err := sortAudits(out, filter.SortBy, filter.SortOrder); err != nil {
		return nil, err
	}
	return out, nil
}

// dateRange parses the inclusive day range of a filter into [from, to).
func dateRange(filter model.Filter) (*time.Time, *time.Time, error) {
	var from, to *time.Time
	if filter.From != "" {
		t, err := time.Parse(dateLayout, filter.From)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid from date %q, expected YYYY-MM-DD", filter.From)
		}
		from = &t
	}
	if filter.To != "" {
		t, err := time.Parse(dateLayout, filter.To)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid to date %q, expected YYYY-MM-DD", filter.To)
		}
		end := t.AddDate(0, 0, 1)
		to = &end
	}
	return from, to, nil
}

func matches(a model.Audit, needle string) bool {
	for _, hay := range []string{a.FormTitle, a.FrameworkName, a.UserEmail, deref(a.Comments), deref(a.CorrectiveAction)} {
		if strings.Contains(strings.ToLower(hay), needle) {
			return true
		}
	}
	return false
}

func sortAudits(audits []model.Audit, sortBy, order string) error {
	if sortBy == "" {
		sortBy = SortByCreatedAt
	}
	desc := true
	switch strings.ToLower(order) {
	case "", "desc":
	case "asc":
		desc = false
	default:
		return fmt.Errorf("invalid sort order %q", order)
	}

	var less func(a, b model.Audit) bool
	switch sortBy {
	case SortByCreatedAt:
		less = func(a, b model.Audit) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case SortByStatus:
		less = func(a, b model.Audit) bool { return a.Status < b.Status }
	case SortByResult:
		less = func(a, b model.Audit) bool { return deref(a.Result) < deref(b.Result) }
	case SortByPercentage:
		// Audits without a score always sort last.
		sort.SliceStable(audits, func(i, j int) bool {
			pi, pj := audits[i].Percentage, audits[j].Percentage
			switch {
			case pi == nil:
				return false
			case pj == nil:
				return true
			case desc:
				return *pi > *pj
			default:
				return *pi < *pj
			}
		})
		return nil
	default:
		return fmt.Errorf("invalid sort field %q", sortBy)
	}

	sort.SliceStable(audits, func(i, j int) bool {
		if desc {
			return less(audits[j], audits[i])
		}
		return less(audits[i], audits[j])
	})
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
