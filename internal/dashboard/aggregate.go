package dashboard

import (
	"math/rand"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	auditmodel "github.com/complyhub/compliance-management-api/internal/audit/model"
	"github.com/complyhub/compliance-management-api/internal/dashboard/model"
	"github.com/complyhub/compliance-management-api/internal/system/utils"
)

const (
	// OverdueAfter is the age after which an unfinished audit is overdue.
	OverdueAfter = 14 * 24 * time.Hour
	// TrendDays is the length of the trend and risk windows.
	TrendDays = 30

	trendWindowDays = 7
	stableBand      = 2.0
	healthyScore    = 80.0
	atRiskScore     = 50.0
	highRisk        = 50.0
	mediumRisk      = 20.0
	busyOpen        = 5
	overloadedOpen  = 10

	resultPass   = "pass"
	resultFailed = "failed"
	dayLayout    = "2006-01-02"
)

// IsOverdue reports whether a is unfinished and older than OverdueAfter at now.
func IsOverdue(a auditmodel.Audit, now time.Time) bool {
	return a.Status != auditmodel.StatusCompleted && now.Sub(a.CreatedAt) > OverdueAfter
}

// AuditorPerformance returns one entry per auditor, in input order.
func AuditorPerformance(auditors []model.Auditor, audits []auditmodel.Audit, now time.Time) []model.AuditorPerformance {
	byUser := make(map[string][]auditmodel.Audit)
	for _, a := range audits {
		byUser[a.UserID] = append(byUser[a.UserID], a)
	}

	out := make([]model.AuditorPerformance, 0, len(auditors))
	for _, auditor := range auditors {
		own := byUser[auditor.UserID]
		entry := model.AuditorPerformance{UserID: auditor.UserID, Email: auditor.Email, Total: len(own)}

		var passed, withResult int
		for _, a := range own {
			if a.Status == auditmodel.StatusCompleted {
				entry.Completed++
			}
			if IsOverdue(a, now) {
				entry.Overdue++
			}
			if deref(a.VerificationStatus) == auditmodel.VerificationRejected {
				entry.Rejected++
			}
			if a.Result != nil {
				withResult++
				if *a.Result == resultPass {
					passed++
				}
			}
		}
		entry.PassRate = percent(passed, withResult)
		entry.AverageScore = averageScore(own)
		out = append(out, entry)
	}
	return out
}

// ComplianceTrends returns the (day, framework) cells of the last TrendDays days
// that hold at least one audit, ordered by day and then framework name.
func ComplianceTrends(audits []auditmodel.Audit, now time.Time) []model.TrendCell {
	start := utils.StartOfDay(now).AddDate(0, 0, -(TrendDays - 1))
	end := utils.StartOfDay(now).AddDate(0, 0, 1)

	type key struct {
		day          string
		complianceID string
	}
	cells := make(map[key]*model.TrendCell)
	for _, a := range audits {
		if a.CreatedAt.Before(start) || !a.CreatedAt.Before(end) {
			continue
		}
		k := key{day: a.CreatedAt.In(now.Location()).Format(dayLayout), complianceID: a.ComplianceID}
		cell, ok := cells[k]
		if !ok {
			cell = &model.TrendCell{Date: k.day, ComplianceID: a.ComplianceID, Framework: a.FrameworkName}
			cells[k] = cell
		}
		cell.Total++
		switch deref(a.Result) {
		case resultPass:
			cell.Compliant++
		case resultFailed:
			cell.NonCompliant++
		}
	}

	out := make([]model.TrendCell, 0, len(cells))
	for _, cell := range cells {
		cell.Rate = percent(cell.Compliant, cell.Total)
		out = append(out, *cell)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		if out[i].Framework != out[j].Framework {
			return out[i].Framework < out[j].Framework
		}
		return out[i].ComplianceID < out[j].ComplianceID
	})
	return out
}

// ComplianceSummary computes the headline counts, rates and the weekly trend.
func ComplianceSummary(audits []auditmodel.Audit, frameworks []model.Framework, now time.Time) model.Summary {
	summary := model.Summary{Total: len(audits)}
	for _, a := range audits {
		switch a.Status {
		case auditmodel.StatusCompleted:
			summary.Completed++
			if deref(a.VerificationStatus) == auditmodel.VerificationPending {
				summary.PendingVerification++
			}
		case auditmodel.StatusDraft:
			summary.Draft++
		default:
			summary.Pending++
		}
		if IsOverdue(a, now) {
			summary.Overdue++
		}
		switch deref(a.Result) {
		case resultPass:
			summary.Passed++
		case resultFailed:
			summary.Failed++
		}
	}

	summary.AverageScore = averageScore(audits)
	summary.ComplianceRate = percent(summary.Passed, summary.Total)
	summary.PendingCorrectiveActions = summary.Failed + summary.Overdue
	summary.Frameworks = frameworkCompletion(audits, frameworks)
	summary.Trend = weeklyTrend(audits, now)
	return summary
}

func frameworkCompletion(audits []auditmodel.Audit, frameworks []model.Framework) []model.FrameworkCompletion {
	out := make([]model.FrameworkCompletion, 0, len(frameworks))
	for _, f := range frameworks {
		entry := model.FrameworkCompletion{ComplianceID: f.ID, Name: f.Name}
		for _, a := range audits {
			if a.ComplianceID != f.ID {
				continue
			}
			entry.Total++
			if a.Status == auditmodel.StatusCompleted {
				entry.Completed++
			}
		}
		entry.CompletionRate = percent(entry.Completed, entry.Total)
		out = append(out, entry)
	}
	return out
}

// weeklyTrend compares the pass rate of [now-7d, now] with [now-14d, now-7d).
func weeklyTrend(audits []auditmodel.Audit, now time.Time) model.Trend {
	window := trendWindowDays * 24 * time.Hour
	currentStart := now.Add(-window)
	previousStart := now.Add(-2 * window)

	var curPassed, curTotal, prevPassed, prevTotal int
	for _, a := range audits {
		passed := deref(a.Result) == resultPass
		switch {
		case !a.CreatedAt.Before(currentStart) && !a.CreatedAt.After(now):
			curTotal++
			if passed {
				curPassed++
			}
		case !a.CreatedAt.Before(previousStart) && a.CreatedAt.Before(currentStart):
			prevTotal++
			if passed {
				prevPassed++
			}
		}
	}

	trend := model.Trend{
		Current:  percent(curPassed, curTotal),
		Previous: percent(prevPassed, prevTotal),
	}
	change := decimal.NewFromFloat(trend.Current).Sub(decimal.NewFromFloat(trend.Previous))
	trend.Change = change.Round(2).InexactFloat64()
	switch {
	case change.Abs().LessThan(decimal.NewFromFloat(stableBand)):
		trend.Direction = model.DirectionStable
	case change.IsPositive():
		trend.Direction = model.DirectionUp
	default:
		trend.Direction = model.DirectionDown
	}
	return trend
}

// RiskTimeline returns one point per day of the last TrendDays days that has audits.
// Risk is the share of failed or overdue audits of the day.
func RiskTimeline(audits []auditmodel.Audit, now time.Time) []model.RiskPoint {
	start := utils.StartOfDay(now).AddDate(0, 0, -(TrendDays - 1))
	end := utils.StartOfDay(now).AddDate(0, 0, 1)

	points := make(map[string]*model.RiskPoint)
	for _, a := range audits {
		if a.CreatedAt.Before(start) || !a.CreatedAt.Before(end) {
			continue
		}
		day := a.CreatedAt.In(now.Location()).Format(dayLayout)
		p, ok := points[day]
		if !ok {
			p = &model.RiskPoint{Date: day}
			points[day] = p
		}
		p.Total++
		failed := deref(a.Result) == resultFailed
		overdue := IsOverdue(a, now)
		if failed {
			p.Failed++
		}
		if overdue {
			p.Overdue++
		}
	}

	out := make([]model.RiskPoint, 0, len(points))
	for _, p := range points {
		p.Risk = percent(p.Failed+p.Overdue, p.Total)
		switch {
		case p.Risk >= highRisk:
			p.Level = model.RiskHigh
		case p.Risk >= mediumRisk:
			p.Level = model.RiskMedium
		default:
			p.Level = model.RiskLow
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// Workload returns the open and overdue audits of each auditor, in input order.
func Workload(auditors []model.Auditor, audits []auditmodel.Audit, now time.Time) []model.Workload {
	out := make([]model.Workload, 0, len(auditors))
	for _, auditor := range auditors {
		w := model.Workload{UserID: auditor.UserID, Email: auditor.Email}
		for _, a := range audits {
			if a.UserID != auditor.UserID {
				continue
			}
			w.Assigned++
			if a.Status == auditmodel.StatusCompleted {
				w.Completed++
			} else {
				w.Open++
			}
			if IsOverdue(a, now) {
				w.Overdue++
			}
		}
		switch {
		case w.Open >= overloadedOpen:
			w.Level = model.LoadOverloaded
		case w.Open >= busyOpen:
			w.Level = model.LoadBusy
		default:
			w.Level = model.LoadNormal
		}
		out = append(out, w)
	}
	return out
}

// ComplianceHealth grades the average score of completed audits overall and per framework.
func ComplianceHealth(audits []auditmodel.Audit, frameworks []model.Framework) model.Health {
	completed := make([]auditmodel.Audit, 0, len(audits))
	for _, a := range audits {
		if a.Status == auditmodel.StatusCompleted {
			completed = append(completed, a)
		}
	}

	health := model.Health{Frameworks: make([]model.FrameworkHealth, 0, len(frameworks))}
	health.Score, health.Status = grade(completed)
	for _, f := range frameworks {
		own := make([]auditmodel.Audit, 0)
		for _, a := range completed {
			if a.ComplianceID == f.ID {
				own = append(own, a)
			}
		}
		entry := model.FrameworkHealth{ComplianceID: f.ID, Name: f.Name, Scored: countScored(own)}
		entry.Score, entry.Status = grade(own)
		health.Frameworks = append(health.Frameworks, entry)
	}
	return health
}

func grade(audits []auditmodel.Audit) (float64, string) {
	if countScored(audits) == 0 {
		return 0, model.HealthNoData
	}
	score := averageScore(audits)
	switch {
	case score >= healthyScore:
		return score, model.HealthHealthy
	case score >= atRiskScore:
		return score, model.HealthAtRisk
	default:
		return score, model.HealthCritical
	}
}

// PerformanceRadar derives accuracy, completion, timeliness and quality from the
// auditor's audits. Speed, documentation and communication have no data source
// and are drawn from rng in [60, 100), flagged as placeholders.
func PerformanceRadar(auditor model.Auditor, audits []auditmodel.Audit, now time.Time, rng *rand.Rand) model.Radar {
	own := make([]auditmodel.Audit, 0)
	for _, a := range audits {
		if a.UserID == auditor.UserID {
			own = append(own, a)
		}
	}
	perf := AuditorPerformance([]model.Auditor{auditor}, own, now)[0]

	timeliness := 0.0
	if perf.Total > 0 {
		timeliness = round2(100 - percent(perf.Overdue, perf.Total))
	}

	metrics := []model.RadarMetric{
		{Metric: "accuracy", Value: perf.PassRate},
		{Metric: "completion", Value: percent(perf.Completed, perf.Total)},
		{Metric: "timeliness", Value: timeliness},
		{Metric: "quality", Value: perf.AverageScore},
	}
	for _, name := range []string{"speed", "documentation", "communication"} {
		metrics = append(metrics, model.RadarMetric{
			Metric:      name,
			Value:       round2(60 + rng.Float64()*40),
			Placeholder: true,
		})
	}
	return model.Radar{UserID: auditor.UserID, Metrics: metrics}
}

func averageScore(audits []auditmodel.Audit) float64 {
	sum := decimal.Zero
	n := 0
	for _, a := range audits {
		if a.Percentage == nil {
			continue
		}
		sum = sum.Add(decimal.NewFromFloat(*a.Percentage))
		n++
	}
	if n == 0 {
		return 0
	}
	return sum.Div(decimal.NewFromInt(int64(n))).Round(2).InexactFloat64()
}

func countScored(audits []auditmodel.Audit) int {
	n := 0
	for _, a := range audits {
		if a.Percentage != nil {
			n++
		}
	}
	return n
}

// percent returns part/whole*100 rounded to two decimals, or 0 for an empty whole.
func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return decimal.NewFromInt(int64(part) * 100).Div(decimal.NewFromInt(int64(whole))).Round(2).InexactFloat64()
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
