// Package model holds the dashboard views computed from audit rows.
package model

// Trend directions.
const (
	DirectionUp     = "up"
	DirectionDown   = "down"
	DirectionStable = "stable"
)

// Health statuses.
const (
	HealthHealthy  = "healthy"
	HealthAtRisk   = "at_risk"
	HealthCritical = "critical"
	HealthNoData   = "no_data"
)

// Risk levels.
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// Workload levels.
const (
	LoadNormal     = "normal"
	LoadBusy       = "busy"
	LoadOverloaded = "overloaded"
)

// Auditor is the subset of a profile the aggregations need.
type Auditor struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// Framework is the subset of a compliance framework the aggregations need.
type Framework struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AuditorPerformance summarizes the audits of one auditor.
type AuditorPerformance struct {
	UserID       string  `json:"user_id"`
	Email        string  `json:"email"`
	Total        int     `json:"total"`
	Completed    int     `json:"completed"`
	Overdue      int     `json:"overdue"`
	Rejected     int     `json:"rejected"`
	PassRate     float64 `json:"pass_rate"`
	AverageScore float64 `json:"average_score"`
}

// TrendCell is one (day, framework) cell of the compliance trend grid.
type TrendCell struct {
	Date         string  `json:"date"`
	ComplianceID string  `json:"compliance_id"`
	Framework    string  `json:"framework"`
	Compliant    int     `json:"compliant"`
	NonCompliant int     `json:"non_compliant"`
	Total        int     `json:"total"`
	Rate         float64 `json:"rate"`
}

// FrameworkCompletion is the completion ratio of one framework's audits.
type FrameworkCompletion struct {
	ComplianceID   string  `json:"compliance_id"`
	Name           string  `json:"name"`
	Total          int     `json:"total"`
	Completed      int     `json:"completed"`
	CompletionRate float64 `json:"completion_rate"`
}

// Trend compares the compliance rate of the last seven days with the seven before.
type Trend struct {
	Current   float64 `json:"current"`
	Previous  float64 `json:"previous"`
	Change    float64 `json:"change"`
	Direction string  `json:"direction"`
}

// Summary is the headline view of the dashboard.
type Summary struct {
	Total                    int                   `json:"total"`
	Completed                int                   `json:"completed"`
	Pending                  int                   `json:"pending"`
	Draft                    int                   `json:"draft"`
	Overdue                  int                   `json:"overdue"`
	Passed                   int                   `json:"passed"`
	Failed                   int                   `json:"failed"`
	PendingVerification      int                   `json:"pending_verification"`
	AverageScore             float64               `json:"average_score"`
	ComplianceRate           float64               `json:"compliance_rate"`
	PendingCorrectiveActions int                   `json:"pending_corrective_actions"`
	Frameworks               []FrameworkCompletion `json:"frameworks"`
	Trend                    Trend                 `json:"trend"`
}

// RiskPoint is one day of the risk timeline.
type RiskPoint struct {
	Date    string  `json:"date"`
	Total   int     `json:"total"`
	Failed  int     `json:"failed"`
	Overdue int     `json:"overdue"`
	Risk    float64 `json:"risk"`
	Level   string  `json:"level"`
}

// Workload is the open work of one auditor.
type Workload struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Assigned  int    `json:"assigned"`
	Open      int    `json:"open"`
	Completed int    `json:"completed"`
	Overdue   int    `json:"overdue"`
	Level     string `json:"level"`
}

// FrameworkHealth is the health of one framework.
type FrameworkHealth struct {
	ComplianceID string  `json:"compliance_id"`
	Name         string  `json:"name"`
	Scored       int     `json:"scored"`
	Score        float64 `json:"score"`
	Status       string  `json:"status"`
}

// Health is the overall and per framework health view.
type Health struct {
	Score      float64           `json:"score"`
	Status     string            `json:"status"`
	Frameworks []FrameworkHealth `json:"frameworks"`
}

// RadarMetric is one axis of the performance radar. Placeholder marks values
// that are not derived from audit data.
type RadarMetric struct {
	Metric      string  `json:"metric"`
	Value       float64 `json:"value"`
	Placeholder bool    `json:"placeholder"`
}

// Radar is the performance radar of one auditor.
type Radar struct {
	UserID  string        `json:"user_id"`
	Metrics []RadarMetric `json:"metrics"`
}
