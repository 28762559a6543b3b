package models

import "github.com/google/uuid"

// StatusCount is one row of the per-status breakdown
type StatusCount struct {
	StatusCode string `json:"status_code"`
	Label      string `json:"label"`
	Count      int64  `json:"count"`
}

// OnboardingStats summarizes request volume and outcomes for a bank (or the
// whole platform when unscoped).
type OnboardingStats struct {
	TotalRequests      int64   `json:"total_requests"`
	Open               int64   `json:"open"`
	Accepted           int64   `json:"accepted"`
	Rejected           int64   `json:"rejected"`
	Abandoned          int64   `json:"abandoned"`
	AcceptanceRate     float64 `json:"acceptance_rate"`
	AvgHoursToDecision float64 `json:"avg_hours_to_decision"`
}

// AgencyThroughput reports per-agency request volume
type AgencyThroughput struct {
	AgencyID   uuid.UUID `json:"agency_id"`
	AgencyName string    `json:"agency_name"`
	Created    int64     `json:"created"`
	Accepted   int64     `json:"accepted"`
}

// StatsResponse bundles the back-office dashboard numbers
type StatsResponse struct {
	Stats    OnboardingStats    `json:"stats"`
	ByStatus []StatusCount      `json:"by_status"`
	Agencies []AgencyThroughput `json:"agencies,omitempty"`
}
