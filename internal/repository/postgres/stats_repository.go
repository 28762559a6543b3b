package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nivobank/backoffice/internal/models"
)

// StatsQuerier is the read surface the stats queries need. Production hands
// in the circuit-breaker-guarded connection so expensive aggregates fail
// fast when the database is struggling.
type StatsQuerier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// StatsRepository aggregates onboarding numbers for the back-office
// dashboard. Outcome classification leans on the step column of the status
// catalog rather than hard-coded status ids.
type StatsRepository struct {
	db StatsQuerier
}

// NewStatsRepository creates a new stats repository
func NewStatsRepository(db StatsQuerier) *StatsRepository {
	return &StatsRepository{db: db}
}

func statsWindow(timeRange string) time.Time {
	switch timeRange {
	case "24h":
		return time.Now().Add(-24 * time.Hour)
	case "7d":
		return time.Now().Add(-7 * 24 * time.Hour)
	case "30d":
		return time.Now().Add(-30 * 24 * time.Hour)
	case "90d":
		return time.Now().Add(-90 * 24 * time.Hour)
	default:
		return time.Now().Add(-30 * 24 * time.Hour)
	}
}

// GetOnboardingStats returns volume and outcome numbers for requests created
// inside the time range. A nil bankID aggregates the whole platform.
func (r *StatsRepository) GetOnboardingStats(ctx context.Context, bankID *uuid.UUID, timeRange string) (*models.OnboardingStats, error) {
	startTime := statsWindow(timeRange)

	query := `
		SELECT
			COUNT(*) as total_requests,
			COUNT(CASE WHEN s.step IS NULL OR s.step = 'signature' THEN 1 END) as open,
			COUNT(CASE WHEN s.step = 'accept' THEN 1 END) as accepted,
			COUNT(CASE WHEN s.step = 'refuse' THEN 1 END) as rejected,
			COUNT(CASE WHEN s.step = 'abandon' THEN 1 END) as abandoned,
			AVG(CASE WHEN s.step IN ('accept', 'refuse')
			    THEN EXTRACT(EPOCH FROM (req.updated_at - req.created_at)) / 3600 END) as avg_hours
		FROM onboarding_requests req
		JOIN request_statuses s ON s.id = req.status_id
		WHERE req.created_at >= $1
		  AND ($2::uuid IS NULL OR req.bank_id = $2)`

	stats := &models.OnboardingStats{}
	var avgHours sql.NullFloat64

	err := r.db.QueryRowContext(ctx, query, startTime, bankID).Scan(
		&stats.TotalRequests,
		&stats.Open,
		&stats.Accepted,
		&stats.Rejected,
		&stats.Abandoned,
		&avgHours,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get onboarding stats: %w", err)
	}

	if avgHours.Valid {
		stats.AvgHoursToDecision = avgHours.Float64
	}
	if decided := stats.Accepted + stats.Rejected; decided > 0 {
		stats.AcceptanceRate = float64(stats.Accepted) / float64(decided) * 100
	}

	return stats, nil
}

// GetStatusBreakdown returns the current per-status request counts
func (r *StatsRepository) GetStatusBreakdown(ctx context.Context, bankID *uuid.UUID) ([]models.StatusCount, error) {
	query := `
		SELECT s.code, s.label, COUNT(req.id)
		FROM request_statuses s
		LEFT JOIN onboarding_requests req
		       ON req.status_id = s.id
		      AND ($1::uuid IS NULL OR req.bank_id = $1)
		GROUP BY s.code, s.label, s.rank
		ORDER BY s.rank`

	rows, err := r.db.QueryContext(ctx, query, bankID)
	if err != nil {
		return nil, fmt.Errorf("failed to get status breakdown: %w", err)
	}
	defer rows.Close()

	var counts []models.StatusCount
	for rows.Next() {
		var sc models.StatusCount
		if err := rows.Scan(&sc.StatusCode, &sc.Label, &sc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts = append(counts, sc)
	}

	return counts, rows.Err()
}

// GetAgencyThroughput returns per-agency request volume for a bank inside
// the time range.
func (r *StatsRepository) GetAgencyThroughput(ctx context.Context, bankID uuid.UUID, timeRange string) ([]models.AgencyThroughput, error) {
	startTime := statsWindow(timeRange)

	query := `
		SELECT a.id, a.name,
		       COUNT(req.id) as created,
		       COUNT(CASE WHEN s.step = 'accept' THEN 1 END) as accepted
		FROM agencies a
		LEFT JOIN onboarding_requests req
		       ON req.agency_id = a.id AND req.created_at >= $2
		LEFT JOIN request_statuses s ON s.id = req.status_id
		WHERE a.bank_id = $1
		GROUP BY a.id, a.name
		ORDER BY created DESC`

	rows, err := r.db.QueryContext(ctx, query, bankID, startTime)
	if err != nil {
		return nil, fmt.Errorf("failed to get agency throughput: %w", err)
	}
	defer rows.Close()

	var throughput []models.AgencyThroughput
	for rows.Next() {
		var at models.AgencyThroughput
		if err := rows.Scan(&at.AgencyID, &at.AgencyName, &at.Created, &at.Accepted); err != nil {
			return nil, fmt.Errorf("failed to scan agency throughput: %w", err)
		}
		throughput = append(throughput, at)
	}

	return throughput, rows.Err()
}
