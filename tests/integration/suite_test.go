package integration

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nivobank/backoffice/pkg/testutil"
)

// IntegrationSuite holds the shared test database. Tests run against a real
// Postgres instance with the full migration set applied.
type IntegrationSuite struct {
	DB   *testutil.TestDB
	Pool *pgxpool.Pool
}

var suite *IntegrationSuite

func TestMain(m *testing.M) {
	if os.Getenv("INTEGRATION_TESTS") == "" {
		fmt.Println("Skipping integration tests. Set INTEGRATION_TESTS=1 to run.")
		os.Exit(0)
	}

	code := m.Run()
	os.Exit(code)
}

// SetupSuite initializes the test suite
func SetupSuite(t *testing.T) *IntegrationSuite {
	t.Helper()

	if suite != nil {
		return suite
	}

	db := testutil.SetupTestDB(t)
	testutil.RunMigrations(t, db, "../../migrations")

	suite = &IntegrationSuite{
		DB:   db,
		Pool: db.Pool,
	}

	return suite
}

// TeardownSuite cleans up the test suite
func TeardownSuite(t *testing.T) {
	t.Helper()

	if suite != nil && suite.DB != nil {
		suite.DB.Teardown()
		suite = nil
	}
}

// ResetDatabase truncates all tables in dependency order
func (s *IntegrationSuite) ResetDatabase(t *testing.T) {
	t.Helper()

	tables := []string{
		"validation_feedback",
		"request_history",
		"onboarding_requests",
		"refresh_tokens",
		"api_keys",
		"users",
		"role_permissions",
		"permissions",
		"roles",
		"agencies",
		"banks",
		"request_statuses",
	}

	s.DB.Truncate(tables...)
}

// GetContext returns a context for testing
func (s *IntegrationSuite) GetContext(t *testing.T) context.Context {
	t.Helper()
	return testutil.Context(t)
}
