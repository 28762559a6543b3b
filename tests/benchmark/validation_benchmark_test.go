package benchmark

import (
	"context"
	"testing"

	"github.com/nivobank/backoffice/internal/models"
	"github.com/nivobank/backoffice/internal/registry"
	"github.com/nivobank/backoffice/internal/validation"
	"github.com/nivobank/backoffice/pkg/logger"
	"github.com/nivobank/backoffice/pkg/testutil"
)

// BenchmarkEngine_StrictValidation benchmarks the submission gate over a
// fully populated payload
func BenchmarkEngine_StrictValidation(b *testing.B) {
	engine := validation.NewEngine()
	payload := testutil.NewFixtureBuilder().ValidPayload()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = engine.Validate(payload, true)
	}
}

// BenchmarkEngine_LenientValidation benchmarks the interactive pass over a
// partially filled payload
func BenchmarkEngine_LenientValidation(b *testing.B) {
	engine := validation.NewEngine()
	payload := testutil.NewFixtureBuilder().ValidPayload()
	payload.Business = nil
	payload.Documents = nil

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = engine.Validate(payload, false)
	}
}

// BenchmarkEngine_StrictValidation_Incomplete benchmarks the worst case
// where every section produces findings
func BenchmarkEngine_StrictValidation_Incomplete(b *testing.B) {
	engine := validation.NewEngine()
	payload := models.RequestPayload{}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = engine.Validate(payload, true)
	}
}

type catalogStore struct {
	statuses []models.Status
}

func (s *catalogStore) ListStatuses(ctx context.Context) ([]models.Status, error) {
	return s.statuses, nil
}

// BenchmarkRegistry_FindByCode benchmarks the hot catalog lookup used on
// every transition
func BenchmarkRegistry_FindByCode(b *testing.B) {
	fixtures := testutil.NewFixtureBuilder()
	catalog := registry.New(&catalogStore{statuses: fixtures.StatusCatalog()}, nil, logger.NewForTesting())
	if err := catalog.Load(context.Background()); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = catalog.FindByCode("REQSTATUS00033")
	}
}
